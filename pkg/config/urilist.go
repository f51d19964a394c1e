package config

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/siphon/pkg/errors"
)

// URIList is a file listing URIs to download, optionally with extra request
// headers applied to the whole batch.
type URIList struct {
	URIs    []string          `yaml:"uris"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoadURIList reads a URI list from a file. Files ending in .yaml or .yml are
// parsed as YAML; anything else is treated as plain text with one URI per
// line, ignoring blanks and #-comments.
func LoadURIList(path string) (*URIList, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open URI list: %s", path)
	}
	defer func() { _ = file.Close() }()

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return loadYAMLURIList(file)
	}
	return loadPlainURIList(file)
}

func loadYAMLURIList(reader io.Reader) (*URIList, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URI list")
	}

	var list URIList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}
	return &list, nil
}

func loadPlainURIList(reader io.Reader) (*URIList, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URI list")
	}

	list := &URIList{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.URIs = append(list.URIs, line)
	}
	return list, nil
}
