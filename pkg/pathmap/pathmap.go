// Package pathmap turns absolute URIs into deterministic local filesystem paths.
package pathmap

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/siphon/pkg/errors"
	"github.com/gosimple/slug"
)

// DefaultReplacement is the character substituted for filesystem-unsafe runs.
const DefaultReplacement = "_"

// Mapper maps absolute URIs to local paths rooted at a download directory.
// Mapping is pure and deterministic: it never touches the filesystem, and the
// same URI always yields the same path. Collisions are possible when two URIs
// sanitize to the same segment sequence; that is accepted.
type Mapper struct {
	root        string
	replacement string
}

// New creates a Mapper rooted at dir using the default replacement character.
func New(dir string) *Mapper {
	return NewWithReplacement(dir, DefaultReplacement)
}

// NewWithReplacement creates a Mapper rooted at dir with a custom replacement
// character for sanitized segments.
func NewWithReplacement(dir, replacement string) *Mapper {
	if replacement == "" {
		replacement = DefaultReplacement
	}
	return &Mapper{root: dir, replacement: replacement}
}

// Root returns the configured download directory root.
func (m *Mapper) Root() string {
	return m.root
}

// Map returns the local path for an absolute URI: the sanitized host followed
// by the sanitized path segments, joined under the root directory. Segments
// consisting only of dots are dropped, so the mapped path never leaves the
// root. The URI must carry a scheme and a host.
func (m *Mapper) Map(absoluteURI string) (string, error) {
	parsed, err := url.Parse(absoluteURI)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidURI, "%s: %v", absoluteURI, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", errors.Wrapf(errors.ErrInvalidURI, "%s: missing scheme or host", absoluteURI)
	}

	// The host is sanitized as a single token so its dots collapse into the
	// replacement character; path segments keep the dot as an extension boundary.
	segments := []string{m.sanitizeToken(parsed.Host)}
	for _, part := range strings.Split(parsed.Path, "/") {
		if part == "" {
			continue
		}
		sanitized := m.SanitizeSegment(part)
		// Dot-only segments survive slugification, and filepath.Join would
		// collapse them and let a URI climb out of the root.
		if strings.Trim(sanitized, ".") == "" {
			continue
		}
		segments = append(segments, sanitized)
	}

	return filepath.Join(m.root, filepath.Join(segments...)), nil
}

// SanitizeSegment sanitizes one path segment, slugifying each dot-delimited
// subpart separately and rejoining with dots.
func (m *Mapper) SanitizeSegment(segment string) string {
	parts := strings.Split(segment, ".")
	for i, p := range parts {
		parts[i] = m.sanitizeToken(p)
	}
	return strings.Join(parts, ".")
}

func (m *Mapper) sanitizeToken(s string) string {
	out := slug.Make(s)
	if m.replacement != "-" {
		out = strings.ReplaceAll(out, "-", m.replacement)
	}
	return out
}
