// Package download implements the idempotent download coordinator: it decides
// per URI whether to skip, verify or fetch, and streams fetched bytes to the
// path produced by the path mapper.
package download

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/glorpus-work/siphon/internal/logger"
	pkgerrors "github.com/glorpus-work/siphon/pkg/errors"
	"github.com/glorpus-work/siphon/pkg/fsutil"
	"github.com/glorpus-work/siphon/pkg/pathmap"
)

// chunkSize is the buffer size used when streaming a response body to disk.
const chunkSize = 1 << 20 // 1 MiB

// Outcome names the decision taken for a single DownloadOne call.
type Outcome int

// Per-call decision outcomes.
const (
	// OutcomeSkipped means the URI was already downloaded to the same path
	// earlier in this session; no I/O was performed.
	OutcomeSkipped Outcome = iota
	// OutcomeVerified means a file already existed at the mapped path with a
	// size matching the server-reported length; no bytes were fetched.
	OutcomeVerified
	// OutcomeFetched means the resource was downloaded and written in full.
	OutcomeFetched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeVerified:
		return "verified"
	case OutcomeFetched:
		return "fetched"
	default:
		return "unknown"
	}
}

// Entry is one URI to local path association, in download order.
type Entry struct {
	URI  string
	Path string
}

// Coordinator downloads remote resources into a local directory tree. It keeps
// an insertion-ordered record of the URIs downloaded in this session and skips
// work that is already done.
//
// A Coordinator is not safe for concurrent use; callers that fan out over
// multiple workers must partition URIs so that no two workers ever target the
// same path (see pkg/orchestrator).
type Coordinator struct {
	mapper  *pathmap.Mapper
	client  Client
	workers int

	record map[string]string
	order  []string
}

// NewCoordinator creates a Coordinator writing under dir. The workers argument
// is an advisory hint for embedding systems; the Coordinator itself performs
// no parallel scheduling.
func NewCoordinator(dir string, workers int, client Client) *Coordinator {
	return NewCoordinatorWithMapper(pathmap.New(dir), workers, client)
}

// NewCoordinatorWithMapper creates a Coordinator using an existing path
// mapper, for callers that configure the mapper themselves.
func NewCoordinatorWithMapper(mapper *pathmap.Mapper, workers int, client Client) *Coordinator {
	if workers <= 0 {
		workers = 1
	}
	return &Coordinator{
		mapper:  mapper,
		client:  client,
		workers: workers,
		record:  make(map[string]string),
	}
}

// Dir returns the configured download directory root.
func (c *Coordinator) Dir() string {
	return c.mapper.Root()
}

// Workers returns the advisory worker-count hint.
func (c *Coordinator) Workers() int {
	return c.workers
}

// MapToLocalPath returns the local path the given URI would be downloaded to.
func (c *Coordinator) MapToLocalPath(uri string) (string, error) {
	return c.mapper.Map(uri)
}

// Downloaded returns a copy of the URI to path record for this session.
func (c *Coordinator) Downloaded() map[string]string {
	out := make(map[string]string, len(c.record))
	for uri, path := range c.record {
		out[uri] = path
	}
	return out
}

// History returns the session record as entries in insertion order.
func (c *Coordinator) History() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, uri := range c.order {
		out = append(out, Entry{URI: uri, Path: c.record[uri]})
	}
	return out
}

// DownloadOne downloads a single resource and returns its local path. Calls
// for a URI already handled this session, or whose file is already complete on
// disk, return without fetching.
func (c *Coordinator) DownloadOne(ctx context.Context, uri string) (string, error) {
	path, _, err := c.downloadOne(ctx, uri)
	return path, err
}

func (c *Coordinator) downloadOne(ctx context.Context, uri string) (string, Outcome, error) {
	path, err := c.mapper.Map(uri)
	if err != nil {
		return "", 0, err
	}

	// Multiple logical references (e.g. byte-range fragments) can resolve to
	// the same underlying file; the in-memory record short-circuits those.
	if existing, ok := c.record[uri]; ok && existing == path {
		logger.Debugf("already downloaded %s this session", path)
		return path, OutcomeSkipped, nil
	}

	if fsutil.FileExists(path) {
		switch err := c.verifySize(ctx, uri, path); {
		case err == nil:
			c.remember(uri, path)
			logger.Debugf("file %s already exists with matching size", path)
			return path, OutcomeVerified, nil
		case errors.Is(err, pkgerrors.ErrMetadataUnavailable):
			logger.Warnf("no content length for %s, refetching", uri)
		case errors.Is(err, pkgerrors.ErrSizeMismatch):
			logger.Warnf("%v, overwriting", err)
		default:
			return "", 0, err
		}
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return "", 0, pkgerrors.Wrapf(err, "could not create directory for %s", path)
	}
	if err := c.fetch(ctx, uri, path); err != nil {
		return "", 0, err
	}

	c.remember(uri, path)
	logger.Infof("downloaded %s -> %s", uri, path)
	return path, OutcomeFetched, nil
}

// verifySize compares the file at path against the server-reported length for
// uri. It returns nil when the sizes match and an error wrapping
// ErrSizeMismatch when they do not.
func (c *Coordinator) verifySize(ctx context.Context, uri, path string) error {
	remote, err := c.client.ContentLength(ctx, uri)
	if err != nil {
		return err
	}
	local, err := fsutil.FileSize(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not stat %s", path)
	}
	if diff := remote - local; diff != 0 {
		return pkgerrors.Wrapf(pkgerrors.ErrSizeMismatch, "file %s is %d bytes off from %s", path, diff, uri)
	}
	return nil
}

// fetch streams the body for uri into the file at path, overwriting any
// existing content. A failed request aborts before the file is touched; a
// failed write may leave a truncated file behind.
func (c *Coordinator) fetch(ctx context.Context, uri, path string) error {
	body, err := c.client.Get(ctx, uri)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not fetch %s", uri)
	}
	defer func() { _ = body.Close() }()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not create %s", path)
	}

	if _, err := io.CopyBuffer(out, body, make([]byte, chunkSize)); err != nil {
		_ = out.Close()
		return pkgerrors.Wrapf(err, "could not write %s", path)
	}
	return out.Close()
}

func (c *Coordinator) remember(uri, path string) {
	if _, ok := c.record[uri]; !ok {
		c.order = append(c.order, uri)
	}
	c.record[uri] = path
}
