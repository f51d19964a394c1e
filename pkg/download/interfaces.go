//go:generate mockgen -destination=./mocks/download.go . Client

package download

import (
	"context"
	"io"
)

// Client is the HTTP transport used by the Coordinator. Implementations own
// connection pooling and retry-with-backoff; the Coordinator only ever sees
// the final outcome of a request.
type Client interface {
	// ContentLength issues a metadata-only (HEAD) request for uri and returns
	// the server-reported byte size. When the server omits a length indicator
	// the returned error wraps errors.ErrMetadataUnavailable.
	ContentLength(ctx context.Context, uri string) (int64, error)

	// Get issues a streaming GET request for uri and returns the response
	// body. The caller must close the returned reader.
	Get(ctx context.Context, uri string) (io.ReadCloser, error)
}
