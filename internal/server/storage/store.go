// Package storage handles post image persistence in S3-compatible object
// storage.
package storage

import (
	"context"
	"io"
)

// ImageStore uploads an image and returns its public URL. Post creation and
// editing call Upload before touching the database; an upload failure aborts
// the request with no partial write.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
