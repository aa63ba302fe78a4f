package domain

import (
	"context"
	"io"
)

// AssetStore stores uploaded binary images and returns stable public URLs.
// Implementations must honor ctx cancellation; a timed-out upload returns an
// error and no URL.
type AssetStore interface {
	UploadImage(ctx context.Context, image io.Reader, contentType string) (url string, err error)
}
