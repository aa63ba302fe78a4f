package assets

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"
)

// noopStore discards uploads and returns synthetic URLs. Development only.
type noopStore struct{}

func (n *noopStore) UploadImage(ctx context.Context, image io.Reader, contentType string) (string, error) {
	size, err := io.Copy(io.Discard, image)
	if err != nil {
		return "", err
	}
	url := "noop://assets/" + uuid.NewString()
	log.Println("[ASSETS] Image would be uploaded (noop)", "bytes", size, "content_type", contentType, "url", url)
	return url, nil
}
