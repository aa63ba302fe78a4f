// Package assets implements the Asset Store boundary: binary image uploads
// that return stable public URLs.
package assets

import (
	"log"

	"prepdesk/internal/domain"

	"prepdesk/config"
)

// NewStore creates an asset store from config. Provider "s3" uploads to AWS
// S3; "noop" or unknown uses a no-op store that only logs.
func NewStore(cfg config.AssetConfig) (domain.AssetStore, error) {
	switch cfg.Provider {
	case "s3":
		return newS3Store(cfg)
	case "noop":
		return &noopStore{}, nil
	default:
		log.Printf("[ASSETS] Unknown asset provider %q, using noop", cfg.Provider)
		return &noopStore{}, nil
	}
}
