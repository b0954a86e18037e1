package extractor

import (
	"context"
	"errors"
)

// ErrNoMedia is returned when an extractor finished without producing a file.
var ErrNoMedia = errors.New("no media found")

// ErrMediaTooLarge is returned when a download exceeds what a bot may upload.
var ErrMediaTooLarge = errors.New("media too large")

// Extractor resolves a media page URL to a downloaded file.
type Extractor interface {
	// Extract downloads the best available media behind url into dir and
	// returns the path of the resulting file. Callers own dir and remove it.
	Extract(ctx context.Context, url, dir string) (path string, err error)
}
