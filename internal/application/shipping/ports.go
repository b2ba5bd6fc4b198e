package shipping

import (
	"context"
	"time"
)

// LabelStore archives carrier label bytes. Implementations live in the
// infrastructure layer.
type LabelStore interface {
	// Put archives label bytes under the given key
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// DownloadURL generates a time-limited URL for an archived label
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Exists checks whether a label has been archived under the key
	Exists(ctx context.Context, key string) (bool, error)
}
