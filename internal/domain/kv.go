package domain

import "context"

// KV is durable client-side key/value storage.
// Get reports found=false with a nil error when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
