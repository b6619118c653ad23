package ports

import "context"

// StateStore persists serialized session state across restarts. Get returns
// (nil, nil) for a missing key.
type StateStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
