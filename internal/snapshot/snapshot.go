package snapshot

import "context"

// Store is the durable key/value snapshot store the session core uses for
// cold-start restoration. Values are opaque JSON blobs. A missing key is
// reported as (nil, nil), not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
