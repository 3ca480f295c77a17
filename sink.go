package lake

import (
	"context"
	"io"
)

// Sink is the destination for output files. Implementations write under
// some root (an S3 bucket/prefix or a local directory); keys are
// slash-separated paths relative to that root.
type Sink interface {
	// Put writes the contents of body at key, replacing any existing
	// object.
	Put(ctx context.Context, key string, body io.Reader) error
	// List returns the keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Copy duplicates the object at srcKey to dstKey.
	Copy(ctx context.Context, srcKey, dstKey string) error
	// Delete removes the given keys. Keys which do not exist are not an
	// error.
	Delete(ctx context.Context, keys ...string) error
}
