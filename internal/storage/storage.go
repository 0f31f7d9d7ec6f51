package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// MaxDeleteBatch is the largest number of keys a single Delete call accepts.
const MaxDeleteBatch = 1000

// Object is a stored object body with its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// ListInput selects one listing page.
type ListInput struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int32
}

// ListPage is one page of a listing. With a delimiter, keys containing it
// after the prefix are rolled up into CommonPrefixes.
type ListPage struct {
	Keys                  []string
	CommonPrefixes        []string
	NextContinuationToken string
	Truncated             bool
}

// ObjectStore is the object store capability consumed by the generator and
// the deletion cascade. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Get returns the object at key or ErrNotFound.
	Get(ctx context.Context, key string) (Object, error)
	// Put writes the whole body atomically, overwriting any existing object.
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// List returns one page of keys and common prefixes.
	List(ctx context.Context, in ListInput) (ListPage, error)
	// Delete removes up to MaxDeleteBatch keys. Missing keys are not an error.
	Delete(ctx context.Context, keys []string) error
}

// Walk calls fn for every page of the listing described by in, following
// continuation tokens until the listing is exhausted.
func Walk(ctx context.Context, s ObjectStore, in ListInput, fn func(ListPage) error) error {
	for {
		page, err := s.List(ctx, in)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if !page.Truncated || page.NextContinuationToken == "" {
			return nil
		}
		in.ContinuationToken = page.NextContinuationToken
	}
}
