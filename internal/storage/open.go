package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendS3     = "s3"
	BackendBadger = "badger"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend   string
	BadgerDir string
	S3        S3Options
}

// Open returns the configured store and a function releasing it.
func Open(ctx context.Context, opts OpenOptions) (ObjectStore, func() error, error) {
	switch opts.Backend {
	case BackendBadger:
		b, err := OpenBadger(opts.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case BackendS3, "":
		s, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
