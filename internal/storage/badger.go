package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements ObjectStore on a local badger database. It backs
// offline development and tests with the same listing semantics as S3.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a store at dir; ":memory:" selects an
// in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	var opts badger.Options
	if dir == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

// Values are stored as one length byte, the content type, then the body.
func encodeValue(body []byte, contentType string) ([]byte, error) {
	if len(contentType) > 255 {
		return nil, fmt.Errorf("badger: content type too long")
	}
	v := make([]byte, 0, 1+len(contentType)+len(body))
	v = append(v, byte(len(contentType)))
	v = append(v, contentType...)
	return append(v, body...), nil
}

func decodeValue(v []byte) (Object, error) {
	if len(v) == 0 || int(v[0]) > len(v)-1 {
		return Object{}, errors.New("badger: corrupt value")
	}
	n := int(v[0])
	return Object{ContentType: string(v[1 : 1+n]), Body: v[1+n:]}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (Object, error) {
	var obj Object
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		obj, err = decodeValue(v)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Object{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return obj, err
}

func (s *BadgerStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return errors.New("badger: empty key")
	}
	v, err := encodeValue(body, contentType)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), v)
	})
}

// List walks keys in lexical order. The continuation token records the last
// key ("k:") or common prefix ("p:") returned on the previous page.
func (s *BadgerStore) List(ctx context.Context, in ListInput) (ListPage, error) {
	max := int(in.MaxKeys)
	if max <= 0 || max > MaxDeleteBatch {
		max = MaxDeleteBatch
	}
	after, afterPrefix := "", false
	switch {
	case in.ContinuationToken == "":
	case strings.HasPrefix(in.ContinuationToken, "k:"):
		after = in.ContinuationToken[2:]
	case strings.HasPrefix(in.ContinuationToken, "p:"):
		after, afterPrefix = in.ContinuationToken[2:], true
	default:
		return ListPage{}, fmt.Errorf("badger: invalid continuation token %q", in.ContinuationToken)
	}

	var page ListPage
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(in.Prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		var last string
		for it.Seek([]byte(maxString(in.Prefix, after))); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if after != "" {
				if afterPrefix && strings.HasPrefix(key, after) {
					continue
				}
				if !afterPrefix && key <= after {
					continue
				}
			}
			token, entry, rolled := "k:"+key, key, false
			if in.Delimiter != "" {
				rest := key[len(in.Prefix):]
				if i := strings.Index(rest, in.Delimiter); i >= 0 {
					entry = in.Prefix + rest[:i+len(in.Delimiter)]
					token, rolled = "p:"+entry, true
				}
			}
			if rolled && token == last {
				continue
			}
			if len(page.Keys)+len(page.CommonPrefixes) == max {
				page.Truncated = true
				page.NextContinuationToken = last
				return nil
			}
			if rolled {
				page.CommonPrefixes = append(page.CommonPrefixes, entry)
			} else {
				page.Keys = append(page.Keys, entry)
			}
			last = token
		}
		return nil
	})
	if err != nil {
		return ListPage{}, err
	}
	return page, nil
}

func (s *BadgerStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) > MaxDeleteBatch {
		return fmt.Errorf("badger: %d keys exceeds delete batch limit %d", len(keys), MaxDeleteBatch)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func maxString(a, b string) string {
	if a > b {
		return a
	}
	return b
}
