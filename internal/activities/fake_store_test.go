package activities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yourorg/image-variants/internal/storage"
)

// memStore is an in-memory ObjectStore with S3-like listing and call counts.
type memStore struct {
	mu      sync.Mutex
	objects map[string]storage.Object
	calls   map[string]int
	puts    []string

	getErr    error
	putErr    error
	listErr   error
	deleteErr error
	// listErrAfter fails List after this many successful calls when > 0.
	listErrAfter int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]storage.Object{}, calls: map[string]int{}}
}

func (m *memStore) total() int {
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *memStore) Get(ctx context.Context, key string) (storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++
	if m.getErr != nil {
		return storage.Object{}, m.getErr
	}
	o, ok := m.objects[key]
	if !ok {
		return storage.Object{}, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return o, nil
}

func (m *memStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["put"]++
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = storage.Object{Body: append([]byte(nil), body...), ContentType: contentType}
	m.puts = append(m.puts, key)
	return nil
}

func (m *memStore) List(ctx context.Context, in storage.ListInput) (storage.ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	if m.listErr != nil {
		return storage.ListPage{}, m.listErr
	}
	if m.listErrAfter > 0 && m.calls["list"] > m.listErrAfter {
		return storage.ListPage{}, errors.New("list unavailable")
	}
	var entries []string
	seen := map[string]bool{}
	for k := range m.objects {
		if !strings.HasPrefix(k, in.Prefix) {
			continue
		}
		e := k
		if in.Delimiter != "" {
			if i := strings.Index(k[len(in.Prefix):], in.Delimiter); i >= 0 {
				e = k[:len(in.Prefix)+i+len(in.Delimiter)]
			}
		}
		if !seen[e] {
			seen[e] = true
			entries = append(entries, e)
		}
	}
	sort.Strings(entries)
	start := 0
	if in.ContinuationToken != "" {
		start = sort.SearchStrings(entries, in.ContinuationToken)
		if start < len(entries) && entries[start] == in.ContinuationToken {
			start++
		}
	}
	max := int(in.MaxKeys)
	if max <= 0 {
		max = 1000
	}
	var page storage.ListPage
	end := min(start+max, len(entries))
	for _, e := range entries[start:end] {
		if in.Delimiter != "" && strings.HasSuffix(e, in.Delimiter) && e != in.Prefix {
			page.CommonPrefixes = append(page.CommonPrefixes, e)
		} else {
			page.Keys = append(page.Keys, e)
		}
	}
	if end < len(entries) {
		page.Truncated = true
		page.NextContinuationToken = entries[end-1]
	}
	return page, nil
}

func (m *memStore) Delete(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if len(keys) > storage.MaxDeleteBatch {
		return errors.New("batch too large")
	}
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}
