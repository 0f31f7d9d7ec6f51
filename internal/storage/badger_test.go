package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func openMem(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(":memory:")
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerGetPut(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	if _, err := s.Get(ctx, "ns/a.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, "ns/a.jpg", []byte("abc"), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}
	obj, err := s.Get(ctx, "ns/a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(obj.Body) != "abc" || obj.ContentType != "image/jpeg" {
		t.Fatalf("object %+v", obj)
	}
	if err := s.Put(ctx, "ns/a.jpg", []byte("xyz"), "image/png"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	obj, _ = s.Get(ctx, "ns/a.jpg")
	if string(obj.Body) != "xyz" || obj.ContentType != "image/png" {
		t.Fatalf("overwrite lost: %+v", obj)
	}
}

func TestBadgerListDelimiter(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	for _, k := range []string{"ns/a.jpg", "ns/b.jpg", "ns/400x300/a.jpg", "ns/800x600/a.jpg", "ns/800x600/b.jpg", "other/a.jpg"} {
		if err := s.Put(ctx, k, []byte(k), "text/plain"); err != nil {
			t.Fatal(err)
		}
	}
	page, err := s.List(ctx, ListInput{Prefix: "ns/", Delimiter: "/"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if fmt.Sprint(page.CommonPrefixes) != "[ns/400x300/ ns/800x600/]" {
		t.Fatalf("prefixes %v", page.CommonPrefixes)
	}
	if fmt.Sprint(page.Keys) != "[ns/a.jpg ns/b.jpg]" {
		t.Fatalf("keys %v", page.Keys)
	}
	if page.Truncated {
		t.Fatalf("unexpected truncation")
	}
}

func TestBadgerListPagination(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	want := map[string]bool{}
	for i := 0; i < 25; i++ {
		k := fmt.Sprintf("ns/800x600/img-%02d.jpg", i)
		want[k] = true
		if err := s.Put(ctx, k, []byte("x"), "image/jpeg"); err != nil {
			t.Fatal(err)
		}
	}
	pages := 0
	seen := map[string]bool{}
	err := Walk(ctx, s, ListInput{Prefix: "ns/800x600/", MaxKeys: 10}, func(p ListPage) error {
		pages++
		for _, k := range p.Keys {
			if seen[k] {
				t.Fatalf("key %s listed twice", k)
			}
			seen[k] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if pages != 3 || len(seen) != len(want) {
		t.Fatalf("pages=%d keys=%d", pages, len(seen))
	}

	// Prefix pagination with a delimiter.
	for i := 0; i < 5; i++ {
		_ = s.Put(ctx, fmt.Sprintf("ns/%dx%d/a.jpg", i+1, i+1), []byte("x"), "image/jpeg")
	}
	var prefixes []string
	err = Walk(ctx, s, ListInput{Prefix: "ns/", Delimiter: "/", MaxKeys: 2}, func(p ListPage) error {
		prefixes = append(prefixes, p.CommonPrefixes...)
		return nil
	})
	if err != nil {
		t.Fatalf("walk prefixes: %v", err)
	}
	if len(prefixes) != 6 {
		t.Fatalf("prefixes %v", prefixes)
	}
}

func TestBadgerDelete(t *testing.T) {
	ctx := context.Background()
	s := openMem(t)
	_ = s.Put(ctx, "ns/a.jpg", []byte("a"), "image/jpeg")
	if err := s.Delete(ctx, []string{"ns/a.jpg", "ns/missing.jpg"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "ns/a.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted, got %v", err)
	}
	if err := s.Delete(ctx, make([]string, MaxDeleteBatch+1)); err == nil {
		t.Fatalf("expected batch limit error")
	}
}

func TestOpenBadgerBackend(t *testing.T) {
	s, closeFn, err := Open(context.Background(), OpenOptions{Backend: BackendBadger, BadgerDir: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if err := s.Put(context.Background(), "ns/a.jpg", []byte("x"), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := Open(context.Background(), OpenOptions{Backend: "ftp"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
