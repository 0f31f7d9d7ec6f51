package trigger

import (
	"errors"
	"testing"

	"github.com/yourorg/image-variants/internal/variant"
)

var def = variant.Spec{Width: 800, Height: 600}

func TestClassifyDirect(t *testing.T) {
	c := NewClassifier(def)
	out := c.Classify(Trigger{Direct: &DirectRequest{Key: "C000064/800x600/a.jpg"}})
	if out.Kind != Accepted {
		t.Fatalf("kind=%v reason=%v", out.Kind, out.Reason)
	}
	if out.Request.SourceKey != "C000064/a.jpg" || out.Request.DerivedKey != "C000064/800x600/a.jpg" {
		t.Fatalf("request %+v", out.Request)
	}

	out = c.Classify(Trigger{Direct: &DirectRequest{Key: "C000064/a.jpg"}})
	if out.Kind != Rejected || !errors.Is(out.Reason, variant.ErrMalformed) {
		t.Fatalf("kind=%v reason=%v; want rejected malformed", out.Kind, out.Reason)
	}
}

func TestClassifyStorage(t *testing.T) {
	c := NewClassifier(def)
	cases := []struct {
		name string
		ev   StorageChange
		kind Kind
	}{
		{"put source", StorageChange{Kind: EventPut, Key: "ns/file.jpg"}, Accepted},
		{"put derived suppressed", StorageChange{Kind: EventPut, Key: "ns/800x600/file.jpg"}, Ignored},
		{"put other label suppressed", StorageChange{Kind: EventPut, Key: "ns/sub/123x45/file.jpg"}, Ignored},
		{"put folder placeholder", StorageChange{Kind: EventPut, Key: "ns/"}, Ignored},
		{"put without namespace", StorageChange{Kind: EventPut, Key: "file.jpg"}, Rejected},
		{"delete source", StorageChange{Kind: EventDelete, Key: "ns/file.jpg"}, DeleteCascade},
		{"delete derived", StorageChange{Kind: EventDelete, Key: "ns/800x600/file.jpg"}, Ignored},
		{"other event", StorageChange{Kind: EventOther, Key: "ns/file.jpg"}, Rejected},
	}
	for _, tc := range cases {
		ev := tc.ev
		out := c.Classify(Trigger{Storage: &ev})
		if out.Kind != tc.kind {
			t.Fatalf("%s: kind=%v reason=%v; want %v", tc.name, out.Kind, out.Reason, tc.kind)
		}
		if !out.Storage {
			t.Fatalf("%s: outcome not marked as storage", tc.name)
		}
	}

	out := c.Classify(Trigger{Storage: &StorageChange{Kind: EventPut, Key: "ns/file.jpg"}})
	if out.Request.DerivedKey != "ns/800x600/file.jpg" || out.Request.Spec != def {
		t.Fatalf("default request %+v", out.Request)
	}
	out = c.Classify(Trigger{Storage: &StorageChange{Kind: EventDelete, Key: "ns/file.jpg"}})
	if out.Source != (variant.Source{Key: "ns/file.jpg"}) {
		t.Fatalf("cascade source %+v", out.Source)
	}
	out = c.Classify(Trigger{Storage: &StorageChange{Kind: EventOther, Key: "ns/file.jpg"}})
	if !errors.Is(out.Reason, variant.ErrCannotExtract) {
		t.Fatalf("other event reason=%v", out.Reason)
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := NewClassifier(def)
	for _, tr := range []Trigger{
		{},
		{Direct: &DirectRequest{}},
		{Storage: &StorageChange{Kind: EventPut}},
	} {
		out := c.Classify(tr)
		if out.Kind != Rejected || !errors.Is(out.Reason, variant.ErrCannotExtract) {
			t.Fatalf("kind=%v reason=%v; want rejected cannot-extract", out.Kind, out.Reason)
		}
	}
}

func TestClassifyDirectWins(t *testing.T) {
	c := NewClassifier(def)
	out := c.Classify(Trigger{
		Direct:  &DirectRequest{Key: "ns/400x300/a.jpg"},
		Storage: &StorageChange{Kind: EventDelete, Key: "ns/a.jpg"},
	})
	if out.Kind != Accepted || out.Storage {
		t.Fatalf("kind=%v storage=%v; want direct accepted", out.Kind, out.Storage)
	}
	if out.Request.Spec.Label() != "400x300" {
		t.Fatalf("label %s", out.Request.Spec.Label())
	}
}
