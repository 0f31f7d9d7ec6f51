package trigger

import (
	"fmt"
	"strings"

	"github.com/yourorg/image-variants/internal/variant"
)

// EventKind is the kind of storage change.
type EventKind int

const (
	EventOther EventKind = iota
	EventPut
	EventDelete
)

func (k EventKind) String() string {
	switch k {
	case EventPut:
		return "put"
	case EventDelete:
		return "delete"
	default:
		return "other"
	}
}

// DirectRequest is a synchronous client request for a derived key.
type DirectRequest struct {
	Key string
}

// StorageChange is a fire-and-forget store notification.
type StorageChange struct {
	Kind EventKind
	Key  string
}

// Trigger is one inbound invocation. Either shape may be nil; when both are
// set the direct request wins because it must always be answered.
type Trigger struct {
	Direct  *DirectRequest
	Storage *StorageChange
}

// Kind classifies an Outcome.
type Kind int

const (
	Rejected Kind = iota
	Accepted
	DeleteCascade
	Ignored
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case DeleteCascade:
		return "delete_cascade"
	case Ignored:
		return "ignored"
	default:
		return "rejected"
	}
}

// Outcome is the classifier result. Request is set for Accepted, Source for
// DeleteCascade and Reason for Rejected.
type Outcome struct {
	Kind    Kind
	Request variant.Request
	Source  variant.Source
	Reason  error
	// Key is the raw key the trigger carried, kept for diagnostics.
	Key string
	// Storage is true when the outcome came from a storage notification.
	Storage bool
}

// Classifier turns triggers into outcomes. It is pure and safe for concurrent use.
type Classifier struct {
	// Default is the resolution generated for newly observed sources.
	Default variant.Spec
}

// NewClassifier returns a classifier generating def on storage Put events.
func NewClassifier(def variant.Spec) Classifier {
	return Classifier{Default: def}
}

// Classify maps t to an Outcome.
func (c Classifier) Classify(t Trigger) Outcome {
	if t.Direct != nil && t.Direct.Key != "" {
		return c.direct(t.Direct.Key)
	}
	if t.Storage != nil && t.Storage.Key != "" {
		return c.storage(*t.Storage)
	}
	return Outcome{Kind: Rejected, Reason: variant.ErrCannotExtract}
}

func (c Classifier) direct(key string) Outcome {
	p, err := variant.Parse(key)
	if err != nil {
		return Outcome{Kind: Rejected, Reason: err, Key: key}
	}
	return Outcome{Kind: Accepted, Request: p.Request(), Key: key}
}

func (c Classifier) storage(ev StorageChange) Outcome {
	out := Outcome{Key: ev.Key, Storage: true}
	switch ev.Kind {
	case EventPut, EventDelete:
	default:
		out.Kind = Rejected
		out.Reason = fmt.Errorf("%w: unsupported storage event %s for %q", variant.ErrCannotExtract, ev.Kind, ev.Key)
		return out
	}
	// Folder placeholder objects and variants never start work: a variant's
	// own notification would otherwise loop back into generation, and
	// removing a variant must not cascade.
	if strings.HasSuffix(ev.Key, "/") || variant.IsDerivedKey(ev.Key) {
		out.Kind = Ignored
		return out
	}
	src, err := variant.NewSource(ev.Key)
	if err != nil {
		out.Kind = Rejected
		out.Reason = err
		return out
	}
	if ev.Kind == EventDelete {
		out.Kind = DeleteCascade
		out.Source = src
		return out
	}
	out.Kind = Accepted
	out.Request = src.RequestFor(c.Default)
	return out
}
