package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/yourorg/image-variants/internal/variant"
)

// Envelope is the invocation document accepted by the gateway adapter. It may
// carry query parameters of a direct request, storage records, or both.
type Envelope struct {
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Records               []Record          `json:"Records,omitempty"`

	// recordsErr is set when Records was an array that did not decode.
	recordsErr error
}

// UnmarshalJSON decodes both shapes leniently: a field of the wrong type
// counts as absent, so a usable direct request survives a broken Records
// value (gateways send "Records": "" for plain requests).
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw struct {
		QueryStringParameters json.RawMessage `json:"queryStringParameters"`
		Records               json.RawMessage `json:"Records"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Envelope{}
	if q := bytes.TrimSpace(raw.QueryStringParameters); len(q) > 0 && q[0] == '{' {
		var params map[string]string
		if err := json.Unmarshal(q, &params); err == nil {
			e.QueryStringParameters = params
		}
	}
	if r := bytes.TrimSpace(raw.Records); len(r) > 0 && r[0] == '[' {
		if err := json.Unmarshal(r, &e.Records); err != nil {
			e.Records = nil
			e.recordsErr = fmt.Errorf("%w: records: %v", variant.ErrCannotExtract, err)
		}
	}
	return nil
}

// Record is one S3 event notification record.
type Record struct {
	EventSource string `json:"eventSource,omitempty"`
	EventName   string `json:"eventName"`
	S3          struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size,omitempty"`
		} `json:"object"`
	} `json:"s3"`
}

// KindFromEventName maps S3 event names such as "ObjectCreated:Put".
func KindFromEventName(name string) EventKind {
	switch {
	case strings.HasPrefix(name, "ObjectCreated:"):
		return EventPut
	case strings.HasPrefix(name, "ObjectRemoved:"):
		return EventDelete
	default:
		return EventOther
	}
}

// DecodeEnvelope parses an invocation document.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", variant.ErrCannotExtract, err)
	}
	return env, nil
}

// Trigger extracts the trigger. Only the first storage record is used; the
// number of ignored records is returned alongside. When a direct request is
// present an undecodable storage record is dropped instead of failing, since
// the direct shape wins anyway.
func (e Envelope) Trigger() (Trigger, int, error) {
	var t Trigger
	if k := e.QueryStringParameters["key"]; k != "" {
		t.Direct = &DirectRequest{Key: k}
	}
	if e.recordsErr != nil {
		if t.Direct != nil {
			return t, 0, nil
		}
		return Trigger{}, 0, e.recordsErr
	}
	if len(e.Records) == 0 {
		return t, 0, nil
	}
	sc, err := e.Records[0].Change()
	if err != nil {
		if t.Direct != nil {
			return t, len(e.Records), nil
		}
		return Trigger{}, 0, err
	}
	t.Storage = &sc
	return t, len(e.Records) - 1, nil
}

// Change converts the record. S3 URL-encodes keys in notifications.
func (r Record) Change() (StorageChange, error) {
	key, err := url.QueryUnescape(r.S3.Object.Key)
	if err != nil {
		return StorageChange{}, fmt.Errorf("%w: object key %q: %v", variant.ErrCannotExtract, r.S3.Object.Key, err)
	}
	return StorageChange{Kind: KindFromEventName(r.EventName), Key: key}, nil
}
