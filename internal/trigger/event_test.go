package trigger

import "testing"

func TestDecodeEnvelopeRecords(t *testing.T) {
	body := []byte(`{"Records":[
		{"eventSource":"aws:s3","eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"b"},"object":{"key":"C000064/my+photo%281%29.jpg"}}},
		{"eventName":"ObjectRemoved:Delete","s3":{"object":{"key":"C000064/other.jpg"}}}
	]}`)
	env, err := DecodeEnvelope(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tr, dropped, err := env.Trigger()
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("dropped=%d; want 1", dropped)
	}
	if tr.Direct != nil || tr.Storage == nil {
		t.Fatalf("unexpected shape %+v", tr)
	}
	if tr.Storage.Kind != EventPut || tr.Storage.Key != "C000064/my photo(1).jpg" {
		t.Fatalf("storage change %+v", *tr.Storage)
	}
}

func TestDecodeEnvelopeDirect(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"queryStringParameters":{"key":"ns/800x600/a.jpg"},"Records":[{"eventName":"ObjectRemoved:Delete","s3":{"object":{"key":"ns/a.jpg"}}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	tr, _, err := env.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direct == nil || tr.Direct.Key != "ns/800x600/a.jpg" {
		t.Fatalf("direct %+v", tr.Direct)
	}
	if out := NewClassifier(def).Classify(tr); out.Kind != Accepted || out.Storage {
		t.Fatalf("direct shape should take precedence, got %v", out.Kind)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`{`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	env, err := DecodeEnvelope([]byte(`{"Records":[{"eventName":"ObjectCreated:Put","s3":{"object":{"key":"ns/%zz.jpg"}}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.Trigger(); err == nil {
		t.Fatalf("expected error for bad escape")
	}
}

func TestDecodeEnvelopeDirectSurvivesBadRecords(t *testing.T) {
	bodies := map[string]string{
		"bad escape":    `{"queryStringParameters":{"key":"ns/800x600/a.jpg"},"Records":[{"eventName":"ObjectCreated:Put","s3":{"object":{"key":"ns/%zz.jpg"}}}]}`,
		"empty string":  `{"queryStringParameters":{"key":"ns/800x600/a.jpg"},"Records":""}`,
		"null":          `{"queryStringParameters":{"key":"ns/800x600/a.jpg"},"Records":null}`,
		"wrong element": `{"queryStringParameters":{"key":"ns/800x600/a.jpg"},"Records":[42]}`,
	}
	for name, body := range bodies {
		env, err := DecodeEnvelope([]byte(body))
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		tr, _, err := env.Trigger()
		if err != nil {
			t.Fatalf("%s: trigger: %v", name, err)
		}
		if tr.Storage != nil {
			t.Fatalf("%s: storage shape kept: %+v", name, *tr.Storage)
		}
		if out := NewClassifier(def).Classify(tr); out.Kind != Accepted {
			t.Fatalf("%s: got %v; want accepted", name, out.Kind)
		}
	}
}

func TestDecodeEnvelopeNoShape(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"queryStringParameters":"","Records":""}`))
	if err != nil {
		t.Fatal(err)
	}
	tr, _, err := env.Trigger()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direct != nil || tr.Storage != nil {
		t.Fatalf("unexpected shape %+v", tr)
	}

	env, err = DecodeEnvelope([]byte(`{"Records":[42]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.Trigger(); err == nil {
		t.Fatal("expected error for undecodable record without a direct request")
	}
}

func TestKindFromEventName(t *testing.T) {
	cases := map[string]EventKind{
		"ObjectCreated:Put":                     EventPut,
		"ObjectCreated:CompleteMultipartUpload": EventPut,
		"ObjectRemoved:Delete":                  EventDelete,
		"ObjectRemoved:DeleteMarkerCreated":     EventDelete,
		"ObjectRestore:Post":                    EventOther,
		"":                                      EventOther,
	}
	for in, want := range cases {
		if got := KindFromEventName(in); got != want {
			t.Fatalf("KindFromEventName(%q)=%v; want %v", in, got, want)
		}
	}
}
