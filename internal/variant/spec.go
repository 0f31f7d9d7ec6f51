package variant

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Spec is a target resolution.
type Spec struct {
	Width  int
	Height int
}

// Label returns the canonical "{width}x{height}" form.
func (s Spec) Label() string {
	return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
}

// String implements fmt.Stringer with the label form.
func (s Spec) String() string { return s.Label() }

// ParseLabel parses a canonical label. Leading zeros, an upper-case X and
// non-positive dimensions are rejected so that Label() round-trips.
func ParseLabel(label string) (Spec, error) {
	w, h, ok := strings.Cut(label, "x")
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q is not a WIDTHxHEIGHT label", ErrMalformed, label)
	}
	width, err := dimension(w)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: label %q: width: %v", ErrMalformed, label, err)
	}
	height, err := dimension(h)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: label %q: height: %v", ErrMalformed, label, err)
	}
	return Spec{Width: width, Height: height}, nil
}

// IsLabel reports whether seg is a canonical label.
func IsLabel(seg string) bool {
	_, err := ParseLabel(seg)
	return err == nil
}

func dimension(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	if s[0] == '0' {
		return 0, fmt.Errorf("%q has a leading zero", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not a decimal integer", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Path is a parsed derived-object path:
//
//	<namespace>/[<subfolder>/]<WIDTH>x<HEIGHT>/<filename>
//
// Namespace carries any subfolders; File is everything after the label.
type Path struct {
	Namespace string
	File      string
	Spec      Spec
}

// SourceKey is namespace/filename.
func (p Path) SourceKey() string { return p.Namespace + "/" + p.File }

// DerivedKey is namespace/label/filename.
func (p Path) DerivedKey() string { return p.Namespace + "/" + p.Spec.Label() + "/" + p.File }

// Request returns the unit of work for this path.
func (p Path) Request() Request {
	return Request{SourceKey: p.SourceKey(), DerivedKey: p.DerivedKey(), Spec: p.Spec}
}

// Parse splits key on "/" and anchors on the first label segment after the
// first segment.
func Parse(key string) (Path, error) {
	segs := strings.Split(key, "/")
	for i := 1; i < len(segs); i++ {
		spec, err := ParseLabel(segs[i])
		if err != nil {
			continue
		}
		ns, file := segs[:i], segs[i+1:]
		if err := checkSegments(ns); err != nil {
			return Path{}, fmt.Errorf("%w: %q: namespace %v", ErrMalformed, key, err)
		}
		if len(file) == 0 {
			return Path{}, fmt.Errorf("%w: %q: no filename after %s", ErrMalformed, key, spec.Label())
		}
		if err := checkSegments(file); err != nil {
			return Path{}, fmt.Errorf("%w: %q: filename %v", ErrMalformed, key, err)
		}
		for _, s := range file {
			if IsLabel(s) {
				return Path{}, fmt.Errorf("%w: %q: nested resolution segment %s", ErrMalformed, key, s)
			}
		}
		return Path{
			Namespace: strings.Join(ns, "/"),
			File:      strings.Join(file, "/"),
			Spec:      spec,
		}, nil
	}
	return Path{}, fmt.Errorf("%w: %q: no resolution segment", ErrMalformed, key)
}

func checkSegments(segs []string) error {
	for _, s := range segs {
		if s == "" || s == "." || s == ".." {
			return fmt.Errorf("has empty or relative segment")
		}
	}
	return nil
}

// Request is the unit of work handed to the generator.
type Request struct {
	SourceKey  string
	DerivedKey string
	Spec       Spec
}

// Source identifies an original, non-derived object.
type Source struct {
	Key string
}

// Namespace is the directory holding the source and its label folders.
func (s Source) Namespace() string { return path.Dir(s.Key) }

// Basename is the last path segment of the source key.
func (s Source) Basename() string { return path.Base(s.Key) }

// DerivedKey returns the key the variant of s at spec is stored under.
func (s Source) DerivedKey(spec Spec) string {
	return s.Namespace() + "/" + spec.Label() + "/" + s.Basename()
}

// RequestFor builds the request generating s at spec.
func (s Source) RequestFor(spec Spec) Request {
	return Request{SourceKey: s.Key, DerivedKey: s.DerivedKey(spec), Spec: spec}
}

// NewSource validates key as a source key: it needs a namespace and a
// filename and must not already be a derived key.
func NewSource(key string) (Source, error) {
	dir, file := path.Split(key)
	if dir == "" || file == "" {
		return Source{}, fmt.Errorf("%w: %q: source keys need a namespace and a filename", ErrMalformed, key)
	}
	if err := checkSegments(strings.Split(key, "/")); err != nil {
		return Source{}, fmt.Errorf("%w: %q: %v", ErrMalformed, key, err)
	}
	if IsDerivedKey(key) {
		return Source{}, fmt.Errorf("%w: %q is a derived key", ErrMalformed, key)
	}
	return Source{Key: key}, nil
}

// Derived is a stored resized copy.
type Derived struct {
	Key         string
	SourceKey   string
	Spec        Spec
	ContentType string
	Width       int
	Height      int
	Size        int
}
