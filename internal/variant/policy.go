package variant

import (
	"fmt"
	"sort"
	"strings"
)

// AllowedSet is the immutable resolution whitelist. The zero value allows
// every label.
type AllowedSet struct {
	labels map[string]struct{}
}

// NewAllowedSet builds a whitelist from canonical labels.
func NewAllowedSet(labels ...string) (AllowedSet, error) {
	if len(labels) == 0 {
		return AllowedSet{}, nil
	}
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, err := ParseLabel(l); err != nil {
			return AllowedSet{}, err
		}
		m[l] = struct{}{}
	}
	return AllowedSet{labels: m}, nil
}

// ParseAllowedSet parses a comma separated list. Blank input means unrestricted.
func ParseAllowedSet(raw string) (AllowedSet, error) {
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	set, err := NewAllowedSet(labels...)
	if err != nil {
		return AllowedSet{}, fmt.Errorf("allowed resolutions: %w", err)
	}
	return set, nil
}

// IsAllowed reports whether label passes the whitelist.
func (a AllowedSet) IsAllowed(label string) bool {
	if len(a.labels) == 0 {
		return true
	}
	_, ok := a.labels[label]
	return ok
}

// Unrestricted reports whether the set allows everything.
func (a AllowedSet) Unrestricted() bool { return len(a.labels) == 0 }

// Labels returns the members in sorted order.
func (a AllowedSet) Labels() []string {
	out := make([]string, 0, len(a.labels))
	for l := range a.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// IsAllowed is the free-function form of AllowedSet.IsAllowed.
func IsAllowed(label string, whitelist AllowedSet) bool { return whitelist.IsAllowed(label) }
