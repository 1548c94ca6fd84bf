package records

import (
	"maps"
	"slices"
	"strings"
)

// Evidence maps an attribute name to the set of values two records share
// under that name.
type Evidence map[string]map[string]struct{}

// Add records value as shared under name.
func (e Evidence) Add(name, value string) {
	set, ok := e[name]
	if !ok {
		set = make(map[string]struct{})
		e[name] = set
	}
	set[value] = struct{}{}
}

// Names returns the attribute names with at least one shared value, sorted.
func (e Evidence) Names() []string {
	return slices.Sorted(maps.Keys(e))
}

// Values returns the shared values under name, sorted.
func (e Evidence) Values(name string) []string {
	return slices.Sorted(maps.Keys(e[name]))
}

// Count returns the number of shared values across all names.
func (e Evidence) Count() int {
	n := 0
	for _, set := range e {
		n += len(set)
	}
	return n
}

// Clone returns a deep copy.
func (e Evidence) Clone() Evidence {
	out := make(Evidence, len(e))
	for name, set := range e {
		out[name] = maps.Clone(set)
	}
	return out
}

// Map returns the evidence as name → sorted values.
func (e Evidence) Map() map[string][]string {
	out := make(map[string][]string, len(e))
	for name := range e {
		out[name] = e.Values(name)
	}
	return out
}

// String renders the evidence deterministically, e.g. "code=[X] ssn=[1 2]".
func (e Evidence) String() string {
	var b strings.Builder
	for i, name := range e.Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString("=[")
		b.WriteString(strings.Join(e.Values(name), " "))
		b.WriteByte(']')
	}
	return b.String()
}
