package records

import (
	"maps"
	"slices"
)

// AttributeSet maps a fixed set of declared attribute names to sets of
// string values. Values added under an undeclared name are dropped.
type AttributeSet struct {
	values map[string]map[string]struct{}
}

// NewAttributeSet declares the attribute names the set accepts.
func NewAttributeSet(names ...string) *AttributeSet {
	s := &AttributeSet{values: make(map[string]map[string]struct{}, len(names))}
	for _, n := range names {
		if _, ok := s.values[n]; !ok {
			s.values[n] = make(map[string]struct{})
		}
	}
	return s
}

// Declared reports whether name was declared.
func (s *AttributeSet) Declared(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the declared names in sorted order.
func (s *AttributeSet) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Add inserts values under name and reports whether name is declared.
func (s *AttributeSet) Add(name string, values ...string) bool {
	set, ok := s.values[name]
	if !ok {
		return false
	}
	for _, v := range values {
		set[v] = struct{}{}
	}
	return true
}

// Values returns the sorted values held under name. The second result is
// false when name was never declared.
func (s *AttributeSet) Values(name string) ([]string, bool) {
	set, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return slices.Sorted(maps.Keys(set)), true
}

// Has reports whether value is held under name.
func (s *AttributeSet) Has(name, value string) bool {
	_, ok := s.values[name][value]
	return ok
}

// Len returns the total number of values across all names.
func (s *AttributeSet) Len() int {
	n := 0
	for _, set := range s.values {
		n += len(set)
	}
	return n
}

// With is a chaining form of Add for building fixtures.
func (s *AttributeSet) With(name string, values ...string) *AttributeSet {
	s.Add(name, values...)
	return s
}
