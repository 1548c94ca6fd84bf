package sources

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer rewrites an attribute value before it is indexed. Matching
// stays exact on the normalized value.
type Normalizer func(string) string

// Identity leaves values unchanged.
func Identity(s string) string { return s }

// Trim removes leading and trailing white space.
func Trim(s string) string { return strings.TrimSpace(s) }

// Fold applies Unicode case folding.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Collapse replaces runs of white space with a single space.
func Collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// Chain applies ns in order.
func Chain(ns ...Normalizer) Normalizer {
	return func(s string) string {
		for _, n := range ns {
			s = n(s)
		}
		return s
	}
}

// ParseNormalizers maps names (trim, fold, collapse) to a chained
// normalizer.
func ParseNormalizers(names ...string) (Normalizer, error) {
	ns := make([]Normalizer, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "trim":
			ns = append(ns, Trim)
		case "fold":
			ns = append(ns, Fold)
		case "collapse":
			ns = append(ns, Collapse)
		default:
			return nil, fmt.Errorf("unknown normalizer %q", name)
		}
	}
	if len(ns) == 0 {
		return Identity, nil
	}
	return Chain(ns...), nil
}
