package bucketizer

import (
	"fmt"
	"strings"
)

// Cardinality classifies a bucket by how many provider1 and provider2
// records it holds ("one-to-many" is one provider1 record related to many
// provider2 records).
type Cardinality int

// Cardinalities.
const (
	Unknown Cardinality = iota
	OneToOne
	OneToMany
	ManyToOne
	ManyToMany
	OneToZero
	ZeroToOne
	ZeroToZero
	ZeroToMany
	ManyToZero
)

var cardinalityNames = [...]string{
	Unknown:    "UNKNOWN",
	OneToOne:   "ONE_TO_ONE",
	OneToMany:  "ONE_TO_MANY",
	ManyToOne:  "MANY_TO_ONE",
	ManyToMany: "MANY_TO_MANY",
	OneToZero:  "ONE_TO_ZERO",
	ZeroToOne:  "ZERO_TO_ONE",
	ZeroToZero: "ZERO_TO_ZERO",
	ZeroToMany: "ZERO_TO_MANY",
	ManyToZero: "MANY_TO_ZERO",
}

// Cardinalities returns every category, Unknown last.
func Cardinalities() []Cardinality {
	return []Cardinality{
		OneToOne, OneToMany, ManyToOne, ManyToMany,
		OneToZero, ZeroToOne, ZeroToZero, ZeroToMany, ManyToZero,
		Unknown,
	}
}

// Classify returns the cardinality for n1 provider1 and n2 provider2
// records. Negative counts are Unknown.
func Classify(n1, n2 int) Cardinality {
	side := func(n int) int {
		switch {
		case n < 0:
			return -1
		case n == 0:
			return 0
		case n == 1:
			return 1
		}
		return 2
	}
	switch [2]int{side(n1), side(n2)} {
	case [2]int{1, 1}:
		return OneToOne
	case [2]int{1, 2}:
		return OneToMany
	case [2]int{2, 1}:
		return ManyToOne
	case [2]int{2, 2}:
		return ManyToMany
	case [2]int{1, 0}:
		return OneToZero
	case [2]int{0, 1}:
		return ZeroToOne
	case [2]int{0, 0}:
		return ZeroToZero
	case [2]int{0, 2}:
		return ZeroToMany
	case [2]int{2, 0}:
		return ManyToZero
	}
	return Unknown
}

// String returns the upper snake case name, e.g. ONE_TO_MANY.
func (c Cardinality) String() string {
	if c < 0 || int(c) >= len(cardinalityNames) {
		return cardinalityNames[Unknown]
	}
	return cardinalityNames[c]
}

// Mirror swaps the roles of provider1 and provider2.
func (c Cardinality) Mirror() Cardinality {
	switch c {
	case OneToMany:
		return ManyToOne
	case ManyToOne:
		return OneToMany
	case OneToZero:
		return ZeroToOne
	case ZeroToOne:
		return OneToZero
	case ZeroToMany:
		return ManyToZero
	case ManyToZero:
		return ZeroToMany
	}
	return c
}

// ParseCardinality accepts the names returned by String in any case, with
// dashes or underscores.
func ParseCardinality(s string) (Cardinality, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for c, name := range cardinalityNames {
		if name == norm {
			return Cardinality(c), nil
		}
	}
	return Unknown, fmt.Errorf("unknown cardinality %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Cardinality) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cardinality) UnmarshalText(text []byte) error {
	parsed, err := ParseCardinality(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
