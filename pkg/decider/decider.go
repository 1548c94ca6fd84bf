// Package decider defines the predicate that accepts or rejects a candidate
// pair of records given the evidence they share, plus stock implementations.
//
// Deciders must be pure and safe for concurrent use. Returning an error
// aborts the run.
package decider

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/linkage/pkg/records"
)

// Decider approves or rejects a candidate pair.
type Decider interface {
	Decide(a, b records.Matchable, ev records.Evidence) (bool, error)
}

// Func adapts a function to the Decider interface.
type Func func(a, b records.Matchable, ev records.Evidence) (bool, error)

// Decide implements Decider.
func (f Func) Decide(a, b records.Matchable, ev records.Evidence) (bool, error) {
	return f(a, b, ev)
}

type constant bool

func (c constant) Decide(records.Matchable, records.Matchable, records.Evidence) (bool, error) {
	return bool(c), nil
}

func (c constant) String() string {
	if c {
		return "accept_all"
	}
	return "reject_all"
}

// AcceptAll accepts every candidate pair. It is the default.
var AcceptAll Decider = constant(true)

// RejectAll rejects every candidate pair.
var RejectAll Decider = constant(false)

type minShared int

// MinSharedAttributes accepts a pair only when it shares values under at
// least n distinct attribute names.
func MinSharedAttributes(n int) Decider {
	return minShared(n)
}

func (m minShared) Decide(_, _ records.Matchable, ev records.Evidence) (bool, error) {
	return len(ev) >= int(m), nil
}

func (m minShared) String() string {
	return fmt.Sprintf("min_shared_attributes(%d)", int(m))
}

type notSolely []string

// NotSolely rejects a pair whose evidence comes only from the listed
// attribute names. Use it for low-quality attributes that may corroborate
// a match but never establish one alone.
func NotSolely(names ...string) Decider {
	return notSolely(slices.Clone(names))
}

func (n notSolely) Decide(_, _ records.Matchable, ev records.Evidence) (bool, error) {
	for name := range ev {
		if !slices.Contains(n, name) {
			return true, nil
		}
	}
	return false, nil
}

func (n notSolely) String() string {
	return "not_solely(" + strings.Join(n, ",") + ")"
}

type all []Decider

// All accepts a pair only when every decider accepts it. Evaluation stops
// at the first rejection or error. All() with no deciders accepts.
func All(ds ...Decider) Decider {
	return all(slices.Clone(ds))
}

func (ds all) Decide(a, b records.Matchable, ev records.Evidence) (bool, error) {
	for _, d := range ds {
		ok, err := d.Decide(a, b, ev)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type anyOf []Decider

// Any accepts a pair when at least one decider accepts it. Any() with no
// deciders rejects.
func Any(ds ...Decider) Decider {
	return anyOf(slices.Clone(ds))
}

func (ds anyOf) Decide(a, b records.Matchable, ev records.Evidence) (bool, error) {
	for _, d := range ds {
		ok, err := d.Decide(a, b, ev)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
