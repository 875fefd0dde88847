// Package core holds the revenue parsing and aggregation engine.
//
// This file contains the amount policy: how a typed token maps to currency
// units and which tokens count as an overnight stay.
package core

import "errors"

const (
	// DefaultEntryScale is applied to every typed token. Revenue is typed in
	// thousands, so "50" means 50000.
	DefaultEntryScale int64 = 1000

	// DefaultOvernightThreshold is the scaled value a single token must exceed
	// to count as an overnight stay.
	DefaultOvernightThreshold int64 = 150000
)

var ErrInvalidPolicy = errors.New("invalid amount policy")

// Policy groups the two amount rules so every call site applies them the
// same way.
type Policy struct {
	EntryScale         int64
	OvernightThreshold int64
}

// DefaultPolicy returns the ×1000 scale and the 150000 overnight threshold.
func DefaultPolicy() Policy {
	return Policy{
		EntryScale:         DefaultEntryScale,
		OvernightThreshold: DefaultOvernightThreshold,
	}
}

func (p Policy) Validate() error {
	if p.EntryScale < 1 {
		return ErrInvalidPolicy
	}
	if p.OvernightThreshold < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// IsOvernight reports whether a scaled token value counts as an overnight stay.
func (p Policy) IsOvernight(scaled int64) bool {
	return scaled > p.OvernightThreshold
}
