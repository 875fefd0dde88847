package core

import (
	"math"
	"strings"
)

// Parser turns raw revenue cells into totals using a Policy.
// The zero value is not usable; build one with NewParser.
type Parser struct {
	policy Policy
}

var defaultParser = NewParser(DefaultPolicy())

// NewParser returns a parser for p. An invalid policy falls back to the
// default one.
func NewParser(p Policy) *Parser {
	if p.Validate() != nil {
		p = DefaultPolicy()
	}
	return &Parser{policy: p}
}

// Policy returns the policy in use.
func (p *Parser) Policy() Policy {
	return p.policy
}

// ParseCell parses raw with the default policy.
func ParseCell(raw string) CellResult {
	return defaultParser.Parse(raw)
}

// Parse sums every whitespace separated token of raw.
//
// Dots and commas inside a token are thousands separators and are dropped.
// The leading digits of what remains are the token's value in thousands;
// a token without a leading digit counts as zero. Parse never fails.
//
// Examples with the default policy:
//
//	Parse("50")        -> {50000, false, 0}
//	Parse("50 200 30") -> {280000, true, 1}
//	Parse("abc 50")    -> {50000, false, 0}
func (p *Parser) Parse(raw string) CellResult {
	var res CellResult
	for _, tok := range strings.Fields(raw) {
		scaled := p.tokenValue(tok)
		if scaled == 0 {
			continue
		}
		if p.policy.IsOvernight(scaled) {
			res.OvernightCount++
		}
		if res.Total > math.MaxInt64-scaled {
			res.Total = math.MaxInt64
			continue
		}
		res.Total += scaled
	}
	res.HasOvernight = res.OvernightCount > 0
	return res
}

// tokenValue returns the scaled value of a single token.
func (p *Parser) tokenValue(tok string) int64 {
	limit := math.MaxInt64 / p.policy.EntryScale
	var n int64
	digits := 0
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c == '.' || c == ',' {
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		d := int64(c - '0')
		if n > (limit-d)/10 {
			return 0
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0
	}
	return n * p.policy.EntryScale
}
