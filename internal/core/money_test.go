package core

import "testing"

func TestPolicyValidate(t *testing.T) {
	cases := []struct {
		p  Policy
		ok bool
	}{
		{DefaultPolicy(), true},
		{Policy{EntryScale: 1, OvernightThreshold: 0}, true},
		{Policy{EntryScale: 0, OvernightThreshold: 150000}, false},
		{Policy{EntryScale: 1000, OvernightThreshold: -1}, false},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPolicyIsOvernight(t *testing.T) {
	p := DefaultPolicy()
	if p.IsOvernight(150000) {
		t.Fatalf("threshold itself must not count as overnight")
	}
	if !p.IsOvernight(150001) {
		t.Fatalf("value above threshold must count as overnight")
	}
}

func TestNewParserFallsBackOnInvalidPolicy(t *testing.T) {
	p := NewParser(Policy{})
	if p.Policy() != DefaultPolicy() {
		t.Fatalf("expected default policy, got %+v", p.Policy())
	}
}
