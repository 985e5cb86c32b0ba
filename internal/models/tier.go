package models

import "fmt"

// Tier is a subscription level controlling content visibility.
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// tierRank is the authoritative ordering. Comparison is by rank, never by
// lexical order. Extending the tier set means adding an entry here.
var tierRank = map[Tier]int{
	TierFree:    0,
	TierBasic:   1,
	TierPremium: 2,
}

// Tiers returns every known tier in ascending rank order.
func Tiers() []Tier {
	return []Tier{TierFree, TierBasic, TierPremium}
}

// ParseTier validates a raw tier value. Unknown values are rejected so a bad
// configuration or payload can never slip through as a silent allow.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierRank[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

func (t Tier) rank() int {
	r, ok := tierRank[t]
	if !ok {
		return -1
	}
	return r
}

// CompareTiers returns -1, 0 or 1 as a ranks below, equal to or above b.
func CompareTiers(a, b Tier) int {
	switch {
	case a.rank() < b.rank():
		return -1
	case a.rank() > b.rank():
		return 1
	default:
		return 0
	}
}

// Dominates reports whether a principal holding tier t may access content
// gated at tier c. Unknown tiers on either side never pass.
func (t Tier) Dominates(c Tier) bool {
	if !t.Valid() || !c.Valid() {
		return false
	}
	return t.rank() >= c.rank()
}
