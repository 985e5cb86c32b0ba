package models

import "testing"

func TestTierRanking(t *testing.T) {
	order := Tiers()
	if len(order) != 3 {
		t.Fatalf("Expected 3 tiers, got %d", len(order))
	}

	// Dominates must agree with rank comparison over the full cross product.
	rank := map[Tier]int{}
	for i, tier := range order {
		rank[tier] = i
	}
	for _, p := range order {
		for _, c := range order {
			want := rank[p] >= rank[c]
			if got := p.Dominates(c); got != want {
				t.Errorf("Dominates(%s, %s) = %v, want %v", p, c, got, want)
			}
		}
	}
}

func TestCompareTiers(t *testing.T) {
	testCases := []struct {
		a, b Tier
		want int
	}{
		{TierFree, TierBasic, -1},
		{TierBasic, TierFree, 1},
		{TierBasic, TierBasic, 0},
		{TierFree, TierPremium, -1},
		{TierPremium, TierBasic, 1},
	}
	for _, tc := range testCases {
		if got := CompareTiers(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareTiers(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		parsed, err := ParseTier(string(tier))
		if err != nil {
			t.Errorf("ParseTier(%s) returned error: %v", tier, err)
		}
		if parsed != tier {
			t.Errorf("ParseTier(%s) = %s", tier, parsed)
		}
	}

	for _, raw := range []string{"", "gold", "FREE", "Premium"} {
		if _, err := ParseTier(raw); err == nil {
			t.Errorf("ParseTier(%q) should fail", raw)
		}
	}
}

func TestUnknownTierNeverDominates(t *testing.T) {
	if Tier("gold").Dominates(TierFree) {
		t.Error("unknown principal tier must not dominate anything")
	}
	if TierPremium.Dominates(Tier("gold")) {
		t.Error("unknown content tier must not be dominated")
	}
}
