package estimate

import (
	"reflect"
	"testing"
)

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"example/defi-bridge-v2",
		"acme/governance-module",
		"",
		"some/random-repo",
	}
	for _, in := range inputs {
		a := Classify(in, nil)
		b := Classify(in, nil)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Classify(%q) not deterministic:\n%+v\n%+v", in, a, b)
		}
	}
}

func TestClassifyDefiBridgeScenario(t *testing.T) {
	t.Parallel()

	got := Classify("example/defi-bridge-v2", nil)
	if got.Complexity != Critical {
		t.Fatalf("complexity = %q, want %q", got.Complexity, Critical)
	}
	if got.Price != 35000 {
		t.Fatalf("price = %d, want 35000", got.Price)
	}
	if got.DurationDays != 12 {
		t.Fatalf("durationDays = %d, want 12", got.DurationDays)
	}
	if got.MinimumPrice != 26250 {
		t.Fatalf("minimumPrice = %d, want 26250", got.MinimumPrice)
	}
}

func TestClassifyPatternTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		repo string
		want Complexity
	}{
		{"org/crosschain-router", Critical},
		{"org/multisig-wallet", Critical},
		{"org/lending-vault", High},
		{"org/price-oracle", High},
		{"org/staking-rewards", High},
		{"org/nft-marketplace", Medium},
		{"org/erc20-token", Low},
		{"org/airdrop-claim", Low},
		{"org/something-else", Medium},
	}
	for _, tc := range cases {
		got := Classify(tc.repo, nil)
		if got.Complexity != tc.want {
			t.Fatalf("Classify(%q).Complexity = %q, want %q", tc.repo, got.Complexity, tc.want)
		}
		if got.Price <= 0 || got.DurationDays <= 0 {
			t.Fatalf("Classify(%q) returned non-positive numbers: %+v", tc.repo, got)
		}
		if !got.Complexity.Valid() {
			t.Fatalf("Classify(%q) returned invalid complexity %q", tc.repo, got.Complexity)
		}
	}
}

func TestClassifyDefaultProfile(t *testing.T) {
	t.Parallel()

	got := Classify("org/unclassifiable-thing", nil)
	if got.Complexity != Medium || got.Price != 10000 || got.DurationDays != 5 {
		t.Fatalf("default profile mismatch: %+v", got)
	}
	if len(got.RiskFactors) == 0 || len(got.Recommendations) == 0 {
		t.Fatalf("default profile must carry generic risk and recommendation lists: %+v", got)
	}
}

func TestClassifyRawAnalysisNudge(t *testing.T) {
	t.Parallel()

	base := Classify("org/erc20-token", nil)
	big := Classify("org/erc20-token", &RawAnalysis{TotalLines: 20000, SolidityFileCount: 60})
	if big.Price <= base.Price {
		t.Fatalf("large analysis should raise price: base %d big %d", base.Price, big.Price)
	}
	if big.DurationDays <= base.DurationDays {
		t.Fatalf("large analysis should raise duration: base %d big %d", base.DurationDays, big.DurationDays)
	}
	if big.MinimumPrice != MinimumPrice(big.Price) {
		t.Fatalf("minimum price must track price: %+v", big)
	}

	// nudge stays deterministic too
	again := Classify("org/erc20-token", &RawAnalysis{TotalLines: 20000, SolidityFileCount: 60})
	if !reflect.DeepEqual(big, again) {
		t.Fatalf("analysis nudge not deterministic:\n%+v\n%+v", big, again)
	}
}
