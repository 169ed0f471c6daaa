// Package estimate classifies repositories into audit complexity profiles.
//
// The classifier is the deterministic fallback behind quoting: identical
// input always yields identical output, so a price shown on the quote
// screen cannot drift before submission. All money values are whole
// currency units in int64.
package estimate

import "strings"

// Complexity is the audit complexity class of a repository
type Complexity string

// Complexity classes, ordered from least to most involved
const (
	Low      Complexity = "low"
	Medium   Complexity = "medium"
	High     Complexity = "high"
	Critical Complexity = "critical"
)

// Valid reports whether c is one of the fixed classes
func (c Complexity) Valid() bool {
	switch c {
	case Low, Medium, High, Critical:
		return true
	}
	return false
}

// RawAnalysis is an optional pre-scan of the submitted repository
type RawAnalysis struct {
	FileCount         int `json:"file_count"`
	SolidityFileCount int `json:"solidity_file_count"`
	TotalLines        int `json:"total_lines"`
}

// Estimate is the full quote profile for a repository
type Estimate struct {
	Complexity      Complexity `json:"complexity"`
	DurationDays    int        `json:"duration_days"`
	Price           int64      `json:"price"`
	MinimumPrice    int64      `json:"minimum_price"`
	Reasoning       string     `json:"reasoning"`
	RiskFactors     []string   `json:"risk_factors"`
	Recommendations []string   `json:"recommendations"`
}

// profile is one row of the lexical pattern table
type profile struct {
	tokens          []string
	complexity      Complexity
	price           int64
	durationDays    int
	reasoning       string
	riskFactors     []string
	recommendations []string
}

// profiles is ordered by precedence, first match wins
// bridge outranks defi so "defi-bridge" lands on the riskier row
var profiles = []profile{
	{
		tokens:       []string{"bridge", "crosschain", "cross-chain"},
		complexity:   Critical,
		price:        35000,
		durationDays: 12,
		reasoning:    "Cross-chain bridges concentrate locked value behind message verification and are the most exploited contract class.",
		riskFactors: []string{
			"Cross-chain message verification and replay handling",
			"Locked-value custody on both chains",
			"Validator or relayer trust assumptions",
		},
		recommendations: []string{
			"Audit the message verification path line by line",
			"Model validator collusion and relayer censorship",
			"Add withdrawal rate limits before launch",
		},
	},
	{
		tokens:       []string{"wallet", "multisig", "multi-sig"},
		complexity:   Critical,
		price:        30000,
		durationDays: 11,
		reasoning:    "Wallet and multisig code holds user keys and funds directly, so signature handling flaws are unrecoverable.",
		riskFactors: []string{
			"Signature malleability and replay",
			"Owner set management and threshold changes",
			"Upgrade and recovery paths",
		},
		recommendations: []string{
			"Fuzz the signature validation paths",
			"Review owner rotation under concurrent proposals",
		},
	},
	{
		tokens:       []string{"defi", "protocol", "amm", "lending", "vault"},
		complexity:   High,
		price:        25000,
		durationDays: 10,
		reasoning:    "DeFi protocols compose external price and liquidity sources, exposing economic attack surface beyond plain code defects.",
		riskFactors: []string{
			"Price manipulation through thin liquidity",
			"Reentrancy across composed protocols",
			"Rounding drift in share accounting",
		},
		recommendations: []string{
			"Simulate flash-loan assisted price swings",
			"Verify share math against deposit and withdraw sequences",
		},
	},
	{
		tokens:       []string{"oracle"},
		complexity:   High,
		price:        22000,
		durationDays: 9,
		reasoning:    "Oracles are the trust root for every consumer contract, so staleness and manipulation windows propagate widely.",
		riskFactors: []string{
			"Stale or delayed price updates",
			"Single-source data dependence",
		},
		recommendations: []string{
			"Check heartbeat and deviation thresholds",
			"Review aggregation against outlier feeds",
		},
	},
	{
		tokens:       []string{"dao", "governance", "staking"},
		complexity:   High,
		price:        20000,
		durationDays: 8,
		reasoning:    "Governance and staking systems gate privileged actions behind token-weighted votes that can be bought or flash-borrowed.",
		riskFactors: []string{
			"Flash-loan vote capture",
			"Timelock bypass through proposal batching",
			"Reward accounting over stake changes",
		},
		recommendations: []string{
			"Require vote snapshots predating proposal creation",
			"Walk every privileged call through the timelock",
		},
	},
	{
		tokens:       []string{"nft", "marketplace"},
		complexity:   Medium,
		price:        12000,
		durationDays: 6,
		reasoning:    "NFT and marketplace contracts move valuable tokens but follow well-trodden standards with known pitfall lists.",
		riskFactors: []string{
			"Unchecked external calls during transfers",
			"Royalty and fee accounting",
		},
		recommendations: []string{
			"Check safeTransfer callback reentrancy",
			"Verify order cancellation invalidates signatures",
		},
	},
	{
		tokens:       []string{"token", "erc20", "erc-20", "airdrop"},
		complexity:   Low,
		price:        5000,
		durationDays: 3,
		reasoning:    "Standard token contracts have a small, well-understood surface when they follow the reference implementations.",
		riskFactors: []string{
			"Allowance race on approve",
			"Mint authority scope",
		},
		recommendations: []string{
			"Diff against the reference ERC-20 implementation",
			"Confirm supply caps and mint authority",
		},
	},
}

// defaultProfile is used when no pattern matches the repository name
var defaultProfile = profile{
	complexity:   Medium,
	price:        10000,
	durationDays: 5,
	reasoning:    "No recognized protocol category in the repository name, priced at the general smart-contract baseline.",
	riskFactors: []string{
		"Unclassified contract surface",
		"Unknown external dependencies",
	},
	recommendations: []string{
		"Start with a scoping call to classify the codebase",
		"Run static analysis before manual review",
	},
}

// Classify maps a repository identifier to a deterministic estimate.
// It is total: every input, including the empty string, yields a valid
// estimate. raw may be nil.
func Classify(repoID string, raw *RawAnalysis) Estimate {
	name := strings.ToLower(repoID)

	p := defaultProfile
	for _, cand := range profiles {
		if matches(name, cand.tokens) {
			p = cand
			break
		}
	}

	price := p.price
	days := p.durationDays
	risks := append([]string(nil), p.riskFactors...)

	// a large pre-scan nudges scope up, still a pure function of input
	if raw != nil {
		if raw.TotalLines > 10000 || raw.SolidityFileCount > 40 {
			price += price / 4
			days += 2
			risks = append(risks, "Large contract surface increases review scope")
		} else if raw.TotalLines > 3000 || raw.SolidityFileCount > 15 {
			price += price / 10
			days++
		}
	}

	return Estimate{
		Complexity:      p.complexity,
		DurationDays:    days,
		Price:           price,
		MinimumPrice:    MinimumPrice(price),
		Reasoning:       p.reasoning,
		RiskFactors:     risks,
		Recommendations: append([]string(nil), p.recommendations...),
	}
}

// MinimumPrice is the floor a submitter may negotiate down to
func MinimumPrice(price int64) int64 { return price * 3 / 4 }

func matches(name string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}
