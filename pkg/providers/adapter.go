// Package providers implements the per-source normalizers: Yahoo-style,
// Alpha Vantage, Financial Modeling Prep, and a Treasury-yield probe. Each
// adapter is parameter-free beyond its API key, so new providers drop in
// under the aggregator's strategy enumeration without touching it.
package providers

import (
	"context"

	"valuationengine/pkg/models"
)

// Adapter fetches a financial snapshot for a ticker over the last N years.
type Adapter interface {
	// Fetch returns a populated FinancialData or a typed failure from
	// pkg/enginerr (NOT_FOUND / RATE_LIMIT / NETWORK / SCHEMA_MISMATCH all
	// surface as enginerr.ProviderError, with the upstream reason in Message
	// and Field naming the offending input, such as "ticker", where there
	// is one).
	Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error)

	// Name identifies the provider for FinancialData.Providers and logs.
	Name() string

	// Priority is the static ordering used by first_available; lower wins.
	Priority() int

	// Confidence is the static provider-confidence term of the aggregator's
	// scoring formula, in [0,1].
	Confidence() float64
}

// TreasuryProbe is a separate, narrower adapter: it returns a point rate for
// a requested maturity rather than a full snapshot.
type TreasuryProbe interface {
	Rate(ctx context.Context, maturityYears int) (rate float64, source string, err error)
}
