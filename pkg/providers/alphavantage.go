package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

// alphaVantageOverview is Alpha Vantage's OVERVIEW endpoint; every numeric
// field is wire-encoded as a string, a well-known Alpha Vantage quirk.
type alphaVantageOverview struct {
	Symbol             string `json:"Symbol"`
	Sector             string `json:"Sector"`
	Country            string `json:"Country"`
	Currency           string `json:"Currency"`
	Beta               string `json:"Beta"`
	SharesOutstanding  string `json:"SharesOutstanding"`
	RevenueTTM         string `json:"RevenueTTM"`
	EBITDA             string `json:"EBITDA"`
	EPS                string `json:"DilutedEPSTTM"`
	BookValue          string `json:"BookValue"`
	Note               string `json:"Note"` // rate-limit message appears here
}

type alphaVantageQuote struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

// AlphaVantage adapts Alpha Vantage's free-tier REST API. It is the lowest
// priority, lowest confidence adapter (strict rate limits, string-encoded
// numerics prone to parse failure) and contributes beta/sector overrides
// more often than it serves as primary snapshot source.
type AlphaVantage struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
}

// NewAlphaVantage builds an Alpha Vantage adapter.
func NewAlphaVantage(apiKey string) *AlphaVantage {
	return &AlphaVantage{
		client:  resty.New().SetTimeout(5 * time.Second).SetBaseURL("https://www.alphavantage.co"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1), // free tier: 5 req/min
	}
}

func (a *AlphaVantage) Name() string       { return "alpha_vantage" }
func (a *AlphaVantage) Priority() int      { return 3 }
func (a *AlphaVantage) Confidence() float64 { return 0.60 }

func (a *AlphaVantage) Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error) {
	if a.apiKey == "" {
		return nil, enginerr.WithField(enginerr.ProviderError, "alpha_vantage: missing API key", "apiKey")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "alpha_vantage: rate limiter wait", err)
	}

	var overview alphaVantageOverview
	resp, err := a.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"function": "OVERVIEW", "symbol": ticker, "apikey": a.apiKey}).
		SetResult(&overview).
		Get("/query")
	if err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "alpha_vantage: network error", err)
	}
	if resp.IsError() {
		return nil, enginerr.New(enginerr.ProviderError, fmt.Sprintf("alpha_vantage: unexpected status %d", resp.StatusCode()))
	}
	if overview.Note != "" {
		return nil, enginerr.New(enginerr.ProviderError, "alpha_vantage: rate limited ("+overview.Note+")")
	}
	if overview.Symbol == "" {
		return nil, enginerr.WithField(enginerr.ProviderError, "alpha_vantage: ticker not found", "ticker")
	}

	var quote alphaVantageQuote
	if _, err := a.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"function": "GLOBAL_QUOTE", "symbol": ticker, "apikey": a.apiKey}).
		SetResult(&quote).
		Get("/query"); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "alpha_vantage: quote fetch failed", err)
	}

	fd := &models.FinancialData{
		Ticker:            ticker,
		Providers:         []string{a.Name()},
		AsOf:              time.Now().UTC(),
		CurrentPrice:      parseFloatOrZero(quote.GlobalQuote.Price),
		SharesOutstanding: parseFloatOrZero(overview.SharesOutstanding),
		Beta:              parseFloatOrZero(overview.Beta),
		Sector:            overview.Sector,
		Country:           overview.Country,
		Currency:          overview.Currency,
		Revenue:           parseFloatOrZero(overview.RevenueTTM),
		EBITDA:            parseFloatOrZero(overview.EBITDA),
		EPSDiluted:        parseFloatOrZero(overview.EPS),
		BookValue:         parseFloatOrZero(overview.BookValue),
	}

	// Alpha Vantage's free tier does not expose OCF/CAPEX history on
	// OVERVIEW; this adapter is a beta/sector/fundamentals contributor, not
	// a primary cash-flow source, and best_quality/merge scoring reflects
	// that via its lower confidence and incomplete series.
	fd.DataCompleteness = completeness(fd)
	fd.Confidence = a.Confidence()

	return fd, nil
}

func parseFloatOrZero(s string) float64 {
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
