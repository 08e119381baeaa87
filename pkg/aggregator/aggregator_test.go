package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuationengine/pkg/models"
)

type stubAdapter struct {
	name       string
	priority   int
	confidence float64
	fd         *models.FinancialData
	err        error
	delay      time.Duration
}

func (s stubAdapter) Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.fd, s.err
}

func (s stubAdapter) Name() string        { return s.name }
func (s stubAdapter) Priority() int       { return s.priority }
func (s stubAdapter) Confidence() float64 { return s.confidence }

func TestFetchFailsWhenNoAdaptersConfigured(t *testing.T) {
	a := New()
	_, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyFirstAvailable)
	require.Error(t, err)
}

func TestFetchFailsWhenAllAdaptersFail(t *testing.T) {
	a := New(
		stubAdapter{name: "a", priority: 1, err: errors.New("boom")},
		stubAdapter{name: "b", priority: 2, err: errors.New("boom")},
	)
	_, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyFirstAvailable)
	require.Error(t, err)
}

func TestFirstAvailablePicksLowestPriority(t *testing.T) {
	a := New(
		stubAdapter{name: "low-priority", priority: 3, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 1}},
		stubAdapter{name: "high-priority", priority: 1, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 2}},
	)
	fd, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyFirstAvailable)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fd.CurrentPrice, "expected the priority-1 adapter's data")
}

func TestBestQualityPicksHighestScore(t *testing.T) {
	a := New(
		stubAdapter{name: "weak", priority: 1, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 1, DataCompleteness: 0.3, Confidence: 0.3}},
		stubAdapter{name: "strong", priority: 2, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 2, DataCompleteness: 0.9, Confidence: 0.9}},
	)
	fd, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyBestQuality)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fd.CurrentPrice, "expected the higher-scoring adapter's data")
}

func TestMergeBackfillsMissingFieldsAndRecordsProviders(t *testing.T) {
	a := New(
		stubAdapter{name: "primary", priority: 1, fd: &models.FinancialData{
			Ticker: "ACME", CurrentPrice: 10, DataCompleteness: 0.9, Confidence: 0.9,
		}},
		stubAdapter{name: "secondary", priority: 2, fd: &models.FinancialData{
			Ticker: "ACME", CurrentPrice: 11, Beta: 1.2, Sector: "Technology", DataCompleteness: 0.5, Confidence: 0.5,
		}},
	)
	fd, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyMerge)
	require.NoError(t, err)
	assert.Equal(t, 10.0, fd.CurrentPrice, "seed's own CurrentPrice should win")
	assert.Equal(t, 1.2, fd.Beta)
	assert.Equal(t, "Technology", fd.Sector)
	assert.Len(t, fd.Providers, 2)
}

func TestMergeSkipsMonetaryFieldsAcrossMismatchedCurrencies(t *testing.T) {
	a := New(
		stubAdapter{name: "usd", priority: 1, fd: &models.FinancialData{
			Ticker: "ACME", Currency: "USD", DataCompleteness: 0.5, Confidence: 0.5,
		}},
		stubAdapter{name: "eur", priority: 2, fd: &models.FinancialData{
			Ticker: "ACME", Currency: "EUR", Cash: 1000, DataCompleteness: 0.5, Confidence: 0.5,
		}},
	)
	fd, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyMerge)
	require.NoError(t, err)
	assert.Zero(t, fd.Cash, "cross-currency Cash contribution should be rejected")
}

func TestFetchRespectsPerAdapterTimeout(t *testing.T) {
	a := New(
		stubAdapter{name: "slow", priority: 1, delay: 50 * time.Millisecond, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 1}},
		stubAdapter{name: "fast", priority: 2, fd: &models.FinancialData{Ticker: "ACME", CurrentPrice: 2}},
	).WithTimeout(5 * time.Millisecond)

	fd, err := a.Fetch(context.Background(), "ACME", 5, models.StrategyFirstAvailable)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fd.CurrentPrice, "the timed-out slow adapter should be excluded")
}
