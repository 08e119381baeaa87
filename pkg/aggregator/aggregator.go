// Package aggregator implements the Data Aggregator: it fans out to every
// configured provider adapter concurrently, then reconciles the results
// under one of three strategies. Interface-based dependency injection and
// fmt.Printf bracket-tag logging, with the fan-out itself bounded by
// errgroup rather than an unbounded goroutine-per-task loop.
package aggregator

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"valuationengine/internal/logging"
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

var log = logging.Tag("AGGREGATOR")

const (
	defaultMaxConcurrent  = 4
	defaultAdapterTimeout = 5 * time.Second
)

// Aggregator fans out to a set of provider adapters and reconciles results.
type Aggregator struct {
	adapters       []Adapter
	maxConcurrent  int
	adapterTimeout time.Duration
}

// Adapter is the subset of providers.Adapter the aggregator depends on,
// declared locally so this package never imports pkg/providers directly.
type Adapter interface {
	Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error)
	Name() string
	Priority() int
	Confidence() float64
}

// New builds an Aggregator over the given adapters, in priority order
// irrelevant to construction (first_available re-sorts at call time).
func New(adapters ...Adapter) *Aggregator {
	return &Aggregator{
		adapters:       adapters,
		maxConcurrent:  defaultMaxConcurrent,
		adapterTimeout: defaultAdapterTimeout,
	}
}

// WithTimeout overrides the per-adapter timeout.
func (a *Aggregator) WithTimeout(d time.Duration) *Aggregator {
	a.adapterTimeout = d
	return a
}

// WithMaxConcurrent overrides how many adapters fan out at once.
func (a *Aggregator) WithMaxConcurrent(n int) *Aggregator {
	if n > 0 {
		a.maxConcurrent = n
	}
	return a
}

type adapterResult struct {
	name string
	fd   *models.FinancialData
	err  error
}

// fetchAll runs every adapter concurrently, bounded by maxConcurrent, each
// under its own per-adapter timeout derived from ctx.
func (a *Aggregator) fetchAll(ctx context.Context, ticker string, years int) []adapterResult {
	results := make([]adapterResult, len(a.adapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)

	for i, adapter := range a.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, a.adapterTimeout)
			defer cancel()
			fd, err := adapter.Fetch(actx, ticker, years)
			if err != nil {
				log.Warnf("%s failed for %s: %v", adapter.Name(), ticker, err)
			}
			results[i] = adapterResult{name: adapter.Name(), fd: fd, err: err}
			return nil // never abort the group; partial failure is expected
		})
	}
	_ = g.Wait()
	return results
}

// Fetch runs the configured strategy over every adapter's result.
func (a *Aggregator) Fetch(ctx context.Context, ticker string, years int, strategy models.AggregatorStrategy) (*models.FinancialData, error) {
	if len(a.adapters) == 0 {
		return nil, enginerr.New(enginerr.DataUnavailable, "no provider adapters configured")
	}

	results := a.fetchAll(ctx, ticker, years)

	var usable []adapterResult
	for _, r := range results {
		if r.err == nil && r.fd != nil {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return nil, enginerr.New(enginerr.DataUnavailable, "all provider adapters failed for "+ticker)
	}

	switch strategy {
	case models.StrategyFirstAvailable:
		return a.firstAvailable(usable), nil
	case models.StrategyBestQuality:
		return a.bestQuality(usable), nil
	case models.StrategyMerge:
		return a.merge(usable), nil
	default:
		return nil, enginerr.WithField(enginerr.ValidationFailed, "unknown aggregator strategy", string(strategy))
	}
}

// firstAvailable returns the usable result from the adapter with the lowest
// Priority value.
func (a *Aggregator) firstAvailable(usable []adapterResult) *models.FinancialData {
	priority := make(map[string]int, len(a.adapters))
	for _, ad := range a.adapters {
		priority[ad.Name()] = ad.Priority()
	}
	sort.Slice(usable, func(i, j int) bool {
		return priority[usable[i].name] < priority[usable[j].name]
	})
	return usable[0].fd
}

// score implements the aggregator's quality-ranking formula:
// data_completeness*0.6 + provider_confidence*0.4.
func score(fd *models.FinancialData) float64 {
	return fd.DataCompleteness*0.6 + fd.Confidence*0.4
}

// bestQuality returns the usable result with the highest score, breaking
// ties by adapter priority.
func (a *Aggregator) bestQuality(usable []adapterResult) *models.FinancialData {
	priority := make(map[string]int, len(a.adapters))
	for _, ad := range a.adapters {
		priority[ad.Name()] = ad.Priority()
	}
	best := usable[0]
	bestScore := score(best.fd)
	for _, r := range usable[1:] {
		s := score(r.fd)
		if s > bestScore || (s == bestScore && priority[r.name] < priority[best.name]) {
			best, bestScore = r, s
		}
	}
	return best.fd
}

// merge combines every usable result field-by-field: the highest-scoring
// result seeds the snapshot, and any zero-valued scalar field is backfilled
// from the next-best result that has it populated. Providers contributing a
// filled field are recorded in FinancialData.Providers.
func (a *Aggregator) merge(usable []adapterResult) *models.FinancialData {
	priority := make(map[string]int, len(a.adapters))
	for _, ad := range a.adapters {
		priority[ad.Name()] = ad.Priority()
	}
	sort.Slice(usable, func(i, j int) bool {
		si, sj := score(usable[i].fd), score(usable[j].fd)
		if si != sj {
			return si > sj
		}
		return priority[usable[i].name] < priority[usable[j].name]
	})

	seed := *usable[0].fd
	providers := []string{usable[0].name}

	for _, r := range usable[1:] {
		contributed := false
		sameCurrency := seed.Currency == "" || r.fd.Currency == "" || seed.Currency == r.fd.Currency
		if !sameCurrency {
			log.Warnf("merge: skipping monetary fields from %s (currency %s != seed currency %s)", r.name, r.fd.Currency, seed.Currency)
		}

		if sameCurrency && isZeroAmount(seed.CurrentPrice) && !isZeroAmount(r.fd.CurrentPrice) {
			seed.CurrentPrice = r.fd.CurrentPrice
			contributed = true
		}
		if seed.SharesOutstanding == 0 && r.fd.SharesOutstanding != 0 {
			seed.SharesOutstanding = r.fd.SharesOutstanding
			contributed = true
		}
		if len(seed.OCF) == 0 && len(r.fd.OCF) != 0 {
			seed.OCF = r.fd.OCF
			seed.CAPEX = r.fd.CAPEX
			contributed = true
		}
		if seed.Beta == 0 && r.fd.Beta != 0 {
			seed.Beta = r.fd.Beta
			contributed = true
		}
		if seed.Sector == "" && r.fd.Sector != "" {
			seed.Sector = r.fd.Sector
			contributed = true
		}
		if seed.Country == "" && r.fd.Country != "" {
			seed.Country = r.fd.Country
			contributed = true
		}
		if seed.Currency == "" && r.fd.Currency != "" {
			seed.Currency = r.fd.Currency
			contributed = true
		}
		if sameCurrency && isZeroAmount(seed.BookValue) && !isZeroAmount(r.fd.BookValue) {
			seed.BookValue = r.fd.BookValue
			contributed = true
		}
		if sameCurrency && isZeroAmount(seed.TotalDebt) && !isZeroAmount(r.fd.TotalDebt) {
			seed.TotalDebt = r.fd.TotalDebt
			contributed = true
		}
		if sameCurrency && isZeroAmount(seed.Cash) && !isZeroAmount(r.fd.Cash) {
			seed.Cash = r.fd.Cash
			contributed = true
		}
		if sameCurrency && isZeroAmount(seed.Revenue) && !isZeroAmount(r.fd.Revenue) {
			seed.Revenue = r.fd.Revenue
			contributed = true
		}
		if sameCurrency && isZeroAmount(seed.EBITDA) && !isZeroAmount(r.fd.EBITDA) {
			seed.EBITDA = r.fd.EBITDA
			contributed = true
		}
		if len(seed.DividendsPerShare) == 0 && len(r.fd.DividendsPerShare) != 0 {
			seed.DividendsPerShare = r.fd.DividendsPerShare
			contributed = true
		}
		if contributed {
			providers = append(providers, r.name)
		}
	}

	seed.Providers = providers
	seed.DataCompleteness = mergedCompleteness(usable, providers)
	return &seed
}

// isZeroAmount compares a monetary field against zero via decimal.Decimal
// rather than IEEE-754 float equality: values parsed from different
// providers' string encodings can carry representation noise that a naive
// float == 0 check would miss.
func isZeroAmount(v float64) bool {
	return decimal.NewFromFloat(v).IsZero()
}

// mergedCompleteness averages the contributing adapters' own completeness
// scores; a merge draws from more sources than any single adapter, so its
// completeness is reported relative to what those sources actually offered.
func mergedCompleteness(usable []adapterResult, contributing []string) float64 {
	byName := make(map[string]*models.FinancialData, len(usable))
	for _, r := range usable {
		byName[r.name] = r.fd
	}
	var sum float64
	var n int
	for _, name := range contributing {
		if fd, ok := byName[name]; ok {
			sum += fd.DataCompleteness
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
