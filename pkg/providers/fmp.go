package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

type fmpProfile struct {
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MktCap            float64 `json:"mktCap"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	Currency          string  `json:"currency"`
}

type fmpCashFlowStatement struct {
	OperatingCashFlow   float64 `json:"operatingCashFlow"`
	CapitalExpenditure  float64 `json:"capitalExpenditure"`
	Date                string  `json:"date"`
}

type fmpBalanceSheet struct {
	CashAndEquivalents float64 `json:"cashAndCashEquivalents"`
	TotalDebt          float64 `json:"totalDebt"`
	TotalEquity        float64 `json:"totalStockholdersEquity"`
}

type fmpIncomeStatement struct {
	Revenue    float64 `json:"revenue"`
	EBITDA     float64 `json:"ebitda"`
	NetIncome  float64 `json:"netIncome"`
	EPSDiluted float64 `json:"epsdiluted"`
}

// FMP adapts Financial Modeling Prep's REST API. FMP returns statements
// oldest-first, the opposite of Yahoo's convention, so Fetch reverses every
// series before handing them to the aggregator: REST providers using the
// opposite ordering get reversed here, so the canonical most-recent-first
// convention holds at the aggregator boundary.
type FMP struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
}

// NewFMP builds an FMP adapter. apiKey is required; FMP rejects
// unauthenticated requests.
func NewFMP(apiKey string) *FMP {
	return &FMP{
		client:  resty.New().SetTimeout(5 * time.Second).SetBaseURL("https://financialmodelingprep.com/api/v3"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
}

func (f *FMP) Name() string       { return "fmp" }
func (f *FMP) Priority() int      { return 2 }
func (f *FMP) Confidence() float64 { return 0.75 }

func (f *FMP) Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error) {
	if f.apiKey == "" {
		return nil, enginerr.WithField(enginerr.ProviderError, "fmp: missing API key", "apiKey")
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "fmp: rate limiter wait", err)
	}

	var profiles []fmpProfile
	resp, err := f.client.R().SetContext(ctx).
		SetQueryParam("apikey", f.apiKey).
		SetResult(&profiles).
		Get(fmt.Sprintf("/profile/%s", ticker))
	if err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "fmp: network error", err)
	}
	if resp.StatusCode() == 404 {
		return nil, enginerr.WithField(enginerr.ProviderError, "fmp: ticker not found", "ticker")
	}
	if resp.StatusCode() == 429 {
		return nil, enginerr.New(enginerr.ProviderError, "fmp: rate limited")
	}
	if len(profiles) == 0 {
		return nil, enginerr.New(enginerr.ProviderError, "fmp: schema mismatch, empty profile")
	}
	p := profiles[0]

	var cashFlows []fmpCashFlowStatement
	if _, err := f.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"apikey": f.apiKey, "limit": fmt.Sprintf("%d", years)}).
		SetResult(&cashFlows).
		Get(fmt.Sprintf("/cash-flow-statement/%s", ticker)); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "fmp: cash flow fetch failed", err)
	}

	var balanceSheets []fmpBalanceSheet
	if _, err := f.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"apikey": f.apiKey, "limit": "1"}).
		SetResult(&balanceSheets).
		Get(fmt.Sprintf("/balance-sheet-statement/%s", ticker)); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "fmp: balance sheet fetch failed", err)
	}

	var incomeStatements []fmpIncomeStatement
	if _, err := f.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"apikey": f.apiKey, "limit": "1"}).
		SetResult(&incomeStatements).
		Get(fmt.Sprintf("/income-statement/%s", ticker)); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "fmp: income statement fetch failed", err)
	}

	fd := &models.FinancialData{
		Ticker:            ticker,
		Providers:         []string{f.Name()},
		AsOf:              time.Now().UTC(),
		CurrentPrice:      p.Price,
		SharesOutstanding: sharesFromMktCap(p.MktCap, p.Price),
		Beta:              p.Beta,
		Sector:            p.Sector,
		Country:           p.Country,
		Currency:          p.Currency,
	}

	// FMP returns oldest-first; reverse to most-recent-first.
	for i := len(cashFlows) - 1; i >= 0; i-- {
		cf := cashFlows[i]
		capex := cf.CapitalExpenditure
		if capex < 0 {
			capex = -capex
		}
		fd.OCF = append(fd.OCF, cf.OperatingCashFlow)
		fd.CAPEX = append(fd.CAPEX, capex)
	}

	if len(balanceSheets) > 0 {
		bs := balanceSheets[0]
		fd.Cash = bs.CashAndEquivalents
		fd.TotalDebt = bs.TotalDebt
		fd.BookValue = bs.TotalEquity
	}
	if len(incomeStatements) > 0 {
		is := incomeStatements[0]
		fd.Revenue = is.Revenue
		fd.EBITDA = is.EBITDA
		fd.NetIncome = is.NetIncome
		fd.EPSDiluted = is.EPSDiluted
	}

	fd.DataCompleteness = completeness(fd)
	fd.Confidence = f.Confidence()

	return fd, nil
}

func sharesFromMktCap(mktCap, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return mktCap / price
}
