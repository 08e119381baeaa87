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

// yahooChartResponse is the subset of Yahoo's chart/quoteSummary payload the
// engine actually consumes.
type yahooChartResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice struct {
					Raw float64 `json:"raw"`
				} `json:"regularMarketPrice"`
				Currency string `json:"currencyRatio"`
			} `json:"price"`
			DefaultKeyStatistics struct {
				Beta               struct{ Raw float64 `json:"raw"` } `json:"beta"`
				SharesOutstanding  struct{ Raw float64 `json:"raw"` } `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			SummaryProfile struct {
				Sector  string `json:"sector"`
				Country string `json:"country"`
			} `json:"summaryProfile"`
			CashflowStatementHistory struct {
				Statements []struct {
					OperatingCashFlow struct{ Raw float64 `json:"raw"` } `json:"totalCashFromOperatingActivities"`
					CapitalExpenditures struct{ Raw float64 `json:"raw"` } `json:"capitalExpenditures"`
				} `json:"cashflowStatements"`
			} `json:"cashflowStatementHistory"`
			BalanceSheetHistory struct {
				Statements []struct {
					Cash       struct{ Raw float64 `json:"raw"` } `json:"cash"`
					TotalDebt  struct{ Raw float64 `json:"raw"` } `json:"totalLiab"`
					StockholdersEquity struct{ Raw float64 `json:"raw"` } `json:"totalStockholderEquity"`
				} `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
			IncomeStatementHistory struct {
				Statements []struct {
					TotalRevenue struct{ Raw float64 `json:"raw"` } `json:"totalRevenue"`
					EBITDA       struct{ Raw float64 `json:"raw"` } `json:"ebitda"`
					NetIncome    struct{ Raw float64 `json:"raw"` } `json:"netIncome"`
					DilutedEPS   struct{ Raw float64 `json:"raw"` } `json:"dilutedEPS"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// Yahoo adapts Yahoo Finance's quoteSummary endpoint. Its series are already
// most-recent-first, the canonical convention this engine expects at the
// aggregator boundary, so no reversal is needed here (contrast FMP below).
type Yahoo struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewYahoo builds a Yahoo adapter. No API key is required for the public
// quoteSummary endpoint.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client:  resty.New().SetTimeout(5 * time.Second).SetBaseURL("https://query2.finance.yahoo.com"),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 2),
	}
}

func (y *Yahoo) Name() string       { return "yahoo" }
func (y *Yahoo) Priority() int      { return 1 }
func (y *Yahoo) Confidence() float64 { return 0.80 }

func (y *Yahoo) Fetch(ctx context.Context, ticker string, years int) (*models.FinancialData, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "yahoo: rate limiter wait", err)
	}

	var payload yahooChartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"modules": "price,defaultKeyStatistics,summaryProfile,cashflowStatementHistory,balanceSheetHistory,incomeStatementHistory",
		}).
		SetResult(&payload).
		Get(fmt.Sprintf("/v10/finance/quoteSummary/%s", ticker))

	if err != nil {
		return nil, enginerr.Wrap(enginerr.ProviderError, "yahoo: network error", err)
	}
	if resp.StatusCode() == 404 {
		return nil, enginerr.WithField(enginerr.ProviderError, "yahoo: ticker not found", "ticker")
	}
	if resp.StatusCode() == 429 {
		return nil, enginerr.New(enginerr.ProviderError, "yahoo: rate limited")
	}
	if resp.IsError() {
		return nil, enginerr.New(enginerr.ProviderError, fmt.Sprintf("yahoo: unexpected status %d", resp.StatusCode()))
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, enginerr.New(enginerr.ProviderError, "yahoo: schema mismatch, empty result set")
	}

	r := payload.QuoteSummary.Result[0]

	fd := &models.FinancialData{
		Ticker:            ticker,
		Providers:         []string{y.Name()},
		AsOf:              time.Now().UTC(),
		CurrentPrice:      r.Price.RegularMarketPrice.Raw,
		SharesOutstanding: r.DefaultKeyStatistics.SharesOutstanding.Raw,
		Beta:              r.DefaultKeyStatistics.Beta.Raw,
		Sector:            r.SummaryProfile.Sector,
		Country:           r.SummaryProfile.Country,
		Currency:          "USD",
	}

	n := min(years, len(r.CashflowStatementHistory.Statements))
	for i := 0; i < n; i++ {
		cf := r.CashflowStatementHistory.Statements[i]
		fd.OCF = append(fd.OCF, cf.OperatingCashFlow.Raw)
		capex := cf.CapitalExpenditures.Raw
		if capex < 0 {
			capex = -capex
		}
		fd.CAPEX = append(fd.CAPEX, capex)
	}

	if len(r.BalanceSheetHistory.Statements) > 0 {
		bs := r.BalanceSheetHistory.Statements[0]
		fd.Cash = bs.Cash.Raw
		fd.TotalDebt = bs.TotalDebt.Raw
		fd.BookValue = bs.StockholdersEquity.Raw
	}
	if len(r.IncomeStatementHistory.Statements) > 0 {
		is := r.IncomeStatementHistory.Statements[0]
		fd.Revenue = is.TotalRevenue.Raw
		fd.EBITDA = is.EBITDA.Raw
		fd.NetIncome = is.NetIncome.Raw
		fd.EPSDiluted = is.DilutedEPS.Raw
	}

	fd.DataCompleteness = completeness(fd)
	fd.Confidence = y.Confidence()

	return fd, nil
}
