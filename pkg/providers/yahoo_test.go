package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestYahoo(baseURL string) *Yahoo {
	return &Yahoo{
		client:  resty.New().SetBaseURL(baseURL),
		limiter: rate.NewLimiter(rate.Inf, 2),
	}
}

const yahooFixture = `{"quoteSummary":{"result":[{
	"price":{"regularMarketPrice":{"raw":88.5}},
	"defaultKeyStatistics":{"beta":{"raw":0.95},"sharesOutstanding":{"raw":2000000}},
	"summaryProfile":{"sector":"Healthcare","country":"US"},
	"cashflowStatementHistory":{"cashflowStatements":[
		{"totalCashFromOperatingActivities":{"raw":400},"capitalExpenditures":{"raw":-50}},
		{"totalCashFromOperatingActivities":{"raw":350},"capitalExpenditures":{"raw":-45}}
	]},
	"balanceSheetHistory":{"balanceSheetStatements":[{"cash":{"raw":700},"totalLiab":{"raw":200},"totalStockholderEquity":{"raw":3000}}]},
	"incomeStatementHistory":{"incomeStatementHistory":[{"totalRevenue":{"raw":6000},"ebitda":{"raw":1500},"netIncome":{"raw":800},"dilutedEPS":{"raw":4.2}}]}
}]}}`

func TestYahooFetchKeepsMostRecentFirstOrdering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooFixture))
	}))
	defer server.Close()

	y := newTestYahoo(server.URL)
	fd, err := y.Fetch(context.Background(), "ACME", 2)
	require.NoError(t, err)

	require.Len(t, fd.OCF, 2)
	assert.Equal(t, 400.0, fd.OCF[0], "first statement should already be most-recent without reversal")
	assert.Equal(t, 50.0, fd.CAPEX[0])
	assert.Equal(t, "Healthcare", fd.Sector)
	assert.Equal(t, 2000000.0, fd.SharesOutstanding)
}

func TestYahooFetchTruncatesToRequestedYears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooFixture))
	}))
	defer server.Close()

	y := newTestYahoo(server.URL)
	fd, err := y.Fetch(context.Background(), "ACME", 1)
	require.NoError(t, err)
	assert.Len(t, fd.OCF, 1)
}

func TestYahooFetchRejectsTickerNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	y := newTestYahoo(server.URL)
	_, err := y.Fetch(context.Background(), "NOPE", 2)
	require.Error(t, err)
}

func TestYahooFetchRejectsEmptyResultSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[]}}`))
	}))
	defer server.Close()

	y := newTestYahoo(server.URL)
	_, err := y.Fetch(context.Background(), "ACME", 2)
	require.Error(t, err)
}
