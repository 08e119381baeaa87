package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFMP(baseURL string) *FMP {
	return &FMP{
		client:  resty.New().SetBaseURL(baseURL),
		apiKey:  "testkey",
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestFMPFetchReversesOldestFirstCashFlows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/profile/"):
			w.Write([]byte(`[{"price":100,"beta":1.1,"mktCap":1000000,"sector":"Technology","country":"US","currency":"USD"}]`))
		case strings.Contains(r.URL.Path, "/cash-flow-statement/"):
			w.Write([]byte(`[{"operatingCashFlow":300,"capitalExpenditure":-60,"date":"2023-01-01"},{"operatingCashFlow":200,"capitalExpenditure":-40,"date":"2024-01-01"}]`))
		case strings.Contains(r.URL.Path, "/balance-sheet-statement/"):
			w.Write([]byte(`[{"cashAndCashEquivalents":500,"totalDebt":100,"totalStockholdersEquity":2000}]`))
		case strings.Contains(r.URL.Path, "/income-statement/"):
			w.Write([]byte(`[{"revenue":5000,"ebitda":1200,"netIncome":600,"epsdiluted":3.1}]`))
		}
	}))
	defer server.Close()

	f := newTestFMP(server.URL)
	fd, err := f.Fetch(context.Background(), "ACME", 2)
	require.NoError(t, err)

	require.Len(t, fd.OCF, 2)
	assert.Equal(t, 200.0, fd.OCF[0], "most recent (2024) statement should be first after reversal")
	assert.Equal(t, 300.0, fd.OCF[1])
	assert.Equal(t, 40.0, fd.CAPEX[0])
	assert.Equal(t, 10000.0, fd.SharesOutstanding, "mktCap/price should derive shares outstanding")
	assert.Equal(t, 500.0, fd.Cash)
	assert.Equal(t, 5000.0, fd.Revenue)
}

func TestFMPFetchRejectsTickerNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFMP(server.URL)
	_, err := f.Fetch(context.Background(), "NOPE", 2)
	require.Error(t, err)
}

func TestFMPFetchRejectsMissingAPIKey(t *testing.T) {
	f := &FMP{client: resty.New(), apiKey: "", limiter: rate.NewLimiter(rate.Inf, 1)}
	_, err := f.Fetch(context.Background(), "ACME", 2)
	require.Error(t, err)
}

func TestSharesFromMktCap(t *testing.T) {
	assert.Equal(t, 0.0, sharesFromMktCap(1000, 0))
	assert.Equal(t, 100.0, sharesFromMktCap(1000, 10))
}
