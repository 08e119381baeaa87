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

func newTestAlphaVantage(baseURL string) *AlphaVantage {
	return &AlphaVantage{
		client:  resty.New().SetBaseURL(baseURL),
		apiKey:  "testkey",
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestAlphaVantageFetchParsesOverviewAndQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "OVERVIEW":
			w.Write([]byte(`{"Symbol":"ACME","Sector":"Technology","Country":"USA","Currency":"USD","Beta":"1.2","SharesOutstanding":"1000000","RevenueTTM":"50000000","EBITDA":"10000000","DilutedEPSTTM":"2.5","BookValue":"30000000"}`))
		case "GLOBAL_QUOTE":
			w.Write([]byte(`{"Global Quote":{"05. price":"123.45"}}`))
		}
	}))
	defer server.Close()

	a := newTestAlphaVantage(server.URL)
	fd, err := a.Fetch(context.Background(), "ACME", 5)
	require.NoError(t, err)
	assert.Equal(t, 123.45, fd.CurrentPrice)
	assert.Equal(t, "Technology", fd.Sector)
	assert.Equal(t, 1.2, fd.Beta)
}

func TestAlphaVantageFetchRejectsMissingAPIKey(t *testing.T) {
	a := &AlphaVantage{client: resty.New(), apiKey: "", limiter: rate.NewLimiter(rate.Inf, 1)}
	_, err := a.Fetch(context.Background(), "ACME", 5)
	require.Error(t, err)
}

func TestAlphaVantageFetchSurfacesRateLimitNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`))
	}))
	defer server.Close()

	a := newTestAlphaVantage(server.URL)
	_, err := a.Fetch(context.Background(), "ACME", 5)
	require.Error(t, err)
}

func TestAlphaVantageFetchRejectsUnknownTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	a := newTestAlphaVantage(server.URL)
	_, err := a.Fetch(context.Background(), "NOPE", 5)
	require.Error(t, err)
}

func TestParseFloatOrZeroHandlesSentinels(t *testing.T) {
	cases := map[string]float64{"": 0, "None": 0, "-": 0, "3.14": 3.14}
	for in, want := range cases {
		assert.Equal(t, want, parseFloatOrZero(in), "parseFloatOrZero(%q)", in)
	}
}
