package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"valuationengine/pkg/enginerr"
)

// fallbackRiskFreeRate is used only when both the JSON endpoint and the HTML
// scrape fail; it keeps the WACC Engine able to produce a (degraded) result
// instead of hard-failing on every request during a Treasury outage.
const fallbackRiskFreeRate = 0.0445

type treasuryDailyResponse struct {
	Data []map[string]string `json:"data"`
}

// maturityColumn maps a requested maturity in years to the Treasury daily
// par-yield-curve column name, for both the JSON and HTML paths.
func maturityColumn(years int) string {
	switch {
	case years <= 2:
		return "2 Yr"
	case years <= 5:
		return "5 Yr"
	case years <= 7:
		return "7 Yr"
	case years <= 10:
		return "10 Yr"
	case years <= 20:
		return "20 Yr"
	default:
		return "30 Yr"
	}
}

// Treasury probes the U.S. Treasury's daily par-yield-curve data for the
// risk-free rate used in CAPM. It tries a JSON feed first and falls back to
// scraping the published HTML table, grounded on the goquery fallback-parse
// pattern used for Treasury-style tabular data elsewhere in the ecosystem.
type Treasury struct {
	client *resty.Client
}

// NewTreasury builds a Treasury-yield probe.
func NewTreasury() *Treasury {
	return &Treasury{
		client: resty.New().SetTimeout(5 * time.Second),
	}
}

func (t *Treasury) Name() string        { return "treasury" }
func (t *Treasury) Priority() int       { return 1 }
func (t *Treasury) Confidence() float64 { return 0.95 }

// Rate returns the par yield for the maturity bucket nearest maturityYears,
// plus a source tag ("treasury_json", "treasury_html", or "fallback_static").
func (t *Treasury) Rate(ctx context.Context, maturityYears int) (float64, string, error) {
	if rate, err := t.fetchJSON(ctx, maturityYears); err == nil {
		return rate, "treasury_json", nil
	}
	if rate, err := t.fetchHTML(ctx, maturityYears); err == nil {
		return rate, "treasury_html", nil
	}
	return fallbackRiskFreeRate, "fallback_static", nil
}

func (t *Treasury) fetchJSON(ctx context.Context, maturityYears int) (float64, error) {
	var payload treasuryDailyResponse
	resp, err := t.client.R().SetContext(ctx).
		SetResult(&payload).
		Get("https://home.treasury.gov/resource-center/data-chart-center/interest-rates/daily-treasury-rates.csv/all/data.json")
	if err != nil {
		return 0, enginerr.Wrap(enginerr.ProviderError, "treasury: json fetch failed", err)
	}
	if resp.IsError() || len(payload.Data) == 0 {
		return 0, enginerr.New(enginerr.ProviderError, "treasury: json feed empty or errored")
	}

	col := maturityColumn(maturityYears)
	latest := payload.Data[len(payload.Data)-1]
	raw, ok := latest[col]
	if !ok {
		return 0, enginerr.WithField(enginerr.ProviderError, "treasury: column not present in feed", col)
	}
	return parsePercent(raw)
}

func (t *Treasury) fetchHTML(ctx context.Context, maturityYears int) (float64, error) {
	resp, err := t.client.R().SetContext(ctx).
		Get("https://home.treasury.gov/resource-center/data-chart-center/interest-rates/TextView?type=daily_treasury_yield_curve")
	if err != nil {
		return 0, enginerr.Wrap(enginerr.ProviderError, "treasury: html fetch failed", err)
	}
	if resp.IsError() {
		return 0, enginerr.New(enginerr.ProviderError, "treasury: html fetch status error")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return 0, enginerr.Wrap(enginerr.ProviderError, "treasury: html parse failed", err)
	}

	col := maturityColumn(maturityYears)
	var headers []string
	doc.Find("table.t-chart thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})
	colIdx := -1
	for i, h := range headers {
		if h == col {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return 0, enginerr.WithField(enginerr.ProviderError, "treasury: column not found in html table", col)
	}

	var lastRow []string
	doc.Find("table.t-chart tbody tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			lastRow = cells
		}
	})
	if colIdx >= len(lastRow) {
		return 0, enginerr.New(enginerr.ProviderError, "treasury: html row shorter than header")
	}
	return parsePercent(lastRow[colIdx])
}

func parsePercent(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, enginerr.Wrap(enginerr.ProviderError, fmt.Sprintf("treasury: cannot parse yield %q", raw), err)
	}
	return v / 100.0, nil
}
