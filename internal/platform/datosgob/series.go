// Package datosgob fetches the official BNA exchange rate from the
// datos.gob.ar time-series API.
package datosgob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

// Client queries a single series for its latest value.
type Client struct {
	apiURL     string
	serieID    string
	httpClient *http.Client
}

// NewClient creates a Client for the given series API root and series id.
func NewClient(apiURL, serieID string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		serieID:    serieID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// seriesResponse covers both payload shapes the API serves: a flat "data"
// matrix, or per-series objects each with their own matrix. Each data point
// is a ["YYYY-MM-DD", value] pair.
type seriesResponse struct {
	Data   [][]any `json:"data"`
	Series []struct {
		Data [][]any `json:"data"`
	} `json:"series"`
}

// Fetch implements domain.RateFetcher. Any transport, decode, or empty-data
// failure wraps domain.ErrSourceUnavailable; the rate is required for every
// conversion downstream.
func (c *Client) Fetch(ctx context.Context) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("ids", c.serieID)
	params.Set("limit", "1")
	params.Set("sort", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("datosgob: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("datosgob: fetch series %s: %w: %v", c.serieID, domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("datosgob: fetch series %s: %w: status %d", c.serieID, domain.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("datosgob: read response: %w: %v", domain.ErrSourceUnavailable, err)
	}

	var payload seriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("datosgob: decode response: %w: %v", domain.ErrSourceUnavailable, err)
	}

	data := payload.Data
	if len(data) == 0 && len(payload.Series) > 0 {
		data = payload.Series[0].Data
	}
	if len(data) == 0 || len(data[0]) < 2 {
		return decimal.Decimal{}, fmt.Errorf("datosgob: series %s: %w: no data points", c.serieID, domain.ErrSourceUnavailable)
	}

	value, ok := data[0][1].(float64)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("datosgob: series %s: %w: value is %T, want number", c.serieID, domain.ErrSourceUnavailable, data[0][1])
	}

	rate := decimal.NewFromFloat(value)
	if rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("datosgob: series %s: %w: non-positive rate %s", c.serieID, domain.ErrSourceUnavailable, rate)
	}
	return rate, nil
}
