package finnhub

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ShortScan/internal/domain/models"
	drepo "ShortScan/internal/domain/repository"
	httpclient "ShortScan/pkg/http"
	"ShortScan/pkg/util"
)

const (
	candlePath      = "/stock/candle"
	dailyResolution = "D"
	statusOK        = "ok"
	statusNoData    = "no_data"
)

// Client implements a PriceSource backed by the Finnhub REST candle endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

var _ drepo.PriceSource = (*Client)(nil)

// New creates a new Finnhub PriceSource. The http client carries timeout,
// rate limit and retry policy.
func New(apiKey, baseURL string, http *httpclient.Client) *Client {
	if http == nil {
		http = httpclient.NewClient()
	}
	return &Client{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), http: http}
}

// candleResponse is the columnar payload of /stock/candle.
type candleResponse struct {
	Close     []float64 `json:"c"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Open      []float64 `json:"o"`
	Volume    []float64 `json:"v"`
	Timestamp []int64   `json:"t"`
	Status    string    `json:"s"`
}

// Fetch returns daily bars with dates in [start, end). A "no_data" answer is an
// empty history, not an error.
func (c *Client) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceRecord, error) {
	from, to := util.DayRange(start, end)
	req := &httpclient.RequestOptions{
		URL: c.baseURL + candlePath,
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {dailyResolution},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix()-1, 10)},
		},
		Headers: map[string]string{"X-Finnhub-Token": c.apiKey},
	}

	var resp candleResponse
	if err := c.http.SendAndParse(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}
	switch resp.Status {
	case statusNoData:
		return nil, nil
	case statusOK:
	default:
		return nil, fmt.Errorf("finnhub candles %s: status %q", symbol, resp.Status)
	}

	n := len(resp.Timestamp)
	if len(resp.Close) != n || len(resp.Open) != n || len(resp.High) != n || len(resp.Low) != n {
		return nil, fmt.Errorf("finnhub candles %s: ragged columns", symbol)
	}
	out := make([]models.PriceRecord, 0, n)
	for i, ts := range resp.Timestamp {
		day := util.Day(time.Unix(ts, 0))
		if !util.InDayRange(day, start, end) {
			continue
		}
		rec := models.PriceRecord{
			Symbol: symbol,
			Date:   day,
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
		}
		if i < len(resp.Volume) {
			rec.Volume = int64(resp.Volume[i])
		}
		out = append(out, rec)
	}
	return out, nil
}
