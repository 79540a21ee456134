package market

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	defaultYahooURL = "https://query1.finance.yahoo.com"
	stagePrice      = "price"
)

// Yahoo reads daily bars from the Yahoo Finance chart v8 endpoint.
type Yahoo struct {
	client *api.Client
}

var _ interfaces.PriceHistoryProvider = (*Yahoo)(nil)

func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = defaultYahooURL
	}
	return &Yahoo{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// yahooChart mirrors the chart response; price arrays hold nulls for non-trading rows.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprint(from.Unix()))
	q.Set("period2", fmt.Sprint(to.Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	path := "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + q.Encode()

	resp, err := y.client.GET(ctx, path)
	if err != nil {
		return nil, apperr.FromTransport(stagePrice, y.Name(), ticker, err)
	}

	var chart yahooChart
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, apperr.Upstream(stagePrice, y.Name(), err)
	}
	if e := chart.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, apperr.InvalidTicker(stagePrice, ticker, fmt.Errorf("yahoo: %s", e.Description))
		}
		return nil, apperr.Upstream(stagePrice, y.Name(), fmt.Errorf("yahoo api error %s: %s", e.Code, e.Description))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, apperr.InvalidTicker(stagePrice, ticker, fmt.Errorf("yahoo: no chart result"))
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []types.PricePoint{}, nil
	}
	quote := result.Indicators.Quote[0]

	points := make([]types.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue
		}
		points = append(points, types.PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   deref(at(quote.Open, i), *c),
			High:   deref(at(quote.High, i), *c),
			Low:    deref(at(quote.Low, i), *c),
			Close:  *c,
			Volume: deref(at(quote.Volume, i), 0),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
