package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stock-advisor/internal/api"
	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	stage             = "news"
	defaultNewsAPIURL = "https://newsapi.org"
	// NewsAPI returns at most 100 articles per page; we over-fetch because many lack a description.
	newsAPIPageSize = 20
)

// NewsAPI fetches recent English-language articles mentioning a ticker from newsapi.org.
type NewsAPI struct {
	client *api.Client
	apiKey string
}

var _ interfaces.NewsProvider = (*NewsAPI)(nil)

type NewsAPIParams struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
}

func NewNewsAPI(p NewsAPIParams) *NewsAPI {
	if p.BaseURL == "" {
		p.BaseURL = defaultNewsAPIURL
	}
	return &NewsAPI{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(p.BaseURL, "/")),
			api.WithTimeout(p.Timeout),
			api.WithRateLimit(p.RatePerSecond, 1),
			api.WithHeader("Accept", "application/json"),
			api.WithLogging(true),
		),
		apiKey: p.APIKey,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// News returns up to limit articles, newest first. Articles without both a title and a description are skipped.
func (n *NewsAPI) News(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	if n.apiKey == "" {
		return nil, apperr.Upstream(stage, n.Name(), errors.New("NEWS_API_KEY is not set"))
	}

	q := url.Values{}
	q.Set("q", `"`+ticker+`"`)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(max(limit, newsAPIPageSize)))
	q.Set("apiKey", n.apiKey)

	resp, err := n.client.GET(ctx, "/v2/everything?"+q.Encode())
	if err != nil {
		return nil, apperr.FromTransport(stage, n.Name(), "", err)
	}

	var out newsAPIResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, apperr.Upstream(stage, n.Name(), err)
	}
	if out.Status != "ok" {
		return nil, apperr.Upstream(stage, n.Name(), fmt.Errorf("%s: %s", out.Code, out.Message))
	}

	items := make([]types.NewsItem, 0, limit)
	for _, a := range out.Articles {
		if len(items) >= limit {
			break
		}
		title := stripHTML(a.Title)
		snippet := stripHTML(a.Description)
		if title == "" || snippet == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		items = append(items, types.NewsItem{
			Title:       title,
			Snippet:     snippet,
			PublishedAt: published,
			URL:         a.URL,
			Source:      a.Source.Name,
		})
	}
	return items, nil
}

// stripHTML reduces an HTML fragment to its visible text with whitespace collapsed.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
