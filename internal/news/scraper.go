package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const defaultGoogleNewsURL = "https://news.google.com"

// Scraper reads the Google News RSS search feed. It needs no API key and is used
// as a fallback when the primary source has nothing for a ticker.
type Scraper struct {
	baseURL string
	timeout time.Duration
}

var _ interfaces.NewsProvider = (*Scraper)(nil)

// NewScraper creates a Google News scraper; an empty baseURL uses news.google.com.
func NewScraper(baseURL string, timeout time.Duration) *Scraper {
	if baseURL == "" {
		baseURL = defaultGoogleNewsURL
	}
	return &Scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (s *Scraper) Name() string { return "googlenews" }

// News scrapes up to limit items for ticker.
func (s *Scraper) News(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	items := []types.NewsItem{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(s.baseURL)),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(items) >= limit {
			return
		}

		title := strings.TrimSpace(e.ChildText("title"))
		link := strings.TrimSpace(e.ChildText("link"))
		if title == "" || link == "" {
			return
		}

		snippet := stripHTML(e.ChildText("description"))
		if snippet == "" {
			snippet = title
		}
		published, _ := time.Parse(time.RFC1123, strings.TrimSpace(e.ChildText("pubDate")))

		items = append(items, types.NewsItem{
			Title:       title,
			Snippet:     snippet,
			PublishedAt: published,
			URL:         link,
			Source:      strings.TrimSpace(e.ChildText("source")),
		})
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.Warn(ctx, "Google News scraping error", "status", r.StatusCode, "error", err)
	})

	searchURL := fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		s.baseURL, url.QueryEscape(ticker+" stock"))

	if err := c.Visit(searchURL); err != nil {
		return nil, apperr.Upstream(stage, s.Name(), fmt.Errorf("failed to visit %s: %w", searchURL, err))
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, apperr.Upstream(stage, s.Name(), scrapeErr)
	}

	logger.Debug(ctx, "Google News scraping completed", "ticker", ticker, "articles", len(items))
	return items, nil
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
