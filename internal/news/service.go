package news

import (
	"context"
	"strconv"
	"sync"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// Service fetches news from a primary provider, falls back to a secondary one when the
// primary has nothing, and optionally caches results per ticker.
type Service struct {
	primary  interfaces.NewsProvider
	fallback interfaces.NewsProvider
	cache    *newsCache
}

var _ interfaces.NewsProvider = (*Service)(nil)

// newsCache stores fetched articles temporarily. A zero ttl disables it.
type newsCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	items     []types.NewsItem
	timestamp time.Time
}

func newNewsCache(ttl time.Duration) *newsCache {
	return &newsCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *newsCache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *newsCache) get(key string) ([]types.NewsItem, bool) {
	if !c.enabled() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().Sub(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.items, true
}

func (c *newsCache) set(key string, items []types.NewsItem) {
	if !c.enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{items: items, timestamp: c.now()}
}

// cleanup removes expired entries and returns how many were dropped.
func (c *newsCache) cleanup() int {
	if !c.enabled() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// NewService composes providers. fallback may be nil.
func NewService(primary, fallback interfaces.NewsProvider, cacheTTL time.Duration) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    newNewsCache(cacheTTL),
	}
}

// New builds the configured news service.
func New(cfg *store.Config) *Service {
	scraper := NewScraper("", cfg.Timeouts.News)
	if cfg.News.Provider == "SCRAPER" {
		return NewService(scraper, nil, cfg.News.CacheTTL)
	}

	primary := NewNewsAPI(NewsAPIParams{
		BaseURL:       cfg.News.BaseURL,
		APIKey:        cfg.Secrets.NewsAPIKey,
		Timeout:       cfg.Timeouts.News,
		RatePerSecond: cfg.News.RatePerSecond,
	})
	var fallback interfaces.NewsProvider
	if cfg.News.FallbackScraper {
		fallback = scraper
	}
	return NewService(primary, fallback, cfg.News.CacheTTL)
}

func (s *Service) Name() string {
	if s.fallback == nil {
		return s.primary.Name()
	}
	return s.primary.Name() + "+" + s.fallback.Name()
}

// News returns up to limit items for ticker. A primary failure is returned as is;
// a fallback failure after an empty primary result is logged and yields no news.
func (s *Service) News(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	key := cacheKey(ticker, limit)
	if cached, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached news", "ticker", ticker, "articles", len(cached))
		return cached, nil
	}

	items, err := s.primary.News(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 && s.fallback != nil {
		logger.Info(ctx, "No articles from primary source, trying fallback",
			"ticker", ticker, "primary", s.primary.Name(), "fallback", s.fallback.Name())
		fallbackItems, err := s.fallback.News(ctx, ticker, limit)
		if err != nil {
			logger.ErrorWithErr(ctx, "News fallback failed", err, "ticker", ticker)
		} else {
			items = fallbackItems
		}
	}

	s.cache.set(key, items)
	return items, nil
}

// CleanupCache drops expired cache entries. It is run by the scheduler.
func (s *Service) CleanupCache() int {
	return s.cache.cleanup()
}

// ClearCache removes all cached news
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

func cacheKey(ticker string, limit int) string {
	return ticker + "#" + strconv.Itoa(limit)
}
