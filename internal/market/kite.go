package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-advisor/internal/apperr"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// Kite reads daily candles from Zerodha Kite Connect for an Indian exchange.
type Kite struct {
	kc       *kiteconnect.Client
	exchange string
	mapper   *instrumentMapper
	timeout  time.Duration
}

var _ interfaces.PriceHistoryProvider = (*Kite)(nil)

type KiteParams struct {
	APIKey      string
	AccessToken string
	Exchange    string
	Timeout     time.Duration
}

func NewKite(p KiteParams) *Kite {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	exchange := p.Exchange
	if exchange == "" {
		exchange = "NSE"
	}
	return &Kite{
		kc:       kc,
		exchange: exchange,
		mapper:   newInstrumentMapper(),
		timeout:  p.Timeout,
	}
}

func (k *Kite) Name() string { return "kite" }

func (k *Kite) History(ctx context.Context, ticker string, from, to time.Time) ([]types.PricePoint, error) {
	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	token, err := k.token(ctx, ticker)
	if err != nil {
		return nil, err
	}

	candles, err := callCtx(ctx, func() ([]kiteconnect.HistoricalData, error) {
		return k.kc.GetHistoricalData(int(token), "day", from, to, false, false)
	})
	if err != nil {
		return nil, apperr.Upstream(stagePrice, k.Name(), err)
	}

	points := make([]types.PricePoint, 0, len(candles))
	for _, c := range candles {
		points = append(points, types.PricePoint{
			Date:   c.Date.Time.UTC(),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: float64(c.Volume),
		})
	}
	return points, nil
}

// token resolves a trading symbol, loading the exchange instrument dump on first use.
func (k *Kite) token(ctx context.Context, ticker string) (uint32, error) {
	symbol := kiteSymbol(ticker)
	if tok, ok := k.mapper.getToken(symbol); ok {
		return tok, nil
	}
	if !k.mapper.loaded() {
		instruments, err := callCtx(ctx, func() (kiteconnect.Instruments, error) {
			return k.kc.GetInstrumentsByExchange(k.exchange)
		})
		if err != nil {
			return 0, apperr.Upstream(stagePrice, k.Name(), fmt.Errorf("load instruments: %w", err))
		}
		for _, inst := range instruments {
			k.mapper.addMapping(inst.Tradingsymbol, uint32(inst.InstrumentToken))
		}
		k.mapper.markLoaded()
		logger.Info(ctx, "Loaded Kite instruments", "exchange", k.exchange, "count", len(instruments))
	}
	if tok, ok := k.mapper.getToken(symbol); ok {
		return tok, nil
	}
	return 0, apperr.InvalidTicker(stagePrice, ticker, errors.New("not listed on "+k.exchange))
}

// kiteSymbol strips Yahoo-style exchange suffixes (RELIANCE.NS -> RELIANCE).
func kiteSymbol(ticker string) string {
	for _, suffix := range []string{".NS", ".BO"} {
		if strings.HasSuffix(ticker, suffix) {
			return strings.TrimSuffix(ticker, suffix)
		}
	}
	return ticker
}

// instrumentMapper manages bidirectional mapping between symbols and tokens
type instrumentMapper struct {
	symbolToToken map[string]uint32
	tokenToSymbol map[uint32]string
	isLoaded      bool
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]uint32),
		tokenToSymbol: make(map[uint32]string),
	}
}

func (im *instrumentMapper) addMapping(symbol string, token uint32) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
	im.tokenToSymbol[token] = symbol
}

func (im *instrumentMapper) getToken(symbol string) (uint32, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}

func (im *instrumentMapper) getSymbol(token uint32) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.tokenToSymbol[token]
}

func (im *instrumentMapper) markLoaded() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.isLoaded = true
}

func (im *instrumentMapper) loaded() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.isLoaded
}
