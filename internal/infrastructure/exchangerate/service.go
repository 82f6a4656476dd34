// Package exchangerate fetches currency conversion rates from exchangerate-api.com.
package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/config"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const (
	defaultBaseURL  = "https://v6.exchangerate-api.com/v6"
	defaultCacheTTL = time.Hour
	// maxCacheAge bounds how stale a rate may be when the API is failing.
	maxCacheAge    = 24 * time.Hour
	requestTimeout = 10 * time.Second
	// Maximum response body size (256KB); the payload lists every currency.
	maxResponseSize = 256 << 10
)

var ErrNotConfigured = errors.New("exchange rate API key not configured")

type latestResponse struct {
	Result          string                 `json:"result"`
	ErrorType       string                 `json:"error-type"`
	ConversionRates map[string]json.Number `json:"conversion_rates"`
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// Service caches rates per currency pair and collapses concurrent fetches for
// the same base currency into one request.
type Service struct {
	baseURL    string
	apiKey     string
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     logger.Interface
	now        func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cachedRate
}

func NewService(cfg config.ExchangeRateConfig, logger logger.Interface) *Service {
	s := &Service{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		now:        biztime.NowUTC,
		cache:      make(map[string]cachedRate),
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURL
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	return s
}

// Rate returns how many units of to one unit of from is worth.
func (s *Service) Rate(ctx context.Context, from, to shared.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	key := pairKey(from, to)
	now := s.now()

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && now.Sub(cached.fetchedAt) < s.cacheTTL {
		return cached.rate, nil
	}

	if s.apiKey == "" {
		return decimal.Zero, ErrNotConfigured
	}

	v, err, _ := s.group.Do(string(from), func() (any, error) {
		return s.fetch(ctx, from)
	})
	if err != nil {
		if ok && now.Sub(cached.fetchedAt) < maxCacheAge {
			s.logger.Warnw("failed to fetch exchange rate, using cached value",
				"error", err,
				"pair", key,
				"cached_rate", cached.rate.String(),
				"cache_age", now.Sub(cached.fetchedAt),
			)
			return cached.rate, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get %s rate: %w", key, err)
	}

	rates := v.(map[shared.Currency]decimal.Decimal)
	rate, found := rates[to]
	if !found {
		return decimal.Zero, fmt.Errorf("no %s rate in response for %s", to, from)
	}
	return rate, nil
}

// fetch loads every rate for base and refreshes the cache for supported pairs.
func (s *Service) fetch(ctx context.Context, base shared.Currency) (map[shared.Currency]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if data.Result != "success" {
		return nil, fmt.Errorf("exchange rate API error: %s", data.ErrorType)
	}

	now := s.now()
	rates := make(map[shared.Currency]decimal.Decimal)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range []shared.Currency{shared.CurrencyINR, shared.CurrencyUSD} {
		raw, ok := data.ConversionRates[c.String()]
		if !ok {
			continue
		}
		rate, err := decimal.NewFromString(raw.String())
		if err != nil || !rate.IsPositive() {
			s.logger.Warnw("ignoring invalid rate", "base", base, "currency", c, "value", raw.String())
			continue
		}
		rates[c] = rate
		s.cache[pairKey(base, c)] = cachedRate{rate: rate, fetchedAt: now}
	}

	s.logger.Infow("fetched exchange rates", "base", base, "currencies", len(rates))
	return rates, nil
}

func pairKey(from, to shared.Currency) string {
	return from.String() + "/" + to.String()
}
