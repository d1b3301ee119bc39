package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"file-conversion-server/internal/domain"
)

const (
	baseCurrency     = "USD"
	maxRatesBodySize = 1 << 20
)

// fallbackRates is served whenever the live provider is unavailable.
var fallbackRates = map[string]float64{
	"USD": 1,
	"EUR": 0.85,
	"GBP": 0.73,
	"JPY": 110.0,
	"CAD": 1.25,
	"AUD": 1.35,
	"CHF": 0.92,
	"CNY": 6.45,
	"INR": 74.5,
	"KRW": 1180.0,
	"BRL": 5.2,
	"MXN": 20.0,
	"RUB": 75.0,
	"ZAR": 14.8,
	"SGD": 1.35,
	"NZD": 1.4,
	"HKD": 7.8,
	"SEK": 8.6,
	"NOK": 8.8,
	"DKK": 6.3,
}

// LiveRatesProvider fetches rates from an exchangerate-api compatible URL.
type LiveRatesProvider struct {
	url    string
	client *http.Client
}

// NewLiveRatesProvider creates a provider that gives up after timeout
func NewLiveRatesProvider(url string, timeout time.Duration) *LiveRatesProvider {
	return &LiveRatesProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Rates performs one GET against the configured URL.
func (p *LiveRatesProvider) Rates(ctx context.Context) (*domain.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates API returned status: %d", resp.StatusCode)
	}

	var result struct {
		Base  string             `json:"base"`
		Date  string             `json:"date"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRatesBodySize)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Rates) == 0 {
		return nil, fmt.Errorf("no rates returned")
	}

	base := strings.ToUpper(result.Base)
	if base == "" {
		base = baseCurrency
	}
	if _, ok := result.Rates[base]; !ok {
		result.Rates[base] = 1
	}
	date := result.Date
	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}

	return &domain.RateTable{
		Rates: result.Rates,
		Base:  base,
		Date:  date,
		Tier:  domain.RateTierLive,
	}, nil
}

// StaticRatesProvider serves the built-in USD table dated today.
type StaticRatesProvider struct {
	now func() time.Time
}

// NewStaticRatesProvider creates the fallback provider
func NewStaticRatesProvider() *StaticRatesProvider {
	return &StaticRatesProvider{now: time.Now}
}

// Rates never fails. The returned map is a copy.
func (p *StaticRatesProvider) Rates(ctx context.Context) (*domain.RateTable, error) {
	rates := make(map[string]float64, len(fallbackRates))
	for code, rate := range fallbackRates {
		rates[code] = rate
	}
	return &domain.RateTable{
		Rates: rates,
		Base:  baseCurrency,
		Date:  p.now().UTC().Format(time.DateOnly),
		Tier:  domain.RateTierFallback,
	}, nil
}

// RatesService asks the primary provider first and falls back on any error.
type RatesService struct {
	primary  domain.RatesProvider
	fallback domain.RatesProvider
	logger   domain.Logger
}

// NewRatesService creates a new rates service
func NewRatesService(primary, fallback domain.RatesProvider, logger domain.Logger) *RatesService {
	return &RatesService{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Rates implements domain.RatesProvider.
func (s *RatesService) Rates(ctx context.Context) (*domain.RateTable, error) {
	table, err := s.primary.Rates(ctx)
	if err == nil {
		return table, nil
	}
	s.logger.Warn("Live currency rates unavailable, serving fallback table", "error", err.Error())
	return s.fallback.Rates(ctx)
}
