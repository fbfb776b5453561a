// Package currency converts amounts between currencies using a live
// exchange-rate feed.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"multicurrency_wallet/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Places converted amounts are rounded to
const Places = 4

// RateTable is one snapshot of the feed: every rate is quoted against Base
type RateTable struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// RateCache keeps fetched tables between requests
type RateCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Client fetches rate tables and converts amounts with them
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	cache      RateCache
	ttl        time.Duration
}

// Option customises a Client
type Option func(*Client)

// WithCache reuses rate tables for ttl
func WithCache(cache RateCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the feed at url; every feed call is bounded by timeout
func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts amount from one currency to another.
// Converting a currency to itself returns amount untouched and never calls the feed.
func (c *Client) Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount, nil
	}

	table, err := c.Rates(ctx)
	if err != nil {
		return decimal.Zero, &domain.ConversionError{From: from, To: to, Err: err}
	}
	converted, err := table.Convert(from, to, amount)
	if err != nil {
		return decimal.Zero, &domain.ConversionError{From: from, To: to, Err: err}
	}
	return converted, nil
}

// Currencies lists the codes the feed quotes, sorted
func (c *Client) Currencies(ctx context.Context) ([]string, error) {
	table, err := c.Rates(ctx)
	if err != nil {
		return nil, err
	}
	return table.Codes(), nil
}

// Rates returns the current rate table, from cache when possible
func (c *Client) Rates(ctx context.Context) (*RateTable, error) {
	key := "rates:" + c.url
	if c.cache != nil {
		var cached RateTable
		found, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Rate cache read failed")
		} else if found && len(cached.Rates) > 0 {
			return &cached, nil
		}
	}

	table, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, table, c.ttl); err != nil {
			logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Rate cache write failed")
		}
	}
	return table, nil
}

func (c *Client) fetch(ctx context.Context) (*RateTable, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var table RateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if table.Base == "" || len(table.Rates) == 0 {
		return nil, errors.New("rate feed returned an empty table")
	}
	table.Base = normalize(table.Base)

	logrus.WithFields(logrus.Fields{
		"base":     table.Base,
		"count":    len(table.Rates),
		"duration": time.Since(started).String(),
	}).Debug("Fetched exchange rates")
	return &table, nil
}

// Convert applies the table to amount. Amounts in a currency other than Base
// are first brought back to Base, then multiplied by the target rate.
func (t *RateTable) Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount, nil
	}
	toRate, err := t.rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	if from != t.Base {
		fromRate, err := t.rate(from)
		if err != nil {
			return decimal.Zero, err
		}
		amount = amount.DivRound(fromRate, 16)
	}
	return amount.Mul(toRate).Round(Places), nil
}

// Codes returns every quoted currency plus the base, sorted
func (t *RateTable) Codes() []string {
	codes := make([]string, 0, len(t.Rates)+1)
	seen := make(map[string]bool, len(t.Rates)+1)
	for code := range t.Rates {
		code = normalize(code)
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	if t.Base != "" && !seen[t.Base] {
		codes = append(codes, t.Base)
	}
	sort.Strings(codes)
	return codes
}

func (t *RateTable) rate(code string) (decimal.Decimal, error) {
	if code == t.Base {
		return decimal.NewFromInt(1), nil
	}
	r, ok := t.Rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("currency %s not quoted", code)
	}
	if !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("currency %s has non-positive rate %s", code, r)
	}
	return r, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
