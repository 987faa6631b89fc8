// Package rates fetches the USD/BRL exchange rate from public JSON APIs.
//
// Fetches are best effort. A failed fetch yields an unavailable Quote
// rather than an error so callers can hide dollar figures and carry on.
package rates

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

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnavailable indicates the source answered without a usable rate.
	ErrUnavailable = errors.New("rates: rate unavailable")
	// ErrRateLimited indicates the source refused the request for volume.
	ErrRateLimited = errors.New("rates: rate limited")
)

// Client fetches quotes over HTTP.
type Client struct {
	http    *http.Client
	timeout time.Duration
	log     *logrus.Logger
	now     func() time.Time
}

// NewClient creates a client. A zero timeout uses the default; a nil
// logger discards output.
func NewClient(timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{http: &http.Client{}, timeout: timeout, log: log, now: time.Now}
}

// Fetch reads one quote from ep.
func (c *Client) Fetch(ctx context.Context, ep Endpoint) Quote {
	q := Quote{Source: ep.Source, FetchedAt: c.now()}

	rate, err := c.fetchRate(ctx, ep)
	if err != nil {
		q.Err = err
		c.log.WithError(err).WithField("source", ep.Source).Warn("rate fetch failed")
		return q
	}

	one := decimal.NewFromInt(1)
	if ep.BRLPerUSD {
		q.BRLPerUSD = rate
		q.USDPerBRL = one.Div(rate)
	} else {
		q.USDPerBRL = rate
		q.BRLPerUSD = one.Div(rate)
	}
	c.log.WithFields(logrus.Fields{"source": ep.Source, "brl_per_usd": q.BRLPerUSD.StringFixed(4)}).Debug("rate fetched")
	return q
}

// FetchAll fetches every endpoint concurrently. Quotes come back in the
// order of eps.
func (c *Client) FetchAll(ctx context.Context, eps ...Endpoint) []Quote {
	quotes := make([]Quote, len(eps))
	g, ctx := errgroup.WithContext(ctx)
	for i, ep := range eps {
		g.Go(func() error {
			quotes[i] = c.Fetch(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()
	return quotes
}

func (c *Client) fetchRate(ctx context.Context, ep Endpoint) (decimal.Decimal, error) {
	body, err := c.get(ctx, ep.URL)
	if err != nil {
		return decimal.Zero, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return decimal.Zero, fmt.Errorf("rates: parsing %s response: %w", ep.Source, err)
	}
	return extract(doc, ep.Path)
}

// extract reads a positive number at path. The value may be a JSON number
// or a numeric string.
func extract(doc any, path string) (decimal.Decimal, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	// jsonpath may wrap a single match in a list.
	if list, ok := val.([]any); ok && len(list) > 0 {
		val = list[0]
	}

	var d decimal.Decimal
	switch v := val.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s is %q", ErrUnavailable, path, v)
		}
	default:
		return decimal.Zero, fmt.Errorf("%w: %s is %T", ErrUnavailable, path, val)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s is %s", ErrUnavailable, path, d)
	}
	return d, nil
}

// get performs a GET and returns the body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/fintrack/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("rates: reading response: %w", err)
	}
	return body, nil
}

// Latest holds the most recent quote per source. It is safe for
// concurrent use.
type Latest struct {
	mu     sync.RWMutex
	quotes map[Source]Quote
}

// Set records q, replacing any earlier quote from the same source.
func (l *Latest) Set(q Quote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quotes == nil {
		l.quotes = make(map[Source]Quote)
	}
	l.quotes[q.Source] = q
}

// Get returns the quote for s.
func (l *Latest) Get(s Source) (Quote, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	q, ok := l.quotes[s]
	return q, ok
}

// All returns the recorded quotes in source order.
func (l *Latest) All() []Quote {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Quote
	for _, s := range []Source{AwesomeAPI, CurrencyAPI} {
		if q, ok := l.quotes[s]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Best returns the first available recorded quote.
func (l *Latest) Best() (Quote, bool) {
	return Best(l.All()...)
}
