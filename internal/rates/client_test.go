package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAwesomeAPI(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"USDBRL":{"code":"USD","codein":"BRL","bid":"5.0000","ask":"5.01"}}`)
	ep := AwesomeEndpoint
	ep.URL = srv.URL

	q := NewClient(time.Second, nil).Fetch(context.Background(), ep)
	if !q.Available() {
		t.Fatalf("quote unavailable: %v", q.Err)
	}
	if !q.BRLPerUSD.Equal(decimal.NewFromInt(5)) {
		t.Errorf("BRLPerUSD = %s, want 5", q.BRLPerUSD)
	}
	if !q.USDPerBRL.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("USDPerBRL = %s, want 0.2", q.USDPerBRL)
	}
	if q.Status() != "1 USD = R$ 5.0000" {
		t.Errorf("Status = %q", q.Status())
	}
}

func TestFetchCurrencyAPI(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"date":"2025-06-15","brl":{"eur":0.16,"usd":0.25}}`)
	ep := CurrencyEndpoint
	ep.URL = srv.URL

	q := NewClient(time.Second, nil).Fetch(context.Background(), ep)
	if !q.Available() {
		t.Fatalf("quote unavailable: %v", q.Err)
	}
	if !q.USDPerBRL.Equal(decimal.RequireFromString("0.25")) || !q.BRLPerUSD.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("quote = %s / %s", q.USDPerBRL, q.BRLPerUSD)
	}
}

func TestFetchFailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
		{"missing field", http.StatusOK, `{"brl":{"eur":0.16}}`, ErrUnavailable},
		{"zero rate", http.StatusOK, `{"brl":{"usd":0}}`, ErrUnavailable},
		{"not a number", http.StatusOK, `{"brl":{"usd":"n/a"}}`, ErrUnavailable},
		{"server error", http.StatusInternalServerError, ``, nil},
		{"bad json", http.StatusOK, `{`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			ep := CurrencyEndpoint
			ep.URL = srv.URL

			q := NewClient(time.Second, nil).Fetch(context.Background(), ep)
			if q.Available() || q.Err == nil {
				t.Fatalf("quote should be unavailable, got %+v", q)
			}
			if tt.want != nil && !errors.Is(q.Err, tt.want) {
				t.Fatalf("err = %v, want %v", q.Err, tt.want)
			}
			if q.Status() != "unavailable" || q.ErrText() == "" {
				t.Fatalf("status = %q err = %q", q.Status(), q.ErrText())
			}
		})
	}
}

func TestFetchAllKeepsOrder(t *testing.T) {
	good := serve(t, http.StatusOK, `{"USDBRL":{"bid":"5"}}`)
	bad := serve(t, http.StatusBadGateway, ``)
	a, c := AwesomeEndpoint, CurrencyEndpoint
	a.URL, c.URL = good.URL, bad.URL

	quotes := NewClient(time.Second, nil).FetchAll(context.Background(), c, a)
	if len(quotes) != 2 || quotes[0].Source != CurrencyAPI || quotes[1].Source != AwesomeAPI {
		t.Fatalf("quotes = %+v", quotes)
	}
	best, ok := Best(quotes...)
	if !ok || best.Source != AwesomeAPI {
		t.Fatalf("Best = %+v, %v", best, ok)
	}
}

func TestLatest(t *testing.T) {
	var l Latest
	if _, ok := l.Best(); ok {
		t.Fatal("empty Latest should have no best quote")
	}
	l.Set(Quote{Source: CurrencyAPI, USDPerBRL: decimal.RequireFromString("0.2"), BRLPerUSD: decimal.NewFromInt(5)})
	l.Set(Quote{Source: AwesomeAPI, Err: ErrUnavailable})

	all := l.All()
	if len(all) != 2 || all[0].Source != AwesomeAPI {
		t.Fatalf("All = %+v", all)
	}
	best, ok := l.Best()
	if !ok || best.Source != CurrencyAPI {
		t.Fatalf("Best = %+v", best)
	}
}
