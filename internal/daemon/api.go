package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
)

// QuoteView is a Quote with its error flattened for JSON.
type QuoteView struct {
	rates.Quote
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func quoteView(q rates.Quote) QuoteView {
	return QuoteView{Quote: q, Available: q.Available(), Error: q.ErrText()}
}

// DebtView is a debt with its derived ledger figures.
type DebtView struct {
	model.Debt
	TotalPaid decimal.Decimal `json:"totalPaid"`
	Remaining decimal.Decimal `json:"remaining"`
	Progress  decimal.Decimal `json:"progress"`
	State     debt.State      `json:"state"`
}

// WalletView is served at /v1/wallet.
type WalletView struct {
	Wallet     model.Wallet     `json:"wallet"`
	ProfitLoss invest.Report    `json:"profit_loss"`
	DollarUSD  *decimal.Decimal `json:"dollar_usd,omitempty"`
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Last-Event-ID"},
			MaxAge:         300,
		}).Handler)
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/summary", s.handleSummary)
		r.Get("/subscriptions", s.handleSubscriptions)
		r.Get("/subscriptions/{id}", s.handleSubscription)
		r.Get("/debts", s.handleDebts)
		r.Get("/debts/{id}", s.handleDebt)
		r.Get("/wallet", s.handleWallet)
		r.Get("/rates", s.handleRates)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// evaluated loads subscriptions with flags recomputed for today. Delay
// records are only persisted by the sweep.
func (s *Service) evaluated() ([]model.Subscription, error) {
	b, err := subscription.Open(s.kv)
	if err != nil {
		return nil, err
	}
	items := b.Items()
	subscription.Evaluate(items, s.today())
	return items, nil
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	items, err := s.evaluated()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	debts, err := debt.Open(s.kv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": subscription.Summarize(items),
		"debts":         debt.Summarize(debts.Debts(), s.today()),
	})
}

func (s *Service) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	f, err := subscription.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := s.evaluated()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, subscription.Apply(items, f))
}

func (s *Service) handleSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	items, err := s.evaluated()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	for _, it := range items {
		if it.ID == id {
			writeJSON(w, http.StatusOK, it)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", subscription.ErrNotFound, id))
}

func (s *Service) debtView(d model.Debt) DebtView {
	return DebtView{
		Debt:      d,
		TotalPaid: debt.TotalPaid(d),
		Remaining: debt.Balance(d),
		Progress:  debt.Progress(d),
		State:     debt.Classify(d, s.today()),
	}
}

func (s *Service) handleDebts(w http.ResponseWriter, r *http.Request) {
	f, err := debt.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := debt.Open(s.kv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views := []DebtView{}
	for _, d := range debt.Apply(b.Debts(), f) {
		views = append(views, s.debtView(d))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Service) handleDebt(w http.ResponseWriter, r *http.Request) {
	b, err := debt.Open(s.kv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	d, err := b.Find(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, s.debtView(d))
}

func (s *Service) handleWallet(w http.ResponseWriter, _ *http.Request) {
	b, err := invest.OpenWallet(s.kv, s.cfg.Weights)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	v := WalletView{Wallet: b.Wallet(), ProfitLoss: b.ProfitLoss()}
	if q, ok := s.latest.Best(); ok {
		if usd, ok := invest.ConvertBRL(v.ProfitLoss.Dollar.Current, q.USDPerBRL); ok {
			v.DollarUSD = &usd
		}
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleRates(w http.ResponseWriter, _ *http.Request) {
	views := []QuoteView{}
	for _, q := range s.latest.All() {
		views = append(views, quoteView(q))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the latest sweep immediately.
	st := s.snapshotStatus()
	writeSSE(w, Event{Type: EventSweep, Timestamp: time.Now(), Sweep: st.Summary})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
