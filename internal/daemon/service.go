// Package daemon provides the long-running background service: scheduled
// overdue sweeps, exchange-rate refreshes and a read-only HTTP/SSE API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath         string
	Addr           string
	EventsBuffer   int
	SweepSchedule  string
	RateSchedule   string
	AllowedOrigins []string
	Weights        invest.Weights
	// OnceRate is fetched at startup only; PeriodicRate follows RateSchedule.
	OnceRate     rates.Endpoint
	PeriodicRate rates.Endpoint
}

// Event types.
const (
	EventSweep  = "sweep"
	EventNotice = "notice"
	EventRate   = "rate"
)

// Event is published for every sweep, alert and rate fetch.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Message   *notify.Message `json:"message,omitempty"`
	Quote     *QuoteView      `json:"quote,omitempty"`
	Sweep     *SweepResult    `json:"sweep,omitempty"`
}

// SweepResult summarizes one overdue sweep.
type SweepResult struct {
	Day           string               `json:"day"`
	Notices       int                  `json:"notices"`
	Subscriptions subscription.Summary `json:"subscriptions"`
	Debts         debt.Totals          `json:"debts"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time    `json:"started_at"`
	LastSweepAt     time.Time    `json:"last_sweep_at"`
	SweepCount      int64        `json:"sweep_count"`
	LastRateAt      time.Time    `json:"last_rate_at"`
	SweepSchedule   string       `json:"sweep_schedule"`
	RateSchedule    string       `json:"rate_schedule"`
	DBPath          string       `json:"db_path"`
	Summary         *SweepResult `json:"summary,omitempty"`
	LastError       string       `json:"last_error,omitempty"`
	EventCount      int          `json:"event_count"`
	SubscriberCount int          `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	kv     store.KV
	rates  *rates.Client
	notify notify.Notifier
	log    *logrus.Logger
	today  func() date.Date

	latest rates.Latest

	// sweepMu serializes book writes between cron jobs.
	sweepMu sync.Mutex
	// alerted remembers the last debt state alerted per debt ID.
	alerted map[string]debt.State

	mu          sync.RWMutex
	startedAt   time.Time
	lastSweepAt time.Time
	sweepCount  int64
	lastRateAt  time.Time
	lastError   string
	summary     *SweepResult
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, kv store.KV, rc *rates.Client, n notify.Notifier, log *logrus.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = "@every 1h"
	}
	if cfg.RateSchedule == "" {
		cfg.RateSchedule = "@every 10m"
	}
	if cfg.Weights.USStocks.IsZero() && cfg.Weights.USETF.IsZero() {
		cfg.Weights = invest.DefaultWeights()
	}

	return &Service{
		cfg:       cfg,
		kv:        kv,
		rates:     rc,
		notify:    n,
		log:       log,
		today:     date.Today,
		alerted:   make(map[string]debt.State),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts the scheduler and HTTP endpoints until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.SweepSchedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("scheduling sweep %q: %w", s.cfg.SweepSchedule, err)
	}
	if _, err := sched.AddFunc(s.cfg.RateSchedule, func() { s.RefreshRate(ctx, s.cfg.PeriodicRate) }); err != nil {
		return fmt.Errorf("scheduling rate refresh %q: %w", s.cfg.RateSchedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Seed state so status is useful immediately.
	s.Sweep(ctx)
	for _, q := range s.rates.FetchAll(ctx, s.cfg.OnceRate, s.cfg.PeriodicRate) {
		s.recordQuote(q)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sched.Start()
		<-ctx.Done()
		<-sched.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	s.log.WithFields(logrus.Fields{
		"addr":  s.cfg.Addr,
		"sweep": s.cfg.SweepSchedule,
		"rates": s.cfg.RateSchedule,
	}).Info("daemon started")

	return g.Wait()
}

// Sweep evaluates subscriptions and debts for today, saves any new delay
// records and sends alerts.
func (s *Service) Sweep(ctx context.Context) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	today := s.today()
	now := time.Now()

	result, msgs, err := s.sweepOnce(today, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastSweepAt = now
		s.sweepCount++
		s.mu.Unlock()
		s.log.WithError(err).Error("sweep failed")
		return
	}

	s.mu.Lock()
	s.summary = &result
	s.lastSweepAt = now
	s.sweepCount++
	s.lastError = ""
	s.mu.Unlock()

	for i := range msgs {
		s.publishEvent(Event{Type: EventNotice, Timestamp: now, Message: &msgs[i]})
	}
	s.publishEvent(Event{Type: EventSweep, Timestamp: now, Sweep: &result})

	if len(msgs) > 0 && s.notify != nil {
		if err := s.notify.Notify(ctx, msgs...); err != nil {
			s.log.WithError(err).Warn("delivering alerts")
		}
	}
}

func (s *Service) sweepOnce(today date.Date, now time.Time) (SweepResult, []notify.Message, error) {
	subs, err := subscription.Open(s.kv)
	if err != nil {
		return SweepResult{}, nil, err
	}
	notices, err := subs.Evaluate(today)
	if err != nil {
		return SweepResult{}, nil, fmt.Errorf("saving subscriptions: %w", err)
	}
	msgs := make([]notify.Message, 0, len(notices))
	for _, n := range notices {
		msgs = append(msgs, notify.FromNotice(n, now))
	}

	debts, err := debt.Open(s.kv)
	if err != nil {
		return SweepResult{}, nil, err
	}
	seen := make(map[string]bool, debts.Len())
	for _, d := range debts.Debts() {
		seen[d.ID] = true
		state := debt.Classify(d, today)
		if s.alerted[d.ID] == state {
			continue
		}
		s.alerted[d.ID] = state
		if m, ok := notify.FromDebt(d, today, now); ok {
			msgs = append(msgs, m)
		}
	}
	for id := range s.alerted {
		if !seen[id] {
			delete(s.alerted, id)
		}
	}

	return SweepResult{
		Day:           today.String(),
		Notices:       len(msgs),
		Subscriptions: subscription.Summarize(subs.Items()),
		Debts:         debt.Summarize(debts.Debts(), today),
	}, msgs, nil
}

// RefreshRate fetches ep and publishes the quote.
func (s *Service) RefreshRate(ctx context.Context, ep rates.Endpoint) {
	s.recordQuote(s.rates.Fetch(ctx, ep))
}

func (s *Service) recordQuote(q rates.Quote) {
	s.latest.Set(q)
	s.mu.Lock()
	s.lastRateAt = q.FetchedAt
	s.mu.Unlock()

	v := quoteView(q)
	s.publishEvent(Event{Type: EventRate, Timestamp: q.FetchedAt, Quote: &v})
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastSweepAt:     s.lastSweepAt,
		SweepCount:      s.sweepCount,
		LastRateAt:      s.lastRateAt,
		SweepSchedule:   s.cfg.SweepSchedule,
		RateSchedule:    s.cfg.RateSchedule,
		DBPath:          s.cfg.DBPath,
		Summary:         s.summary,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
