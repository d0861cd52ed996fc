package projections

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lutefd/meetup-engine/internal/domain/badges"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/events"
)

// LogSource reads the full historical session log.
type LogSource interface {
	ListRecords(ctx context.Context) ([]stats.Record, error)
}

// SeasonContext is everything derived from one read of the log. It is
// passed explicitly to consumers and never mutated after Build.
type SeasonContext struct {
	Rows     []stats.Record
	Dates    []string
	Stats    []stats.PlayerStat
	ByPlayer map[string]stats.PlayerStat
	Pre      map[string]int
	Post     map[string]int
	Movers   stats.Movers
	Badges   badges.Result
	LoadedAt time.Time
}

// Sessions is the number of distinct dates in the log.
func (c *SeasonContext) Sessions() int {
	return len(c.Dates)
}

// Build derives a SeasonContext from rows.
func Build(rows []stats.Record, engine badges.Engine, basis stats.Basis) *SeasonContext {
	aggregated := stats.Aggregate(rows)
	byPlayer := stats.ByPlayer(aggregated)
	c := &SeasonContext{
		Rows:     rows,
		Dates:    stats.Dates(rows),
		Stats:    aggregated,
		ByPlayer: byPlayer,
		Movers:   stats.ComputeMovers(rows, basis),
	}
	if len(c.Dates) > 1 {
		c.Pre, c.Post = stats.PrePostRanks(rows, basis)
	}
	c.Badges = engine.Compute(rows, byPlayer, c.Pre, c.Post)
	return c
}

// Service memoises the SeasonContext until Invalidate is called.
type Service struct {
	source LogSource
	bus    *events.Bus
	logger *zap.Logger
	engine badges.Engine
	basis  stats.Basis
	now    func() time.Time

	mu     sync.Mutex
	cached *SeasonContext
}

func NewService(source LogSource, bus *events.Bus, logger *zap.Logger, engine badges.Engine) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: source,
		bus:    bus,
		logger: logger,
		engine: engine,
		basis:  stats.BasisPoints,
		now:    time.Now,
	}
}

// Subscribe invalidates the cache whenever a finished session is recorded.
func (s *Service) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.SessionRecorded, func(_ context.Context, _ events.Event) error {
		s.Invalidate()
		return nil
	})
}

// Context returns the cached SeasonContext, loading it on first use.
func (s *Service) Context(ctx context.Context) (*SeasonContext, error) {
	s.mu.Lock()
	if s.cached != nil {
		c := s.cached
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	rows, err := s.source.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load season log: %w", err)
	}
	c := Build(rows, s.engine, s.basis)
	c.LoadedAt = s.now().UTC()

	s.mu.Lock()
	s.cached = c
	s.mu.Unlock()

	s.logger.Info("season log loaded",
		zap.Int("records", len(rows)),
		zap.Int("sessions", c.Sessions()),
		zap.Int("players", len(c.Stats)),
	)
	if err := s.bus.Publish(ctx, events.Event{Name: events.LogReloaded, Payload: c}); err != nil {
		return c, err
	}
	return c, nil
}

// Invalidate drops the cached context so the next Context call reloads.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Reload forces a fresh read of the log.
func (s *Service) Reload(ctx context.Context) (*SeasonContext, error) {
	s.Invalidate()
	return s.Context(ctx)
}
