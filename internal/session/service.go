// Package session orchestrates one meetup: roster, teams, schedule and
// results, persisted as a single blob after every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lutefd/meetup-engine/internal/domain/ratings"
	"github.com/lutefd/meetup-engine/internal/domain/results"
	"github.com/lutefd/meetup-engine/internal/domain/schedule"
	"github.com/lutefd/meetup-engine/internal/domain/seed"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
	"github.com/lutefd/meetup-engine/internal/events"
	"github.com/lutefd/meetup-engine/internal/storage"
)

var (
	ErrTooFewAttendees = errors.New("not enough attendees")
	ErrTeamCountChoice = errors.New("team count must be chosen")
	ErrNeedTwoTeams    = errors.New("at least two teams are required")
	ErrAttendeeLimit   = errors.New("attendee limit reached")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrEmptyName       = errors.New("name is required")
)

// Store persists the session blob.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// RecordSink receives the summary rows of a finished session.
type RecordSink interface {
	AppendRecords(ctx context.Context, rows []stats.Record) error
}

type Options struct {
	MaxAttendees int
	SeedWindow   time.Duration
	Harmony      teams.Harmony
	Records      RecordSink
	Bus          *events.Bus
	Logger       *zap.Logger
}

type Service struct {
	store        Store
	records      RecordSink
	bus          *events.Bus
	logger       *zap.Logger
	harmony      teams.Harmony
	maxAttendees int
	seedWindow   time.Duration
	now          func() time.Time

	mu      sync.Mutex
	state   State
	ratings *ratings.Store
	warned  map[string]struct{}
}

func NewService(store Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxAttendees <= 0 {
		opts.MaxAttendees = 20
	}
	if opts.SeedWindow <= 0 {
		opts.SeedWindow = seed.StableWindow
	}
	s := &Service{
		store:        store,
		records:      opts.Records,
		bus:          opts.Bus,
		logger:       opts.Logger,
		harmony:      opts.Harmony,
		maxAttendees: opts.MaxAttendees,
		seedWindow:   opts.SeedWindow,
		now:          time.Now,
		warned:       map[string]struct{}{},
	}
	s.adopt(NewState())
	return s
}

func (s *Service) adopt(st State) {
	merged := ratings.DefaultRoster().Snapshot()
	for name, r := range st.Ratings {
		merged[name] = r
	}
	s.ratings = ratings.NewStore(merged)
	s.state = st
}

// warn logs each distinct reset once per service.
func (s *Service) warn(r Reset) {
	if _, ok := s.warned[r.key()]; ok {
		return
	}
	s.warned[r.key()] = struct{}{}
	s.logger.Warn("session state repaired", zap.String("code", r.Code), zap.String("reason", r.Message))
}

// Load reads the persisted blob, repairs it and writes it back when anything
// was reset. A missing blob starts a fresh session.
func (s *Service) Load(ctx context.Context) error {
	st, err := s.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.adopt(NewState())
		s.logger.Info("starting new session", zap.String("session_id", s.state.ID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	st, resets := Sanitize(st, s.maxAttendees)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(st)
	for _, r := range resets {
		s.warn(r)
	}
	if len(resets) > 0 {
		return s.save(ctx)
	}
	return nil
}

func (s *Service) save(ctx context.Context) error {
	s.state.Ratings = s.ratings.Snapshot()
	if err := s.store.Save(ctx, s.state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, name string, payload any) {
	if err := s.bus.Publish(ctx, events.Event{Name: name, Payload: payload}); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", name), zap.Error(err))
	}
}

// State returns a snapshot of the session. The ledger is shared and must be
// treated as read-only.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Players = append([]string(nil), st.Players...)
	st.Attendees = append([]string(nil), st.Attendees...)
	st.Teams = teams.Clone(st.Teams)
	st.Ratings = s.ratings.Snapshot()
	return st
}

func (s *Service) Ratings() *ratings.Store {
	return s.ratings
}

func (s *Service) MaxAttendees() int {
	return s.maxAttendees
}

// AddAttendee adds a known or new name. Duplicates are ignored.
func (s *Service) AddAttendee(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Attendees {
		if a == name {
			return nil
		}
	}
	if len(s.state.Attendees) >= s.maxAttendees {
		return fmt.Errorf("%w: %d", ErrAttendeeLimit, s.maxAttendees)
	}
	s.state.Attendees = append(s.state.Attendees, name)
	return s.save(ctx)
}

func (s *Service) RemoveAttendee(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.state.Attendees {
		if a == name {
			s.state.Attendees = append(s.state.Attendees[:i], s.state.Attendees[i+1:]...)
			return s.save(ctx)
		}
	}
	return nil
}

func (s *Service) uniqueName(name string) string {
	taken := map[string]struct{}{}
	for _, n := range append(append([]string(nil), s.state.Players...), s.state.Attendees...) {
		taken[strings.ToLower(n)] = struct{}{}
	}
	if _, ok := taken[strings.ToLower(name)]; !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}

// AddIncidentalPlayer registers a one-off player under a unique name, rates
// them and adds them to the attendees when there is room. It returns the
// name actually used.
func (s *Service) AddIncidentalPlayer(ctx context.Context, name string, skill, stamina float64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.uniqueName(name)
	r := ratings.Rating{Skill: ratings.Snap(skill, ratings.DefaultSkill), Stamina: ratings.Snap(stamina, ratings.DefaultStamina)}

	// Nothing is committed in memory until the store accepts the new state.
	next := s.state
	next.Players = append(slices.Clone(s.state.Players), final)
	next.Attendees = slices.Clone(s.state.Attendees)
	if len(next.Attendees) < s.maxAttendees {
		next.Attendees = append(next.Attendees, final)
	}
	next.Ratings = s.ratings.Snapshot()
	next.Ratings[final] = r
	if err := s.store.Save(ctx, next); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	s.ratings.Set(final, r.Skill, r.Stamina)
	s.state = next
	return final, nil
}

// SetRating snaps and stores a player's ratings.
func (s *Service) SetRating(ctx context.Context, name string, skill, stamina float64) (ratings.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.ratings.Set(name, skill, stamina)
	return r, s.save(ctx)
}

// Reset clears attendees, teams and results and starts a new timestamp.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Attendees = []string{}
	s.state.Teams = []teams.Team{}
	s.state.Results = results.NewLedger()
	s.state.Rounds = schedule.DefaultRounds
	s.state.Seed = 0
	s.state.Timestamp = s.now().UnixMilli()
	if err := s.save(ctx); err != nil {
		return err
	}
	s.publish(ctx, events.SessionReset, s.state.ID)
	return nil
}

// TeamCountOptions lists the splits offered when the count is ambiguous.
func (s *Service) TeamCountOptions() []teams.CountOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return teams.CountOptions(len(s.state.Attendees))
}

// Generate assigns the attendees to teams. count overrides the derived team
// count and is required when teams.NeedsChoice holds. Results are cleared and
// the round count returns to the default.
func (s *Service) Generate(ctx context.Context, count int) ([]teams.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.Attendees)
	if n < teams.MinAttendees {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewAttendees, n, teams.MinAttendees)
	}
	if count <= 0 && teams.NeedsChoice(n) {
		return nil, ErrTeamCountChoice
	}
	now := s.now()
	if s.state.Timestamp == 0 {
		s.state.Timestamp = now.UnixMilli()
	}
	rosterSeed := seed.FromAttendees(s.state.Attendees, now, s.seedWindow)
	generated := teams.Assign(teams.Input{
		Attendees: s.state.Attendees,
		Ratings:   s.ratings,
		Count:     count,
		Harmony:   s.harmony,
		Seed:      rosterSeed,
	})
	if v := s.harmony.Violations(generated); len(v) > 0 {
		s.logger.Warn("harmony pairs left unresolved", zap.Int("pairs", len(v)))
	}

	s.state.Teams = generated
	s.state.Seed = rosterSeed
	s.state.Results = results.NewLedger()
	s.state.Rounds = schedule.DefaultRounds
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("teams generated", zap.Int("attendees", n), zap.Int("teams", len(generated)))
	s.publish(ctx, events.TeamsGenerated, teams.Clone(generated))
	return teams.Clone(generated), nil
}

// Schedule is the session's matches in play order.
func (s *Service) Schedule() []schedule.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.Schedule(s.state.Teams, s.state.Seed, s.state.Rounds)
}

// Forecasts annotates the schedule with win and draw odds.
func (s *Service) Forecasts() []schedule.Forecast {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := schedule.Schedule(s.state.Teams, s.state.Seed, s.state.Rounds)
	return schedule.Forecasts(s.state.Teams, matches, s.ratings)
}

// NextKickoff is the next unplayed match and the team that starts it.
func (s *Service) NextKickoff() (schedule.Kickoff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := schedule.Schedule(s.state.Teams, s.state.Seed, s.state.Rounds)
	return schedule.NextKickoff(matches, s.state.Seed, s.state.Results)
}

func (s *Service) AddRound(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.state.Teams) < 2 {
		return s.state.Rounds, ErrNeedTwoTeams
	}
	s.state.Rounds = max(1, s.state.Rounds) + 1
	if err := s.save(ctx); err != nil {
		return s.state.Rounds, err
	}
	s.publish(ctx, events.RoundAdded, s.state.Rounds)
	return s.state.Rounds, nil
}

// RemoveRound drops the trailing round when it has no final results.
func (s *Service) RemoveRound(ctx context.Context, round int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rounds, err := s.state.Results.RemoveRound(round, s.state.Rounds)
	if err != nil {
		return s.state.Rounds, err
	}
	s.state.Rounds = rounds
	if err := s.save(ctx); err != nil {
		return rounds, err
	}
	s.publish(ctx, events.RoundRemoved, rounds)
	return rounds, nil
}

// RenameTeam sets a team's display name. An empty name keeps the old one.
func (s *Service) RenameTeam(ctx context.Context, id int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Teams {
		if s.state.Teams[i].ID != id {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			s.state.Teams[i].Name = name
		}
		return s.save(ctx)
	}
	return fmt.Errorf("%w: %d", ErrUnknownTeam, id)
}

func (s *Service) scheduled(id string) bool {
	for _, m := range schedule.Schedule(s.state.Teams, s.state.Seed, s.state.Rounds) {
		if m.ID == id {
			return true
		}
	}
	return false
}

// SaveResult validates and stores a final score for a scheduled match.
func (s *Service) SaveResult(ctx context.Context, matchID string, f results.Final) (results.Final, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scheduled(matchID) {
		return results.Final{}, fmt.Errorf("%w: %q", results.ErrUnknownMatch, matchID)
	}
	saved, err := s.state.Results.Save(matchID, f)
	if err != nil {
		return results.Final{}, err
	}
	if err := s.save(ctx); err != nil {
		return saved, err
	}
	s.publish(ctx, events.ResultSaved, saved)
	return saved, nil
}

func (s *Service) SaveDraft(ctx context.Context, matchID string, d results.Draft) (results.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scheduled(matchID) {
		return results.Draft{}, fmt.Errorf("%w: %q", results.ErrUnknownMatch, matchID)
	}
	merged, err := s.state.Results.SaveDraft(matchID, d)
	if err != nil {
		return results.Draft{}, err
	}
	return merged, s.save(ctx)
}

// Complete reports whether every scheduled match has a final result.
func (s *Service) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Results.AllScored(schedule.Schedule(s.state.Teams, s.state.Seed, s.state.Rounds))
}

// Record appends the session summary to the season log under date
// (YYYY-MM-DD, today when empty) and returns the appended rows.
func (s *Service) Record(ctx context.Context, date string) ([]stats.Record, error) {
	if s.records == nil {
		return nil, errors.New("no season log configured")
	}
	s.mu.Lock()
	if date == "" {
		date = s.now().Format(time.DateOnly)
	}
	summary := results.Summary(date, s.state.Teams, s.state.Results)
	tracked := anyTracked(s.state.Results)
	s.mu.Unlock()

	if len(summary) == 0 {
		return nil, ErrNeedTwoTeams
	}
	rows := make([]stats.Record, 0, len(summary))
	for _, r := range summary {
		rec := stats.Record{Date: r.Date, Player: r.Player, Points: float64(r.Points)}
		if tracked {
			rec.Goals = stats.Goals(float64(r.Goals))
		}
		rows = append(rows, rec)
	}
	if err := s.records.AppendRecords(ctx, rows); err != nil {
		return nil, fmt.Errorf("append season records: %w", err)
	}
	s.logger.Info("session recorded", zap.String("date", date), zap.Int("players", len(rows)))
	s.publish(ctx, events.SessionRecorded, date)
	return rows, nil
}

func anyTracked(l *results.Ledger) bool {
	for _, f := range l.Finals() {
		if f.Tracked() {
			return true
		}
	}
	return false
}
