package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lutefd/meetup-engine/internal/domain/ratings"
	"github.com/lutefd/meetup-engine/internal/domain/results"
	"github.com/lutefd/meetup-engine/internal/domain/schedule"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

// State is the persisted session blob.
type State struct {
	ID        uuid.UUID                 `json:"id"`
	Players   []string                  `json:"players"`
	Ratings   map[string]ratings.Rating `json:"ratings,omitempty"`
	Attendees []string                  `json:"attendees"`
	Teams     []teams.Team              `json:"teams"`
	Results   *results.Ledger           `json:"results"`
	Rounds    int                       `json:"rounds"`
	// Seed is the roster seed used when the teams were generated; the
	// schedule and kickoffs derive from it.
	Seed uint32 `json:"seed,omitempty"`
	// Timestamp is unix milliseconds of the last reset or first generation;
	// zero means unset.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// NewState is a fresh session with the default roster.
func NewState() State {
	return State{
		ID:        uuid.New(),
		Players:   append([]string(nil), ratings.DefaultPlayers...),
		Ratings:   ratings.DefaultRoster().Snapshot(),
		Attendees: []string{},
		Teams:     []teams.Team{},
		Results:   results.NewLedger(),
		Rounds:    schedule.DefaultRounds,
	}
}

// Time returns the timestamp, or the zero time when unset.
func (s State) Time() time.Time {
	if s.Timestamp <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.Timestamp)
}

// Reset describes one section of a loaded blob that had to be repaired.
type Reset struct {
	Code    string
	Message string
}

func (r Reset) key() string {
	return r.Code + ":" + r.Message
}

func (r Reset) String() string {
	return fmt.Sprintf("[%s] %s", r.Code, r.Message)
}

func cleanNames(in []string) ([]string, bool) {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, len(out) != len(in)
}

// Sanitize repairs a decoded blob section by section and reports every
// section it had to touch.
func Sanitize(s State, maxAttendees int) (State, []Reset) {
	var resets []Reset

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	players, changed := cleanNames(s.Players)
	switch {
	case len(players) == 0:
		s.Players = append([]string(nil), ratings.DefaultPlayers...)
		resets = append(resets, Reset{"VAL101", "Player list empty after cleaning"})
	case changed:
		s.Players = players
		resets = append(resets, Reset{"VAL101", "Removed invalid player entries"})
	}

	attendees, changed := cleanNames(s.Attendees)
	if maxAttendees > 0 && len(attendees) > maxAttendees {
		attendees, changed = attendees[:maxAttendees], true
	}
	s.Attendees = attendees
	if changed {
		resets = append(resets, Reset{"VAL102", "Removed invalid attendee entries"})
	}

	if s.Timestamp < 0 {
		s.Timestamp = 0
		resets = append(resets, Reset{"VAL104", "Timestamp was invalid"})
	}

	teamsChanged := false
	cleaned := make([]teams.Team, 0, len(s.Teams))
	for i, t := range s.Teams {
		members, changed := cleanNames(t.Members)
		teamsChanged = teamsChanged || changed
		t.Members = members
		if t.ID <= 0 {
			t.ID = i + 1
			teamsChanged = true
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = t.Color
			if t.Name == "" {
				t.Name = fmt.Sprintf("Team %d", i+1)
			}
			teamsChanged = true
		}
		cleaned = append(cleaned, t)
	}
	s.Teams = cleaned
	if teamsChanged {
		resets = append(resets, Reset{"VAL103", "Teams contained invalid entries"})
	}

	if s.Results == nil {
		s.Results = results.NewLedger()
	} else if s.Results.Sanitize() {
		resets = append(resets, Reset{"VAL105", "Cleaned invalid result entries"})
	}

	if s.Rounds < 1 {
		s.Rounds = schedule.DefaultRounds
		resets = append(resets, Reset{"VAL106", "Rounds was not a valid positive number"})
	}

	if s.Ratings == nil {
		s.Ratings = map[string]ratings.Rating{}
	}
	ratingsChanged := false
	for name, r := range s.Ratings {
		fixed := ratings.Rating{
			Skill:   ratings.Normalize(r.Skill, ratings.DefaultSkill),
			Stamina: ratings.Normalize(r.Stamina, ratings.DefaultStamina),
		}
		if fixed != r {
			s.Ratings[name] = fixed
			ratingsChanged = true
		}
	}
	if ratingsChanged {
		resets = append(resets, Reset{"VAL107", "Ratings were out of range"})
	}
	return s, resets
}
