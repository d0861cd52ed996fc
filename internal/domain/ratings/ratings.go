package ratings

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	Min     = 1.0
	Max     = 5.0
	Step    = 0.5
	Default = 3.0

	DefaultSkill   = Default
	DefaultStamina = Default
)

// Rating is a player's skill and stamina on the [Min, Max] scale.
type Rating struct {
	Skill   float64 `json:"skill"`
	Stamina float64 `json:"stamina"`
}

// Lookup is the read side consumed by team assignment.
type Lookup interface {
	Skill(name string) float64
	Stamina(name string) float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalize clamps value to [Min, Max] and rounds to two decimals.
// Non-finite input falls back to fallback, and then to Default.
func Normalize(value, fallback float64) float64 {
	if !finite(fallback) {
		fallback = Default
	}
	base := value
	if !finite(base) {
		base = fallback
	}
	return round2(math.Min(Max, math.Max(Min, base)))
}

// ParseNormalize is Normalize for raw text such as form or CSV input.
func ParseNormalize(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		v = math.NaN()
	}
	return Normalize(v, fallback)
}

// Snap normalizes value and quantizes it to the nearest Step.
func Snap(value, fallback float64) float64 {
	n := Normalize(value, fallback)
	steps := math.Round((n - Min) / Step)
	return round2(math.Min(Max, math.Max(Min, Min+steps*Step)))
}

// Store holds per-player ratings. Entries are added or edited, never removed.
type Store struct {
	mu      sync.RWMutex
	ratings map[string]Rating
}

func NewStore(seed map[string]Rating) *Store {
	s := &Store{ratings: make(map[string]Rating, len(seed))}
	for name, r := range seed {
		s.ratings[name] = r
	}
	return s
}

func (s *Store) Skill(name string) float64 {
	s.mu.RLock()
	r, ok := s.ratings[name]
	s.mu.RUnlock()
	if !ok {
		return DefaultSkill
	}
	return Normalize(r.Skill, DefaultSkill)
}

func (s *Store) Stamina(name string) float64 {
	s.mu.RLock()
	r, ok := s.ratings[name]
	s.mu.RUnlock()
	if !ok {
		return DefaultStamina
	}
	return Normalize(r.Stamina, DefaultStamina)
}

func (s *Store) Get(name string) (Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[name]
	return r, ok
}

// Set snaps both values to the rating step before storing them.
func (s *Store) Set(name string, skill, stamina float64) Rating {
	r := Rating{Skill: Snap(skill, DefaultSkill), Stamina: Snap(stamina, DefaultStamina)}
	s.mu.Lock()
	s.ratings[name] = r
	s.mu.Unlock()
	return r
}

func (s *Store) SetSkill(name string, skill float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[name]
	if !ok {
		r.Stamina = DefaultStamina
	}
	r.Skill = Snap(skill, DefaultSkill)
	s.ratings[name] = r
}

func (s *Store) SetStamina(name string, stamina float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[name]
	if !ok {
		r.Skill = DefaultSkill
	}
	r.Stamina = Snap(stamina, DefaultStamina)
	s.ratings[name] = r
}

// Snapshot returns a copy suitable for persistence.
func (s *Store) Snapshot() map[string]Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Rating, len(s.ratings))
	for k, v := range s.ratings {
		out[k] = v
	}
	return out
}

func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.ratings))
	for name := range s.ratings {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}
