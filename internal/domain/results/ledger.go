package results

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lutefd/meetup-engine/internal/domain/schedule"
)

// Ledger maps match ids to results. A match may hold a final score and a
// pending draft at the same time; saving a final clears the draft.
type Ledger struct {
	finals map[string]Final
	drafts map[string]Draft
}

func NewLedger() *Ledger {
	return &Ledger{finals: map[string]Final{}, drafts: map[string]Draft{}}
}

func (l *Ledger) ensure() {
	if l.finals == nil {
		l.finals = map[string]Final{}
	}
	if l.drafts == nil {
		l.drafts = map[string]Draft{}
	}
}

func fillFixture(id string, a, b, round *int) error {
	pa, pb, pr, ok := schedule.ParseMatchID(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMatch, id)
	}
	if *a == 0 && *b == 0 {
		*a, *b = pa, pb
	}
	if *round == 0 {
		*round = pr
	}
	return nil
}

// Save validates and stores a final result, returning what was stored.
// Nothing is mutated when validation fails.
func (l *Ledger) Save(id string, f Final) (Final, error) {
	if err := fillFixture(id, &f.A, &f.B, &f.Round); err != nil {
		return Final{}, err
	}
	if err := f.Validate(); err != nil {
		return Final{}, err
	}
	f = f.normalized()
	l.ensure()
	l.finals[id] = f
	delete(l.drafts, id)
	return f, nil
}

// SaveDraft merges d into any existing draft for id.
func (l *Ledger) SaveDraft(id string, d Draft) (Draft, error) {
	if err := fillFixture(id, &d.A, &d.B, &d.Round); err != nil {
		return Draft{}, err
	}
	l.ensure()
	merged := l.drafts[id].merge(d)
	l.drafts[id] = merged
	return merged, nil
}

// Get returns the final result for id, or its draft when none is saved.
func (l *Ledger) Get(id string) (Result, bool) {
	if f, ok := l.finals[id]; ok {
		return f, true
	}
	if d, ok := l.drafts[id]; ok {
		return d, true
	}
	return nil, false
}

func (l *Ledger) Final(id string) (Final, bool) {
	f, ok := l.finals[id]
	return f, ok
}

func (l *Ledger) Draft(id string) (Draft, bool) {
	d, ok := l.drafts[id]
	return d, ok
}

// Score implements schedule.Scores.
func (l *Ledger) Score(id string) (int, int, bool) {
	f, ok := l.finals[id]
	return f.GA, f.GB, ok
}

// Finals returns saved results ordered by match id.
func (l *Ledger) Finals() []Final {
	ids := make([]string, 0, len(l.finals))
	for id := range l.finals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Final, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.finals[id])
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.finals)
}

// Clear drops every final and draft.
func (l *Ledger) Clear() {
	l.finals = map[string]Final{}
	l.drafts = map[string]Draft{}
}

// RoundHasResults reports whether any final score exists for round r.
func (l *Ledger) RoundHasResults(r int) bool {
	for _, f := range l.finals {
		if f.Round == r {
			return true
		}
	}
	return false
}

// RemoveRound drops the trailing round r of a schedule with the given round
// count. Only an empty trailing round above the default count is removable.
// Drafts in that round are discarded. It returns the new round count.
func (l *Ledger) RemoveRound(r, rounds int) (int, error) {
	switch {
	case r != rounds:
		return rounds, fmt.Errorf("%w: round %d is not the last round", ErrRoundNotRemovable, r)
	case r <= schedule.DefaultRounds:
		return rounds, fmt.Errorf("%w: at least %d rounds are required", ErrRoundNotRemovable, schedule.DefaultRounds)
	case l.RoundHasResults(r):
		return rounds, fmt.Errorf("%w: round %d has results", ErrRoundNotRemovable, r)
	}
	for id, d := range l.drafts {
		if d.Round == r {
			delete(l.drafts, id)
		}
	}
	return max(schedule.DefaultRounds, r-1), nil
}

// AllScored reports whether every match has a final result.
func (l *Ledger) AllScored(matches []schedule.Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if _, ok := l.finals[m.ID]; !ok {
			return false
		}
	}
	return true
}

type record struct {
	A        int            `json:"a"`
	B        int            `json:"b"`
	Round    int            `json:"round"`
	GA       *int           `json:"ga,omitempty"`
	GB       *int           `json:"gb,omitempty"`
	GPA      map[string]int `json:"gpa,omitempty"`
	GPB      map[string]int `json:"gpb,omitempty"`
	GADraft  *int           `json:"gaDraft,omitempty"`
	GBDraft  *int           `json:"gbDraft,omitempty"`
	GPADraft map[string]int `json:"gpaDraft,omitempty"`
	GPBDraft map[string]int `json:"gpbDraft,omitempty"`
}

// MarshalJSON writes the ledger as one record per match id.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	out := map[string]record{}
	for id, f := range l.finals {
		ga, gb := f.GA, f.GB
		out[id] = record{A: f.A, B: f.B, Round: f.Round, GA: &ga, GB: &gb, GPA: f.GPA, GPB: f.GPB}
	}
	for id, d := range l.drafts {
		rec := out[id]
		rec.A, rec.B, rec.Round = d.A, d.B, d.Round
		rec.GADraft, rec.GBDraft, rec.GPADraft, rec.GPBDraft = d.GA, d.GB, d.GPA, d.GPB
		out[id] = rec
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads records written by MarshalJSON. Records carrying both
// totals become finals; draft fields become drafts.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var in map[string]record
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	l.Clear()
	for id, rec := range in {
		if rec.GA != nil && rec.GB != nil {
			l.finals[id] = Final{A: rec.A, B: rec.B, Round: rec.Round, GA: *rec.GA, GB: *rec.GB, GPA: rec.GPA, GPB: rec.GPB}
		}
		if rec.GADraft != nil || rec.GBDraft != nil || rec.GPADraft != nil || rec.GPBDraft != nil {
			l.drafts[id] = Draft{A: rec.A, B: rec.B, Round: rec.Round, GA: rec.GADraft, GB: rec.GBDraft, GPA: rec.GPADraft, GPB: rec.GPBDraft}
		}
	}
	return nil
}

// Sanitize repairs a decoded ledger. Entries whose id is not a match id are
// dropped, fixtures that disagree with the id are replaced and final totals
// are normalized. It reports whether anything changed.
func (l *Ledger) Sanitize() bool {
	l.ensure()
	changed := false
	for id, f := range l.finals {
		a, b, round, ok := schedule.ParseMatchID(id)
		if !ok {
			delete(l.finals, id)
			changed = true
			continue
		}
		fixed := f
		if !sameFixture(f.A, f.B, a, b) {
			fixed.A, fixed.B = a, b
		}
		fixed.Round = round
		fixed = fixed.normalized()
		if fixed.A != f.A || fixed.B != f.B || fixed.Round != f.Round || fixed.GA != f.GA || fixed.GB != f.GB ||
			len(fixed.GPA) != len(f.GPA) || len(fixed.GPB) != len(f.GPB) {
			changed = true
		}
		l.finals[id] = fixed
	}
	for id, d := range l.drafts {
		a, b, round, ok := schedule.ParseMatchID(id)
		if !ok {
			delete(l.drafts, id)
			changed = true
			continue
		}
		if !sameFixture(d.A, d.B, a, b) || d.Round != round {
			if !sameFixture(d.A, d.B, a, b) {
				d.A, d.B = a, b
			}
			d.Round = round
			l.drafts[id] = d
			changed = true
		}
	}
	return changed
}

func sameFixture(a, b, x, y int) bool {
	return (a == x && b == y) || (a == y && b == x)
}
