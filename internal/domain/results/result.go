package results

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// GuestPlayer is the scorer slot offered to three-player teams. Its goals
// count toward the team total but never toward player stats.
const GuestPlayer = "Guest player"

var (
	ErrGoalsNotDistributed = errors.New("goals not distributed")
	ErrRoundNotRemovable   = errors.New("round cannot be removed")
	ErrUnknownMatch        = errors.New("unknown match id")
)

func IsGuest(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), GuestPlayer)
}

// Result is either a Final or a Draft.
type Result interface {
	fixture() (a, b, round int)
}

// Final is a saved score. GPA/GPB are nil when scorers were not tracked.
type Final struct {
	A     int            `json:"a"`
	B     int            `json:"b"`
	Round int            `json:"round"`
	GA    int            `json:"ga"`
	GB    int            `json:"gb"`
	GPA   map[string]int `json:"gpa,omitempty"`
	GPB   map[string]int `json:"gpb,omitempty"`
}

// Draft is an in-progress entry. Unset fields keep whatever was drafted before.
type Draft struct {
	A     int            `json:"a"`
	B     int            `json:"b"`
	Round int            `json:"round"`
	GA    *int           `json:"gaDraft,omitempty"`
	GB    *int           `json:"gbDraft,omitempty"`
	GPA   map[string]int `json:"gpaDraft,omitempty"`
	GPB   map[string]int `json:"gpbDraft,omitempty"`
}

func (f Final) fixture() (int, int, int) { return f.A, f.B, f.Round }
func (d Draft) fixture() (int, int, int) { return d.A, d.B, d.Round }

// Tracked reports whether goals were attributed to players.
func (f Final) Tracked() bool {
	return f.GPA != nil || f.GPB != nil
}

func positive(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	return lo.PickBy(in, func(_ string, n int) bool { return n > 0 })
}

func distributed(in map[string]int) int {
	return lo.Sum(lo.Values(positive(in)))
}

// GoalDistributionError is returned when tracked scorers do not cover the
// entered totals.
type GoalDistributionError struct {
	NeedA, NeedB int
	HaveA, HaveB int
}

func (e *GoalDistributionError) Error() string {
	return fmt.Sprintf("distribute all goals to players: need %d-%d, have %d-%d", e.NeedA, e.NeedB, e.HaveA, e.HaveB)
}

func (e *GoalDistributionError) Is(target error) bool {
	return target == ErrGoalsNotDistributed
}

// Validate checks that tracked scorers account for the entered totals.
func (f Final) Validate() error {
	if !f.Tracked() {
		return nil
	}
	sa, sb := distributed(f.GPA), distributed(f.GPB)
	needA, needB := max(f.GA, sa), max(f.GB, sb)
	if sa < needA || sb < needB {
		return &GoalDistributionError{NeedA: needA, NeedB: needB, HaveA: sa, HaveB: sb}
	}
	return nil
}

// normalized clamps negative totals, drops non-scoring entries and raises
// the totals to the distributed sums.
func (f Final) normalized() Final {
	f.GA, f.GB = max(0, f.GA), max(0, f.GB)
	if !f.Tracked() {
		return f
	}
	if f.GPA == nil {
		f.GPA = map[string]int{}
	}
	if f.GPB == nil {
		f.GPB = map[string]int{}
	}
	f.GPA, f.GPB = positive(f.GPA), positive(f.GPB)
	f.GA = max(f.GA, distributed(f.GPA))
	f.GB = max(f.GB, distributed(f.GPB))
	return f
}

func (d Draft) merge(next Draft) Draft {
	if next.A != 0 {
		d.A, d.B, d.Round = next.A, next.B, next.Round
	}
	if next.GA != nil {
		d.GA = next.GA
	}
	if next.GB != nil {
		d.GB = next.GB
	}
	if next.GPA != nil {
		d.GPA = next.GPA
	}
	if next.GPB != nil {
		d.GPB = next.GPB
	}
	return d
}

// ScorerSlots lists who goals can be attributed to for a team.
func ScorerSlots(members []string) []string {
	out := append([]string(nil), members...)
	if len(members) == 3 {
		out = append(out, GuestPlayer)
	}
	return out
}
