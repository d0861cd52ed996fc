package teams

import (
	"math"
	"sort"

	"github.com/lutefd/meetup-engine/internal/domain/ratings"
	"github.com/lutefd/meetup-engine/internal/domain/seed"
)

const eps = 1e-9

// Input is everything team assignment depends on. Identical inputs always
// produce identical teams.
type Input struct {
	Attendees []string
	Ratings   ratings.Lookup
	// Count is the number of teams; zero derives it from the roster size.
	Count   int
	Harmony Harmony
	// Seed breaks exact skill ties, usually seed.FromAttendees.
	Seed uint32
}

type slot struct {
	cap        int
	target     float64
	skillSum   float64
	staminaSum float64
	team       Team
}

// Assign partitions the attendees into balanced teams. Callers enforce
// MinAttendees; smaller rosters are still partitioned.
func Assign(in Input) []Team {
	n := len(in.Attendees)
	if n == 0 || in.Ratings == nil {
		return nil
	}
	t := in.Count
	if t <= 0 {
		t = Count(n)
	}
	t = min(t, len(Palette), n)

	skill, stamina := in.Ratings.Skill, in.Ratings.Stamina
	avgSkill := sumBy(in.Attendees, skill) / float64(n)
	avgStamina := sumBy(in.Attendees, stamina) / float64(n)

	slots := make([]*slot, t)
	for i, size := range Sizes(n, t) {
		slots[i] = &slot{
			cap:    size,
			target: float64(size) * avgSkill,
			team:   Team{ID: i + 1, Name: Palette[i].Name, Color: Palette[i].Hex, Members: make([]string, 0, size)},
		}
	}

	order := make(map[string]int, n)
	for i, name := range seed.Shuffle(in.Attendees, in.Seed) {
		order[name] = i
	}
	sorted := append([]string(nil), in.Attendees...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := skill(sorted[i]), skill(sorted[j])
		if si != sj {
			return si > sj
		}
		return order[sorted[i]] < order[sorted[j]]
	})

	for _, player := range sorted {
		best := pickSlot(slots, player, stamina(player) >= avgStamina, in.Harmony)
		s := slots[best]
		s.team.Members = append(s.team.Members, player)
		s.skillSum += skill(player)
		s.staminaSum += stamina(player)
	}

	out := make([]Team, t)
	for i, s := range slots {
		out[i] = s.team
	}
	BalanceSkillToTargets(out, in.Attendees, in.Ratings)
	BalanceStaminaEqualSkill(out, in.Ratings)
	ResolveHarmony(out, in.Harmony, in.Ratings)
	return out
}

// pickSlot returns the open slot with the largest remaining skill deficit
// after the harmony penalty. Score ties cascade: high-stamina players prefer
// the smaller capacity and then the lower stamina sum; everyone then prefers
// fewer members, lower skill sum and finally the lower index.
func pickSlot(slots []*slot, player string, highStamina bool, h Harmony) int {
	best := -1
	bestScore := math.Inf(-1)
	for i, s := range slots {
		if len(s.team.Members) >= s.cap {
			continue
		}
		score := (s.target - s.skillSum) - h.Bias(s.team.Members, player)
		if score > bestScore+eps {
			bestScore = score
			best = i
			continue
		}
		if best == -1 || math.Abs(score-bestScore) > eps {
			continue
		}
		if highStamina {
			b := slots[best]
			if s.cap < b.cap || (s.cap == b.cap && s.staminaSum < b.staminaSum) {
				best = i
			}
		}
		b := slots[best]
		switch {
		case len(s.team.Members) < len(b.team.Members):
			best = i
		case len(s.team.Members) == len(b.team.Members) && s.skillSum < b.skillSum:
			best = i
		case len(s.team.Members) == len(b.team.Members) && s.skillSum == b.skillSum && i < best:
			best = i
		}
	}
	if best == -1 {
		best = 0
	}
	return best
}
