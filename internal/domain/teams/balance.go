package teams

import (
	"math"
	"sort"

	"github.com/lutefd/meetup-engine/internal/domain/ratings"
)

const (
	maxPasses        = 8
	skillSwapEpsilon = 0.1
)

type swap struct {
	i, j int
	a, b string
	gain float64
}

func (s swap) found() bool {
	return s.i != -1
}

// beats orders equal-gain swaps by team pair, then player names.
func (s swap) beats(o swap) bool {
	if !o.found() {
		return true
	}
	if s.i != o.i {
		return s.i < o.i
	}
	if s.j != o.j {
		return s.j < o.j
	}
	if s.a != o.a {
		return s.a < o.a
	}
	return s.b < o.b
}

// consider keeps the strictly best gain, falling back to beats on ties.
func (s *swap) consider(c swap) {
	improves := c.gain > s.gain+eps
	ties := !improves && math.Abs(c.gain-s.gain) <= eps && c.gain > eps
	if improves || (ties && c.beats(*s)) {
		*s = c
	}
}

func sortedMembers(t Team) []string {
	out := append([]string(nil), t.Members...)
	sort.Strings(out)
	return out
}

func sums(teams []Team, f func(string) float64) []float64 {
	out := make([]float64, len(teams))
	for i, t := range teams {
		out[i] = sumBy(t.Members, f)
	}
	return out
}

// SkillError is Σ|teamSkillSum − size·avg| with avg taken over roster.
func SkillError(teams []Team, roster []string, lookup ratings.Lookup) float64 {
	if len(roster) == 0 {
		return 0
	}
	avg := sumBy(roster, lookup.Skill) / float64(len(roster))
	total := 0.0
	for _, t := range teams {
		total += math.Abs(sumBy(t.Members, lookup.Skill) - float64(len(t.Members))*avg)
	}
	return total
}

// BalanceSkillToTargets performs bounded best-improvement swaps that reduce the
// pairwise distance of team skill sums from their size-weighted targets.
func BalanceSkillToTargets(teams []Team, roster []string, lookup ratings.Lookup) {
	if len(teams) < 2 || len(roster) == 0 {
		return
	}
	avg := sumBy(roster, lookup.Skill) / float64(len(roster))
	for pass := 0; pass < maxPasses; pass++ {
		skillSums := sums(teams, lookup.Skill)
		targets := make([]float64, len(teams))
		for i, t := range teams {
			targets[i] = float64(len(t.Members)) * avg
		}

		best := swap{i: -1, j: -1}
		for i := range teams {
			for j := i + 1; j < len(teams); j++ {
				before := math.Abs(skillSums[i]-targets[i]) + math.Abs(skillSums[j]-targets[j])
				mj := sortedMembers(teams[j])
				for _, a := range sortedMembers(teams[i]) {
					sa := lookup.Skill(a)
					for _, b := range mj {
						sb := lookup.Skill(b)
						after := math.Abs(skillSums[i]-sa+sb-targets[i]) + math.Abs(skillSums[j]-sb+sa-targets[j])
						best.consider(swap{i: i, j: j, a: a, b: b, gain: before - after})
					}
				}
			}
		}
		if !best.found() || best.gain <= eps {
			return
		}
		swapMembers(teams, best.i, best.j, best.a, best.b)
	}
}

// BalanceStaminaEqualSkill levels stamina averages by swapping players of
// near-equal skill without worsening the skill deviation. For unequal sizes
// only swaps that raise the smaller team's average count as gains.
func BalanceStaminaEqualSkill(teams []Team, lookup ratings.Lookup) {
	if len(teams) < 2 {
		return
	}
	tolerance := skillSwapEpsilon + eps
	for pass := 0; pass < maxPasses; pass++ {
		sizes := make([]float64, len(teams))
		total, players := 0.0, 0.0
		staminaSums := sums(teams, lookup.Stamina)
		skillSums := sums(teams, lookup.Skill)
		avgs := make([]float64, len(teams))
		for i, t := range teams {
			sizes[i] = float64(len(t.Members))
			if sizes[i] > 0 {
				avgs[i] = staminaSums[i] / sizes[i]
			}
			total += skillSums[i]
			players += sizes[i]
		}
		avgSkill := 0.0
		if players > 0 {
			avgSkill = total / players
		}

		best := swap{i: -1, j: -1}
		for i := range teams {
			for j := i + 1; j < len(teams); j++ {
				if sizes[i] == 0 || sizes[j] == 0 {
					continue
				}
				targetI, targetJ := sizes[i]*avgSkill, sizes[j]*avgSkill
				beforeSkill := math.Abs(skillSums[i]-targetI) + math.Abs(skillSums[j]-targetJ)
				beforeDiff := math.Abs(avgs[i] - avgs[j])
				mj := sortedMembers(teams[j])
				for _, a := range sortedMembers(teams[i]) {
					for _, b := range mj {
						ka, kb := lookup.Skill(a), lookup.Skill(b)
						if math.Abs(ka-kb) > tolerance {
							continue
						}
						sa, sb := lookup.Stamina(a), lookup.Stamina(b)
						var gain float64
						switch {
						case sizes[i] < sizes[j]:
							if sb <= sa {
								continue
							}
							gain = (staminaSums[i]+sb-sa)/sizes[i] - avgs[i]
						case sizes[i] > sizes[j]:
							if sa <= sb {
								continue
							}
							gain = (staminaSums[j]+sa-sb)/sizes[j] - avgs[j]
						default:
							afterI := (staminaSums[i] + sb - sa) / sizes[i]
							afterJ := (staminaSums[j] + sa - sb) / sizes[j]
							gain = beforeDiff - math.Abs(afterI-afterJ)
						}
						afterSkill := math.Abs(skillSums[i]-ka+kb-targetI) + math.Abs(skillSums[j]-kb+ka-targetJ)
						if afterSkill > beforeSkill+eps {
							continue
						}
						best.consider(swap{i: i, j: j, a: a, b: b, gain: gain})
					}
				}
			}
		}
		if !best.found() || best.gain <= eps {
			return
		}
		swapMembers(teams, best.i, best.j, best.a, best.b)
	}
}

// ResolveHarmony moves one member of every co-located avoid pair to another
// team using the cheapest like-for-like swap. Swaps that would put the
// replacement next to its own counterpart are never chosen; swaps that
// create any other violation are used only when nothing cleaner exists.
func ResolveHarmony(teams []Team, h Harmony, lookup ratings.Lookup) {
	if len(teams) < 2 || h.Empty() {
		return
	}
	for _, p := range h.Pairs() {
		from := teamOf(teams, p[0])
		if from == -1 || from != teamOf(teams, p[1]) {
			continue
		}
		type candidate struct {
			to             int
			moving, swapIn string
			score          float64
			clean          bool
		}
		var best *candidate
		for _, moving := range p {
			counterpart := p[0]
			if moving == p[0] {
				counterpart = p[1]
			}
			for to, target := range teams {
				if to == from || len(target.Members) == 0 || indexOf(target.Members, counterpart) != -1 {
					continue
				}
				for _, swapIn := range target.Members {
					if h.Conflicts(swapIn, counterpart) {
						continue
					}
					c := candidate{
						to:     to,
						moving: moving,
						swapIn: swapIn,
						score: math.Abs(lookup.Skill(moving)-lookup.Skill(swapIn)) +
							math.Abs(lookup.Stamina(moving)-lookup.Stamina(swapIn))*0.05,
						clean: cleanSwap(h, teams[from].Members, target.Members, moving, swapIn),
					}
					if best == nil || (c.clean && !best.clean) || (c.clean == best.clean && c.score < best.score) {
						best = &c
					}
				}
			}
		}
		if best != nil {
			swapMembers(teams, from, best.to, best.moving, best.swapIn)
		}
	}
}

func cleanSwap(h Harmony, fromMembers, toMembers []string, moving, swapIn string) bool {
	for _, m := range toMembers {
		if m != swapIn && h.Conflicts(m, moving) {
			return false
		}
	}
	for _, m := range fromMembers {
		if m != moving && h.Conflicts(m, swapIn) {
			return false
		}
	}
	return true
}
