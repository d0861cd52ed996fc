package stats

import (
	"fmt"
	"sort"
	"strings"
)

// rankLess is the standings order: points, ppm, matches (all desc), name.
func rankLess(a, b PlayerStat) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.PPM != b.PPM {
		return a.PPM > b.PPM
	}
	if a.Matches != b.Matches {
		return a.Matches > b.Matches
	}
	return a.Player < b.Player
}

// ppmLess ranks by ppm first, then points and matches.
func ppmLess(a, b PlayerStat) bool {
	if a.PPM != b.PPM {
		return a.PPM > b.PPM
	}
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.Matches != b.Matches {
		return a.Matches > b.Matches
	}
	return a.Player < b.Player
}

// Basis selects the ordering used for rank maps and movers.
type Basis string

const (
	BasisPoints Basis = "points"
	BasisPPM    Basis = "ppm"
)

// RankOrder sorts a copy of stats for ranking.
func RankOrder(stats []PlayerStat, basis Basis) []PlayerStat {
	out := append([]PlayerStat(nil), stats...)
	less := rankLess
	if basis == BasisPPM {
		less = ppmLess
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// RankMap gives each player's 0-based position in sorted.
func RankMap(sorted []PlayerStat) map[string]int {
	out := make(map[string]int, len(sorted))
	for i, s := range sorted {
		out[s.Player] = i
	}
	return out
}

// PrePostRanks ranks the log without and with its latest date.
func PrePostRanks(rows []Record, basis Basis) (pre, post map[string]int) {
	latest := LatestDate(rows)
	pre = RankMap(RankOrder(Aggregate(Without(rows, latest)), basis))
	post = RankMap(RankOrder(Aggregate(rows), basis))
	return pre, post
}

// RankSeries returns every player's 1-based standing after each date, using
// the cumulative snapshot of all players known to the log.
func RankSeries(rows []Record) (dates []string, ranks map[string][]int) {
	dates = Dates(rows)
	players := Players(rows)
	byDate := ByDate(rows)
	ranks = make(map[string][]int, len(players))

	points := map[string]float64{}
	matches := map[string]int{}
	for _, d := range dates {
		for _, e := range byDate[d] {
			points[e.Player] += e.Points
			matches[e.Player]++
		}
		snap := make([]PlayerStat, 0, len(players))
		for _, p := range players {
			s := PlayerStat{Player: p, Points: points[p], Matches: matches[p]}
			if s.Matches > 0 {
				s.PPM = s.Points / float64(s.Matches)
			}
			snap = append(snap, s)
		}
		sort.Slice(snap, func(i, j int) bool { return rankLess(snap[i], snap[j]) })
		for i, s := range snap {
			ranks[s.Player] = append(ranks[s.Player], i+1)
		}
	}
	return dates, ranks
}

// PlayerRanks is RankSeries for a single player.
func PlayerRanks(rows []Record, player string) (dates []string, ranks []int) {
	dates, all := RankSeries(rows)
	return dates, all[player]
}

// SortKey is a column of the season table.
type SortKey string

const (
	SortPlayer  SortKey = "player"
	SortMatches SortKey = "matches"
	SortPoints  SortKey = "points"
	SortPPM     SortKey = "ppm"
	SortGoals   SortKey = "goals"
	SortGPM     SortKey = "gpm"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey accepts a column name, defaulting to points.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortPlayer, SortMatches, SortPoints, SortPPM, SortGoals, SortGPM:
		return k, nil
	case "":
		return SortPoints, nil
	default:
		return SortPoints, fmt.Errorf("unknown sort key %q", raw)
	}
}

// DefaultDirection is ascending for names and descending for numbers.
func DefaultDirection(k SortKey) Direction {
	if k == SortPlayer {
		return Asc
	}
	return Desc
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	return cmpFloat(float64(a), float64(b))
}

// SortStats orders stats in place for the season table. For gpm, players
// without goal-tracked sessions always sort last.
func SortStats(stats []PlayerStat, key SortKey, dir Direction) {
	d := -1
	if dir == Asc {
		d = 1
	}
	chain := func(cs ...int) int {
		for _, c := range cs {
			if c != 0 {
				return c
			}
		}
		return 0
	}
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		name := strings.Compare(a.Player, b.Player)
		var c int
		switch key {
		case SortPlayer:
			c = name * d
		case SortMatches:
			c = chain(cmpInt(a.Matches, b.Matches)*d, name)
		case SortPPM:
			c = chain(cmpFloat(a.PPM, b.PPM)*d, cmpFloat(a.Points, b.Points)*d, cmpInt(a.Matches, b.Matches)*d, name)
		case SortGoals:
			c = chain(cmpFloat(a.Goals, b.Goals)*d, cmpFloat(a.GPM, b.GPM)*d, cmpInt(a.Matches, b.Matches)*d, name)
		case SortGPM:
			aHas, bHas := a.GoalSessions > 0, b.GoalSessions > 0
			switch {
			case aHas && !bHas:
				c = -1
			case !aHas && bHas:
				c = 1
			case !aHas && !bHas:
				c = chain(cmpFloat(a.Points, b.Points)*d, name)
			default:
				c = chain(cmpFloat(a.GPM, b.GPM)*d, cmpFloat(a.Goals, b.Goals)*d, cmpInt(a.Matches, b.Matches)*d, name)
			}
		default:
			c = chain(cmpFloat(a.Points, b.Points)*d, cmpFloat(a.PPM, b.PPM)*d, cmpInt(a.Matches, b.Matches)*d, name)
		}
		return c < 0
	})
}
