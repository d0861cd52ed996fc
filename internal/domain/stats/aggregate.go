package stats

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// Aggregate folds the log into per-player totals, returned in rank order.
// Untracked goals count toward matches and points but never toward
// goalSessions or GPM. Rows without a date or player are ignored, as they
// are by ByDate.
func Aggregate(rows []Record) []PlayerStat {
	byPlayer := map[string]*PlayerStat{}
	for _, r := range rows {
		if r.Player == "" || r.Date == "" {
			continue
		}
		cur, ok := byPlayer[r.Player]
		if !ok {
			cur = &PlayerStat{Player: r.Player}
			byPlayer[r.Player] = cur
		}
		cur.Matches++
		cur.Points += finiteOrZero(r.Points)
		if r.Goals != nil {
			cur.Goals += finiteOrZero(*r.Goals)
			cur.GoalSessions++
		}
	}
	out := make([]PlayerStat, 0, len(byPlayer))
	for _, s := range byPlayer {
		if s.Matches > 0 {
			s.PPM = s.Points / float64(s.Matches)
		}
		if s.GoalSessions > 0 {
			s.GPM = s.Goals / float64(s.GoalSessions)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return rankLess(out[i], out[j]) })
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ByPlayer indexes stats by player name.
func ByPlayer(stats []PlayerStat) map[string]PlayerStat {
	return lo.KeyBy(stats, func(s PlayerStat) string { return s.Player })
}

// CountUniqueSessions is the number of distinct dates in the log.
func CountUniqueSessions(rows []Record) int {
	return len(Dates(rows))
}

// Dates lists distinct dates ascending. Dates are ISO YYYY-MM-DD so lexical
// order is chronological.
func Dates(rows []Record) []string {
	dates := lo.Uniq(lo.FilterMap(rows, func(r Record, _ int) (string, bool) {
		return r.Date, r.Date != ""
	}))
	sort.Strings(dates)
	return dates
}

// LatestDate is the most recent date in the log, or "" when empty.
func LatestDate(rows []Record) string {
	dates := Dates(rows)
	if len(dates) == 0 {
		return ""
	}
	return dates[len(dates)-1]
}

// Players lists distinct player names alphabetically.
func Players(rows []Record) []string {
	players := lo.Uniq(lo.FilterMap(rows, func(r Record, _ int) (string, bool) {
		return r.Player, r.Player != ""
	}))
	sort.Strings(players)
	return players
}

// ByDate groups valid records by date, keeping log order within a date.
func ByDate(rows []Record) map[string][]Entry {
	out := map[string][]Entry{}
	for _, r := range rows {
		if r.Player == "" || r.Date == "" || math.IsNaN(r.Points) || math.IsInf(r.Points, 0) {
			continue
		}
		out[r.Date] = append(out[r.Date], Entry{Player: r.Player, Points: r.Points, Goals: r.Goals})
	}
	return out
}

// Without drops every record on date.
func Without(rows []Record, date string) []Record {
	return lo.Filter(rows, func(r Record, _ int) bool { return r.Date != date })
}

// Round keeps four decimals for display and comparisons in tests.
func Round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
