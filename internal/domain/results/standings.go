package results

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

const (
	WinPoints  = 3
	DrawPoints = 1

	topScorerLimit = 8
)

type Standing struct {
	Team   teams.Team `json:"team"`
	Played int        `json:"played"`
	Points int        `json:"points"`
	GF     int        `json:"gf"`
	GA     int        `json:"ga"`
}

func (s Standing) GD() int {
	return s.GF - s.GA
}

func tally(ts []teams.Team, l *Ledger) []Standing {
	rows := make([]Standing, len(ts))
	idx := make(map[int]int, len(ts))
	for i, t := range ts {
		rows[i] = Standing{Team: t}
		idx[t.ID] = i
	}
	for _, f := range l.Finals() {
		ia, okA := idx[f.A]
		ib, okB := idx[f.B]
		if !okA || !okB {
			continue
		}
		a, b := &rows[ia], &rows[ib]
		a.Played++
		b.Played++
		a.GF += f.GA
		a.GA += f.GB
		b.GF += f.GB
		b.GA += f.GA
		switch {
		case f.GA > f.GB:
			a.Points += WinPoints
		case f.GB > f.GA:
			b.Points += WinPoints
		default:
			a.Points += DrawPoints
			b.Points += DrawPoints
		}
	}
	return rows
}

// Standings orders teams by points, goal difference, goals for, then name.
func Standings(ts []teams.Team, l *Ledger) []Standing {
	rows := tally(ts, l)
	sort.SliceStable(rows, func(i, j int) bool {
		x, y := rows[i], rows[j]
		if x.Points != y.Points {
			return x.Points > y.Points
		}
		if x.GD() != y.GD() {
			return x.GD() > y.GD()
		}
		if x.GF != y.GF {
			return x.GF > y.GF
		}
		return x.Team.Name < y.Team.Name
	})
	return rows
}

// Leaderboard is the live table view: points, goals for, then name.
func Leaderboard(ts []teams.Team, l *Ledger) []Standing {
	rows := tally(ts, l)
	sort.SliceStable(rows, func(i, j int) bool {
		x, y := rows[i], rows[j]
		if x.Points != y.Points {
			return x.Points > y.Points
		}
		if x.GF != y.GF {
			return x.GF > y.GF
		}
		return x.Team.Name < y.Team.Name
	})
	return rows
}

// GoalStats sums attributed goals per player and counts matches played per
// player. Guest goals are excluded.
func GoalStats(ts []teams.Team, l *Ledger) (goals map[string]int, played map[string]int) {
	goals, played = map[string]int{}, map[string]int{}
	byID := make(map[int]teams.Team, len(ts))
	for _, t := range ts {
		byID[t.ID] = t
	}
	for _, f := range l.Finals() {
		for _, gp := range []map[string]int{f.GPA, f.GPB} {
			for name, n := range gp {
				if n > 0 && !IsGuest(name) {
					goals[name] += n
				}
			}
		}
		for _, id := range []int{f.A, f.B} {
			for _, m := range byID[id].Members {
				played[m]++
			}
		}
	}
	return goals, played
}

// PlayerPoints credits every team member with the team's match points.
func PlayerPoints(ts []teams.Team, l *Ledger) map[string]int {
	points := map[string]int{}
	byID := make(map[int]teams.Team, len(ts))
	for _, t := range ts {
		byID[t.ID] = t
		for _, m := range t.Members {
			points[m] = 0
		}
	}
	for _, f := range l.Finals() {
		ta, okA := byID[f.A]
		tb, okB := byID[f.B]
		if !okA || !okB {
			continue
		}
		switch {
		case f.GA > f.GB:
			credit(points, ta.Members, WinPoints)
		case f.GB > f.GA:
			credit(points, tb.Members, WinPoints)
		default:
			credit(points, ta.Members, DrawPoints)
			credit(points, tb.Members, DrawPoints)
		}
	}
	return points
}

func credit(points map[string]int, members []string, n int) {
	for _, m := range members {
		points[m] += n
	}
}

// SummaryRow is one line of the end-of-session export.
type SummaryRow struct {
	Date   string
	Player string
	Points int
	Goals  int
}

// Summary lists every rostered player sorted by points then name.
func Summary(date string, ts []teams.Team, l *Ledger) []SummaryRow {
	if len(ts) < 2 {
		return nil
	}
	points := PlayerPoints(ts, l)
	goals, _ := GoalStats(ts, l)
	rows := make([]SummaryRow, 0, len(points))
	for name, p := range points {
		rows = append(rows, SummaryRow{Date: date, Player: name, Points: p, Goals: goals[name]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}

// SummaryCSV renders Summary with a Date,Player,Points,Goals header. The
// output is the format the season log ingests.
func SummaryCSV(date string, ts []teams.Team, l *Ledger) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Player", "Points", "Goals"}); err != nil {
		return "", err
	}
	for _, r := range Summary(date, ts, l) {
		if err := w.Write([]string{r.Date, r.Player, strconv.Itoa(r.Points), strconv.Itoa(r.Goals)}); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
	}
}

// ShareText is a plain-text recap: winners, standings and top scorers.
func ShareText(ts []teams.Team, l *Ledger) string {
	if len(ts) == 0 {
		return "Futsal results"
	}
	rows := Standings(ts, l)
	var winners []string
	for _, r := range rows {
		if r.Points == rows[0].Points && r.GD() == rows[0].GD() {
			winners = append(winners, r.Team.Name)
		}
	}
	label := "WINNER"
	if len(winners) > 1 {
		label = "WINNERS"
	}

	lines := []string{fmt.Sprintf("%s: %s", label, joinNames(winners)), "Standings:"}
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d) %s - %d pts (GD %+d) | %s", i+1, r.Team.Name, r.Points, r.GD(), strings.Join(r.Team.Members, ", ")))
	}

	goals, _ := GoalStats(ts, l)
	type scorer struct {
		name  string
		goals int
	}
	scorers := make([]scorer, 0, len(goals))
	for name, n := range goals {
		scorers = append(scorers, scorer{name, n})
	}
	sort.Slice(scorers, func(i, j int) bool {
		if scorers[i].goals != scorers[j].goals {
			return scorers[i].goals > scorers[j].goals
		}
		return scorers[i].name < scorers[j].name
	})
	if len(scorers) > 0 {
		top := make([]string, 0, topScorerLimit)
		for _, s := range scorers[:min(len(scorers), topScorerLimit)] {
			top = append(top, fmt.Sprintf("%s %d", s.name, s.goals))
		}
		lines = append(lines, "Top Scorers:", strings.Join(top, ", "))
	}
	return strings.Join(lines, "\n")
}
