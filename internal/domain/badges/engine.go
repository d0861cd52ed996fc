package badges

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
)

const (
	// DefaultPlaymakerCutoff is the first date the playmaker badge counts.
	DefaultPlaymakerCutoff = "2025-11-12"

	mvpAttendanceShare = 0.6
	addictAttendance   = 0.9
	clinicalGoals      = 5
	sharpshooterGPM    = 2
	rocketPositions    = 5
	formMinSessions    = 3
	ironManStreak      = 6
	marathonStreak     = 15
	eliteStreak        = 3
	masterStreak       = 4
	legendStreak       = 5
)

// History records how often and when a player held a badge.
type History struct {
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// Streaks are a player's running and best-ever session streaks.
type Streaks struct {
	Attend     int `json:"attend"`
	BestAttend int `json:"bestAttend"`
	Goal       int `json:"goal"`
	BestGoal   int `json:"bestGoal"`
	Win        int `json:"win"`
	BestWin    int `json:"bestWin"`
}

// Result is one full badge pass over the log.
type Result struct {
	// Badges holds each player's current badges in Priority order.
	Badges   map[string][]Badge        `json:"badges"`
	Trophies map[ID]map[string]History `json:"trophies"`
	Streaks  map[string]Streaks        `json:"streaks"`
	Aces     map[string]int            `json:"aces"`
}

// For returns the player's badges, or nil.
func (r Result) For(player string) []Badge {
	return r.Badges[player]
}

// Has reports whether player currently holds id.
func (r Result) Has(player string, id ID) bool {
	return lo.ContainsBy(r.Badges[player], func(b Badge) bool { return b.ID == id })
}

// TrophiesFor collects the player's trophy history by badge.
func (r Result) TrophiesFor(player string) map[ID]History {
	out := map[ID]History{}
	for id, byPlayer := range r.Trophies {
		if h, ok := byPlayer[player]; ok && h.Count > 0 {
			out[id] = h
		}
	}
	return out
}

// Engine computes badges. The zero value uses DefaultPlaymakerCutoff.
type Engine struct {
	PlaymakerCutoff string
}

// Compute runs the default Engine.
func Compute(rows []stats.Record, byPlayer map[string]stats.PlayerStat, pre, post map[string]int) Result {
	return Engine{}.Compute(rows, byPlayer, pre, post)
}

func emptyResult() Result {
	return Result{
		Badges:   map[string][]Badge{},
		Trophies: map[ID]map[string]History{},
		Streaks:  map[string]Streaks{},
		Aces:     map[string]int{},
	}
}

type session struct {
	date       string
	entries    []stats.Entry
	byPlayer   map[string]stats.Entry
	winners    map[string]bool
	topPoints  float64
	topGoals   float64 // 0 when nobody scored
	topContrib float64
}

func newSession(date string, entries []stats.Entry) session {
	s := session{
		date:       date,
		entries:    entries,
		byPlayer:   lo.KeyBy(entries, func(e stats.Entry) string { return e.Player }),
		winners:    map[string]bool{},
		topPoints:  math.Inf(-1),
		topContrib: math.Inf(-1),
	}
	low := math.Inf(1)
	for _, e := range entries {
		s.topPoints = math.Max(s.topPoints, e.Points)
		low = math.Min(low, e.Points)
		if g := e.GoalsOrZero(); g > s.topGoals {
			s.topGoals = g
		}
		s.topContrib = math.Max(s.topContrib, e.Points+e.GoalsOrZero())
	}
	if len(entries) > 0 && s.topPoints > low {
		for _, e := range entries {
			if e.Points == s.topPoints {
				s.winners[e.Player] = true
			}
		}
	}
	return s
}

type tally struct {
	matches int
	points  float64
	goals   float64
	history []float64
}

func (t tally) ppm() float64 {
	if t.matches == 0 {
		return 0
	}
	return t.points / float64(t.matches)
}

// Compute walks the log once in date order. byPlayer supplies the season
// totals used for sharpshooter; when nil it is aggregated from rows. pre and
// post are 0-based rank maps; rocket is skipped when either is nil.
func (e Engine) Compute(rows []stats.Record, byPlayer map[string]stats.PlayerStat, pre, post map[string]int) Result {
	out := emptyResult()
	dates := stats.Dates(rows)
	if len(dates) < 2 {
		return out
	}
	cutoff := e.PlaymakerCutoff
	if cutoff == "" {
		cutoff = DefaultPlaymakerCutoff
	}
	if byPlayer == nil {
		byPlayer = stats.ByPlayer(stats.Aggregate(rows))
	}
	players := stats.Players(rows)
	byDate := stats.ByDate(rows)

	streaks := make(map[string]*Streaks, len(players))
	tallies := make(map[string]*tally, len(players))
	for _, p := range players {
		streaks[p] = &Streaks{}
		tallies[p] = &tally{}
		out.Aces[p] = 0
	}
	trophy := func(id ID, player, date string) {
		if out.Trophies[id] == nil {
			out.Trophies[id] = map[string]History{}
		}
		h := out.Trophies[id][player]
		h.Count++
		h.Dates = append(h.Dates, date)
		out.Trophies[id][player] = h
	}

	var last session
	for i, d := range dates {
		s := newSession(d, byDate[d])
		last = s
		for _, en := range s.entries {
			if en.Points == s.topPoints {
				out.Aces[en.Player]++
			}
		}
		for _, p := range players {
			st, t := streaks[p], tallies[p]
			en, present := s.byPlayer[p]
			if present {
				st.Attend++
				st.BestAttend = max(st.BestAttend, st.Attend)
				if en.GoalsOrZero() > 0 {
					st.Goal++
					st.BestGoal = max(st.BestGoal, st.Goal)
				} else {
					st.Goal = 0
				}
				t.matches++
				t.points += en.Points
				t.goals += en.GoalsOrZero()
				t.history = append(t.history, en.Points)
				if st.Attend == ironManStreak {
					trophy(IronMan, p, d)
				}
				if st.Attend == marathonStreak {
					trophy(Marathon, p, d)
				}
			} else {
				st.Attend = 0
				st.Goal = 0
			}
			if s.winners[p] {
				st.Win++
				st.BestWin = max(st.BestWin, st.Win)
				switch st.Win {
				case eliteStreak:
					trophy(Elite, p, d)
				case masterStreak:
					trophy(Master, p, d)
				case legendStreak:
					trophy(Legend, p, d)
				}
			} else {
				st.Win = 0
			}
		}

		for _, p := range topScorers(s) {
			trophy(LatestTop, p, d)
		}
		for _, en := range s.entries {
			if en.GoalsOrZero() >= clinicalGoals {
				trophy(Clinical, en.Player, d)
			}
		}
		if d >= cutoff {
			for _, p := range playmakers(s) {
				trophy(Playmaker, p, d)
			}
		}
		if p, ok := allTimeTop(players, tallies); ok {
			trophy(AllTimeTop, p, d)
		}
		if p, ok := mvp(players, tallies, i+1); ok {
			trophy(MVP, p, d)
		}
		if p, _, ok := formLeaders(players, tallies); ok {
			trophy(Form, p, d)
		}
	}

	award := func(player string, id ID) {
		b, ok := catalog[id]
		if !ok {
			return
		}
		out.Badges[player] = append(out.Badges[player], b)
	}

	for _, p := range topScorers(last) {
		award(p, LatestTop)
	}
	if last.date >= cutoff {
		for _, p := range playmakers(last) {
			award(p, Playmaker)
		}
	}
	if p, ok := allTimeTop(players, tallies); ok {
		award(p, AllTimeTop)
	}
	if p, ok := mvp(players, tallies, len(dates)); ok {
		award(p, MVP)
	}
	if p, ok := aceLeader(players, out.Aces); ok {
		award(p, Clutch)
	}
	hot, cold, _ := formLeaders(players, tallies)
	if hot != "" {
		award(hot, Form)
	}
	if cold != "" {
		award(cold, ColdStreak)
	}

	for _, p := range players {
		st, t := streaks[p], tallies[p]
		out.Streaks[p] = *st
		if _, ok := out.Trophies[Clinical][p]; ok {
			award(p, Clinical)
		}
		for _, tier := range goalTiers {
			if st.BestGoal >= tier.Min {
				award(p, tier.ID)
			}
		}
		if st.BestAttend >= ironManStreak {
			award(p, IronMan)
		}
		if st.BestAttend >= marathonStreak {
			award(p, Marathon)
		}
		if st.BestWin >= eliteStreak {
			award(p, Elite)
		}
		if st.BestWin >= masterStreak {
			award(p, Master)
		}
		if st.BestWin >= legendStreak {
			award(p, Legend)
		}
		if s, ok := byPlayer[p]; ok && s.GoalSessions > 0 && s.GPM >= sharpshooterGPM {
			award(p, Sharpshooter)
		}
		if float64(t.matches)/float64(len(dates)) > addictAttendance {
			award(p, Addict)
		}
		if pre != nil && post != nil {
			a, okA := pre[p]
			b, okB := post[p]
			if okA && okB && a-b >= rocketPositions {
				award(p, Rocket)
			}
		}
	}

	for p, list := range out.Badges {
		sort.SliceStable(list, func(i, j int) bool { return Less(list[i].ID, list[j].ID) })
		out.Badges[p] = lo.UniqBy(list, func(b Badge) ID { return b.ID })
	}
	return out
}

// topScorers are the players on the session's max goals, which must be > 0.
func topScorers(s session) []string {
	if s.topGoals <= 0 {
		return nil
	}
	return lo.FilterMap(s.entries, func(e stats.Entry, _ int) (string, bool) {
		return e.Player, e.GoalsOrZero() == s.topGoals
	})
}

func playmakers(s session) []string {
	if len(s.entries) == 0 {
		return nil
	}
	return lo.FilterMap(s.entries, func(e stats.Entry, _ int) (string, bool) {
		return e.Player, e.Points+e.GoalsOrZero() == s.topContrib
	})
}

// allTimeTop is the most cumulative goals; players are sorted so ties go to
// the alphabetically first name.
func allTimeTop(players []string, tallies map[string]*tally) (string, bool) {
	best, bestGoals := "", 0.0
	for _, p := range players {
		if g := tallies[p].goals; g > bestGoals {
			best, bestGoals = p, g
		}
	}
	return best, best != ""
}

// mvp is the best ppm among players who attended at least 60% of the
// sessions so far.
func mvp(players []string, tallies map[string]*tally, sessions int) (string, bool) {
	need := max(1, int(math.Floor(float64(sessions)*mvpAttendanceShare)))
	best, bestPPM := "", math.Inf(-1)
	for _, p := range players {
		t := tallies[p]
		if t.matches < need {
			continue
		}
		if v := t.ppm(); v > bestPPM {
			best, bestPPM = p, v
		}
	}
	return best, best != ""
}

func aceLeader(players []string, aces map[string]int) (string, bool) {
	best, bestCount := "", 0
	for _, p := range players {
		if aces[p] > bestCount {
			best, bestCount = p, aces[p]
		}
	}
	return best, best != ""
}

// formLeaders returns the single largest positive and single largest
// negative form delta among players with enough sessions. Either may be "".
func formLeaders(players []string, tallies map[string]*tally) (hot, cold string, ok bool) {
	hotDelta, coldDelta := 0.0, 0.0
	for _, p := range players {
		t := tallies[p]
		if len(t.history) < formMinSessions {
			continue
		}
		d := stats.FormFor(t.history).Delta
		if d > hotDelta+1e-9 {
			hot, hotDelta = p, d
		}
		if d < coldDelta-1e-9 {
			cold, coldDelta = p, d
		}
	}
	return hot, cold, hot != ""
}
