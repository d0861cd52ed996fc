package stats

import (
	"math"

	descriptive "github.com/montanaflynn/stats"
)

// FormWindow is how many recent sessions form compares against career.
const FormWindow = 3

// RankMove is a change in 0-based rank between the pre and post snapshot.
// Delta is positive when the player climbed.
type RankMove struct {
	Player   string `json:"player"`
	Delta    int    `json:"delta"`
	PostRank int    `json:"postRank"`
}

// PPMMove is a change in points per match caused by the latest session.
type PPMMove struct {
	Player string  `json:"player"`
	Pct    float64 `json:"pct"`
	From   float64 `json:"from"`
	To     float64 `json:"to"`
}

type Movers struct {
	RankGain *RankMove `json:"rankGain,omitempty"`
	RankLoss *RankMove `json:"rankLoss,omitempty"`
	PPMUp    *PPMMove  `json:"ppmUp,omitempty"`
	PPMDown  *PPMMove  `json:"ppmDown,omitempty"`
}

// Empty reports whether there is nothing to show, usually a single session.
func (m Movers) Empty() bool {
	return m.RankGain == nil && m.RankLoss == nil && m.PPMUp == nil && m.PPMDown == nil
}

// ComputeMovers finds the largest rank gain and loss and the largest ppm
// swings caused by the latest date. Rank ties prefer the better post rank
// for gains and the worse one for losses, then the name. PPM swings only
// consider players at the latest date with at least three prior sessions,
// relaxing to one prior session when nobody qualifies.
func ComputeMovers(rows []Record, basis Basis) Movers {
	latest := LatestDate(rows)
	preRows := Without(rows, latest)
	if latest == "" || len(preRows) == 0 {
		return Movers{}
	}
	preStats, postStats := Aggregate(preRows), Aggregate(rows)
	pre := RankMap(RankOrder(preStats, basis))
	post := RankMap(RankOrder(postStats, basis))

	var m Movers
	for _, s := range RankOrder(postStats, basis) {
		preRank, ok := pre[s.Player]
		if !ok {
			continue
		}
		postRank := post[s.Player]
		move := RankMove{Player: s.Player, Delta: preRank - postRank, PostRank: postRank}
		switch {
		case move.Delta > 0:
			if m.RankGain == nil || move.Delta > m.RankGain.Delta || (move.Delta == m.RankGain.Delta && postRank < m.RankGain.PostRank) {
				m.RankGain = &move
			}
		case move.Delta < 0:
			if m.RankLoss == nil || move.Delta < m.RankLoss.Delta || (move.Delta == m.RankLoss.Delta && postRank > m.RankLoss.PostRank) {
				m.RankLoss = &move
			}
		}
	}

	played := map[string]bool{}
	for _, e := range ByDate(rows)[latest] {
		played[e.Player] = true
	}
	preBy := ByPlayer(preStats)
	for _, minPrior := range []int{3, 1} {
		for _, s := range postStats {
			prev, ok := preBy[s.Player]
			if !ok || !played[s.Player] || prev.Matches < minPrior || prev.PPM <= 0 {
				continue
			}
			pct := (s.PPM - prev.PPM) / prev.PPM * 100
			if math.IsInf(pct, 0) || math.IsNaN(pct) {
				continue
			}
			move := PPMMove{Player: s.Player, Pct: pct, From: prev.PPM, To: s.PPM}
			if pct > 0 && (m.PPMUp == nil || pct > m.PPMUp.Pct) {
				m.PPMUp = &move
			}
			if pct < 0 && (m.PPMDown == nil || pct < m.PPMDown.Pct) {
				m.PPMDown = &move
			}
		}
		if m.PPMUp != nil || m.PPMDown != nil {
			break
		}
	}
	return m
}

// Form compares a player's last FormWindow sessions with their career ppm.
type Form struct {
	Sessions int     `json:"sessions"`
	Recent   float64 `json:"recent"`
	Career   float64 `json:"career"`
	Delta    float64 `json:"delta"`
}

func mean(v []float64) float64 {
	m, err := descriptive.Mean(v)
	if err != nil {
		return 0
	}
	return m
}

// FormFor computes Form from points over attended sessions in date order.
func FormFor(points []float64) Form {
	f := Form{Sessions: len(points)}
	if len(points) == 0 {
		return f
	}
	f.Recent = mean(points[max(0, len(points)-FormWindow):])
	f.Career = mean(points)
	f.Delta = f.Recent - f.Career
	return f
}

// FormByPlayer is FormFor for every player with at least minSessions.
func FormByPlayer(rows []Record, minSessions int) map[string]Form {
	out := map[string]Form{}
	for player, pts := range PointsByPlayer(rows) {
		if len(pts) >= minSessions {
			out[player] = FormFor(pts)
		}
	}
	return out
}

// Streak is a run of consecutive dates.
type Streak struct {
	Length int    `json:"length"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// Insight summarises one player's season.
type Insight struct {
	Player          string  `json:"player"`
	Sessions        int     `json:"sessions"`
	Attended        int     `json:"attended"`
	AttendancePct   int     `json:"attendancePct"`
	TopSessions     int     `json:"topSessions"`
	TopPct          int     `json:"topPct"`
	LongestAttended int     `json:"longestAttended"`
	CurrentAttended int     `json:"currentAttended"`
	// FormPct is nil below two sessions and +Inf when a zero career average
	// is followed by scoring.
	FormPct   *float64 `json:"formPct,omitempty"`
	TopStreak Streak   `json:"topStreak"`
	// Trend is the least-squares slope of points per attended session.
	Trend float64 `json:"trend"`
	// GoalsPointsCorrelation is nil with fewer than three tracked sessions.
	GoalsPointsCorrelation *float64 `json:"goalsPointsCorrelation,omitempty"`
}

func pct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}

// PlayerInsight builds the per-player cards.
func PlayerInsight(rows []Record, player string) Insight {
	series := PlayerPoints(rows, player)
	byDate := ByDate(rows)
	in := Insight{Player: player, Sessions: len(series.Dates)}

	attendedPts := make([]float64, 0, len(series.Dates))
	current := 0
	for i, absent := range series.Absent {
		if absent {
			current = 0
			continue
		}
		in.Attended++
		attendedPts = append(attendedPts, series.Points[i])
		current++
		in.LongestAttended = max(in.LongestAttended, current)
	}
	in.CurrentAttended = current
	in.AttendancePct = pct(in.Attended, in.Sessions)

	run := Streak{}
	for _, d := range series.Dates {
		entries := byDate[d]
		top := math.Inf(-1)
		for _, e := range entries {
			top = math.Max(top, e.Points)
		}
		e, ok := find(entries, player)
		if ok && e.Points == top {
			in.TopSessions++
			if run.Length == 0 {
				run.Start = d
			}
			run.Length++
			run.End = d
			if run.Length > in.TopStreak.Length {
				in.TopStreak = run
			}
			continue
		}
		run = Streak{}
	}
	in.TopPct = pct(in.TopSessions, in.Attended)

	if len(attendedPts) >= 2 {
		f := FormFor(attendedPts)
		var v float64
		switch {
		case f.Career > 0:
			v = f.Delta / f.Career * 100
		case f.Recent > 0:
			v = math.Inf(1)
		}
		in.FormPct = &v
		x := make([]float64, len(attendedPts))
		for i := range x {
			x[i] = float64(i)
		}
		in.Trend = trendSlope(x, attendedPts)
	}

	var goals, points []float64
	for _, r := range rows {
		if r.Player == player && r.Goals != nil {
			goals = append(goals, *r.Goals)
			points = append(points, r.Points)
		}
	}
	in.GoalsPointsCorrelation = pearson(goals, points)
	return in
}

type Tier string

const (
	TierGood Tier = "good"
	TierAvg  Tier = "avg"
	TierLow  Tier = "low"
)

func PPMTier(ppm float64) Tier {
	switch {
	case ppm > 6:
		return TierGood
	case ppm >= 4:
		return TierAvg
	default:
		return TierLow
	}
}

func GPMTier(gpm float64) Tier {
	switch {
	case gpm <= 0.5:
		return TierLow
	case gpm <= 1:
		return TierAvg
	default:
		return TierGood
	}
}

// PPMQuartiles returns the 25th, 50th and 75th percentile ppm.
func PPMQuartiles(stats []PlayerStat) (q1, q2, q3 float64) {
	data := make(descriptive.Float64Data, 0, len(stats))
	for _, s := range stats {
		data = append(data, s.PPM)
	}
	q, err := descriptive.Quartile(data)
	if err != nil {
		return 0, 0, 0
	}
	return q.Q1, q.Q2, q.Q3
}

// PPMPercentileRank is the share of players whose ppm is at or below the
// player's, in percent. Unknown players get 0.
func PPMPercentileRank(stats []PlayerStat, player string) float64 {
	target, ok := ByPlayer(stats)[player]
	if !ok || len(stats) == 0 {
		return 0
	}
	n := 0
	for _, s := range stats {
		if s.PPM <= target.PPM {
			n++
		}
	}
	return Round(float64(n) / float64(len(stats)) * 100)
}

// trendSlope is the least-squares slope of y over x, cov(x, y) / var(x).
func trendSlope(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	cov, err := descriptive.Covariance(x, y)
	if err != nil {
		return 0
	}
	variance, err := descriptive.SampleVariance(x)
	if err != nil || variance == 0 {
		return 0
	}
	return cov / variance
}

func pearson(x, y []float64) *float64 {
	if len(x) != len(y) || len(x) < 3 {
		return nil
	}
	r, err := descriptive.Correlation(x, y)
	if err != nil || math.IsNaN(r) {
		return nil
	}
	r = Round(r)
	return &r
}
