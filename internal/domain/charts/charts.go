// Package charts turns the season log into plot-ready series. It draws
// nothing; renderers consume the values, ticks and segments.
package charts

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
)

const maxXTicks = 6

// Series is everything the player history view plots, one slot per season
// date.
type Series struct {
	Player     string     `json:"player"`
	Dates      []string   `json:"dates"`
	Labels     []string   `json:"labels"`
	Absent     []bool     `json:"absent"`
	Points     []*float64 `json:"points"`
	Cumulative []float64  `json:"cumulative"`
	Goals      []*float64 `json:"goals"`
	Ranks      []int      `json:"ranks"`
	// PPM is the running points per attended session; nil until the first
	// attendance.
	PPM []*float64 `json:"ppm"`
}

// PlayerSeries builds the series for one player.
func PlayerSeries(rows []stats.Record, player string) Series {
	pts := stats.PlayerPoints(rows, player)
	goals := stats.PlayerGoals(rows, player)
	_, ranks := stats.PlayerRanks(rows, player)

	n := len(pts.Dates)
	s := Series{
		Player:     player,
		Dates:      pts.Dates,
		Labels:     lo.Map(pts.Dates, func(d string, _ int) string { return FormatDateShort(d) }),
		Absent:     pts.Absent,
		Points:     make([]*float64, n),
		Cumulative: make([]float64, n),
		Goals:      goals.Goals,
		Ranks:      ranks,
		PPM:        make([]*float64, n),
	}
	total, attended := 0.0, 0
	for i := range pts.Dates {
		if !pts.Absent[i] {
			v := pts.Points[i]
			s.Points[i] = &v
			total += v
			attended++
		}
		s.Cumulative[i] = total
		if attended > 0 {
			ppm := total / float64(attended)
			s.PPM[i] = &ppm
		}
	}
	return s
}

// Trajectory is a player's cumulative points and rank over the season.
type Trajectory struct {
	Player     string    `json:"player"`
	Cumulative []float64 `json:"cumulative"`
	Ranks      []int     `json:"ranks"`
}

// TopTrajectories returns trajectories for the k best-ranked players.
func TopTrajectories(rows []stats.Record, k int) (dates []string, out []Trajectory) {
	dates, ranks := stats.RankSeries(rows)
	ranked := stats.Aggregate(rows)
	if k > len(ranked) {
		k = len(ranked)
	}
	out = make([]Trajectory, 0, max(k, 0))
	for _, st := range ranked[:max(k, 0)] {
		pts := stats.PlayerPoints(rows, st.Player)
		cum := make([]float64, len(pts.Points))
		total := 0.0
		for i, v := range pts.Points {
			total += v
			cum[i] = total
		}
		out = append(out, Trajectory{Player: st.Player, Cumulative: cum, Ranks: ranks[st.Player]})
	}
	return dates, out
}

// FormatDateShort renders an ISO date as "Jan 2". Anything else is returned
// unchanged.
func FormatDateShort(date string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// YTicks picks axis ticks between low and high with a step of 1, 2 or 5
// depending on the span. Both ends are always included.
func YTicks(low, high float64) []float64 {
	if high <= low {
		return lo.Uniq([]float64{low, high})
	}
	step := 1.0
	switch span := high - low; {
	case span > 20:
		step = 5
	case span > 10:
		step = 2
	}
	start := math.Ceil(low/step) * step
	if start > low {
		start = low
	}
	var out []float64
	for v := start; v <= high; v += step {
		out = append(out, v)
	}
	if len(out) == 0 || out[0] != low {
		out = append([]float64{low}, out...)
	}
	if out[len(out)-1] != high {
		out = append(out, high)
	}
	return lo.Uniq(out)
}

// XTickStep spaces at most six labels over n slots.
func XTickStep(n int) int {
	if n <= 1 {
		return 1
	}
	ticks := min(maxXTicks, n)
	return max(1, int(math.Ceil(float64(n-1)/float64(ticks-1))))
}

// XTicks lists the labelled slot indexes; the last slot is always labelled.
func XTicks(n int) []int {
	if n <= 0 {
		return nil
	}
	step := XTickStep(n)
	var out []int
	for i := 0; i < n; i += step {
		out = append(out, i)
	}
	if out[len(out)-1] != n-1 {
		out = append(out, n-1)
	}
	return out
}

// Point is one plotted value at a slot index.
type Point struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Segments splits a line into runs of consecutive present values. Absent or
// nil slots break the line.
func Segments(values []*float64, absent []bool) [][]Point {
	var out [][]Point
	var cur []Point
	for i, v := range values {
		if v == nil || (i < len(absent) && absent[i]) || math.IsNaN(*v) || math.IsInf(*v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, Point{Index: i, Value: *v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Bounds returns the axis range for values, with the floor at floor and the
// top at least 0. ok is false when there is nothing to plot.
func Bounds(values []*float64, floor float64) (low, high float64, ok bool) {
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		ok = true
		high = math.Max(high, *v)
	}
	return floor, high, ok
}
