package stats

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rec(date, player string, points float64, goals *float64) Record {
	return Record{Date: date, Player: player, Points: points, Goals: goals}
}

func exampleLog() []Record {
	return []Record{
		rec("2025-01-01", "A", 3, Goals(2)),
		rec("2025-01-01", "B", 1, Goals(0)),
		rec("2025-01-02", "A", 2, Goals(1)),
		rec("2025-01-02", "B", 3, Goals(3)),
	}
}

func TestAggregateExample(t *testing.T) {
	got := ByPlayer(Aggregate(exampleLog()))
	want := PlayerStat{Player: "A", Matches: 2, Points: 5, Goals: 3, GoalSessions: 2, PPM: 2.5, GPM: 1.5}
	if diff := cmp.Diff(want, got["A"]); diff != "" {
		t.Fatalf("unexpected stats for A (-want +got):\n%s", diff)
	}
}

func TestAggregateNullGoalsCountTowardMatchesOnly(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 3, nil),
		rec("2025-01-02", "A", 1, Goals(4)),
		rec("2025-01-03", "A", 0, Goals(0)),
	}
	a := Aggregate(rows)[0]
	if a.Matches != 3 || a.Points != 4 {
		t.Fatalf("expected 3 matches and 4 points, got %+v", a)
	}
	if a.GoalSessions != 2 || a.GPM != 2 {
		t.Fatalf("expected null goals excluded from gpm, got %+v", a)
	}

	none := Aggregate([]Record{rec("2025-01-01", "Z", 1, nil)})[0]
	if none.GPM != 0 || none.GoalSessions != 0 {
		t.Fatalf("expected zero gpm without tracked sessions, got %+v", none)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	rows := exampleLog()
	if diff := cmp.Diff(Aggregate(rows), Aggregate(rows)); diff != "" {
		t.Fatalf("aggregate not idempotent:\n%s", diff)
	}
	if Aggregate(nil) == nil || len(Aggregate(nil)) != 0 {
		t.Fatalf("expected empty, non-nil result for empty log")
	}
}

func TestCountUniqueSessionsAndDates(t *testing.T) {
	rows := append(exampleLog(), rec("2024-12-31", "C", 1, nil))
	if got := CountUniqueSessions(rows); got != 3 {
		t.Fatalf("expected 3 sessions, got %d", got)
	}
	if diff := cmp.Diff([]string{"2024-12-31", "2025-01-01", "2025-01-02"}, Dates(rows)); diff != "" {
		t.Fatalf("unexpected dates:\n%s", diff)
	}
	if LatestDate(rows) != "2025-01-02" {
		t.Fatalf("unexpected latest date")
	}
}

func TestPlayerSeriesMarksAbsence(t *testing.T) {
	rows := append(exampleLog(), rec("2025-01-03", "B", 1, nil))
	pts := PlayerPoints(rows, "A")
	if diff := cmp.Diff([]bool{false, false, true}, pts.Absent); diff != "" {
		t.Fatalf("unexpected absences:\n%s", diff)
	}
	goals := PlayerGoals(rows, "B")
	if goals.Goals[2] != nil || goals.Absent[2] {
		t.Fatalf("expected present but untracked on third date, got %+v", goals)
	}
	if *goals.Goals[1] != 3 {
		t.Fatalf("expected 3 goals on second date")
	}
	if diff := cmp.Diff(map[string][]float64{"A": {2, 1}, "B": {0, 3}}, GoalsByPlayer(rows)); diff != "" {
		t.Fatalf("unexpected goal series:\n%s", diff)
	}
}

func TestRankSeries(t *testing.T) {
	dates, ranks := RankSeries(exampleLog())
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(dates))
	}
	// Day 1: A 3 pts, B 1. Day 2: A 5, B 4.
	if diff := cmp.Diff(map[string][]int{"A": {1, 1}, "B": {2, 2}}, ranks); diff != "" {
		t.Fatalf("unexpected ranks (-want +got):\n%s", diff)
	}
}

func TestRankSeriesIncludesLaterPlayers(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 1, nil),
		rec("2025-01-02", "B", 3, nil),
	}
	_, ranks := RankSeries(rows)
	// B has not played on day 1 and sorts after A; on day 2 B leads.
	if diff := cmp.Diff(map[string][]int{"A": {1, 2}, "B": {2, 1}}, ranks); diff != "" {
		t.Fatalf("unexpected ranks:\n%s", diff)
	}
}

func TestPrePostRanks(t *testing.T) {
	pre, post := PrePostRanks(exampleLog(), BasisPoints)
	if pre["A"] != 0 || pre["B"] != 1 || post["A"] != 0 || post["B"] != 1 {
		t.Fatalf("unexpected rank maps pre=%v post=%v", pre, post)
	}
}

func TestSortStats(t *testing.T) {
	stats := []PlayerStat{
		{Player: "Cy", Matches: 2, Points: 6, PPM: 3, Goals: 0, GoalSessions: 0},
		{Player: "Al", Matches: 4, Points: 6, PPM: 1.5, Goals: 4, GoalSessions: 4, GPM: 1},
		{Player: "Bo", Matches: 1, Points: 2, PPM: 2, Goals: 3, GoalSessions: 1, GPM: 3},
	}
	names := func() []string {
		return []string{stats[0].Player, stats[1].Player, stats[2].Player}
	}

	SortStats(stats, SortPoints, Desc)
	if diff := cmp.Diff([]string{"Cy", "Al", "Bo"}, names()); diff != "" {
		t.Fatalf("points desc:\n%s", diff)
	}
	SortStats(stats, SortGPM, Asc)
	if diff := cmp.Diff([]string{"Al", "Bo", "Cy"}, names()); diff != "" {
		t.Fatalf("gpm asc keeps untracked last:\n%s", diff)
	}
	SortStats(stats, SortGPM, Desc)
	if diff := cmp.Diff([]string{"Bo", "Al", "Cy"}, names()); diff != "" {
		t.Fatalf("gpm desc keeps untracked last:\n%s", diff)
	}
	SortStats(stats, SortPlayer, DefaultDirection(SortPlayer))
	if diff := cmp.Diff([]string{"Al", "Bo", "Cy"}, names()); diff != "" {
		t.Fatalf("player asc:\n%s", diff)
	}
	if _, err := ParseSortKey("bogus"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestComputeMovers(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 9, nil),
		rec("2025-01-01", "B", 6, nil),
		rec("2025-01-01", "C", 3, nil),
		rec("2025-01-02", "C", 9, nil),
		rec("2025-01-02", "A", 0, nil),
	}
	m := ComputeMovers(rows, BasisPoints)
	if m.RankGain == nil || m.RankGain.Player != "C" || m.RankGain.Delta != 2 {
		t.Fatalf("unexpected gain %+v", m.RankGain)
	}
	if m.RankLoss == nil || m.RankLoss.Player != "B" || m.RankLoss.Delta != -1 {
		t.Fatalf("unexpected loss %+v", m.RankLoss)
	}
	if m.PPMUp == nil || m.PPMUp.Player != "C" || m.PPMUp.Pct != 100 {
		t.Fatalf("unexpected ppm up %+v", m.PPMUp)
	}
	if m.PPMDown == nil || m.PPMDown.Player != "A" || m.PPMDown.Pct != -50 {
		t.Fatalf("unexpected ppm down %+v", m.PPMDown)
	}

	if !ComputeMovers(rows[:3], BasisPoints).Empty() {
		t.Fatalf("expected no movers for a single session")
	}
}

func TestPlayerInsight(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 3, Goals(1)),
		rec("2025-01-01", "B", 0, Goals(0)),
		rec("2025-01-02", "A", 3, Goals(2)),
		rec("2025-01-02", "B", 1, Goals(0)),
		rec("2025-01-03", "B", 3, Goals(1)),
		rec("2025-01-04", "A", 0, Goals(0)),
		rec("2025-01-04", "B", 3, nil),
	}
	in := PlayerInsight(rows, "A")
	if in.Sessions != 4 || in.Attended != 3 || in.AttendancePct != 75 {
		t.Fatalf("unexpected attendance %+v", in)
	}
	if in.LongestAttended != 2 || in.CurrentAttended != 1 {
		t.Fatalf("unexpected attendance streaks %+v", in)
	}
	if in.TopSessions != 2 || in.TopPct != 67 {
		t.Fatalf("unexpected top share %+v", in)
	}
	want := Streak{Length: 2, Start: "2025-01-01", End: "2025-01-02"}
	if diff := cmp.Diff(want, in.TopStreak); diff != "" {
		t.Fatalf("unexpected top streak:\n%s", diff)
	}
	if in.FormPct == nil || *in.FormPct != 0 {
		t.Fatalf("three sessions means recent equals career, got %v", in.FormPct)
	}
	if in.Trend >= 0 {
		t.Fatalf("expected downward trend, got %.2f", in.Trend)
	}
	if in.GoalsPointsCorrelation == nil || *in.GoalsPointsCorrelation <= 0 {
		t.Fatalf("expected positive goals/points correlation, got %v", in.GoalsPointsCorrelation)
	}
}

func TestFormPctWithZeroCareer(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 0, nil),
		rec("2025-01-02", "A", 0, nil),
	}
	in := PlayerInsight(rows, "A")
	if in.FormPct == nil || *in.FormPct != 0 {
		t.Fatalf("expected 0 form for all-zero history, got %v", in.FormPct)
	}
	single := PlayerInsight(rows[:1], "A")
	if single.FormPct != nil {
		t.Fatalf("expected no form below two sessions")
	}
}

func TestFormFor(t *testing.T) {
	f := FormFor([]float64{0, 0, 3, 3, 3})
	if f.Recent != 3 || f.Career != 1.8 || math.Abs(f.Delta-1.2) > 1e-9 {
		t.Fatalf("unexpected form %+v", f)
	}
}

func TestTiersAndPercentiles(t *testing.T) {
	if PPMTier(6.1) != TierGood || PPMTier(4) != TierAvg || PPMTier(3.9) != TierLow {
		t.Fatalf("unexpected ppm tiers")
	}
	if GPMTier(0.5) != TierLow || GPMTier(1) != TierAvg || GPMTier(1.01) != TierGood {
		t.Fatalf("unexpected gpm tiers")
	}
	stats := []PlayerStat{{Player: "a", PPM: 1}, {Player: "b", PPM: 2}, {Player: "c", PPM: 3}, {Player: "d", PPM: 4}}
	if got := PPMPercentileRank(stats, "c"); got != 75 {
		t.Fatalf("expected 75, got %.2f", got)
	}
	_, q2, _ := PPMQuartiles(stats)
	if q2 != 2.5 {
		t.Fatalf("expected median 2.5, got %.2f", q2)
	}
}

func TestAggregateSkipsUndatedRows(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 3, Goals(1)),
		rec("", "A", 10, Goals(5)),
	}
	a := ByPlayer(Aggregate(rows))["A"]
	if a.Matches != 1 || a.Points != 3 || a.Goals != 1 {
		t.Fatalf("undated row leaked into totals: %+v", a)
	}
	if got := len(ByDate(rows)["2025-01-01"]); got != a.Matches {
		t.Fatalf("per-date entries (%d) disagree with matches (%d)", got, a.Matches)
	}
}

func TestFormByPlayerRespectsMinimumSessions(t *testing.T) {
	rows := []Record{
		rec("2025-01-01", "A", 0, nil),
		rec("2025-01-02", "A", 0, nil),
		rec("2025-01-03", "A", 3, nil),
		rec("2025-01-04", "A", 3, nil),
		rec("2025-01-04", "B", 1, nil),
	}
	forms := FormByPlayer(rows, FormWindow)
	if _, ok := forms["B"]; ok {
		t.Fatalf("B has one session and should have no form")
	}
	want := Form{Sessions: 4, Recent: 2, Career: 1.5, Delta: 0.5}
	if diff := cmp.Diff(want, forms["A"]); diff != "" {
		t.Fatalf("unexpected form for A (-want +got):\n%s", diff)
	}
}

func TestPlayerInsightTrend(t *testing.T) {
	tests := []struct {
		name   string
		points []float64
		want   float64
	}{
		{name: "rising", points: []float64{1, 2, 3}, want: 1},
		{name: "falling", points: []float64{6, 4, 2, 0}, want: -2},
		{name: "flat", points: []float64{3, 3, 3}, want: 0},
		{name: "noisy", points: []float64{1, 3, 2, 4}, want: 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []Record
			for i, p := range tt.points {
				rows = append(rows, rec(fmt.Sprintf("2025-01-%02d", i+1), "A", p, nil))
			}
			if got := PlayerInsight(rows, "A").Trend; math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("trend = %v, want %v", got, tt.want)
			}
		})
	}
}
