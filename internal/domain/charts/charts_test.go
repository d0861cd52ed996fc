package charts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
)

func f(v float64) *float64 { return &v }

func TestYTicks(t *testing.T) {
	tests := []struct {
		name      string
		low, high float64
		want      []float64
	}{
		{"unit step", 0, 7, []float64{0, 1, 2, 3, 4, 5, 6, 7}},
		{"step two keeps max", 0, 15, []float64{0, 2, 4, 6, 8, 10, 12, 14, 15}},
		{"step five", 0, 23, []float64{0, 5, 10, 15, 20, 23}},
		{"flat", 3, 3, []float64{3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, YTicks(tc.low, tc.high)); diff != "" {
				t.Fatalf("unexpected ticks (-want +got):\n%s", diff)
			}
		})
	}
}

func TestXTicks(t *testing.T) {
	if got := XTickStep(10); got != 2 {
		t.Fatalf("expected step 2, got %d", got)
	}
	if diff := cmp.Diff([]int{0, 2, 4, 6, 8, 9}, XTicks(10)); diff != "" {
		t.Fatalf("unexpected x ticks:\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, XTicks(3)); diff != "" {
		t.Fatalf("unexpected x ticks:\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, XTicks(1)); diff != "" {
		t.Fatalf("unexpected x ticks:\n%s", diff)
	}
	if XTicks(0) != nil {
		t.Fatalf("expected no ticks for empty series")
	}
}

func TestSegmentsBreakOnGaps(t *testing.T) {
	values := []*float64{f(1), f(2), nil, f(4), f(5), f(6)}
	absent := []bool{false, false, false, false, true, false}
	want := [][]Point{
		{{0, 1}, {1, 2}},
		{{3, 4}},
		{{5, 6}},
	}
	if diff := cmp.Diff(want, Segments(values, absent)); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
}

func TestFormatDateShort(t *testing.T) {
	if got := FormatDateShort("2025-01-05"); got != "Jan 5" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatDateShort("last week"); got != "last week" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestPlayerSeries(t *testing.T) {
	rows := []stats.Record{
		{Date: "2025-01-01", Player: "A", Points: 3, Goals: stats.Goals(2)},
		{Date: "2025-01-01", Player: "B", Points: 1, Goals: stats.Goals(0)},
		{Date: "2025-01-02", Player: "B", Points: 3, Goals: nil},
		{Date: "2025-01-03", Player: "A", Points: 1, Goals: nil},
		{Date: "2025-01-03", Player: "B", Points: 0, Goals: stats.Goals(1)},
	}
	s := PlayerSeries(rows, "A")

	if diff := cmp.Diff([]string{"Jan 1", "Jan 2", "Jan 3"}, s.Labels); diff != "" {
		t.Fatalf("unexpected labels:\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{f(3), nil, f(1)}, s.Points); diff != "" {
		t.Fatalf("unexpected points:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3, 3, 4}, s.Cumulative); diff != "" {
		t.Fatalf("unexpected cumulative:\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{f(2), nil, nil}, s.Goals); diff != "" {
		t.Fatalf("unexpected goals:\n%s", diff)
	}
	if diff := cmp.Diff([]*float64{f(3), f(3), f(2)}, s.PPM); diff != "" {
		t.Fatalf("unexpected running ppm:\n%s", diff)
	}
	// A 3 vs B 1, then A 3 vs B 4, then A 4 vs B 4 with A's better ppm.
	if diff := cmp.Diff([]int{1, 2, 1}, s.Ranks); diff != "" {
		t.Fatalf("unexpected ranks:\n%s", diff)
	}

	low, high, ok := Bounds(s.Points, 0)
	if !ok || low != 0 || high != 3 {
		t.Fatalf("unexpected bounds %v %v %v", low, high, ok)
	}
}

func TestTopTrajectories(t *testing.T) {
	rows := []stats.Record{
		{Date: "2025-01-01", Player: "A", Points: 1},
		{Date: "2025-01-01", Player: "B", Points: 3},
		{Date: "2025-01-02", Player: "A", Points: 1},
		{Date: "2025-01-02", Player: "C", Points: 1},
	}
	dates, top := TopTrajectories(rows, 2)
	if len(dates) != 2 || len(top) != 2 {
		t.Fatalf("expected two dates and two players, got %v %v", dates, top)
	}
	want := []Trajectory{
		{Player: "B", Cumulative: []float64{3, 3}, Ranks: []int{1, 1}},
		{Player: "A", Cumulative: []float64{1, 2}, Ranks: []int{2, 2}},
	}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Fatalf("unexpected trajectories (-want +got):\n%s", diff)
	}
	if _, all := TopTrajectories(rows, 10); len(all) != 3 {
		t.Fatalf("expected k clamped to player count")
	}
}
