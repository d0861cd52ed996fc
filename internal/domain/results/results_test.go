package results

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lutefd/meetup-engine/internal/domain/schedule"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

func sampleTeams() []teams.Team {
	return []teams.Team{
		{ID: 1, Name: "Green", Members: []string{"Ann", "Bo", "Cy"}},
		{ID: 2, Name: "Blue", Members: []string{"Dee", "Eli", "Fay"}},
		{ID: 3, Name: "Orange", Members: []string{"Gus", "Hal", "Ivy"}},
	}
}

func intp(v int) *int { return &v }

func TestSaveRaisesTotalsToDistributedGoals(t *testing.T) {
	l := NewLedger()
	got, err := l.Save("1-2-r1", Final{GA: 1, GB: 0, GPA: map[string]int{"Ann": 2, "Bo": 0}, GPB: map[string]int{}})
	require.NoError(t, err)

	want := Final{A: 1, B: 2, Round: 1, GA: 2, GB: 0, GPA: map[string]int{"Ann": 2}, GPB: map[string]int{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected stored result (-want +got):\n%s", diff)
	}
}

func TestSaveRejectsUndistributedGoalsWithoutMutation(t *testing.T) {
	l := NewLedger()
	_, err := l.Save("1-2-r1", Final{GA: 3, GB: 1, GPA: map[string]int{"Ann": 1}, GPB: map[string]int{"Dee": 1}})

	var distErr *GoalDistributionError
	require.ErrorAs(t, err, &distErr)
	if !errors.Is(err, ErrGoalsNotDistributed) {
		t.Fatalf("expected ErrGoalsNotDistributed, got %v", err)
	}
	if err.Error() != "distribute all goals to players: need 3-1, have 1-1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if l.Len() != 0 {
		t.Fatalf("expected ledger untouched")
	}
}

func TestSaveUntrackedAndClearsDraft(t *testing.T) {
	l := NewLedger()
	_, err := l.SaveDraft("2-3-r1", Draft{GA: intp(1)})
	require.NoError(t, err)
	_, err = l.SaveDraft("2-3-r1", Draft{GB: intp(4)})
	require.NoError(t, err)

	d, ok := l.Draft("2-3-r1")
	require.True(t, ok)
	if *d.GA != 1 || *d.GB != 4 || d.A != 2 || d.B != 3 || d.Round != 1 {
		t.Fatalf("unexpected merged draft %+v", d)
	}
	if _, ok := l.Get("2-3-r1"); !ok {
		t.Fatalf("expected draft to be returned by Get")
	}

	_, err = l.Save("2-3-r1", Final{GA: -2, GB: 1})
	require.NoError(t, err)
	if _, ok := l.Draft("2-3-r1"); ok {
		t.Fatalf("expected draft cleared after save")
	}
	r, _ := l.Get("2-3-r1")
	f, isFinal := r.(Final)
	if !isFinal || f.GA != 0 || f.GB != 1 {
		t.Fatalf("unexpected final %+v", r)
	}
}

func TestSaveRejectsBadMatchID(t *testing.T) {
	_, err := NewLedger().Save("nope", Final{})
	if !errors.Is(err, ErrUnknownMatch) {
		t.Fatalf("expected ErrUnknownMatch, got %v", err)
	}
}

func TestRemoveRound(t *testing.T) {
	l := NewLedger()
	_, _ = l.Save("1-2-r2", Final{GA: 1, GB: 0})
	_, _ = l.SaveDraft("1-2-r3", Draft{GA: intp(2)})

	if _, err := l.RemoveRound(2, 3); !errors.Is(err, ErrRoundNotRemovable) {
		t.Fatalf("expected non-trailing round to be rejected, got %v", err)
	}
	rounds, err := l.RemoveRound(3, 3)
	require.NoError(t, err)
	if rounds != 2 {
		t.Fatalf("expected 2 rounds, got %d", rounds)
	}
	if _, ok := l.Draft("1-2-r3"); ok {
		t.Fatalf("expected round 3 draft dropped")
	}
	if _, err := l.RemoveRound(2, 2); !errors.Is(err, ErrRoundNotRemovable) {
		t.Fatalf("expected minimum round count to hold, got %v", err)
	}

	_, _ = l.Save("1-2-r3", Final{GA: 1, GB: 1})
	if _, err := l.RemoveRound(3, 3); !errors.Is(err, ErrRoundNotRemovable) {
		t.Fatalf("expected round with results to be kept, got %v", err)
	}
}

func TestStandingsAndShareText(t *testing.T) {
	ts := sampleTeams()
	l := NewLedger()
	_, _ = l.Save("1-2-r1", Final{GA: 2, GB: 0, GPA: map[string]int{"Ann": 1, GuestPlayer: 1}, GPB: map[string]int{}})
	_, _ = l.Save("1-3-r1", Final{GA: 0, GB: 2})
	_, _ = l.Save("2-3-r1", Final{GA: 1, GB: 1})

	rows := Standings(ts, l)
	names := []string{rows[0].Team.Name, rows[1].Team.Name, rows[2].Team.Name}
	if diff := cmp.Diff([]string{"Orange", "Green", "Blue"}, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if rows[0].Points != 4 || rows[0].GD() != 2 {
		t.Fatalf("unexpected leader %+v", rows[0])
	}

	text := ShareText(ts, l)
	if !strings.HasPrefix(text, "WINNER: Orange\nStandings:\n1) Orange - 4 pts (GD +2) | Gus, Hal, Ivy") {
		t.Fatalf("unexpected share text:\n%s", text)
	}
	if !strings.HasSuffix(text, "Top Scorers:\nAnn 1") {
		t.Fatalf("expected guest goals excluded from scorers:\n%s", text)
	}
}

func TestShareTextCoWinners(t *testing.T) {
	ts := sampleTeams()[:2]
	l := NewLedger()
	_, _ = l.Save("1-2-r1", Final{GA: 1, GB: 1})
	if got := strings.Split(ShareText(ts, l), "\n")[0]; got != "WINNERS: Blue & Green" {
		t.Fatalf("unexpected winner line %q", got)
	}
	if ShareText(nil, l) != "Futsal results" {
		t.Fatalf("expected placeholder for empty teams")
	}
}

func TestSummaryCSV(t *testing.T) {
	ts := sampleTeams()[:2]
	l := NewLedger()
	_, _ = l.Save("1-2-r1", Final{GA: 1, GB: 0, GPA: map[string]int{"Bo": 1}, GPB: map[string]int{}})
	_, _ = l.Save("1-2-r2", Final{GA: 2, GB: 2})

	got, err := SummaryCSV("2025-11-12", ts, l)
	require.NoError(t, err)
	want := strings.Join([]string{
		"Date,Player,Points,Goals",
		"2025-11-12,Ann,4,0",
		"2025-11-12,Bo,4,1",
		"2025-11-12,Cy,4,0",
		"2025-11-12,Dee,1,0",
		"2025-11-12,Eli,1,0",
		"2025-11-12,Fay,1,0",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected csv (-want +got):\n%s", diff)
	}
}

func TestLedgerJSONKeepsFinalAndDraft(t *testing.T) {
	l := NewLedger()
	_, _ = l.Save("1-2-r1", Final{GA: 1, GB: 0})
	_, _ = l.SaveDraft("1-2-r1", Draft{GA: intp(3)})
	_, _ = l.SaveDraft("1-3-r1", Draft{GB: intp(2)})

	raw, err := json.Marshal(l)
	require.NoError(t, err)

	back := NewLedger()
	require.NoError(t, json.Unmarshal(raw, back))
	if f, ok := back.Final("1-2-r1"); !ok || f.GA != 1 {
		t.Fatalf("expected final to survive, got %+v", f)
	}
	if d, ok := back.Draft("1-2-r1"); !ok || *d.GA != 3 {
		t.Fatalf("expected draft to survive, got %+v", d)
	}
	if _, ok := back.Final("1-3-r1"); ok {
		t.Fatalf("draft-only record must not become final")
	}
}

func TestLedgerDrivesKickoffs(t *testing.T) {
	ts := sampleTeams()
	matches := schedule.Schedule(ts, 3, 2)
	l := NewLedger()
	_, _ = l.Save(matches[0].ID, Final{GA: 1, GB: 0})
	k, ok := schedule.NextKickoff(matches, 3, l)
	require.True(t, ok)
	if k.Index != 1 {
		t.Fatalf("expected second match next, got %+v", k)
	}
	if l.AllScored(matches) {
		t.Fatalf("schedule is not complete")
	}
}

func TestScorerSlots(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b", "c", GuestPlayer}, ScorerSlots([]string{"a", "b", "c"})); diff != "" {
		t.Fatalf("unexpected slots:\n%s", diff)
	}
	if len(ScorerSlots([]string{"a", "b", "c", "d"})) != 4 {
		t.Fatalf("guest only offered to three-player teams")
	}
}

func TestSanitizeRepairsDecodedLedger(t *testing.T) {
	raw := `{
		"bogus": {"a": 1, "b": 2, "round": 1, "ga": 1, "gb": 0},
		"1-2-r1": {"a": 2, "b": 1, "round": 0, "ga": 0, "gb": 1, "gpa": {"Dee": 2}, "gpb": {}},
		"2-3-r2": {"a": 9, "b": 9, "round": 2, "gaDraft": 1}
	}`
	l := NewLedger()
	require.NoError(t, json.Unmarshal([]byte(raw), l))

	if !l.Sanitize() {
		t.Fatalf("expected repairs to be reported")
	}
	if _, ok := l.Get("bogus"); ok {
		t.Fatalf("expected unparseable id to be dropped")
	}
	f, ok := l.Final("1-2-r1")
	require.True(t, ok)
	want := Final{A: 2, B: 1, Round: 1, GA: 2, GB: 1, GPA: map[string]int{"Dee": 2}, GPB: map[string]int{}}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("unexpected repaired final (-want +got):\n%s", diff)
	}
	d, ok := l.Draft("2-3-r2")
	require.True(t, ok)
	if d.A != 2 || d.B != 3 {
		t.Fatalf("expected draft fixture from id, got %+v", d)
	}
	if l.Sanitize() {
		t.Fatalf("a clean ledger needs no repairs")
	}
}
