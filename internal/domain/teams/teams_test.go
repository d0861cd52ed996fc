package teams

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fixedRatings map[string][2]float64

func (f fixedRatings) Skill(name string) float64 {
	if r, ok := f[name]; ok {
		return r[0]
	}
	return 3
}

func (f fixedRatings) Stamina(name string) float64 {
	if r, ok := f[name]; ok {
		return r[1]
	}
	return 3
}

func members(teams []Team) []string {
	out := make([]string, 0)
	for _, t := range teams {
		out = append(out, t.Members...)
	}
	sort.Strings(out)
	return out
}

func roster(n int) ([]string, fixedRatings) {
	names := make([]string, n)
	r := fixedRatings{}
	for i := 0; i < n; i++ {
		names[i] = string(rune('A' + i))
		r[names[i]] = [2]float64{1 + float64(i%9)*0.5, 1 + float64((i*7)%9)*0.5}
	}
	return names, r
}

func TestCount(t *testing.T) {
	cases := map[int]int{8: 2, 9: 2, 11: 2, 12: 3, 14: 3, 15: 3, 16: 4, 19: 4, 20: 4, 3: 1}
	for n, want := range cases {
		if got := Count(n); got != want {
			t.Fatalf("n=%d: expected %d, got %d", n, want, got)
		}
	}
}

func TestSizesPutsRemainderLast(t *testing.T) {
	if diff := cmp.Diff([]int{4, 5, 5}, Sizes(14, 3)); diff != "" {
		t.Fatalf("unexpected sizes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5, 5}, Sizes(10, 2)); diff != "" {
		t.Fatalf("unexpected sizes (-want +got):\n%s", diff)
	}
}

func TestCountOptionsForEleven(t *testing.T) {
	opts := CountOptions(11)
	require.Len(t, opts, 2)
	if diff := cmp.Diff([]int{5, 6}, opts[0].Sizes); diff != "" {
		t.Fatalf("unexpected 2-team split:\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 4, 4}, opts[1].Sizes); diff != "" {
		t.Fatalf("unexpected 3-team split:\n%s", diff)
	}
}

func TestAssignPartitionsAttendees(t *testing.T) {
	for n := 8; n <= 20; n++ {
		for count := 1; count <= 4; count++ {
			names, r := roster(n)
			out := Assign(Input{Attendees: names, Ratings: r, Count: count, Seed: 99})
			require.Len(t, out, count)

			want := append([]string(nil), names...)
			sort.Strings(want)
			if diff := cmp.Diff(want, members(out)); diff != "" {
				t.Fatalf("n=%d t=%d: members differ (-want +got):\n%s", n, count, diff)
			}
			lo, hi := len(out[0].Members), len(out[0].Members)
			for _, team := range out {
				lo = min(lo, len(team.Members))
				hi = max(hi, len(team.Members))
			}
			if hi-lo > 1 {
				t.Fatalf("n=%d t=%d: sizes differ by %d", n, count, hi-lo)
			}
		}
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	names, r := roster(14)
	h := NewHarmony([][2]string{{"A", "B"}}, DefaultHarmonyPenalty)
	first := Assign(Input{Attendees: names, Ratings: r, Harmony: h, Seed: 1234})
	second := Assign(Input{Attendees: names, Ratings: r, Harmony: h, Seed: 1234})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("assignment not deterministic:\n%s", diff)
	}
}

func TestAssignTeamMetadata(t *testing.T) {
	names, r := roster(16)
	out := Assign(Input{Attendees: names, Ratings: r, Seed: 5})
	require.Len(t, out, 4)
	for i, team := range out {
		if team.ID != i+1 || team.Name != Palette[i].Name || team.Color != Palette[i].Hex {
			t.Fatalf("unexpected metadata for team %d: %+v", i, team)
		}
	}
}

func TestAssignSeparatesHarmonyPair(t *testing.T) {
	names := []string{"Ruben", "Ramtin", "P1", "P2", "P3", "P4", "P5", "P6"}
	r := fixedRatings{"Ruben": {4, 4}, "Ramtin": {4, 4}}
	h, errs := DecodeHarmonyTokens([]string{"UnViZW58UmFtdGlu"}, DefaultHarmonyPenalty)
	require.Empty(t, errs)

	out := Assign(Input{Attendees: names, Ratings: r, Count: 2, Harmony: h, Seed: 3})
	if v := h.Violations(out); len(v) != 0 {
		t.Fatalf("expected pair to be separated, got %v in %+v", v, out)
	}
}

func TestBalanceSkillToTargetsReducesError(t *testing.T) {
	r := fixedRatings{"A": {5, 3}, "B": {5, 3}, "C": {1, 3}, "D": {1, 3}}
	teams := []Team{{ID: 1, Members: []string{"A", "B"}}, {ID: 2, Members: []string{"C", "D"}}}
	roster := []string{"A", "B", "C", "D"}

	before := SkillError(teams, roster, r)
	BalanceSkillToTargets(teams, roster, r)
	after := SkillError(teams, roster, r)

	if after >= before {
		t.Fatalf("expected error to drop, before %.2f after %.2f", before, after)
	}
	if diff := cmp.Diff(roster, members(teams)); diff != "" {
		t.Fatalf("membership changed:\n%s", diff)
	}
	// The tie between equal swaps resolves to the lexicographically first pair.
	if diff := cmp.Diff([]string{"C", "B"}, teams[0].Members); diff != "" {
		t.Fatalf("unexpected tie-break:\n%s", diff)
	}
}

func TestBalanceSkillNeverIncreasesError(t *testing.T) {
	for n := 8; n <= 16; n++ {
		names, r := roster(n)
		half := n / 2
		teams := []Team{{ID: 1, Members: append([]string(nil), names[:half]...)}, {ID: 2, Members: append([]string(nil), names[half:]...)}}
		before := SkillError(teams, names, r)
		BalanceSkillToTargets(teams, names, r)
		if after := SkillError(teams, names, r); after > before+1e-9 {
			t.Fatalf("n=%d: error grew from %.3f to %.3f", n, before, after)
		}
	}
}

func TestBalanceStaminaEqualSkillKeepsSkillSums(t *testing.T) {
	r := fixedRatings{"A": {3, 5}, "B": {3, 5}, "C": {3, 1}, "D": {3, 1}}
	teams := []Team{{ID: 1, Members: []string{"A", "B"}}, {ID: 2, Members: []string{"C", "D"}}}

	BalanceStaminaEqualSkill(teams, r)

	if SkillSum(teams[0], r) != 6 || SkillSum(teams[1], r) != 6 {
		t.Fatalf("skill sums changed: %+v", teams)
	}
	a0 := StaminaSum(teams[0], r) / 2
	a1 := StaminaSum(teams[1], r) / 2
	if a0 != a1 {
		t.Fatalf("expected equal stamina averages, got %.2f and %.2f", a0, a1)
	}
}

func TestBalanceStaminaRaisesSmallerTeam(t *testing.T) {
	r := fixedRatings{
		"A": {3, 1}, "B": {3, 1},
		"C": {3, 5}, "D": {3, 5}, "E": {3, 1},
	}
	teams := []Team{{ID: 1, Members: []string{"A", "B"}}, {ID: 2, Members: []string{"C", "D", "E"}}}
	BalanceStaminaEqualSkill(teams, r)
	if got := StaminaSum(teams[0], r); got <= 2 {
		t.Fatalf("expected smaller team stamina to rise, got %.2f", got)
	}
}

func TestDecodeHarmonyTokensReportsBadTokens(t *testing.T) {
	good := EncodeHarmonyPair("Ann", "Bo")
	bad := EncodeHarmonyPair("Solo", "")
	h, errs := DecodeHarmonyTokens([]string{good, bad, "%%%"}, 0.4)
	require.Len(t, errs, 2)
	if !h.Conflicts("Bo", "Ann") {
		t.Fatalf("expected Ann/Bo conflict")
	}
	if got := h.Bias([]string{"Ann", "Cy"}, "Bo"); got != 0.4 {
		t.Fatalf("expected bias 0.4, got %.2f", got)
	}
}

func TestPredictFavoursStrongerTeam(t *testing.T) {
	r := fixedRatings{"A": {5, 5}, "B": {5, 5}, "C": {1, 1}, "D": {1, 1}}
	p := Predict(Team{Members: []string{"A", "B"}}, Team{Members: []string{"C", "D"}}, r)
	if p.WinA <= p.WinB {
		t.Fatalf("expected stronger team favoured, got %+v", p)
	}
	if p.Draw < 0 || p.Draw > 1 {
		t.Fatalf("draw probability out of range: %.4f", p.Draw)
	}
}
