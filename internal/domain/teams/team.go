package teams

import "github.com/lutefd/meetup-engine/internal/domain/ratings"

// MinAttendees is the smallest roster team generation accepts.
const MinAttendees = 8

type Team struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Members []string `json:"members"`
}

type Color struct {
	Name string
	Hex  string
}

var Palette = []Color{
	{Name: "Green", Hex: "#10B981"},
	{Name: "Blue", Hex: "#3B82F6"},
	{Name: "Orange", Hex: "#F59E0B"},
	{Name: "Grey", Hex: "#6B7280"},
}

// NeedsChoice reports whether the roster size leaves the team count to the organiser.
func NeedsChoice(n int) bool {
	return n == 11
}

// Count derives the default team count for n attendees.
func Count(n int) int {
	t := n / 4
	if t < 1 {
		t = 1
	}
	if t > 4 {
		t = 4
	}
	if n == 15 {
		t = 3
	}
	if n >= 16 {
		t = 4
	}
	return t
}

// Sizes splits n into t capacities. The remainder goes to the last teams,
// so smaller teams come first.
func Sizes(n, t int) []int {
	if t < 1 {
		return nil
	}
	sizes := make([]int, t)
	r := n % t
	for i := range sizes {
		sizes[i] = n / t
		if i >= t-r {
			sizes[i]++
		}
	}
	return sizes
}

// CountOption describes one choice offered when NeedsChoice is true.
type CountOption struct {
	Teams int   `json:"teams"`
	Sizes []int `json:"sizes"`
}

func CountOptions(n int) []CountOption {
	if !NeedsChoice(n) {
		t := Count(n)
		return []CountOption{{Teams: t, Sizes: Sizes(n, t)}}
	}
	return []CountOption{
		{Teams: 2, Sizes: Sizes(n, 2)},
		{Teams: 3, Sizes: Sizes(n, 3)},
	}
}

func sumBy(members []string, f func(string) float64) float64 {
	total := 0.0
	for _, m := range members {
		total += f(m)
	}
	return total
}

// SkillSum is the total skill of a team's members.
func SkillSum(t Team, lookup ratings.Lookup) float64 {
	return sumBy(t.Members, lookup.Skill)
}

func StaminaSum(t Team, lookup ratings.Lookup) float64 {
	return sumBy(t.Members, lookup.Stamina)
}

// Clone deep-copies a team batch.
func Clone(in []Team) []Team {
	out := make([]Team, len(in))
	for i, t := range in {
		t.Members = append([]string(nil), t.Members...)
		out[i] = t
	}
	return out
}

func indexOf(members []string, name string) int {
	for i, m := range members {
		if m == name {
			return i
		}
	}
	return -1
}

func swapMembers(teams []Team, i, j int, a, b string) {
	ia := indexOf(teams[i].Members, a)
	ib := indexOf(teams[j].Members, b)
	if ia == -1 || ib == -1 {
		return
	}
	teams[i].Members[ia] = b
	teams[j].Members[ib] = a
}
