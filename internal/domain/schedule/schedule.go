package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lutefd/meetup-engine/internal/domain/seed"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

// DefaultRounds is the round count after team generation.
const DefaultRounds = 2

// maxStreak is the longest run of consecutive matches a team may play.
const maxStreak = 2

// Pairing is one fixture between two teams.
type Pairing struct {
	A teams.Team
	B teams.Team
}

type Match struct {
	ID    string `json:"id"`
	Round int    `json:"round"`
	A     int    `json:"a"`
	B     int    `json:"b"`
}

// MatchID is the ledger key for a fixture in a given round.
func MatchID(a, b, round int) string {
	return fmt.Sprintf("%d-%d-r%d", min(a, b), max(a, b), round)
}

// ParseMatchID is the inverse of MatchID.
func ParseMatchID(id string) (a, b, round int, ok bool) {
	head, r, found := strings.Cut(id, "-r")
	if !found {
		return 0, 0, 0, false
	}
	as, bs, found := strings.Cut(head, "-")
	if !found {
		return 0, 0, 0, false
	}
	var err error
	if a, err = strconv.Atoi(as); err != nil {
		return 0, 0, 0, false
	}
	if b, err = strconv.Atoi(bs); err != nil {
		return 0, 0, 0, false
	}
	if round, err = strconv.Atoi(r); err != nil || round < 1 {
		return 0, 0, 0, false
	}
	return a, b, round, true
}

// Pairings lists every unique fixture in team order.
func Pairings(ts []teams.Team) []Pairing {
	out := make([]Pairing, 0, len(ts)*(len(ts)-1)/2)
	for i := range ts {
		for j := i + 1; j < len(ts); j++ {
			out = append(out, Pairing{A: ts[i], B: ts[j]})
		}
	}
	return out
}

// OrderRound sequences one round of fixtures. Four teams use the classic
// A-B, C-D, A-C, B-D, A-D, B-C order; otherwise the fixtures are shuffled with
// seed and greedily picked so no team exceeds two consecutive matches when
// an alternative exists.
func OrderRound(ts []teams.Team, pairs []Pairing, s uint32) []Pairing {
	if len(ts) == 4 {
		sorted := append([]teams.Team(nil), ts...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		a, b, c, d := sorted[0], sorted[1], sorted[2], sorted[3]
		return []Pairing{{a, b}, {c, d}, {a, c}, {b, d}, {a, d}, {b, c}}
	}

	remaining := seed.Shuffle(pairs, s)
	ordered := make([]Pairing, 0, len(remaining))
	streak := make(map[int]int, len(ts))
	for len(remaining) > 0 {
		pick := 0
		for i, p := range remaining {
			if streak[p.A.ID] < maxStreak && streak[p.B.ID] < maxStreak {
				pick = i
				break
			}
		}
		p := remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)
		ordered = append(ordered, p)
		for _, t := range ts {
			if t.ID == p.A.ID || t.ID == p.B.ID {
				streak[t.ID]++
			} else {
				streak[t.ID] = 0
			}
		}
	}
	return ordered
}

// triples counts how often any team reaches three consecutive matches when
// order is repeated for the given number of rounds.
func triples(ts []teams.Team, rounds int, order []Pairing) int {
	streak := make(map[int]int, len(ts))
	count := 0
	for r := 0; r < rounds; r++ {
		for _, p := range order {
			for _, t := range ts {
				if t.ID == p.A.ID || t.ID == p.B.ID {
					streak[t.ID]++
					if streak[t.ID] > maxStreak {
						count++
					}
				} else {
					streak[t.ID] = 0
				}
			}
		}
	}
	return count
}

// CreatesTriple reports whether repeating order leaves a team playing three
// matches in a row anywhere in the flattened schedule.
func CreatesTriple(ts []teams.Team, rounds int, order []Pairing) bool {
	return triples(ts, rounds, order) > 0
}

// Rotate returns s shifted left by k.
func Rotate[T any](s []T, k int) []T {
	n := len(s)
	out := make([]T, n)
	for i := range out {
		out[i] = s[(i+k)%n]
	}
	return out
}

func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// FixedOrder is the per-round order repeated across every round. When the
// base order produces a triple the reversed order and then each rotation are
// tried; if every candidate still has triples the one with the fewest wins,
// keeping the earliest candidate on ties.
func FixedOrder(ts []teams.Team, s uint32, rounds int) []Pairing {
	if len(ts) < 2 {
		return nil
	}
	rounds = max(1, rounds)
	base := OrderRound(ts, Pairings(ts), s)

	best, bestCount := base, triples(ts, rounds, base)
	if bestCount == 0 {
		return base
	}
	candidates := [][]Pairing{reversed(base)}
	for k := 1; k < len(base); k++ {
		candidates = append(candidates, Rotate(base, k))
	}
	for _, c := range candidates {
		n := triples(ts, rounds, c)
		if n == 0 {
			return c
		}
		if n < bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// Flatten expands the per-round order into play order.
func Flatten(order []Pairing, rounds int) []Match {
	out := make([]Match, 0, len(order)*max(rounds, 0))
	for r := 1; r <= rounds; r++ {
		for _, p := range order {
			out = append(out, Match{ID: MatchID(p.A.ID, p.B.ID, r), Round: r, A: p.A.ID, B: p.B.ID})
		}
	}
	return out
}

// Schedule returns every match of the session in play order.
func Schedule(ts []teams.Team, s uint32, rounds int) []Match {
	if len(ts) < 2 {
		return nil
	}
	rounds = max(1, rounds)
	return Flatten(FixedOrder(ts, s, rounds), rounds)
}
