package teams

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// DefaultHarmonyPenalty is subtracted from a team's score per conflicting teammate.
const DefaultHarmonyPenalty = 0.4

// Harmony is a set of player pairs that should not share a team.
type Harmony struct {
	pairs   [][2]string
	keys    map[string]struct{}
	Penalty float64
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func NewHarmony(pairs [][2]string, penalty float64) Harmony {
	h := Harmony{keys: map[string]struct{}{}, Penalty: penalty}
	for _, p := range pairs {
		a, b := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if a == "" || b == "" || a == b {
			continue
		}
		key := pairKey(a, b)
		if _, ok := h.keys[key]; ok {
			continue
		}
		h.keys[key] = struct{}{}
		h.pairs = append(h.pairs, [2]string{a, b})
	}
	return h
}

// DecodeHarmonyTokens parses base64 "A|B" tokens. Tokens that do not decode
// to exactly two names are returned as errors and skipped.
func DecodeHarmonyTokens(tokens []string, penalty float64) (Harmony, []error) {
	pairs := make([][2]string, 0, len(tokens))
	var errs []error
	for _, token := range tokens {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
		if err != nil {
			errs = append(errs, fmt.Errorf("harmony token %q: %w", token, err))
			continue
		}
		parts := make([]string, 0, 2)
		for _, p := range strings.Split(string(raw), "|") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) != 2 {
			errs = append(errs, fmt.Errorf("harmony token %q: expected two names, got %d", token, len(parts)))
			continue
		}
		pairs = append(pairs, [2]string{parts[0], parts[1]})
	}
	return NewHarmony(pairs, penalty), errs
}

// EncodeHarmonyPair is the inverse of DecodeHarmonyTokens for a single pair.
func EncodeHarmonyPair(a, b string) string {
	return base64.StdEncoding.EncodeToString([]byte(a + "|" + b))
}

func (h Harmony) Pairs() [][2]string {
	return append([][2]string(nil), h.pairs...)
}

func (h Harmony) Empty() bool {
	return len(h.pairs) == 0
}

func (h Harmony) Conflicts(a, b string) bool {
	if h.keys == nil {
		return false
	}
	_, ok := h.keys[pairKey(a, b)]
	return ok
}

// Bias is the penalty for adding candidate to a team with members.
func (h Harmony) Bias(members []string, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	bias := 0.0
	for _, m := range members {
		if h.Conflicts(m, candidate) {
			bias += h.Penalty
		}
	}
	return bias
}

// Violations lists configured pairs currently sharing a team, sorted by key.
func (h Harmony) Violations(teams []Team) [][2]string {
	var out [][2]string
	for _, p := range h.pairs {
		ta, tb := teamOf(teams, p[0]), teamOf(teams, p[1])
		if ta != -1 && ta == tb {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return pairKey(out[i][0], out[i][1]) < pairKey(out[j][0], out[j][1]) })
	return out
}

func teamOf(teams []Team, name string) int {
	for i, t := range teams {
		if indexOf(t.Members, name) != -1 {
			return i
		}
	}
	return -1
}
