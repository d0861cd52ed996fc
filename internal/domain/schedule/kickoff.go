package schedule

import "github.com/lutefd/meetup-engine/internal/domain/seed"

// kickoffSalt decorrelates the kickoff coin from the roster seed.
const kickoffSalt uint32 = 0x9e3779b9

// Scores exposes recorded final scores by match id.
type Scores interface {
	Score(matchID string) (ga, gb int, ok bool)
}

// Kickoff names the next unplayed match and the team that starts it.
type Kickoff struct {
	Index  int    `json:"index"`
	Match  string `json:"match"`
	TeamID int    `json:"teamId"`
}

// NextKickoff replays kickoffs over played matches so that the team with
// fewer starts kicks off; equal counts are settled by a seeded coin flip.
// ok is false when every match has a result.
func NextKickoff(matches []Match, s uint32, scores Scores) (Kickoff, bool) {
	rng := seed.NewRand(s + kickoffSalt)
	starts := map[int]int{}
	pick := func(m Match) int {
		ca, cb := starts[m.A], starts[m.B]
		switch {
		case ca < cb:
			return m.A
		case cb < ca:
			return m.B
		case rng.Float64() < 0.5:
			return m.A
		default:
			return m.B
		}
	}
	for i, m := range matches {
		if _, _, played := scores.Score(m.ID); !played {
			return Kickoff{Index: i, Match: m.ID, TeamID: pick(m)}, true
		}
		starts[pick(m)]++
	}
	return Kickoff{Index: -1}, false
}

// Outcome is a single match result from one team's perspective.
type Outcome string

const (
	Win  Outcome = "W"
	Draw Outcome = "D"
	Loss Outcome = "L"
)

type Streak struct {
	Outcome Outcome `json:"outcome,omitempty"`
	Length  int     `json:"length"`
}

// TeamStreaks walks matches in play order up to and including upTo (or all
// matches when upTo is empty) and returns each team's current run of equal
// outcomes. Unplayed matches are skipped.
func TeamStreaks(teamIDs []int, matches []Match, scores Scores, upTo string) map[int]Streak {
	out := make(map[int]Streak, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = Streak{}
	}
	extend := func(id int, o Outcome) {
		s := out[id]
		if s.Outcome == o {
			s.Length++
		} else {
			s = Streak{Outcome: o, Length: 1}
		}
		out[id] = s
	}
	for _, m := range matches {
		if ga, gb, ok := scores.Score(m.ID); ok {
			a, b := Draw, Draw
			if ga > gb {
				a, b = Win, Loss
			} else if gb > ga {
				a, b = Loss, Win
			}
			extend(m.A, a)
			extend(m.B, b)
		}
		if m.ID == upTo {
			break
		}
	}
	return out
}
