package schedule

import (
	"github.com/lutefd/meetup-engine/internal/domain/ratings"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
)

type Forecast struct {
	Match Match            `json:"match"`
	Odds  teams.Prediction `json:"odds"`
}

// Forecasts attaches win and draw chances to each match.
func Forecasts(ts []teams.Team, matches []Match, lookup ratings.Lookup) []Forecast {
	byID := make(map[int]teams.Team, len(ts))
	for _, t := range ts {
		byID[t.ID] = t
	}
	out := make([]Forecast, 0, len(matches))
	for _, m := range matches {
		out = append(out, Forecast{Match: m, Odds: teams.Predict(byID[m.A], byID[m.B], lookup)})
	}
	return out
}
