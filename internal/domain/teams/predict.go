package teams

import (
	"github.com/intinig/go-openskill/rating"
	"github.com/intinig/go-openskill/types"

	"github.com/lutefd/meetup-engine/internal/domain/ratings"
)

// Openskill's default prior is mu=25, sigma=25/3. Skill is mapped linearly
// so that the default rating lands on the prior mean.
const (
	muPerSkill = 25.0 / ratings.Default
	baseSigma  = 25.0 / 3
)

// Prediction is the expected outcome of a match between two teams.
type Prediction struct {
	WinA float64 `json:"winA"`
	WinB float64 `json:"winB"`
	Draw float64 `json:"draw"`
}

func openskillTeam(t Team, lookup ratings.Lookup) types.Team {
	out := make(types.Team, 0, len(t.Members))
	for _, m := range t.Members {
		// Low stamina widens the uncertainty around a player's contribution.
		sigma := baseSigma * (ratings.Max + 1 - lookup.Stamina(m)) / ratings.Max
		out = append(out, types.Rating{Mu: lookup.Skill(m) * muPerSkill, Sigma: sigma})
	}
	return out
}

// Predict estimates win and draw chances for a against b.
func Predict(a, b Team, lookup ratings.Lookup) Prediction {
	if len(a.Members) == 0 || len(b.Members) == 0 {
		return Prediction{}
	}
	teams := []types.Team{openskillTeam(a, lookup), openskillTeam(b, lookup)}
	win := rating.PredictWin(teams, nil)
	p := Prediction{Draw: rating.PredictDraw(teams, nil)}
	if len(win) == 2 {
		p.WinA, p.WinB = win[0], win[1]
	}
	return p
}
