package stats

// Record is one player's line in the season log. Goals is nil when goals were
// not tracked that session, which is distinct from tracked zero.
type Record struct {
	Date   string   `json:"date"`
	Player string   `json:"player"`
	Points float64  `json:"points"`
	Goals  *float64 `json:"goals"`
}

// PlayerStat is a player's cumulative season line.
type PlayerStat struct {
	Player       string  `json:"player"`
	Matches      int     `json:"matches"`
	Points       float64 `json:"points"`
	Goals        float64 `json:"goals"`
	GoalSessions int     `json:"goalSessions"`
	PPM          float64 `json:"ppm"`
	GPM          float64 `json:"gpm"`
}

// Entry is a Record within a single date.
type Entry struct {
	Player string   `json:"player"`
	Points float64  `json:"points"`
	Goals  *float64 `json:"goals"`
}

// GoalsOrZero treats untracked goals as zero.
func (e Entry) GoalsOrZero() float64 {
	if e.Goals == nil {
		return 0
	}
	return *e.Goals
}

// Goals returns a pointer to v, for building records.
func Goals(v float64) *float64 {
	return &v
}
