package stats

// PointsSeries is one player's points per season date. Absent dates hold 0.
type PointsSeries struct {
	Dates  []string  `json:"dates"`
	Points []float64 `json:"points"`
	Absent []bool    `json:"absent"`
}

// GoalsSeries is one player's goals per season date. Untracked or absent
// dates hold nil.
type GoalsSeries struct {
	Dates  []string   `json:"dates"`
	Goals  []*float64 `json:"goals"`
	Absent []bool     `json:"absent"`
}

func find(entries []Entry, player string) (Entry, bool) {
	for _, e := range entries {
		if e.Player == player {
			return e, true
		}
	}
	return Entry{}, false
}

func PlayerPoints(rows []Record, player string) PointsSeries {
	byDate := ByDate(rows)
	dates := Dates(rows)
	s := PointsSeries{Dates: dates, Points: make([]float64, len(dates)), Absent: make([]bool, len(dates))}
	for i, d := range dates {
		if e, ok := find(byDate[d], player); ok {
			s.Points[i] = e.Points
		} else {
			s.Absent[i] = true
		}
	}
	return s
}

func PlayerGoals(rows []Record, player string) GoalsSeries {
	byDate := ByDate(rows)
	dates := Dates(rows)
	s := GoalsSeries{Dates: dates, Goals: make([]*float64, len(dates)), Absent: make([]bool, len(dates))}
	for i, d := range dates {
		e, ok := find(byDate[d], player)
		if !ok {
			s.Absent[i] = true
			continue
		}
		if e.Goals != nil {
			s.Goals[i] = Goals(*e.Goals)
		}
	}
	return s
}

// PointsByPlayer lists each player's points over attended dates in order.
func PointsByPlayer(rows []Record) map[string][]float64 {
	byDate := ByDate(rows)
	out := map[string][]float64{}
	for _, d := range Dates(rows) {
		for _, e := range byDate[d] {
			out[e.Player] = append(out[e.Player], e.Points)
		}
	}
	return out
}

// GoalsByPlayer lists each player's goals over goal-tracked dates in order.
func GoalsByPlayer(rows []Record) map[string][]float64 {
	byDate := ByDate(rows)
	out := map[string][]float64{}
	for _, d := range Dates(rows) {
		for _, e := range byDate[d] {
			if e.Goals != nil {
				out[e.Player] = append(out[e.Player], *e.Goals)
			}
		}
	}
	return out
}
