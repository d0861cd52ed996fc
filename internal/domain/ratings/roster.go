package ratings

// DefaultPlayers is the seeded roster in display order.
var DefaultPlayers = []string{
	"Ruben", "Job", "Ramtin", "Thijs", "Emiel", "Frits", "Gerjan", "Wout", "Aklilu", "Aron", "Aurant", "Bas", "Bjorn",
	"Danny", "David", "Hanno", "Jefta", "Lenn", "Nathan", "Rene", "Sem", "Timo", "Wijnand", "Willem", "Amir", "Ralph",
}

var defaultRatings = map[string]Rating{
	"Job":     {Skill: 3.7, Stamina: 3},
	"Ramtin":  {Skill: 2, Stamina: 1},
	"Thijs":   {Skill: 4, Stamina: 4},
	"Emiel":   {Skill: 3.7, Stamina: 3},
	"Frits":   {Skill: 3.2, Stamina: 3},
	"Gerjan":  {Skill: 3.2, Stamina: 3},
	"Wout":    {Skill: 3, Stamina: 2},
	"Aklilu":  {Skill: 1, Stamina: 1},
	"Aron":    {Skill: 1, Stamina: 1},
	"Aurant":  {Skill: 2.2, Stamina: 2},
	"Bas":     {Skill: 3.8, Stamina: 3},
	"Bjorn":   {Skill: 4, Stamina: 3},
	"Danny":   {Skill: 3, Stamina: 3},
	"David":   {Skill: 3, Stamina: 3},
	"Hanno":   {Skill: 5, Stamina: 5},
	"Jefta":   {Skill: 3.6, Stamina: 4},
	"Lenn":    {Skill: 3.7, Stamina: 4},
	"Nathan":  {Skill: 3.5, Stamina: 4},
	"Ruben":   {Skill: 3.9, Stamina: 4},
	"Rene":    {Skill: 3.6, Stamina: 3},
	"Sem":     {Skill: 4.8, Stamina: 4},
	"Timo":    {Skill: 3.2, Stamina: 2},
	"Wijnand": {Skill: 3.5, Stamina: 4},
	"Willem":  {Skill: 4, Stamina: 4},
	"Amir":    {Skill: 3.7, Stamina: 3},
	"Ralph":   {Skill: 5, Stamina: 5},
}

// DefaultRoster returns a store seeded with the built-in ratings.
func DefaultRoster() *Store {
	return NewStore(defaultRatings)
}
