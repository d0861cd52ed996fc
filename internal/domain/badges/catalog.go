package badges

import (
	"strconv"
	"strings"
)

// ID names a badge in the catalog.
type ID string

const (
	Playmaker    ID = "playmaker"
	Clutch       ID = "clutch"
	LatestTop    ID = "latestTop"
	AllTimeTop   ID = "allTimeTop"
	MVP          ID = "mvp"
	Clinical     ID = "clinical"
	Legend       ID = "legend"
	Master       ID = "master"
	Elite        ID = "elite"
	TenRow       ID = "tenRow"
	NineRow      ID = "nineRow"
	EightRow     ID = "eightRow"
	SevenRow     ID = "sevenRow"
	SixRow       ID = "sixRow"
	FiveRow      ID = "fiveRow"
	FourRow      ID = "fourRow"
	HatTrick     ID = "hatTrick"
	Sharpshooter ID = "sharpshooter"
	Form         ID = "form"
	ColdStreak   ID = "coldStreak"
	IronMan      ID = "ironMan"
	Marathon     ID = "marathon"
	Addict       ID = "addict"
	Rocket       ID = "rocket"
)

// Priority is the display order when a player holds several badges.
var Priority = []ID{
	Playmaker, Clutch, LatestTop, AllTimeTop, MVP, Clinical,
	Legend, Master, Elite,
	TenRow, NineRow, EightRow, SevenRow, SixRow, FiveRow, FourRow, HatTrick,
	Sharpshooter, Form, ColdStreak, IronMan, Marathon, Addict, Rocket,
}

var rank = func() map[ID]int {
	out := make(map[ID]int, len(Priority))
	for i, id := range Priority {
		out[id] = i
	}
	return out
}()

// Badge is a catalog entry. Trophy may contain {N}, replaced by the number
// of sessions the badge was held.
type Badge struct {
	ID          ID     `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Trophy      string `json:"-"`
}

// goalTiers maps a scoring streak length to its badge, shortest first.
var goalTiers = []struct {
	Min int
	ID  ID
}{
	{3, HatTrick}, {4, FourRow}, {5, FiveRow}, {6, SixRow},
	{7, SevenRow}, {8, EightRow}, {9, NineRow}, {10, TenRow},
}

var catalog = map[ID]Badge{
	LatestTop:    {LatestTop, "Session Top Scorer", "Led the latest session in goals.", "Held the Session Top Scorer badge for {N} sessions."},
	Playmaker:    {Playmaker, "Playmaker", "Highest points+goals contribution in the latest session.", "Held the Playmaker badge for {N} sessions."},
	AllTimeTop:   {AllTimeTop, "All-Time Topscorer", "Most total goals across all sessions.", "Held the All-Time Topscorer badge for {N} sessions."},
	Clutch:       {Clutch, "Session Ace", "Most sessions finishing with the highest points.", "Most sessions finishing with the highest points."},
	HatTrick:     {HatTrick, "Three In A Row", "Scored in 3+ consecutive goal-tracked sessions.", "Scored in 3+ consecutive goal-tracked sessions."},
	FourRow:      {FourRow, "Four In A Row", "Scored in 4+ consecutive goal-tracked sessions.", "Scored in 4+ consecutive goal-tracked sessions."},
	FiveRow:      {FiveRow, "Five In A Row", "Scored in 5+ consecutive goal-tracked sessions.", "Scored in 5+ consecutive goal-tracked sessions."},
	SixRow:       {SixRow, "Six In A Row", "Scored in 6+ consecutive goal-tracked sessions.", "Scored in 6+ consecutive goal-tracked sessions."},
	SevenRow:     {SevenRow, "Seven In A Row", "Scored in 7+ consecutive goal-tracked sessions.", "Scored in 7+ consecutive goal-tracked sessions."},
	EightRow:     {EightRow, "Eight In A Row", "Scored in 8+ consecutive goal-tracked sessions.", "Scored in 8+ consecutive goal-tracked sessions."},
	NineRow:      {NineRow, "Nine In A Row", "Scored in 9+ consecutive goal-tracked sessions.", "Scored in 9+ consecutive goal-tracked sessions."},
	TenRow:       {TenRow, "Ten In A Row", "Scored in 10+ consecutive goal-tracked sessions.", "Scored in 10+ consecutive goal-tracked sessions."},
	Sharpshooter: {Sharpshooter, "Sharpshooter", "Averages 2+ goals per tracked session.", "Averages 2+ goals per tracked session."},
	IronMan:      {IronMan, "Iron Man", "Attended 6+ consecutive sessions.", "Completed a 6+ session attendance streak {N} times."},
	Marathon:     {Marathon, "Marathon Man", "Attended 15 consecutive sessions.", "Completed a 15-session attendance streak {N} times."},
	Addict:       {Addict, "Addict", "90%+ attendance this season.", "90%+ attendance this season."},
	Clinical:     {Clinical, "Clinical Finisher", "Scored 5+ goals in a single session.", "Held the Clinical Finisher badge for {N} sessions."},
	Elite:        {Elite, "Elite", "On the winning team in 3 consecutive sessions.", "On the winning team in 3 consecutive sessions {N} times."},
	Master:       {Master, "Master", "On the winning team in 4 consecutive sessions.", "On the winning team in 4 consecutive sessions {N} times."},
	Legend:       {Legend, "Legend", "On the winning team in 5 consecutive sessions.", "On the winning team in 5 consecutive sessions {N} times."},
	Rocket:       {Rocket, "Rocket Rank", "Improved rank by 5+ positions since last session.", "Improved rank by 5+ positions since last session."},
	Form:         {Form, "On Fire", "Largest positive form swing (last 3 vs career PPM).", "Held the On Fire badge for {N} sessions."},
	ColdStreak:   {ColdStreak, "Cold Streak", "Largest negative form swing (last 3 vs career PPM).", "Largest negative form swing (last 3 vs career PPM)."},
	MVP:          {MVP, "Most Valuable Player", "Highest Pts/Session with at least 60% attendance.", "Held the Most Valuable Player badge for {N} sessions."},
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Badge, bool) {
	b, ok := catalog[id]
	return b, ok
}

// TrophyText renders the trophy line for id held n times.
func TrophyText(id ID, n int) string {
	b, ok := catalog[id]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(b.Trophy, "{N}", strconv.Itoa(n))
}

// Less orders badge ids by Priority. Unknown ids sort last.
func Less(a, b ID) bool {
	ra, ok := rank[a]
	if !ok {
		ra = len(Priority)
	}
	rb, ok := rank[b]
	if !ok {
		rb = len(Priority)
	}
	if ra != rb {
		return ra < rb
	}
	return a < b
}
