package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"

	"github.com/lutefd/meetup-engine/internal/domain/badges"
	"github.com/lutefd/meetup-engine/internal/domain/charts"
	"github.com/lutefd/meetup-engine/internal/domain/ratings"
	"github.com/lutefd/meetup-engine/internal/domain/results"
	"github.com/lutefd/meetup-engine/internal/domain/schedule"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/domain/teams"
	"github.com/lutefd/meetup-engine/internal/projections"
	"github.com/lutefd/meetup-engine/internal/session"
)

const (
	shareWidth   = 72
	membersWidth = 60
)

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func wrapShare(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wordwrap.String(line, width)
	}
	return strings.Join(lines, "\n")
}

func renderTeams(out io.Writer, ts []teams.Team, lookup ratings.Lookup) error {
	w := table(out)
	fmt.Fprintln(w, "ID\tTEAM\tSKILL\tSTAMINA\tMEMBERS")
	for _, t := range ts {
		members := truncate.StringWithTail(strings.Join(t.Members, ", "), membersWidth, "...")
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%s\n", t.ID, t.Name, teams.SkillSum(t, lookup), teams.StaminaSum(t, lookup), members)
	}
	return w.Flush()
}

func teamNames(ts []teams.Team) map[int]string {
	return lo.SliceToMap(ts, func(t teams.Team) (int, string) { return t.ID, t.Name })
}

func renderSchedule(out io.Writer, st session.State, forecasts []schedule.Forecast, kickoff schedule.Kickoff, pending bool) error {
	names := teamNames(st.Teams)
	w := table(out)
	fmt.Fprintln(w, "ROUND\tMATCH\tFIXTURE\tODDS A/D/B\tSCORE")
	for _, f := range forecasts {
		score := "-"
		if ga, gb, ok := st.Results.Score(f.Match.ID); ok {
			score = fmt.Sprintf("%d-%d", ga, gb)
		}
		fmt.Fprintf(w, "%d\t%s\t%s vs %s\t%.0f%%/%.0f%%/%.0f%%\t%s\n",
			f.Match.Round, f.Match.ID, names[f.Match.A], names[f.Match.B],
			f.Odds.WinA*100, f.Odds.Draw*100, f.Odds.WinB*100, score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	matches := lo.Map(forecasts, func(f schedule.Forecast, _ int) schedule.Match { return f.Match })
	ids := lo.Map(st.Teams, func(t teams.Team, _ int) int { return t.ID })
	streaks := schedule.TeamStreaks(ids, matches, st.Results, "")
	for _, id := range ids {
		if s := streaks[id]; s.Length > 1 {
			fmt.Fprintf(out, "%s: %d%s in a row\n", names[id], s.Length, s.Outcome)
		}
	}
	if !pending {
		_, err := fmt.Fprintln(out, "all matches played")
		return err
	}
	_, err := fmt.Fprintf(out, "next: %s, %s kicks off\n", kickoff.Match, names[kickoff.TeamID])
	return err
}

func renderStandings(out io.Writer, rows []results.Standing) error {
	w := table(out)
	fmt.Fprintln(w, "#\tTEAM\tP\tPTS\tGF\tGA\tGD")
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%+d\n", i+1, r.Team.Name, r.Played, r.Points, r.GF, r.GA, r.GD())
	}
	return w.Flush()
}

func renderSeason(out io.Writer, sc *projections.SeasonContext, rows []stats.PlayerStat) error {
	fmt.Fprintf(out, "%d sessions, %d players\n", sc.Sessions(), len(sc.Stats))
	if len(sc.Stats) > 0 {
		q1, q2, q3 := stats.PPMQuartiles(sc.Stats)
		fmt.Fprintf(out, "ppm quartiles: %.2f / %.2f / %.2f\n", q1, q2, q3)
	}
	forms := stats.FormByPlayer(sc.Rows, stats.FormWindow)
	w := table(out)
	fmt.Fprintln(w, "#\tPLAYER\tM\tPTS\tPPM\tGOALS\tGPM\tTIER\tFORM\tBADGES")
	for _, s := range rows {
		form := "-"
		if f, ok := forms[s.Player]; ok {
			form = fmt.Sprintf("%+.2f", f.Delta)
		}
		rank := "-"
		if r, ok := sc.Post[s.Player]; ok {
			rank = fmt.Sprint(r + 1)
		}
		labels := lo.Map(sc.Badges.For(s.Player), func(b badges.Badge, _ int) string { return b.Label })
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%.2f\t%.0f\t%.2f\t%s\t%s\t%s\n",
			rank, s.Player, s.Matches, s.Points, s.PPM, s.Goals, s.GPM, stats.PPMTier(s.PPM), form,
			truncate.StringWithTail(strings.Join(labels, ", "), membersWidth, "..."))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return renderMovers(out, sc.Movers)
}

func renderMovers(out io.Writer, m stats.Movers) error {
	if m.Empty() {
		return nil
	}
	var lines []string
	if m.RankGain != nil {
		lines = append(lines, fmt.Sprintf("biggest climb: %s +%d (now #%d)", m.RankGain.Player, m.RankGain.Delta, m.RankGain.PostRank+1))
	}
	if m.RankLoss != nil {
		lines = append(lines, fmt.Sprintf("biggest drop: %s %d (now #%d)", m.RankLoss.Player, m.RankLoss.Delta, m.RankLoss.PostRank+1))
	}
	if m.PPMUp != nil {
		lines = append(lines, fmt.Sprintf("ppm up: %s %+.0f%% (%.2f to %.2f)", m.PPMUp.Player, m.PPMUp.Pct, m.PPMUp.From, m.PPMUp.To))
	}
	if m.PPMDown != nil {
		lines = append(lines, fmt.Sprintf("ppm down: %s %+.0f%% (%.2f to %.2f)", m.PPMDown.Player, m.PPMDown.Pct, m.PPMDown.From, m.PPMDown.To))
	}
	_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
	return err
}

func renderBadges(out io.Writer, sc *projections.SeasonContext) error {
	players := lo.Keys(sc.Badges.Badges)
	sort.Strings(players)
	for _, p := range players {
		labels := lo.Map(sc.Badges.For(p), func(b badges.Badge, _ int) string { return b.Label })
		if len(labels) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", p, strings.Join(labels, ", "))
	}
	return nil
}

func renderPlayerBadges(out io.Writer, r badges.Result, player string) error {
	for _, b := range r.For(player) {
		fmt.Fprintf(out, "%s\n%s\n", b.Label, indent.String(wordwrap.String(b.Description, shareWidth-2), 2))
	}
	trophies := r.TrophiesFor(player)
	ids := lo.Keys(trophies)
	sort.Slice(ids, func(i, j int) bool { return badges.Less(ids[i], ids[j]) })
	if len(ids) > 0 {
		fmt.Fprintln(out, "trophies:")
	}
	for _, id := range ids {
		h := trophies[id]
		dates := lo.Map(h.Dates, func(d string, _ int) string { return charts.FormatDateShort(d) })
		fmt.Fprintf(out, "  %s (%s)\n", badges.TrophyText(id, h.Count), strings.Join(dates, ", "))
	}
	return nil
}

func pctText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.0f%%", *v)
}

func floatText(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func renderPlayer(out io.Writer, sc *projections.SeasonContext, player string) error {
	in := stats.PlayerInsight(sc.Rows, player)
	s := sc.ByPlayer[player]
	fmt.Fprintf(out, "%s: %d/%d sessions (%d%%), ppm %.2f (%s, %.0fth percentile), gpm %.2f (%s)\n",
		player, in.Attended, in.Sessions, in.AttendancePct, s.PPM, stats.PPMTier(s.PPM),
		stats.PPMPercentileRank(sc.Stats, player), s.GPM, stats.GPMTier(s.GPM))
	fmt.Fprintf(out, "top score in %d sessions (%d%%), best run %d, form %s, trend %+.2f\n",
		in.TopSessions, in.TopPct, in.TopStreak.Length, pctText(in.FormPct), in.Trend)
	fmt.Fprintf(out, "attendance streak %d (best %d)\n", in.CurrentAttended, in.LongestAttended)

	series := charts.PlayerSeries(sc.Rows, player)
	w := table(out)
	fmt.Fprintln(w, "DATE\tPTS\tTOTAL\tGOALS\tRANK\tPPM")
	for _, i := range charts.XTicks(len(series.Dates)) {
		pts := "absent"
		if !series.Absent[i] {
			pts = floatText(series.Points[i], "%.0f")
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\t%d\t%s\n",
			series.Labels[i], pts, series.Cumulative[i], floatText(series.Goals[i], "%.0f"),
			series.Ranks[i], floatText(series.PPM[i], "%.2f"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return renderPlayerBadges(out, sc.Badges, player)
}
