package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lutefd/meetup-engine/internal/domain/results"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/ingest"
	"github.com/lutefd/meetup-engine/internal/session"
)

var errUsage = errors.New("usage")

const usage = `commands:
  attend <name>...              add attendees
  drop <name>                   remove an attendee
  guest <name> [skill stamina]  add a one-off player
  rate <name> <skill> <stamina> set a player's ratings
  teams [-n count]              generate teams
  rename <team id> <name>       rename a team
  schedule                      show matches, odds and the next kickoff
  score <match id> <ga> <gb> [team:player=goals]...
                                save a final score
  round add | round remove      change the number of rounds
  standings                     session table
  share                         plain-text recap
  record [date]                 append this session to the season log
  reset                         start a new session
  import <file.csv>             append a CSV log to the season log
  unrecord <date>               delete a date from the season log
  season [-sort key] [-dir asc|desc]
  badges [player]               badges and trophy history
  player <name>                 season insight and history
`

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "attend":
		if len(rest) == 0 {
			return errUsage
		}
		for _, name := range rest {
			if err := a.session.AddAttendee(ctx, name); err != nil {
				return err
			}
		}
		return a.printAttendees()
	case "drop":
		if len(rest) != 1 {
			return errUsage
		}
		if err := a.session.RemoveAttendee(ctx, rest[0]); err != nil {
			return err
		}
		return a.printAttendees()
	case "guest":
		if len(rest) == 1 {
			rest = append(rest, fmt.Sprint(a.cfg.DefaultSkill), fmt.Sprint(a.cfg.DefaultStamina))
		}
		name, skill, stamina, err := ratingArgs(rest)
		if err != nil {
			return err
		}
		final, err := a.session.AddIncidentalPlayer(ctx, name, skill, stamina)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %s\n", final)
		return a.printAttendees()
	case "rate":
		name, skill, stamina, err := ratingArgs(rest)
		if err != nil {
			return err
		}
		r, err := a.session.SetRating(ctx, name, skill, stamina)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: skill %.1f stamina %.1f\n", name, r.Skill, r.Stamina)
		return nil
	case "teams":
		return a.generate(ctx, rest)
	case "rename":
		if len(rest) < 2 {
			return errUsage
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("team id: %w", err)
		}
		return a.session.RenameTeam(ctx, id, strings.Join(rest[1:], " "))
	case "schedule":
		return a.printSchedule()
	case "score":
		return a.score(ctx, rest)
	case "round":
		return a.round(ctx, rest)
	case "standings":
		st := a.session.State()
		return renderStandings(a.out, results.Standings(st.Teams, st.Results))
	case "share":
		st := a.session.State()
		_, err := fmt.Fprintln(a.out, wrapShare(results.ShareText(st.Teams, st.Results), shareWidth))
		return err
	case "record":
		date := ""
		if len(rest) > 0 {
			normalized, ok := ingest.NormalizeDate(rest[0])
			if !ok {
				return fmt.Errorf("unrecognised date %q", rest[0])
			}
			date = normalized
		}
		if !a.session.Complete() {
			a.logger.Warn("recording a session with unplayed matches")
		}
		rows, err := a.session.Record(ctx, date)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "recorded %d players\n", len(rows))
		return nil
	case "reset":
		return a.session.Reset(ctx)
	case "import":
		if len(rest) != 1 {
			return errUsage
		}
		return a.importLog(ctx, rest[0])
	case "unrecord":
		if len(rest) != 1 {
			return errUsage
		}
		n, err := a.store.DeleteDate(ctx, rest[0])
		if err != nil {
			return err
		}
		a.season.Invalidate()
		fmt.Fprintf(a.out, "removed %d rows\n", n)
		return nil
	case "season":
		return a.printSeason(ctx, rest)
	case "badges":
		return a.printBadges(ctx, rest)
	case "player":
		if len(rest) == 0 {
			return errUsage
		}
		return a.printPlayer(ctx, strings.Join(rest, " "))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func ratingArgs(args []string) (string, float64, float64, error) {
	if len(args) != 3 {
		return "", 0, 0, errUsage
	}
	skill, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("skill: %w", err)
	}
	stamina, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("stamina: %w", err)
	}
	return args[0], skill, stamina, nil
}

func (a *app) printAttendees() error {
	st := a.session.State()
	_, err := fmt.Fprintf(a.out, "%d/%d attending: %s\n", len(st.Attendees), a.session.MaxAttendees(), strings.Join(st.Attendees, ", "))
	return err
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("teams", flag.ContinueOnError)
	count := fs.Int("n", 0, "number of teams")
	if err := fs.Parse(args); err != nil {
		return err
	}

	generated, err := a.session.Generate(ctx, *count)
	if errors.Is(err, session.ErrTeamCountChoice) {
		choice, ok, perr := promptTeamCount(ctx, a.in, a.out, a.session.TeamCountOptions())
		if perr != nil {
			return perr
		}
		if !ok {
			fmt.Fprintln(a.out, "cancelled")
			return nil
		}
		generated, err = a.session.Generate(ctx, choice)
	}
	if err != nil {
		return err
	}
	return renderTeams(a.out, generated, a.session.Ratings())
}

func (a *app) printSchedule() error {
	forecasts := a.session.Forecasts()
	if len(forecasts) == 0 {
		_, err := fmt.Fprintln(a.out, "no teams yet")
		return err
	}
	st := a.session.State()
	kickoff, ok := a.session.NextKickoff()
	return renderSchedule(a.out, st, forecasts, kickoff, ok)
}

// parseScorers reads "a:Name=2" / "b:Name=1" pairs. Any scorer switches the
// match to tracked goals.
func parseScorers(args []string) (gpa, gpb map[string]int, err error) {
	for _, arg := range args {
		side, rest, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, nil, fmt.Errorf("scorer %q: want a:Name=goals or b:Name=goals", arg)
		}
		name, raw, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, nil, fmt.Errorf("scorer %q: missing goals", arg)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("scorer %q: %w", arg, err)
		}
		switch strings.ToLower(side) {
		case "a":
			if gpa == nil {
				gpa = map[string]int{}
			}
			gpa[name] += n
		case "b":
			if gpb == nil {
				gpb = map[string]int{}
			}
			gpb[name] += n
		default:
			return nil, nil, fmt.Errorf("scorer %q: side must be a or b", arg)
		}
	}
	if gpa != nil && gpb == nil {
		gpb = map[string]int{}
	}
	if gpb != nil && gpa == nil {
		gpa = map[string]int{}
	}
	return gpa, gpb, nil
}

func (a *app) score(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	ga, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("goals a: %w", err)
	}
	gb, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("goals b: %w", err)
	}
	gpa, gpb, err := parseScorers(args[3:])
	if err != nil {
		return err
	}
	saved, err := a.session.SaveResult(ctx, args[0], results.Final{GA: ga, GB: gb, GPA: gpa, GPB: gpb})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s: %d-%d\n", args[0], saved.GA, saved.GB)
	return err
}

func (a *app) round(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	var (
		rounds int
		err    error
	)
	switch args[0] {
	case "add":
		rounds, err = a.session.AddRound(ctx)
	case "remove":
		rounds, err = a.session.RemoveRound(ctx, a.session.State().Rounds)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%d rounds\n", rounds)
	return err
}

func (a *app) importLog(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := ingest.Parse(f)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.logger.Warn("season log line", zap.Int("line", w.Line), zap.String("reason", w.Reason))
	}
	if err := a.store.AppendRecords(ctx, res.Rows); err != nil {
		return fmt.Errorf("append season records: %w", err)
	}
	a.season.Invalidate()
	_, err = fmt.Fprintf(a.out, "imported %d rows, skipped %d\n", len(res.Rows), res.Skipped)
	return err
}

func (a *app) printSeason(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("season", flag.ContinueOnError)
	sortKey := fs.String("sort", "points", "player|matches|points|ppm|goals|gpm")
	dir := fs.String("dir", "", "asc|desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, direction, err := seasonSort(*sortKey, *dir)
	if err != nil {
		return err
	}
	sc, err := a.season.Context(ctx)
	if err != nil {
		return err
	}
	rows := append([]stats.PlayerStat(nil), sc.Stats...)
	stats.SortStats(rows, key, direction)
	return renderSeason(a.out, sc, rows)
}

func (a *app) printBadges(ctx context.Context, args []string) error {
	sc, err := a.season.Context(ctx)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		return renderPlayerBadges(a.out, sc.Badges, strings.Join(args, " "))
	}
	return renderBadges(a.out, sc)
}

func (a *app) printPlayer(ctx context.Context, player string) error {
	sc, err := a.season.Context(ctx)
	if err != nil {
		return err
	}
	if _, ok := sc.ByPlayer[player]; !ok {
		return fmt.Errorf("no season records for %q", player)
	}
	return renderPlayer(a.out, sc, player)
}
