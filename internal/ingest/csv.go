// Package ingest reads the season log CSV (Date,Player,Points[,Goals]).
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"

	"github.com/lutefd/meetup-engine/internal/domain/stats"
)

// Warning points at a line that was skipped or repaired.
type Warning struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}

type Result struct {
	Rows     []stats.Record `json:"rows"`
	Warnings []Warning      `json:"warnings"`
	Skipped  int            `json:"skipped"`
}

const (
	reasonTooFew     = "Too few columns"
	reasonMissing    = "Missing date/player/points"
	reasonGoals      = "Goals not a number; defaulted to 0"
	reasonDateFormat = "Date not recognised; kept as written"
)

func isHeader(fields []string) bool {
	joined := strings.ToLower(strings.Join(fields, ","))
	joined = strings.Join(strings.Fields(joined), "")
	return joined == "date,player,points" || joined == "date,player,points,goals"
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NormalizeDate turns a free-form date into YYYY-MM-DD. ISO input is
// returned untouched.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, err := time.Parse(time.DateOnly, raw); err == nil {
		return raw, true
	}
	dt, err := dateparser.Parse(nil, raw)
	if err != nil || dt.Time.IsZero() {
		return raw, false
	}
	return dt.Time.Format(time.DateOnly), true
}

// Parse reads every record it can. Goals are nil when the line has no goals
// column and zero when the column is present but empty. Malformed lines are
// skipped with a warning; only read failures are returned as errors.
func Parse(r io.Reader) (Result, error) {
	cr := csv.NewReader(newBOMSkipper(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	res := Result{Rows: []stats.Record{}, Warnings: []Warning{}}
	first := true
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped++
				res.Warnings = append(res.Warnings, Warning{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return res, fmt.Errorf("read season log: %w", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}
		if len(fields) < 3 {
			res.Skipped++
			res.Warnings = append(res.Warnings, Warning{Line: line, Reason: reasonTooFew})
			continue
		}

		date := strings.TrimSpace(fields[0])
		player := strings.TrimSpace(fields[1])
		points, ok := parseNumber(fields[2])
		if date == "" || player == "" || !ok {
			res.Skipped++
			res.Warnings = append(res.Warnings, Warning{Line: line, Reason: reasonMissing})
			continue
		}

		rec := stats.Record{Player: player, Points: points}
		if len(fields) >= 4 {
			raw := strings.TrimSpace(fields[3])
			goals, ok := parseNumber(raw)
			if raw != "" && !ok {
				res.Warnings = append(res.Warnings, Warning{Line: line, Reason: reasonGoals})
			}
			rec.Goals = stats.Goals(goals)
		}
		normalized, ok := NormalizeDate(date)
		if !ok {
			res.Warnings = append(res.Warnings, Warning{Line: line, Reason: reasonDateFormat})
		}
		rec.Date = normalized
		res.Rows = append(res.Rows, rec)
	}
	return res, nil
}

// ParseString is Parse over in-memory text.
func ParseString(text string) Result {
	res, _ := Parse(strings.NewReader(text))
	return res
}
