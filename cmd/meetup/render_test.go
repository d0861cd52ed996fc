package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lutefd/meetup-engine/internal/domain/badges"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/projections"
)

func TestRenderSeasonShowsFormAndQuartiles(t *testing.T) {
	rows := []stats.Record{
		{Date: "2025-01-01", Player: "Ann", Points: 0},
		{Date: "2025-01-08", Player: "Ann", Points: 0},
		{Date: "2025-01-15", Player: "Ann", Points: 3},
		{Date: "2025-01-22", Player: "Ann", Points: 3},
		{Date: "2025-01-22", Player: "Bob", Points: 1},
	}
	sc := projections.Build(rows, badges.Engine{}, stats.BasisPoints)

	var out bytes.Buffer
	require.NoError(t, renderSeason(&out, sc, sc.Stats))

	lines := strings.Split(out.String(), "\n")
	require.Contains(t, lines[1], "ppm quartiles:")
	var ann, bob string
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) < 9 {
			continue
		}
		switch fields[1] {
		case "Ann":
			ann = fields[8]
		case "Bob":
			bob = fields[8]
		}
	}
	require.Equal(t, "+0.50", ann)
	require.Equal(t, "-", bob)
}
