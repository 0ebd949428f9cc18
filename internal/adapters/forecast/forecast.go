// Package forecast loads the per-team tournament forecast table from CSV.
//
// The expected layout follows the public March Madness forecast export:
// one row per team with at least the columns team_slot, team_name,
// team_seed, team_rating and rd1_win..rd6_win. Raw slots count play-in
// teams separately, so the bracket slot is team_slot/2. Extra columns are
// ignored.
package forecast

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/okian/bracketev/internal/domain/bracket"
	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/pkg/logger"
)

// Column names.
const (
	ColSlot   = "team_slot"
	ColName   = "team_name"
	ColSeed   = "team_seed"
	ColRating = "team_rating"
)

// RoundColumn returns the reach-probability column name for round (1-based).
func RoundColumn(round int) string {
	return fmt.Sprintf("rd%d_win", round)
}

// LoadFile opens path and reads the forecast table from it.
func LoadFile(ctx context.Context, path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open forecast: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Get().Named("forecast").Info(ctx, "forecast loaded",
		logger.String("path", path),
		logger.Int("teams", table.Len()),
		logger.Int("rounds", table.Rounds()),
	)
	return table, nil
}

// Read parses a forecast CSV and returns the slot-indexed table.
func Read(_ context.Context, r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty forecast", model.ErrDataConsistency)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var teams []model.Team
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", model.ErrDataConsistency, line, err)
		}
		team, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		teams = append(teams, team)
	}

	rounds, err := bracket.RoundsFor(len(teams))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDataConsistency, err)
	}
	if countPresent(cols.rounds) < rounds {
		return nil, fmt.Errorf("%w: %d rounds need columns %s..%s",
			model.ErrDataConsistency, rounds, RoundColumn(1), RoundColumn(rounds))
	}
	for i := range teams {
		teams[i].ReachProbability = teams[i].ReachProbability[:rounds]
	}

	seen := make(map[int]string, len(teams))
	for _, t := range teams {
		if prev, dup := seen[t.Slot]; dup {
			return nil, fmt.Errorf("%w: %q and %q share slot %d", model.ErrDataConsistency, prev, t.Name, t.Slot)
		}
		seen[t.Slot] = t.Name
	}
	return model.NewTable(teams)
}

type columns struct {
	slot, name, seed, rating int
	rounds                   []int // -1 when absent
}

func indexColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	c := columns{rounds: make([]int, bracket.NumRounds)}
	for _, req := range []struct {
		name string
		dst  *int
	}{
		{ColSlot, &c.slot}, {ColName, &c.name}, {ColSeed, &c.seed}, {ColRating, &c.rating},
	} {
		i, ok := pos[req.name]
		if !ok {
			return columns{}, fmt.Errorf("%w: missing column %q", model.ErrDataConsistency, req.name)
		}
		*req.dst = i
	}
	for r := range c.rounds {
		i, ok := pos[RoundColumn(r+1)]
		if !ok {
			i = -1
		}
		c.rounds[r] = i
	}
	return c, nil
}

// countPresent counts the leading run of present round columns.
func countPresent(idx []int) int {
	n := 0
	for _, i := range idx {
		if i < 0 {
			break
		}
		n++
	}
	return n
}

func parseRow(rec []string, c columns) (model.Team, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	raw, err := strconv.Atoi(field(c.slot))
	if err != nil || raw < 0 {
		return model.Team{}, fmt.Errorf("%w: bad %s %q", model.ErrDataConsistency, ColSlot, field(c.slot))
	}
	name := field(c.name)
	if name == "" {
		return model.Team{}, fmt.Errorf("%w: empty %s", model.ErrDataConsistency, ColName)
	}
	seed, err := ParseSeed(field(c.seed))
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", name, err)
	}
	rating, err := strconv.ParseFloat(field(c.rating), 64)
	if err != nil {
		return model.Team{}, fmt.Errorf("%w: %s: bad %s %q", model.ErrDataConsistency, name, ColRating, field(c.rating))
	}

	n := countPresent(c.rounds)
	probs := make([]float64, n)
	for k := 0; k < n; k++ {
		p, err := strconv.ParseFloat(field(c.rounds[k]), 64)
		if err != nil || p < 0 || p > 1 {
			return model.Team{}, fmt.Errorf("%w: %s: bad %s %q",
				model.ErrDataConsistency, name, RoundColumn(k+1), field(c.rounds[k]))
		}
		probs[k] = p
	}

	return model.Team{
		Name:             name,
		Slot:             raw / 2,
		Seed:             seed,
		Rating:           rating,
		ReachProbability: probs,
	}, nil
}

// ParseSeed reads a regional seed, ignoring a play-in suffix such as "16a".
func ParseSeed(s string) (int, error) {
	digits := strings.TrimRightFunc(strings.TrimSpace(s), unicode.IsLetter)
	seed, err := strconv.Atoi(digits)
	if err != nil || seed < 1 {
		return 0, fmt.Errorf("%w: bad %s %q", model.ErrDataConsistency, ColSeed, s)
	}
	return seed, nil
}
