// Package report renders run results for the console.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/bracketev/internal/domain/model"
	"github.com/okian/bracketev/internal/domain/types"
)

// Writer prints human-readable sections to an io.Writer.
type Writer struct {
	out io.Writer
}

// New creates a report writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Rows builds the per-team listing in slot order.
func Rows(t *model.Table, vectors model.ScoreVectors, a model.Assignment) ([]types.Pick, error) {
	rows := make([]types.Pick, 0, t.Len())
	for _, team := range t.Teams() {
		rounds, ok := a[team.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no pick for %q", model.ErrDataConsistency, team.Name)
		}
		vec, ok := vectors[team.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no score vector for %q", model.ErrDataConsistency, team.Name)
		}
		expected, err := vec.At(rounds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", team.Name, err)
		}
		rows = append(rows, types.Pick{
			Slot:     team.Slot,
			Team:     team.Name,
			Seed:     team.Seed,
			Rounds:   rounds,
			Expected: expected,
		})
	}
	return rows, nil
}

// Summary prints a stage's total score and pick histogram.
func (w *Writer) Summary(s types.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", s.Stage)
	fmt.Fprintf(&b, "Expected score: %.4f\n", s.Total)
	b.WriteString("Picks per round:")
	for _, c := range s.Histogram {
		fmt.Fprintf(&b, " %d:%d", c.Rounds, c.Teams)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w.out, b.String())
	return err
}

// Optimization prints the outcome of the swap search.
func (w *Writer) Optimization(swaps int, before, after float64) error {
	_, err := fmt.Fprintf(w.out, "Swaps applied: %d (%.4f -> %.4f, %+.4f)\n", swaps, before, after, after-before)
	return err
}

// Picks prints the assignment listing.
func (w *Writer) Picks(rows []types.Pick) error {
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "slot\tseed\tteam\trounds\texpected\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%.4f\t\n", r.Slot, r.Seed, r.Team, r.Rounds, r.Expected)
	}
	return tw.Flush()
}
