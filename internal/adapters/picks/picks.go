// Package picks reads and writes pool entries: YAML mappings from team name
// to the number of rounds the entrant picks that team to survive.
//
//	Gonzaga: 6
//	Georgia State: 0
//	"Notre Dame/Rutgers": 0
package picks

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/okian/bracketev/internal/domain/model"
)

// LoadFile reads an assignment from a YAML pick file.
func LoadFile(_ context.Context, path string) (model.Assignment, error) {
	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("read picks: %w", err)
	}
	a, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes a YAML pick mapping.
func Parse(b []byte) (model.Assignment, error) {
	raw, err := yaml.Parser().Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPick, err)
	}
	a := make(model.Assignment, len(raw))
	for name, v := range raw {
		rounds, ok := toRounds(v)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %q has pick %v", model.ErrDataConsistency, ErrInvalidPick, name, v)
		}
		a[name] = rounds
	}
	return a, nil
}

func toRounds(v interface{}) (int, bool) {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case uint64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		n = int(x)
	default:
		return 0, false
	}
	return n, n >= 0
}

// Marshal encodes an assignment as YAML with keys in name order.
func Marshal(a model.Assignment) ([]byte, error) {
	out := make(map[string]interface{}, len(a))
	for name, rounds := range a {
		out[name] = rounds
	}
	return yaml.Parser().Marshal(out)
}

// WriteFile writes an assignment to path.
func WriteFile(_ context.Context, path string, a model.Assignment) error {
	b, err := Marshal(a)
	if err != nil {
		return fmt.Errorf("encode picks: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec // pick files are not secrets
		return fmt.Errorf("write picks: %w", err)
	}
	return nil
}

// Validate checks that a covers exactly the teams of t with picks within
// the bracket's round count.
func Validate(t *model.Table, a model.Assignment) error {
	for _, name := range a.Names() {
		if _, ok := t.Lookup(name); !ok {
			return fmt.Errorf("%w: pick for unknown team %q", model.ErrDataConsistency, name)
		}
		if r := a[name]; r < 0 || r > t.Rounds() {
			return fmt.Errorf("%w: %q picked to survive %d rounds, bracket has %d",
				model.ErrDataConsistency, name, r, t.Rounds())
		}
	}
	for _, name := range t.Names() {
		if _, ok := a[name]; !ok {
			return fmt.Errorf("%w: no pick for %q", model.ErrDataConsistency, name)
		}
	}
	return nil
}
