package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a transition model. Omitted sections fall back to
// the published tables.
type File struct {
	Anchor *int                          `yaml:"anchor,omitempty"`
	Steps  []Step                        `yaml:"steps,omitempty"`
	Odds   map[string]map[string]float64 `yaml:"odds,omitempty"`
}

// LoadFile reads a YAML model override from path.
func LoadFile(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

// Parse builds a Model from YAML bytes.
func Parse(b []byte) (*Model, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f.Build()
}

// Build merges the file over the published tables and validates the result.
// An odds row given in the file replaces the whole published row.
func (f File) Build() (*Model, error) {
	anchor := DefaultAnchor
	if f.Anchor != nil {
		anchor = *f.Anchor
	}
	steps := DefaultSteps[:]
	if len(f.Steps) > 0 {
		steps = f.Steps
	}

	odds := make(Odds, len(Tools))
	for tool, row := range DefaultOdds {
		odds[tool] = row
	}
	var errs []string
	for toolName, row := range f.Odds {
		tool, err := ParseTool(toolName)
		if err != nil {
			errs = append(errs, "odds: "+err.Error())
			continue
		}
		parsed := make(map[Tier]float64, len(row))
		for tierName, p := range row {
			tier, err := ParseTier(tierName)
			if err != nil {
				errs = append(errs, fmt.Sprintf("odds.%s: %v", toolName, err))
				continue
			}
			parsed[tier] = p
		}
		odds[tool] = parsed
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, strings.Join(errs, "; "))
	}
	return New(steps, anchor, odds)
}
