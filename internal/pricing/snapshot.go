package pricing

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/enhance-cost/internal/model"
)

// Snapshot is a fixed set of observed prices, usually exported from the
// price store and edited by hand.
type Snapshot struct {
	// Timeframe restricts the snapshot to one interval; empty serves any.
	Timeframe Timeframe               `yaml:"timeframe,omitempty"`
	TakenAt   time.Time               `yaml:"taken_at,omitempty"`
	Items     map[string]SnapshotItem `yaml:"items"`
}

// SnapshotItem holds the prices of one item.
type SnapshotItem struct {
	Name   string             `yaml:"name,omitempty"`
	Levels map[int]float64    `yaml:"levels,omitempty"`
	Tools  map[string]float64 `yaml:"tools,omitempty"`
}

// ParseSnapshot decodes and checks a YAML snapshot.
func ParseSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Timeframe != "" {
		tf, err := ParseTimeframe(string(s.Timeframe))
		if err != nil {
			return nil, err
		}
		s.Timeframe = tf
	}
	for id, it := range s.Items {
		for name := range it.Tools {
			if _, err := model.ParseTool(name); err != nil {
				return nil, fmt.Errorf("items.%s.tools: %w", id, err)
			}
		}
		for lvl := range it.Levels {
			if lvl < 0 || lvl >= model.MaxLevel {
				return nil, fmt.Errorf("items.%s.levels: level %d out of range", id, lvl)
			}
		}
	}
	return &s, nil
}

// LoadSnapshot reads a YAML snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	s, err := ParseSnapshot(b)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return s, nil
}

// Price implements Provider.
func (s *Snapshot) Price(_ context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error) {
	if s.Timeframe != "" && tf != "" && s.Timeframe != tf {
		return 0, false, nil
	}
	it, ok := s.Items[item]
	if !ok {
		return 0, false, nil
	}
	if kind.Type == ToolUse {
		for name, p := range it.Tools {
			if tool, err := model.ParseTool(name); err == nil && tool == kind.Tool {
				return p, true, nil
			}
		}
		return 0, false, nil
	}
	p, ok := it.Levels[kind.Level]
	return p, ok, nil
}

// SnapshotProvider serves a snapshot file that can be swapped while in use.
type SnapshotProvider struct {
	path string
	cur  atomic.Pointer[Snapshot]
}

// NewSnapshotProvider loads path and returns a provider over it.
func NewSnapshotProvider(path string) (*SnapshotProvider, error) {
	sp := &SnapshotProvider{path: path}
	if err := sp.Reload(); err != nil {
		return nil, err
	}
	return sp, nil
}

// Path is the file the provider reads.
func (sp *SnapshotProvider) Path() string { return sp.path }

// Reload re-reads the file. On error the previous snapshot stays in service.
func (sp *SnapshotProvider) Reload() error {
	s, err := LoadSnapshot(sp.path)
	if err != nil {
		return err
	}
	sp.cur.Store(s)
	return nil
}

// Price implements Provider.
func (sp *SnapshotProvider) Price(ctx context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error) {
	return sp.cur.Load().Price(ctx, item, kind, tf)
}
