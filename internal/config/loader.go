package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/enhancecost
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, profile+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files a watcher should poll for the given profile.
func (l *Loader) Paths(profile string) []string {
	out := []string{l.paths.DefaultPath()}
	if profile != "" {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-zero/non-nil.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// server
	if b.Server.GRPCAddr != nil {
		out.Server.GRPCAddr = b.Server.GRPCAddr
	}
	if b.Server.MetricsAddr != nil {
		out.Server.MetricsAddr = b.Server.MetricsAddr
	}
	if b.Server.ReloadPeriod != nil {
		out.Server.ReloadPeriod = b.Server.ReloadPeriod
	}

	// prices
	if b.Prices.Source != "" {
		out.Prices.Source = b.Prices.Source
	}
	if b.Prices.Snapshot != nil {
		out.Prices.Snapshot = b.Prices.Snapshot
	}
	if b.Prices.BadgerDir != nil {
		out.Prices.BadgerDir = b.Prices.BadgerDir
	}
	if b.Prices.MySQLDSN != nil {
		out.Prices.MySQLDSN = b.Prices.MySQLDSN
	}
	if b.Prices.CacheTTL != nil {
		out.Prices.CacheTTL = b.Prices.CacheTTL
	}
	if b.Prices.Timeframe != "" {
		out.Prices.Timeframe = b.Prices.Timeframe
	}
	if b.Prices.Index != nil {
		out.Prices.Index = b.Prices.Index
	}

	// model
	if b.Model != nil && b.Model.Path != "" {
		c := *b.Model
		out.Model = &c
	}

	// log
	switch {
	case out.Log == nil && b.Log != nil:
		c := *b.Log
		out.Log = &c
	case out.Log != nil && b.Log != nil:
		c := *out.Log
		if b.Log.Level != "" {
			c.Level = b.Log.Level
		}
		if b.Log.Development {
			c.Development = true
		}
		out.Log = &c
	}

	return out
}
