// types.go
package config

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

// Raw config loaded from YAML. Pointer fields are optional and left to the
// next layer when nil.
type RawConfig struct {
	Version string       `yaml:"version"`
	Server  ServerConfig `yaml:"server"`
	Prices  PricesConfig `yaml:"prices"`
	Model   *ModelConfig `yaml:"model,omitempty"`
	Log     *LogConfig   `yaml:"log,omitempty"`
	Notes   string       `yaml:"notes,omitempty"`
}

type ServerConfig struct {
	GRPCAddr     *string `yaml:"grpc_addr"`
	MetricsAddr  *string `yaml:"metrics_addr"`
	ReloadPeriod *string `yaml:"reload_period"` // Go duration, e.g. "5s"
}

type PricesConfig struct {
	Source    string  `yaml:"source"` // "snapshot" | "badger" | "mysql"
	Snapshot  *string `yaml:"snapshot_path,omitempty"`
	BadgerDir *string `yaml:"badger_dir,omitempty"`
	MySQLDSN  *string `yaml:"mysql_dsn,omitempty"`
	CacheTTL  *string `yaml:"cache_ttl,omitempty"` // "0" disables the cache
	Timeframe string  `yaml:"timeframe,omitempty"`
	Index     *string `yaml:"index_path,omitempty"`
}

type ModelConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Settings are the normalized values the binaries run with.
type Settings struct {
	GRPCAddr     string
	MetricsAddr  string
	ReloadPeriod time.Duration

	Source    string
	Snapshot  string
	BadgerDir string
	MySQLDSN  string
	CacheTTL  time.Duration
	Timeframe pricing.Timeframe
	IndexPath string

	ModelPath string

	LogLevel       zapcore.Level
	LogDevelopment bool

	Version string // effective config version for tracing
}
