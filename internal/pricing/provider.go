// Package pricing is the boundary through which estimates receive observed
// market prices. Implementations live here and in the sub-packages; the
// estimators only ever see resolved price maps.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/enhance-cost/internal/model"
)

// UpgradeType mirrors the catalog's itemUpgradeType parameter.
type UpgradeType int

const (
	Reinforce UpgradeType = 0
	ToolUse   UpgradeType = 1
)

// Kind names one priced upgrade: a reinforcement level or a tool.
type Kind struct {
	Type  UpgradeType
	Level int        // Reinforce only
	Tool  model.Tool // ToolUse only
}

// LevelKind is the reinforcement attempt at level.
func LevelKind(level int) Kind { return Kind{Type: Reinforce, Level: level} }

// ToolKind is one use of tool.
func ToolKind(tool model.Tool) Kind { return Kind{Type: ToolUse, Tool: tool} }

func (k Kind) String() string {
	if k.Type == ToolUse {
		return "tool:" + k.Tool.String()
	}
	return fmt.Sprintf("level:%d", k.Level)
}

// Valid reports whether k names a level of the ladder or a known tool.
func (k Kind) Valid() bool {
	switch k.Type {
	case Reinforce:
		return k.Level >= 0 && k.Level < model.MaxLevel
	case ToolUse:
		return k.Tool.Valid()
	}
	return false
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	typ, val, ok := strings.Cut(s, ":")
	if !ok {
		return Kind{}, fmt.Errorf("malformed kind %q", s)
	}
	switch typ {
	case "level":
		lvl, err := strconv.Atoi(val)
		if err != nil || lvl < 0 {
			return Kind{}, fmt.Errorf("malformed kind %q", s)
		}
		if lvl >= model.MaxLevel {
			return Kind{}, fmt.Errorf("kind %q: level must be below %d", s, model.MaxLevel)
		}
		return LevelKind(lvl), nil
	case "tool":
		tool, err := model.ParseTool(val)
		if err != nil {
			return Kind{}, err
		}
		return ToolKind(tool), nil
	}
	return Kind{}, fmt.Errorf("malformed kind %q", s)
}

// Timeframe is the reporting interval an observation was aggregated over.
type Timeframe string

const (
	TF20m Timeframe = "20m"
	TF1H  Timeframe = "1H"
	TF1D  Timeframe = "1D"
	TF1W  Timeframe = "1W"
	TF1M  Timeframe = "1M"
)

// Timeframes lists the supported intervals, shortest first.
var Timeframes = []Timeframe{TF20m, TF1H, TF1D, TF1W, TF1M}

var ErrTimeframe = errors.New("unknown timeframe; want one of 20m, 1H, 1D, 1W, 1M")

// ParseTimeframe accepts the catalog spellings, case-insensitively.
func ParseTimeframe(s string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if strings.EqualFold(s, string(tf)) {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTimeframe, s)
}

// Provider returns the most recently observed per-attempt price of an
// upgrade. ok is false when the price is unknown for any reason; err is only
// for failures of the provider itself.
type Provider interface {
	Price(ctx context.Context, item string, kind Kind, tf Timeframe) (price float64, ok bool, err error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error)

func (f ProviderFunc) Price(ctx context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error) {
	return f(ctx, item, kind, tf)
}
