package estimate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/enhance-cost/internal/model"
)

var (
	ErrMissingPrice  = errors.New("missing price")
	ErrInvalidTarget = errors.New("invalid target")
	ErrInvalidStart  = errors.New("invalid start")
	ErrInvalidTier   = errors.New("invalid tier")
	ErrInvalidPrice  = errors.New("invalid price")
)

// MissingPriceError lists every price an estimate needed but did not get.
type MissingPriceError struct {
	Levels []int
	Tools  []model.Tool
}

func (e *MissingPriceError) Error() string {
	var parts []string
	if len(e.Levels) > 0 {
		parts = append(parts, fmt.Sprintf("levels %v", e.Levels))
	}
	if len(e.Tools) > 0 {
		names := make([]string, len(e.Tools))
		for i, t := range e.Tools {
			names[i] = t.String()
		}
		parts = append(parts, "tools ["+strings.Join(names, " ")+"]")
	}
	return ErrMissingPrice.Error() + ": " + strings.Join(parts, ", ")
}

func (e *MissingPriceError) Unwrap() error { return ErrMissingPrice }
