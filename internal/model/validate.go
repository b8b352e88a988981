package model

import (
	"errors"
	"math"
)

var errProbRange = errors.New("must be within [0,1]")

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return errProbRange
	}
	if p < 0 || p > 1 {
		return errProbRange
	}
	return nil
}
