// Package estimate computes closed-form expected upgrade costs from a price
// snapshot and a transition model. Every operation is a pure function of its
// inputs; an Estimator is safe for concurrent use.
package estimate

import (
	"math"

	"github.com/xtding233/enhance-cost/internal/model"
)

// Estimator evaluates expected costs against one transition model.
type Estimator struct {
	m *model.Model
}

// New returns an Estimator over m, or over the published tables when m is nil.
func New(m *model.Model) *Estimator {
	if m == nil {
		m = model.Default()
	}
	return &Estimator{m: m}
}

// Model returns the transition model the estimator uses.
func (e *Estimator) Model() *model.Model { return e.m }

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}
