package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// LinearRegression scores a row as intercept + coef·x.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(m.Coef) == 0 {
		return 0, ErrNotTrained
	}
	if len(features) != len(m.Coef) {
		return 0, fmt.Errorf("%w: got %d features, model has %d coefficients", ErrShapeMismatch, len(features), len(m.Coef))
	}
	return floats.Dot(m.Coef, features) + m.Intercept, nil
}
