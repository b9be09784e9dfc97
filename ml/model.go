package ml

import "errors"

var (
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrShapeMismatch    = errors.New("feature row does not match model shape")
	ErrNotTrained       = errors.New("model not trained")
)

// Regressor is the fitted model behind an artifact. Predict receives the aligned
// feature values in schema column order.
type Regressor interface {
	Predict(features []float64) (float64, error)
}
