package ml

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ErrNoModel is returned while no artifact has been loaded.
var ErrNoModel = errors.New("no model loaded")

const (
	OutcomeSuccess     = "success"
	OutcomeConfigError = "configuration_error"
	OutcomePredictErr  = "prediction_error"
)

// ConfigError aborts a request before the model is called.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// PredictionError wraps a failure raised by the model itself.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return "prediction failed: " + e.Err.Error() }
func (e *PredictionError) Unwrap() error { return e.Err }

// Prediction is the outcome of one successful request.
type Prediction struct {
	Score        float64
	Features     FeatureRow
	ModelVersion string
	Cached       bool
}

func (p Prediction) Display() string {
	return fmt.Sprintf("Predicted Exam Score: %.2f", p.Score)
}

// ArtifactSource hands out the artifact to use for the next request.
type ArtifactSource interface {
	Current() *Artifact
}

// Observer receives one call per Predict.
type Observer interface {
	ObservePrediction(outcome string, elapsed time.Duration)
}

type PredictorOption func(*Predictor)

func WithLogger(logger *zap.Logger) PredictorOption {
	return func(p *Predictor) { p.logger = logger }
}

func WithObserver(o Observer) PredictorOption {
	return func(p *Predictor) { p.observer = o }
}

// WithCacheSize memoises scores for up to size distinct feature rows. Zero disables it.
func WithCacheSize(size int) PredictorOption {
	return func(p *Predictor) { p.cacheSize = size }
}

// Predictor runs encode, align and predict for one record at a time.
type Predictor struct {
	source    ArtifactSource
	logger    *zap.Logger
	observer  Observer
	cacheSize int
	cache     *lru.Cache[string, float64]
}

func NewPredictor(source ArtifactSource, opts ...PredictorOption) (*Predictor, error) {
	p := &Predictor{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.cacheSize > 0 {
		cache, err := lru.New[string, float64](p.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create score cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// Artifact returns the artifact the next request would use, or nil.
func (p *Predictor) Artifact() *Artifact {
	if p.source == nil {
		return nil
	}
	return p.source.Current()
}

// Predict scores record. Configuration problems come back as *ConfigError without the
// model being called; model failures come back as *PredictionError.
func (p *Predictor) Predict(ctx context.Context, record StudentRecord) (Prediction, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	artifact := p.Artifact()
	if artifact == nil {
		p.observe(OutcomeConfigError, start)
		return Prediction{}, &ConfigError{Err: ErrNoModel}
	}

	row, err := Encode(record, artifact.Schema)
	if err != nil {
		p.logger.Error("feature encoding aborted",
			zap.String("model_id", artifact.ID),
			zap.Error(err))
		p.observe(OutcomeConfigError, start)
		return Prediction{}, &ConfigError{Err: err}
	}

	values := row.Values()
	key := cacheKey(artifact.ID, values)
	if p.cache != nil {
		if score, ok := p.cache.Get(key); ok {
			p.observe(OutcomeSuccess, start)
			return Prediction{Score: score, Features: row, ModelVersion: artifact.Version, Cached: true}, nil
		}
	}

	score, err := safePredict(artifact.Model, values)
	if err != nil {
		p.logger.Warn("prediction failed",
			zap.String("model_id", artifact.ID),
			zap.Int("features", len(values)),
			zap.Error(err))
		p.observe(OutcomePredictErr, start)
		return Prediction{}, &PredictionError{Err: err}
	}
	if p.cache != nil {
		p.cache.Add(key, score)
	}

	p.logger.Debug("prediction complete",
		zap.Int("student_id", record.StudentID),
		zap.Float64("score", score),
		zap.Duration("elapsed", time.Since(start)))
	p.observe(OutcomeSuccess, start)
	return Prediction{Score: score, Features: row, ModelVersion: artifact.Version}, nil
}

func (p *Predictor) observe(outcome string, start time.Time) {
	if p.observer != nil {
		p.observer.ObservePrediction(outcome, time.Since(start))
	}
}

// safePredict reports a model panic as an error.
func safePredict(model Regressor, values []float64) (score float64, err error) {
	if model == nil {
		return 0, ErrNotTrained
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	return model.Predict(values)
}

func cacheKey(artifactID string, values []float64) string {
	var b strings.Builder
	b.WriteString(artifactID)
	for _, v := range values {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
