package ml

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRegressor struct {
	score float64
	err   error
	calls int
	seen  []float64
}

func (f *fakeRegressor) Predict(features []float64) (float64, error) {
	f.calls++
	f.seen = append([]float64(nil), features...)
	return f.score, f.err
}

type panicRegressor struct{}

func (panicRegressor) Predict([]float64) (float64, error) { panic("index out of range") }

type staticSource struct{ artifact *Artifact }

func (s staticSource) Current() *Artifact { return s.artifact }

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObservePrediction(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func newTestPredictor(t *testing.T, artifact *Artifact, opts ...PredictorOption) *Predictor {
	t.Helper()
	p, err := NewPredictor(staticSource{artifact}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestPredictorLinearScenario(t *testing.T) {
	artifact, err := ParseArtifact([]byte(linearArtifactJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prediction, err := newTestPredictor(t, artifact).Predict(context.Background(), scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction.Score != 52.75 {
		t.Fatalf("expected 52.75, got %v", prediction.Score)
	}
	if got := prediction.Display(); got != "Predicted Exam Score: 52.75" {
		t.Fatalf("unexpected display: %q", got)
	}
	if prediction.ModelVersion != "lr-2024" {
		t.Fatalf("unexpected version: %q", prediction.ModelVersion)
	}
}

func TestPredictorConfigErrorSkipsModel(t *testing.T) {
	model := &fakeRegressor{score: 10}
	observer := &recordingObserver{}
	artifact := &Artifact{ID: "a", Schema: NewSchema(nil, nil), Model: model}

	_, err := newTestPredictor(t, artifact, WithObserver(observer)).Predict(context.Background(), scenarioRecord())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !errors.Is(err, ErrMissingExpectedColumns) {
		t.Fatalf("expected ErrMissingExpectedColumns, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called, got %d calls", model.calls)
	}
	if len(observer.outcomes) != 1 || observer.outcomes[0] != OutcomeConfigError {
		t.Fatalf("unexpected outcomes: %v", observer.outcomes)
	}
}

func TestPredictorNoArtifact(t *testing.T) {
	_, err := newTestPredictor(t, nil).Predict(context.Background(), scenarioRecord())
	if !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
}

func TestPredictorPredictionError(t *testing.T) {
	artifact := &Artifact{
		ID:     "a",
		Schema: NewSchema(scenarioColumns, nil),
		Model:  &LinearRegression{Coef: []float64{1, 2}},
	}
	p := newTestPredictor(t, artifact)

	_, err := p.Predict(context.Background(), scenarioRecord())
	var predErr *PredictionError
	if !errors.As(err, &predErr) {
		t.Fatalf("expected PredictionError, got %v", err)
	}
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	artifact.Model = panicRegressor{}
	if _, err := p.Predict(context.Background(), scenarioRecord()); !errors.As(err, &predErr) {
		t.Fatalf("expected panic to surface as PredictionError, got %v", err)
	}
}

func TestPredictorPassesAlignedRow(t *testing.T) {
	model := &fakeRegressor{score: 1}
	artifact := &Artifact{ID: "a", Schema: NewSchema(scenarioColumns, nil), Model: model}
	if _, err := newTestPredictor(t, artifact).Predict(context.Background(), scenarioRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{5, 75, 1, 7, 3, 3, 2, 0}
	for i := range want {
		if model.seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, model.seen)
		}
	}
}

func TestPredictorCache(t *testing.T) {
	model := &fakeRegressor{score: 64}
	artifact := &Artifact{ID: "a", Schema: NewSchema(scenarioColumns, nil), Model: model}
	p := newTestPredictor(t, artifact, WithCacheSize(8))

	first, err := p.Predict(context.Background(), scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upper := scenarioRecord()
	upper.SleepQuality = "GOOD"
	second, err := p.Predict(context.Background(), upper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("expected second call to hit the cache: %v %v", first.Cached, second.Cached)
	}
	if model.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", model.calls)
	}
}

func TestPredictorCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := &fakeRegressor{}
	artifact := &Artifact{ID: "a", Schema: NewSchema(scenarioColumns, nil), Model: model}
	if _, err := newTestPredictor(t, artifact).Predict(ctx, scenarioRecord()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
