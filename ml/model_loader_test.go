package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const linearArtifactJSON = `{
  "model_type": "linear_regression",
  "version": "lr-2024",
  "feature_names_in": ["study_hours", "class_attendance", "internet_access", "sleep_hours",
    "sleep_quality", "facility_rating", "exam_difficulty", "course_b.tech"],
  "coef": [1, 0.25, 2, 0.5, 1.5, 1, -2, 3],
  "intercept": 20
}`

func writeArtifact(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadArtifactLinear(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), linearArtifactJSON)
	artifact, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Type != ModelLinearRegression || artifact.Version != "lr-2024" {
		t.Fatalf("unexpected artifact: %+v", artifact)
	}
	if artifact.Path != path || artifact.ID == "" {
		t.Fatalf("expected path and id to be set: %+v", artifact)
	}
	if len(artifact.Schema.Columns) != 8 {
		t.Fatalf("expected 8 columns, got %d", len(artifact.Schema.Columns))
	}
	if _, ok := artifact.Model.(*LinearRegression); !ok {
		t.Fatalf("expected linear regression, got %T", artifact.Model)
	}
}

func TestParseArtifactDecisionTree(t *testing.T) {
	artifact, err := ParseArtifact([]byte(`{
	  "model_type": "decision_tree",
	  "feature_names_in": ["study_hours"],
	  "categories": {"course": ["x", "y"]},
	  "nodes": [
	    {"feature_idx": 0, "threshold": 3, "left_child": 1, "right_child": 2},
	    {"feature_idx": -1, "left_child": -1, "right_child": -1, "value": 40, "is_leaf": true},
	    {"feature_idx": -1, "left_child": -1, "right_child": -1, "value": 70, "is_leaf": true}
	  ]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := artifact.Model.Predict([]float64{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 70 {
		t.Fatalf("expected 70, got %v", score)
	}
	if got := artifact.Schema.Categories[FieldCourse]; len(got) != 2 {
		t.Fatalf("expected custom course categories, got %v", got)
	}
	if got := artifact.Schema.Categories[FieldStudyMethod]; len(got) != len(StudyMethodOptions) {
		t.Fatalf("expected default study_method categories, got %v", got)
	}
}

func TestParseArtifactWithoutColumns(t *testing.T) {
	artifact, err := ParseArtifact([]byte(`{"model_type": "linear_regression", "coef": [1]}`))
	if err != nil {
		t.Fatalf("artifact without columns must still load: %v", err)
	}
	if err := artifact.Schema.Check(); !errors.Is(err, ErrMissingExpectedColumns) {
		t.Fatalf("expected ErrMissingExpectedColumns, got %v", err)
	}
}

func TestParseArtifactErrors(t *testing.T) {
	if _, err := ParseArtifact([]byte(`{"model_type": "svm"}`)); !errors.Is(err, ErrUnsupportedModel) {
		t.Fatalf("expected ErrUnsupportedModel, got %v", err)
	}
	if _, err := ParseArtifact([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := LoadArtifact(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
