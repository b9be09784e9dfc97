package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	ModelLinearRegression = "linear_regression"
	ModelDecisionTree     = "decision_tree"
)

// Artifact is a loaded model together with the schema it was fitted on. It is never
// mutated after LoadArtifact returns.
type Artifact struct {
	ID       string
	Type     string
	Version  string
	Path     string
	LoadedAt time.Time
	Schema   *Schema
	Model    Regressor
}

type artifactFile struct {
	ModelType      string              `json:"model_type"`
	Version        string              `json:"version"`
	FeatureNamesIn []string            `json:"feature_names_in"`
	Categories     map[string][]string `json:"categories,omitempty"`
	Coef           []float64           `json:"coef,omitempty"`
	Intercept      float64             `json:"intercept"`
	Nodes          []TreeNode          `json:"nodes,omitempty"`
}

func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	artifact, err := ParseArtifact(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	artifact.Path = path
	return artifact, nil
}

// ParseArtifact decodes an artifact. A missing feature_names_in is accepted here;
// requests against such an artifact fail with ErrMissingExpectedColumns.
func ParseArtifact(payload []byte) (*Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, err
	}

	var model Regressor
	switch file.ModelType {
	case ModelLinearRegression:
		model = &LinearRegression{Coef: file.Coef, Intercept: file.Intercept}
	case ModelDecisionTree:
		model = NewDecisionTree(file.Nodes, len(file.FeatureNamesIn))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, file.ModelType)
	}

	return &Artifact{
		ID:       uuid.NewString(),
		Type:     file.ModelType,
		Version:  file.Version,
		LoadedAt: time.Now(),
		Schema:   NewSchema(file.FeatureNamesIn, file.Categories),
		Model:    model,
	}, nil
}
