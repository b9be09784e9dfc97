package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"examscore/ml"
)

var (
	predictor *ml.Predictor
	logger    = zap.NewNop()
)

func SetPredictor(p *ml.Predictor) {
	predictor = p
}

func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/options", handleOptions)
	mux.HandleFunc("GET /api/model", handleModel)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type formOptions struct {
	Course         []string         `json:"course"`
	StudyMethod    []string         `json:"study_method"`
	InternetAccess []string         `json:"internet_access"`
	SleepQuality   []string         `json:"sleep_quality"`
	FacilityRating []string         `json:"facility_rating"`
	ExamDifficulty []string         `json:"exam_difficulty"`
	Defaults       ml.StudentRecord `json:"defaults"`
}

func currentOptions() formOptions {
	return formOptions{
		Course:         ml.CourseOptions,
		StudyMethod:    ml.StudyMethodOptions,
		InternetAccess: ml.InternetAccessOptions,
		SleepQuality:   ml.SleepQualityOptions,
		FacilityRating: ml.FacilityOptions,
		ExamDifficulty: ml.ExamDifficultyOptions,
		Defaults:       ml.DefaultRecord(),
	}
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentOptions())
}

func handleModel(w http.ResponseWriter, r *http.Request) {
	var artifact *ml.Artifact
	if predictor != nil {
		artifact = predictor.Artifact()
	}
	if artifact == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": ml.ErrNoModel.Error()})
		return
	}

	response := map[string]interface{}{
		"id":               artifact.ID,
		"type":             artifact.Type,
		"version":          artifact.Version,
		"loaded_at":        artifact.LoadedAt,
		"expected_columns": artifact.Schema.Columns,
		"categories":       artifact.Schema.Categories,
	}
	if tree, ok := artifact.Model.(*ml.DecisionTree); ok {
		response["tree_depth"] = tree.Depth()
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response failed", zap.Error(err))
	}
}
