package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"examscore/ml"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	kindValidation    = "validation"
	kindConfiguration = "configuration"
	kindPrediction    = "prediction"
)

// predictFailure is what a failed request reports back to the user.
type predictFailure struct {
	Status  int    `json:"-"`
	Kind    string `json:"kind"`
	Message string `json:"error"`
}

type predictResponse struct {
	Score        float64            `json:"score"`
	Display      string             `json:"display"`
	ModelVersion string             `json:"model_version,omitempty"`
	Features     map[string]float64 `json:"features"`
	Columns      []string           `json:"columns"`
}

type pageData struct {
	Record  ml.StudentRecord
	Options formOptions
	Result  string
	Error   string
}

func RegisterPredictHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("POST /predict", handlePredictForm)
	mux.HandleFunc("POST /api/predict", handlePredictJSON)
}

// runPrediction validates and scores one record. A failure carries the status code
// and the message shown to the user.
func runPrediction(ctx context.Context, record ml.StudentRecord) (ml.Prediction, *predictFailure) {
	if err := record.Validate(); err != nil {
		return ml.Prediction{}, &predictFailure{Status: http.StatusBadRequest, Kind: kindValidation, Message: err.Error()}
	}
	if predictor == nil {
		return ml.Prediction{}, &predictFailure{Status: http.StatusServiceUnavailable, Kind: kindConfiguration, Message: ml.ErrNoModel.Error()}
	}

	prediction, err := predictor.Predict(ctx, record)
	if err == nil {
		return prediction, nil
	}

	var cfgErr *ml.ConfigError
	var predErr *ml.PredictionError
	switch {
	case errors.Is(err, ml.ErrNoModel):
		return ml.Prediction{}, &predictFailure{Status: http.StatusServiceUnavailable, Kind: kindConfiguration, Message: err.Error()}
	case errors.Is(err, ml.ErrMissingExpectedColumns):
		return ml.Prediction{}, &predictFailure{
			Status:  http.StatusInternalServerError,
			Kind:    kindConfiguration,
			Message: "Model does not contain its expected feature columns. Re-train saving the columns list.",
		}
	case errors.As(err, &cfgErr):
		return ml.Prediction{}, &predictFailure{Status: http.StatusInternalServerError, Kind: kindConfiguration, Message: err.Error()}
	case errors.As(err, &predErr):
		return ml.Prediction{}, &predictFailure{Status: http.StatusUnprocessableEntity, Kind: kindPrediction, Message: "Prediction failed: " + predErr.Err.Error()}
	default:
		return ml.Prediction{}, &predictFailure{Status: http.StatusServiceUnavailable, Kind: kindPrediction, Message: err.Error()}
	}
}

func newPredictResponse(p ml.Prediction) predictResponse {
	return predictResponse{
		Score:        p.Score,
		Display:      p.Display(),
		ModelVersion: p.ModelVersion,
		Features:     p.Features.Map(),
		Columns:      p.Features.Names(),
	}
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{Record: ml.DefaultRecord()})
}

func handlePredictForm(w http.ResponseWriter, r *http.Request) {
	record, err := parseRecordForm(r)
	if err != nil {
		renderPage(w, http.StatusBadRequest, pageData{Record: record, Error: err.Error()})
		return
	}

	prediction, failure := runPrediction(r.Context(), record)
	if failure != nil {
		logger.Info("prediction refused",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("kind", failure.Kind),
			zap.String("error", failure.Message))
		status := http.StatusOK
		if failure.Kind == kindValidation {
			status = http.StatusBadRequest
		} else if failure.Status == http.StatusServiceUnavailable {
			status = failure.Status
		}
		renderPage(w, status, pageData{Record: record, Error: failure.Message})
		return
	}
	renderPage(w, http.StatusOK, pageData{Record: record, Result: prediction.Display()})
}

func handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	record := ml.DefaultRecord()
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeJSON(w, http.StatusBadRequest, predictFailure{Kind: kindValidation, Message: "invalid request body: " + err.Error()})
		return
	}

	prediction, failure := runPrediction(r.Context(), record)
	if failure != nil {
		writeJSON(w, failure.Status, failure)
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(prediction))
}

// parseRecordForm reads the form fields. Absent fields keep their defaults; the
// returned record is usable for re-rendering even when err is set.
func parseRecordForm(r *http.Request) (ml.StudentRecord, error) {
	record := ml.DefaultRecord()
	if err := r.ParseForm(); err != nil {
		return record, err
	}

	texts := []struct {
		name string
		dst  *string
	}{
		{ml.FieldCourse, &record.Course},
		{ml.FieldStudyMethod, &record.StudyMethod},
		{ml.FieldInternetAccess, &record.InternetAccess},
		{ml.FieldSleepQuality, &record.SleepQuality},
		{ml.FieldFacilityRating, &record.FacilityRating},
		{ml.FieldExamDifficulty, &record.ExamDifficulty},
	}
	for _, f := range texts {
		if v, ok := r.PostForm[f.name]; ok && len(v) > 0 {
			*f.dst = v[0]
		}
	}

	numbers := []struct {
		name string
		dst  *int
	}{
		{ml.FieldStudentID, &record.StudentID},
		{ml.FieldStudyHours, &record.StudyHours},
		{ml.FieldClassAttendance, &record.ClassAttendance},
		{ml.FieldSleepHours, &record.SleepHours},
	}
	for _, f := range numbers {
		v := r.PostForm.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return record, &ml.ValidationError{Field: f.name, Reason: "must be a whole number"}
		}
		*f.dst = n
	}
	return record, nil
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Options = currentOptions()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		logger.Error("render page failed", zap.Error(err))
	}
}
