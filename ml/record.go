package ml

import (
	"fmt"
	"slices"
	"strings"
)

// Field names as the model was trained on them.
const (
	FieldStudentID       = "student_id"
	FieldCourse          = "course"
	FieldStudyMethod     = "study_method"
	FieldStudyHours      = "study_hours"
	FieldClassAttendance = "class_attendance"
	FieldInternetAccess  = "internet_access"
	FieldSleepHours      = "sleep_hours"
	FieldSleepQuality    = "sleep_quality"
	FieldFacilityRating  = "facility_rating"
	FieldExamDifficulty  = "exam_difficulty"
)

var (
	CourseOptions         = []string{"bca", "diploma", "b.com", "ba", "b.sc", "b.tech", "bba"}
	StudyMethodOptions    = []string{"self-study", "online videos", "group study", "coaching", "mixed"}
	InternetAccessOptions = []string{"yes", "no"}
	SleepQualityOptions   = []string{"poor", "average", "good"}
	FacilityOptions       = []string{"low", "medium", "high"}
	ExamDifficultyOptions = []string{"easy", "moderate", "hard"}
)

// StudentRecord is one prediction request as collected from the form.
type StudentRecord struct {
	StudentID       int    `json:"student_id"`
	Course          string `json:"course"`
	StudyMethod     string `json:"study_method"`
	StudyHours      int    `json:"study_hours"`
	ClassAttendance int    `json:"class_attendance"`
	InternetAccess  string `json:"internet_access"`
	SleepHours      int    `json:"sleep_hours"`
	SleepQuality    string `json:"sleep_quality"`
	FacilityRating  string `json:"facility_rating"`
	ExamDifficulty  string `json:"exam_difficulty"`
}

// DefaultRecord returns the values the form starts with.
func DefaultRecord() StudentRecord {
	return StudentRecord{
		StudentID:       1000,
		Course:          CourseOptions[0],
		StudyMethod:     StudyMethodOptions[0],
		StudyHours:      5,
		ClassAttendance: 75,
		InternetAccess:  InternetAccessOptions[0],
		SleepHours:      7,
		SleepQuality:    SleepQualityOptions[0],
		FacilityRating:  FacilityOptions[0],
		ExamDifficulty:  ExamDifficultyOptions[0],
	}
}

// ValidationError reports a field that falls outside the input widget constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate enforces the constraints of the input widgets. The four ordinal fields are
// compared case-insensitively; the encoder does the actual normalisation.
func (r StudentRecord) Validate() error {
	ranges := []struct {
		field    string
		value    int
		min, max int
	}{
		{FieldStudentID, r.StudentID, 0, -1},
		{FieldStudyHours, r.StudyHours, 0, -1},
		{FieldClassAttendance, r.ClassAttendance, 0, 100},
		{FieldSleepHours, r.SleepHours, 0, 24},
	}
	for _, rg := range ranges {
		if rg.value < rg.min {
			return &ValidationError{Field: rg.field, Reason: fmt.Sprintf("must be >= %d", rg.min)}
		}
		if rg.max >= 0 && rg.value > rg.max {
			return &ValidationError{Field: rg.field, Reason: fmt.Sprintf("must be <= %d", rg.max)}
		}
	}

	// course and study_method are one-hot encoded verbatim, so they must match exactly.
	sets := []struct {
		field   string
		value   string
		options []string
		fold    bool
	}{
		{FieldCourse, r.Course, CourseOptions, false},
		{FieldStudyMethod, r.StudyMethod, StudyMethodOptions, false},
		{FieldInternetAccess, r.InternetAccess, InternetAccessOptions, true},
		{FieldSleepQuality, r.SleepQuality, SleepQualityOptions, true},
		{FieldFacilityRating, r.FacilityRating, FacilityOptions, true},
		{FieldExamDifficulty, r.ExamDifficulty, ExamDifficultyOptions, true},
	}
	for _, s := range sets {
		value := s.value
		if s.fold {
			value = normalize(value)
		}
		if !slices.Contains(s.options, value) {
			return &ValidationError{
				Field:  s.field,
				Reason: fmt.Sprintf("%q is not one of %s", s.value, strings.Join(s.options, ", ")),
			}
		}
	}
	return nil
}
