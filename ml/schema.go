package ml

import (
	"errors"
	"slices"
)

// ErrMissingExpectedColumns means the artifact carries no expected-column list, so a
// feature row cannot be aligned and no prediction may be attempted.
var ErrMissingExpectedColumns = errors.New("model does not declare its expected feature columns")

// Schema is the ordered feature layout a model was fitted on, plus the category
// universe of every one-hot encoded field.
type Schema struct {
	Columns    []string
	Categories map[string][]string
}

// DefaultCategories are the closed sets offered by the form for the one-hot fields.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		FieldCourse:      slices.Clone(CourseOptions),
		FieldStudyMethod: slices.Clone(StudyMethodOptions),
	}
}

// NewSchema copies columns and categories. A nil categories map falls back to
// DefaultCategories.
func NewSchema(columns []string, categories map[string][]string) *Schema {
	s := &Schema{Categories: DefaultCategories()}
	if columns != nil {
		s.Columns = slices.Clone(columns)
	}
	for field, values := range categories {
		s.Categories[field] = slices.Clone(values)
	}
	return s
}

// Check reports ErrMissingExpectedColumns when the schema cannot drive alignment.
func (s *Schema) Check() error {
	if s == nil || len(s.Columns) == 0 {
		return ErrMissingExpectedColumns
	}
	return nil
}

// Baseline returns the category dropped by drop-first encoding: the smallest value in
// lexical order, which is the first column a one-hot encoder emits when fitting.
func (s *Schema) Baseline(field string) (string, bool) {
	values := s.Categories[field]
	if len(values) == 0 {
		return "", false
	}
	return slices.Min(values), true
}

// IndicatorColumns lists the one-hot columns for field in lexical category order,
// baseline excluded.
func (s *Schema) IndicatorColumns(field string) []string {
	values := slices.Clone(s.Categories[field])
	if len(values) == 0 {
		return nil
	}
	slices.Sort(values)
	values = slices.Compact(values)
	cols := make([]string, 0, len(values)-1)
	for _, v := range values[1:] {
		cols = append(cols, IndicatorName(field, v))
	}
	return cols
}

// IndicatorName joins a field and category the way the training encoder named columns.
func IndicatorName(field, value string) string {
	return field + "_" + value
}
