package ml

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	internetAccessMap = map[string]float64{"yes": 1, "no": 0}
	sleepQualityMap   = map[string]float64{"poor": 1, "average": 2, "good": 3}
	facilityMap       = map[string]float64{"low": 1, "medium": 2, "high": 3}
	examDifficultyMap = map[string]float64{"easy": 1, "moderate": 2, "hard": 3}
)

// Cell is a feature value that may be missing. A category outside its lookup table
// yields an invalid cell instead of an error.
type Cell struct {
	Value float64
	Valid bool
}

func Present(v float64) Cell { return Cell{Value: v, Valid: true} }

// FeatureRow is an ordered set of named cells.
type FeatureRow struct {
	names []string
	cells []Cell
	index map[string]int
}

// Set assigns name, appending it when it is new.
func (r *FeatureRow) Set(name string, c Cell) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.cells[i] = c
		return
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.cells = append(r.cells, c)
}

func (r FeatureRow) Get(name string) (Cell, bool) {
	i, ok := r.index[name]
	if !ok {
		return Cell{}, false
	}
	return r.cells[i], true
}

func (r FeatureRow) Len() int { return len(r.names) }

func (r FeatureRow) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Values returns the cells in column order; missing cells read as zero.
func (r FeatureRow) Values() []float64 {
	out := make([]float64, len(r.cells))
	for i, c := range r.cells {
		if c.Valid {
			out[i] = c.Value
		}
	}
	return out
}

// Map returns the valid cells keyed by column name.
func (r FeatureRow) Map() map[string]float64 {
	out := make(map[string]float64, len(r.cells))
	for i, c := range r.cells {
		if c.Valid {
			out[r.names[i]] = c.Value
		}
	}
	return out
}

// Encode turns a record into the row the model expects, aligned to schema.Columns.
// It fails only when the schema has no expected columns.
func Encode(record StudentRecord, schema *Schema) (FeatureRow, error) {
	if err := schema.Check(); err != nil {
		return FeatureRow{}, err
	}
	return Align(Expand(record, schema), schema), nil
}

// Expand produces the unaligned row. Ordinal fields are looked up after lower-casing;
// course and study_method become drop-first indicators over the schema's categories.
func Expand(record StudentRecord, schema *Schema) FeatureRow {
	var row FeatureRow
	row.Set(FieldStudentID, Present(float64(record.StudentID)))
	row.Set(FieldStudyHours, Present(float64(record.StudyHours)))
	row.Set(FieldClassAttendance, Present(float64(record.ClassAttendance)))
	row.Set(FieldInternetAccess, lookup(internetAccessMap, record.InternetAccess))
	row.Set(FieldSleepHours, Present(float64(record.SleepHours)))
	row.Set(FieldSleepQuality, lookup(sleepQualityMap, record.SleepQuality))
	row.Set(FieldFacilityRating, lookup(facilityMap, record.FacilityRating))
	row.Set(FieldExamDifficulty, lookup(examDifficultyMap, record.ExamDifficulty))

	if schema == nil {
		schema = NewSchema(nil, nil)
	}
	expandIndicators(&row, schema, FieldCourse, record.Course)
	expandIndicators(&row, schema, FieldStudyMethod, record.StudyMethod)
	return row
}

// Align reindexes row to schema.Columns. Missing and invalid cells become zero and
// columns outside the schema are dropped.
func Align(row FeatureRow, schema *Schema) FeatureRow {
	var out FeatureRow
	if schema == nil {
		return out
	}
	for _, name := range schema.Columns {
		c, ok := row.Get(name)
		if !ok || !c.Valid {
			c = Present(0)
		}
		out.Set(name, c)
	}
	return out
}

func expandIndicators(row *FeatureRow, schema *Schema, field, value string) {
	for _, col := range schema.IndicatorColumns(field) {
		if col == IndicatorName(field, value) {
			row.Set(col, Present(1))
		} else {
			row.Set(col, Present(0))
		}
	}
}

func lookup(table map[string]float64, value string) Cell {
	v, ok := table[normalize(value)]
	if !ok {
		return Cell{}
	}
	return Present(v)
}

// normalize lower-cases a categorical value. A Caser keeps state, so one is built per call.
func normalize(value string) string {
	return cases.Lower(language.Und).String(value)
}
