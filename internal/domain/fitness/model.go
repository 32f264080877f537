package fitness

import (
	"errors"
	"strings"
)

// Subject identifies one of the five assessed items.
type Subject string

// Subject constants, in the fixed display order.
const (
	SubjectSitUps      Subject = "situps"
	SubjectFlexibility Subject = "flexibility"
	SubjectGrip        Subject = "grip"
	SubjectCardio      Subject = "cardio"
	SubjectBMI         Subject = "bmi"
)

// Subjects is the fixed item order used by every AssessmentResult.
var Subjects = []Subject{SubjectSitUps, SubjectFlexibility, SubjectGrip, SubjectCardio, SubjectBMI}

// Label returns the display label for the subject.
func (s Subject) Label() string {
	switch s {
	case SubjectSitUps:
		return "仰臥起坐"
	case SubjectFlexibility:
		return "坐姿體前彎"
	case SubjectGrip:
		return "手握力"
	case SubjectCardio:
		return "心肺耐力"
	case SubjectBMI:
		return "BMI健康度"
	}
	return string(s)
}

// Unit returns the unit label shown next to the raw value.
func (s Subject) Unit() string {
	switch s {
	case SubjectSitUps:
		return "次"
	case SubjectFlexibility:
		return "cm"
	case SubjectGrip:
		return "kg"
	case SubjectCardio:
		return "m"
	}
	return ""
}

// Gender constants
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// ClassLabels contains all valid class codes.
var ClassLabels = []string{"1A", "1B", "2A", "2B", "3A", "3B", "4A", "4B", "5A", "5B", "6A", "6B"}

// Form defaults for a fresh assessment.
const (
	DefaultClassLabel = "6A"
	DefaultGender     = GenderMale
	DefaultHeightCm   = 150
	DefaultWeightKg   = 40
)

// DefaultAgeBand is the age passed to the score calculator for every student.
const DefaultAgeBand = 12

// FullMark is the maximum score of any item.
const FullMark = 5

// Domain errors
var (
	ErrNameRequired        = errors.New("請填寫姓名及班號")
	ErrClassNumberRequired = errors.New("請填寫姓名及班號")
	ErrInvalidClassLabel   = errors.New("班別無效")
	ErrInvalidGender       = errors.New("性別必須為 M 或 F")
	ErrNegativeValue       = errors.New("測驗數值不可為負數")
	ErrInvalidBodySize     = errors.New("身高及體重必須大於 0")
	ErrNonFiniteValue      = errors.New("測驗數值格式不正確")
)

// ValidationError wraps a domain error that blocks an assessment.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying domain error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RawMeasurement holds the form input for one assessment.
type RawMeasurement struct {
	Name        string  `json:"name" validate:"required"`
	ClassLabel  string  `json:"class" validate:"classlabel"`
	ClassNumber int     `json:"classNo" validate:"required,gt=0"`
	Gender      string  `json:"gender" validate:"oneof=M F"`
	SitUps      int     `json:"sitUps" validate:"gte=0"`
	Flexibility float64 `json:"flexibility" validate:"finite,gte=0"`
	HandGrip    float64 `json:"handGrip" validate:"finite,gte=0"`
	Run9Min     float64 `json:"run9min" validate:"finite,gte=0"`
	HeightCm    float64 `json:"height" validate:"finite,gt=0"`
	WeightKg    float64 `json:"weight" validate:"finite,gt=0"`
}

// NewRawMeasurement returns a measurement pre-filled with the form defaults.
func NewRawMeasurement() RawMeasurement {
	return RawMeasurement{
		ClassLabel: DefaultClassLabel,
		Gender:     DefaultGender,
		HeightCm:   DefaultHeightCm,
		WeightKg:   DefaultWeightKg,
	}
}

// Normalize trims text fields in place.
func (m *RawMeasurement) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.ClassLabel = strings.ToUpper(strings.TrimSpace(m.ClassLabel))
	m.Gender = strings.ToUpper(strings.TrimSpace(m.Gender))
}

// GenderLabel returns the localized gender.
func (m RawMeasurement) GenderLabel() string {
	if m.Gender == GenderFemale {
		return "女"
	}
	return "男"
}

// RawValue returns the raw input for a measured subject.
// BMI is derived and is not part of the raw input; it returns 0.
func (m RawMeasurement) RawValue(s Subject) float64 {
	switch s {
	case SubjectSitUps:
		return float64(m.SitUps)
	case SubjectFlexibility:
		return m.Flexibility
	case SubjectGrip:
		return m.HandGrip
	case SubjectCardio:
		return m.Run9Min
	}
	return 0
}

// ScoredItem is one measurement with its derived score.
type ScoredItem struct {
	Subject  Subject
	Label    string
	RawValue float64
	Unit     string
	Score    int
	FullMark int
}

// AssessmentResult is the outcome of one form submission.
// INVARIANT: Items has exactly len(Subjects) entries in Subjects order.
type AssessmentResult struct {
	Measurement     RawMeasurement
	Items           []ScoredItem
	BMI             float64
	Recommendations []string
	Best            ScoredItem
	Worst           ScoredItem
}

// Item returns the scored item for a subject.
func (r AssessmentResult) Item(s Subject) (ScoredItem, bool) {
	for _, it := range r.Items {
		if it.Subject == s {
			return it, true
		}
	}
	return ScoredItem{}, false
}

// Scores returns the per-item scores in fixed order.
func (r AssessmentResult) Scores() []int {
	scores := make([]int, len(r.Items))
	for i, it := range r.Items {
		scores[i] = it.Score
	}
	return scores
}

// TotalScore returns the sum of all item scores.
func (r AssessmentResult) TotalScore() int {
	total := 0
	for _, it := range r.Items {
		total += it.Score
	}
	return total
}
