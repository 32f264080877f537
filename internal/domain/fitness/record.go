package fitness

import (
	"errors"
	"time"
)

// AnonymousOwner tags records submitted without any identity.
const AnonymousOwner = "anonymous"

// Record is the persisted form of an AssessmentResult.
// INVARIANT: write-once; no update or delete path exists.
type Record struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	ClassLabel      string    `json:"class" bson:"class"`
	ClassNumber     int       `json:"classNo" bson:"classNo"`
	Gender          string    `json:"gender" bson:"gender"`
	SitUps          int       `json:"sitUps" bson:"sitUps"`
	Flexibility     float64   `json:"flexibility" bson:"flexibility"`
	HandGrip        float64   `json:"handGrip" bson:"handGrip"`
	Run9Min         float64   `json:"run9min" bson:"run9min"`
	HeightCm        float64   `json:"height" bson:"height"`
	WeightKg        float64   `json:"weight" bson:"weight"`
	BMI             float64   `json:"bmi" bson:"bmi"`
	Scores          []int     `json:"scores" bson:"scores"`
	TotalScore      int       `json:"totalScore" bson:"totalScore"`
	Recommendations []string  `json:"recommendations" bson:"recommendations"`
	OwnerID         string    `json:"uid" bson:"uid"`
	CreatedAt       time.Time `json:"date" bson:"date"`
}

// ErrEmptyRecordID is returned when a record has no ID.
var ErrEmptyRecordID = errors.New("record id is required")

// NewRecord flattens a result into a Record.
// PRE: r was produced by Build
// POST: OwnerID falls back to AnonymousOwner; CreatedAt is UTC
func NewRecord(id, ownerID string, r AssessmentResult, now time.Time) Record {
	if ownerID == "" {
		ownerID = AnonymousOwner
	}
	m := r.Measurement
	recs := make([]string, len(r.Recommendations))
	copy(recs, r.Recommendations)
	return Record{
		ID:              id,
		Name:            m.Name,
		ClassLabel:      m.ClassLabel,
		ClassNumber:     m.ClassNumber,
		Gender:          m.Gender,
		SitUps:          m.SitUps,
		Flexibility:     m.Flexibility,
		HandGrip:        m.HandGrip,
		Run9Min:         m.Run9Min,
		HeightCm:        m.HeightCm,
		WeightKg:        m.WeightKg,
		BMI:             r.BMI,
		Scores:          r.Scores(),
		TotalScore:      r.TotalScore(),
		Recommendations: recs,
		OwnerID:         ownerID,
		CreatedAt:       now.UTC(),
	}
}

// Validate checks the record can be written.
func (r Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyRecordID
	}
	if len(r.Scores) != len(Subjects) {
		return errors.New("record must carry one score per subject")
	}
	return nil
}
