package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"pefitness/internal/domain/fitness"
)

// RecordSink accepts a record for background persistence.
// Record must return without waiting for the write.
type RecordSink interface {
	Record(ctx context.Context, rec fitness.Record)
}

// AssessmentInput carries one form submission.
type AssessmentInput struct {
	Measurement fitness.RawMeasurement
	OwnerID     string // teacher account or visitor id; empty means anonymous
}

// AssessmentDeps holds dependencies for ExecuteAssessment.
type AssessmentDeps struct {
	Sink       RecordSink
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteAssessment scores a submission and hands the record to the sink.
// PRE: deps fields are non-nil
// POST: on success the result is returned before the record is stored;
// a storage failure never changes the returned result
// INVARIANT: nothing is recorded for an invalid submission
func ExecuteAssessment(ctx context.Context, input AssessmentInput, deps AssessmentDeps) (fitness.AssessmentResult, error) {
	result, err := fitness.Build(input.Measurement)
	if err != nil {
		slog.Info("fitness_rejected", "error", err)
		return fitness.AssessmentResult{}, err
	}

	rec := fitness.NewRecord(deps.GenerateID(), input.OwnerID, result, deps.Now())
	deps.Sink.Record(ctx, rec)

	slog.Info("fitness_assessed",
		"record_id", rec.ID,
		"class", rec.ClassLabel,
		"total_score", rec.TotalScore,
		"recommendations", len(rec.Recommendations),
	)
	return result, nil
}
