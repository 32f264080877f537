package orchestrators

import (
	"context"
	"sync"
	"time"

	"pefitness/internal/domain/fitness"
)

var fixedTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

func validMeasurement() fitness.RawMeasurement {
	m := fitness.NewRawMeasurement()
	m.Name = "陳大文"
	m.ClassNumber = 12
	return m
}

// captureSink implements RecordSink by storing every record synchronously.
type captureSink struct {
	mu      sync.Mutex
	records []fitness.Record
}

// Record implements RecordSink.
// POST: rec appended to records
func (c *captureSink) Record(_ context.Context, rec fitness.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}
