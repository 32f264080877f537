package fitnessrecord

import (
	"context"
	"errors"
	"strings"

	domain "pefitness/internal/domain/fitness"
)

// Collection names the record collection inside an app namespace.
const Collection = "fitness_records"

// DefaultAppID is the namespace used when none is configured.
const DefaultAppID = "pe-system-v1"

// ErrStore marks every failure to persist a record.
var ErrStore = errors.New("record store unavailable")

// Store appends fitness records. There is no read, update or delete path.
type Store interface {
	Append(ctx context.Context, rec domain.Record) error
}

// CollectionPath returns artifacts/<appID>/public/data/fitness_records.
func CollectionPath(appID string) string {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		appID = DefaultAppID
	}
	return "artifacts/" + appID + "/public/data/" + Collection
}
