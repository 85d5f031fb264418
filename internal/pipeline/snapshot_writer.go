package pipeline

import "quakeview/pkg/models"

// SnapshotWriter receives every applied snapshot.
type SnapshotWriter interface {
	WriteSnapshot(snap *models.Snapshot) error
	Close() error
}
