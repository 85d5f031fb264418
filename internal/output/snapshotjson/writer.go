package snapshotjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quakeview/internal/logger"
	"quakeview/pkg/models"
)

// Writer records the history of applied refreshes as JSON lines, one
// snapshot (markers, bars, status and generation) per line.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter opens path in append mode so history from earlier runs is kept.
// Generations restart at 1 with each process, so readers order lines by
// rendered_at rather than generation.
func NewWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}

	logger.Infof("Snapshot JSON writer initialized: %s", path)
	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// WriteSnapshot appends snap. Only snapshots from successful refreshes reach
// this sink; failed refreshes leave no line.
func (w *Writer) WriteSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("snapshot file is closed")
	}
	if err := w.encoder.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot generation %d: %w", snap.Generation, err)
	}
	return nil
}

// Close closes the history file. Later writes fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}
