package snapshotjson

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"quakeview/pkg/models"
)

func TestWriterAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.jsonl")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := w.WriteSnapshot(&models.Snapshot{Generation: uint64(i), Total: i}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var got []models.Snapshot
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var s models.Snapshot
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, s)
	}
	if len(got) != 2 || got[1].Generation != 2 {
		t.Fatalf("unexpected lines: %+v", got)
	}
}

func TestWriterKeepsHistoryAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.jsonl")
	for run := 0; run < 2; run++ {
		w, err := NewWriter(path)
		if err != nil {
			t.Fatalf("new writer: %v", err)
		}
		if err := w.WriteSnapshot(&models.Snapshot{Generation: 1}); err != nil {
			t.Fatalf("write: %v", err)
		}
		w.Close()
		if err := w.WriteSnapshot(&models.Snapshot{Generation: 2}); err == nil {
			t.Fatalf("expected write after close to fail")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines from two runs, got %d", lines)
	}
}
