package snapshotredis

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"quakeview/pkg/models"
)

func TestSummaryFieldsIncludeBuckets(t *testing.T) {
	snap := &models.Snapshot{
		Generation:  4,
		Total:       3,
		LastUpdated: "Nov 14, 2023 22:13:20 UTC",
		RenderedAt:  time.Unix(1700000000, 0),
		Bars: []models.Bar{
			{Bucket: models.Bucket{Lower: 2, Count: 1}},
			{Bucket: models.Bucket{Lower: 3, Count: 2}},
		},
	}
	fields := summaryFields(snap)
	if len(fields)%2 != 0 {
		t.Fatalf("expected key/value pairs, got %d items", len(fields))
	}
	got := make(map[string]string)
	for i := 0; i < len(fields); i += 2 {
		got[fields[i].(string)] = fields[i+1].(string)
	}
	if got["generation"] != "4" || got["total"] != "3" || got["rendered_at"] != "1700000000" {
		t.Fatalf("unexpected summary %v", got)
	}
	if got["bucket:2"] != "1" || got["bucket:3"] != "2" {
		t.Fatalf("unexpected bucket fields %v", got)
	}
}

func TestSummaryKey(t *testing.T) {
	w := &Writer{key: "quakeview:snapshot"}
	if w.summaryKey() != "quakeview:snapshot:summary" {
		t.Fatalf("unexpected summary key %s", w.summaryKey())
	}
}

func TestNewWriterFailsWithoutServer(t *testing.T) {
	if _, err := NewWriter(Config{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func snapshotWithBuckets(gen uint64, buckets ...models.Bucket) *models.Snapshot {
	snap := &models.Snapshot{Generation: gen, Status: "OK", RenderedAt: time.Unix(1700000000, 0)}
	for _, b := range buckets {
		snap.Total += b.Count
		snap.Bars = append(snap.Bars, models.Bar{Bucket: b})
	}
	return snap
}

func TestWriteSnapshotStoresLatestAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	w, err := NewWriter(Config{Addr: mr.Addr(), Key: "quakes", Channel: "quakes:updates"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	sub := rdb.Subscribe(ctx, "quakes:updates")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := w.WriteSnapshot(snapshotWithBuckets(1, models.Bucket{Lower: 6, Count: 1})); err != nil {
		t.Fatalf("write gen 1: %v", err)
	}
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Payload != "1" {
		t.Fatalf("expected published generation 1, got %s", msg.Payload)
	}

	if err := w.WriteSnapshot(snapshotWithBuckets(2, models.Bucket{Lower: 2, Count: 1})); err != nil {
		t.Fatalf("write gen 2: %v", err)
	}

	raw, err := mr.Get("quakes")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	var stored models.Snapshot
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("decode stored snapshot: %v", err)
	}
	if stored.Generation != 2 || stored.Total != 1 {
		t.Fatalf("expected generation 2 with 1 event, got %d/%d", stored.Generation, stored.Total)
	}

	fields, err := mr.HKeys("quakes:summary")
	if err != nil {
		t.Fatalf("summary keys: %v", err)
	}
	sum := 0
	for _, f := range fields {
		if !strings.HasPrefix(f, "bucket:") {
			continue
		}
		n, _ := strconv.Atoi(mr.HGet("quakes:summary", f))
		sum += n
	}
	if mr.HGet("quakes:summary", "bucket:6") != "" {
		t.Fatalf("bucket:6 from generation 1 survived: %v", fields)
	}
	if sum != stored.Total {
		t.Fatalf("expected bucket counts to sum to %d, got %d", stored.Total, sum)
	}
}
