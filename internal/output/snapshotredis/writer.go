package snapshotredis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"quakeview/internal/logger"
	"quakeview/pkg/models"
)

// Config configures the Redis snapshot publisher.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Channel  string
	TTL      time.Duration
}

// Writer stores the latest snapshot under a key and announces it on a channel.
type Writer struct {
	client  *redis.Client
	key     string
	channel string
	ttl     time.Duration
}

// NewWriter connects to Redis and verifies the connection.
func NewWriter(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.Key) == "" {
		cfg.Key = "quakeview:snapshot"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis snapshot store: %w", err)
	}

	logger.Infof("Redis snapshot writer initialized: %s key=%s channel=%s", cfg.Addr, cfg.Key, cfg.Channel)
	return &Writer{
		client:  client,
		key:     strings.TrimSpace(cfg.Key),
		channel: strings.TrimSpace(cfg.Channel),
		ttl:     cfg.TTL,
	}, nil
}

// WriteSnapshot replaces the stored snapshot and its summary hash, then
// publishes the generation. All three happen in one MULTI/EXEC.
func (w *Writer) WriteSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := w.client.TxPipeline()
	pipe.Set(ctx, w.key, payload, w.ttl)
	// Buckets come and go between generations; rebuild the hash from scratch.
	pipe.Del(ctx, w.summaryKey())
	pipe.HSet(ctx, w.summaryKey(), summaryFields(snap)...)
	if w.channel != "" {
		pipe.Publish(ctx, w.channel, strconv.FormatUint(snap.Generation, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write snapshot to redis: %w", err)
	}
	return nil
}

// Close closes Redis resources.
func (w *Writer) Close() error {
	if w == nil || w.client == nil {
		return nil
	}
	return w.client.Close()
}

func (w *Writer) summaryKey() string {
	return w.key + ":summary"
}

// summaryFields flattens the counters of a snapshot into HSET arguments.
func summaryFields(snap *models.Snapshot) []interface{} {
	fields := []interface{}{
		"generation", strconv.FormatUint(snap.Generation, 10),
		"total", strconv.Itoa(snap.Total),
		"last_updated", snap.LastUpdated,
		"rendered_at", strconv.FormatInt(snap.RenderedAt.Unix(), 10),
	}
	for _, b := range snap.Bars {
		fields = append(fields, "bucket:"+strconv.Itoa(b.Lower), strconv.Itoa(b.Count))
	}
	return fields
}
