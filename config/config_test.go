package config

import (
	"testing"
	"time"
)

func TestParseReadsNestedSections(t *testing.T) {
	raw := []byte(`
quakeview:
  feed:
    url: http://example.test/query
    limit: 50
    timeout: 3s
  refresh:
    interval: 90s
  output:
    redis:
      enabled: true
      key: quakes:latest
  logging:
    enabled: true
    level: debug
`)
	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	qv := cfg.QuakeView
	if qv.Feed.URL != "http://example.test/query" || qv.Feed.Limit != 50 {
		t.Fatalf("unexpected feed config: %+v", qv.Feed)
	}
	if qv.Feed.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", qv.Feed.Timeout)
	}
	if qv.Refresh.Interval != 90*time.Second {
		t.Fatalf("expected 90s interval, got %v", qv.Refresh.Interval)
	}
	if !qv.Output.Redis.Enabled || qv.Output.Redis.Key != "quakes:latest" {
		t.Fatalf("unexpected redis output: %+v", qv.Output.Redis)
	}
	if qv.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", qv.Logging.Level)
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("quakeview: [")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
