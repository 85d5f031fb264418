package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	QuakeView QuakeViewConfig `yaml:"quakeview"`
}

// QuakeViewConfig is the project configuration.
type QuakeViewConfig struct {
	Feed    FeedConfig    `yaml:"feed"`
	Refresh RefreshConfig `yaml:"refresh"`
	Server  ServerConfig  `yaml:"server"`
	Map     MapConfig     `yaml:"map"`
	Chart   ChartConfig   `yaml:"chart"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Logging LoggingConfig `yaml:"logging"`
}

// FeedConfig controls the upstream GeoJSON feed.
type FeedConfig struct {
	URL     string            `yaml:"url"`
	Limit   int               `yaml:"limit"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// RefreshConfig controls the periodic refetch.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig controls the HTTP UI surface.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	Debug  bool   `yaml:"debug"`
}

// MapConfig controls map tiles and popup time formatting.
type MapConfig struct {
	TileURL     string `yaml:"tile_url"`
	Attribution string `yaml:"attribution"`
	Timezone    string `yaml:"timezone"`
}

// ChartConfig controls histogram geometry.
type ChartConfig struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Margin  float64 `yaml:"margin"`
	Padding float64 `yaml:"padding"`
}

// OutputConfig controls snapshot sinks. Each sink is optional.
type OutputConfig struct {
	File  FileOutputConfig  `yaml:"file"`
	HTTP  HTTPOutputConfig  `yaml:"http"`
	Redis RedisOutputConfig `yaml:"redis"`
}

// FileOutputConfig config for local JSON lines output.
type FileOutputConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HTTPOutputConfig config for a webhook sink.
type HTTPOutputConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// RedisOutputConfig config for publishing snapshots to Redis.
type RedisOutputConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Channel  string        `yaml:"channel"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
