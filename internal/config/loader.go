package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"eventloopd/internal/common/fsutil"
	"eventloopd/internal/variant"
)

// Defaults applied by WithDefaults when the corresponding field is unset.
const (
	DefaultAddr          = ":8080"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultPoseRateHz    = 60
	DefaultLoaderWorkers = 2
	DefaultSendTimeoutMS = 2000

	DefaultUIQueue        = "ui"
	DefaultUICapacity     = 64
	DefaultLoaderQueue    = "loader"
	DefaultLoaderCapacity = 32
)

// QueueConfig declares one hosted event queue.
type QueueConfig struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity" toml:"capacity"`
}

// CORSConfig enables the optional CORS middleware.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// StartupEvent is posted once after the hub starts.
type StartupEvent struct {
	Queue string `json:"queue" yaml:"queue" toml:"queue"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Data  any    `json:"data" yaml:"data" toml:"data"`
}

// Payload converts the decoded data tree to a Variant.
func (e StartupEvent) Payload() variant.Variant { return variant.FromAny(e.Data) }

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr          string         `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel      string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat     string         `json:"log_format" yaml:"log_format" toml:"log_format"`
	Queues        []QueueConfig  `json:"queues" yaml:"queues" toml:"queues"`
	PoseRateHz    int            `json:"pose_rate_hz" yaml:"pose_rate_hz" toml:"pose_rate_hz"`
	LoaderWorkers int            `json:"loader_workers" yaml:"loader_workers" toml:"loader_workers"`
	SendTimeoutMS int            `json:"send_timeout_ms" yaml:"send_timeout_ms" toml:"send_timeout_ms"`
	CORS          CORSConfig     `json:"cors" yaml:"cors" toml:"cors"`
	StartupEvents []StartupEvent `json:"startup_events" yaml:"startup_events" toml:"startup_events"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading "~/" is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	full, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Defaults returns a fully populated configuration.
func Defaults() Config { return Config{}.WithDefaults() }

// WithDefaults fills unset fields. When no queues are declared the ui and
// loader queues are created; when queues are declared but lack the ui or
// loader queue those are appended.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	// negative disables the pose sensor
	if c.PoseRateHz == 0 {
		c.PoseRateHz = DefaultPoseRateHz
	}
	if c.LoaderWorkers <= 0 {
		c.LoaderWorkers = DefaultLoaderWorkers
	}
	if c.SendTimeoutMS <= 0 {
		c.SendTimeoutMS = DefaultSendTimeoutMS
	}
	queues := append([]QueueConfig(nil), c.Queues...)
	has := map[string]bool{}
	for i := range queues {
		if queues[i].Capacity <= 0 {
			queues[i].Capacity = defaultCapacity(queues[i].Name)
		}
		has[queues[i].Name] = true
	}
	if !has[DefaultUIQueue] {
		queues = append(queues, QueueConfig{Name: DefaultUIQueue, Capacity: DefaultUICapacity})
	}
	if !has[DefaultLoaderQueue] {
		queues = append(queues, QueueConfig{Name: DefaultLoaderQueue, Capacity: DefaultLoaderCapacity})
	}
	c.Queues = queues
	return c
}

func defaultCapacity(name string) int {
	if name == DefaultLoaderQueue {
		return DefaultLoaderCapacity
	}
	return DefaultUICapacity
}

// Validate rejects structurally invalid settings. Zero values are allowed.
func (c Config) Validate() error {
	seen := map[string]bool{}
	for _, q := range c.Queues {
		if strings.TrimSpace(q.Name) == "" {
			return fmt.Errorf("queue with empty name")
		}
		if seen[q.Name] {
			return fmt.Errorf("duplicate queue %q", q.Name)
		}
		if q.Capacity < 0 {
			return fmt.Errorf("queue %q: negative capacity", q.Name)
		}
		seen[q.Name] = true
	}
	for i, e := range c.StartupEvents {
		if e.Name == "" {
			return fmt.Errorf("startup_events[%d]: empty name", i)
		}
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.LogFormat)
	}
	return nil
}
