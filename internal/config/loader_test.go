package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
log_level: debug
queues:
  - name: ui
    capacity: 16
  - name: audio
pose_rate_hz: 90
startup_events:
  - queue: ui
    name: set_sensor
    data:
      mounted: true
      battery: 80
`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || cfg.PoseRateHz != 90 || len(cfg.Queues) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	ev := cfg.StartupEvents[0]
	if ev.Queue != "ui" || ev.Name != "set_sensor" || ev.Payload().Value("battery").ToInt() != 80 || !ev.Payload().Value("mounted").ToBool() {
		t.Fatalf("unexpected startup event: %+v", ev)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","loader_workers":4,"send_timeout_ms":50,"queues":[{"name":"loader","capacity":8}],"cors":{"enabled":true,"origins":["*"]}}`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":7070" || cfg.LoaderWorkers != 4 || cfg.SendTimeoutMS != 50 || cfg.Queues[0].Capacity != 8 || !cfg.CORS.Enabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nlog_format=\"json\"\n\n[[queues]]\nname=\"ui\"\ncapacity=4\n\n[[startup_events]]\nqueue=\"ui\"\nname=\"ping\"\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":8081" || cfg.LogFormat != "json" || cfg.Queues[0].Capacity != 4 || cfg.StartupEvents[0].Name != "ping" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.StartupEvents[0].Payload().IsNull() {
		t.Fatalf("absent data should be null")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil { t.Fatalf("expected unsupported extension error") }
}

func TestWithDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Addr != DefaultAddr || cfg.PoseRateHz != DefaultPoseRateHz || cfg.LoaderWorkers != DefaultLoaderWorkers || cfg.SendTimeoutMS != DefaultSendTimeoutMS {
		t.Fatalf("defaults: %+v", cfg)
	}
	if len(cfg.Queues) != 2 || cfg.Queues[0].Name != DefaultUIQueue || cfg.Queues[1].Capacity != DefaultLoaderCapacity {
		t.Fatalf("default queues: %+v", cfg.Queues)
	}

	custom := Config{Queues: []QueueConfig{{Name: "ui"}, {Name: "audio", Capacity: 3}}}.WithDefaults()
	if len(custom.Queues) != 3 || custom.Queues[0].Capacity != DefaultUICapacity || custom.Queues[1].Capacity != 3 || custom.Queues[2].Name != DefaultLoaderQueue {
		t.Fatalf("custom queues: %+v", custom.Queues)
	}
}
