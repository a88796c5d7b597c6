package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"message":"shown"`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if _, err := newLogger(&buf, "loud", "json"); err == nil {
		t.Fatalf("expected bad level error")
	}
	if _, err := newLogger(&buf, "info", "xml"); err == nil {
		t.Fatalf("expected bad format error")
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "eventloopd "+version {
		t.Fatalf("output=%q", out.String())
	}
}

func TestRootOptionsLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("addr: :9191\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	o := &rootOptions{configPath: p, logFormat: "json"}
	cfg, err := o.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9191" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" || len(cfg.Queues) != 2 {
		t.Fatalf("cfg: %+v", cfg)
	}
	if _, err := (&rootOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")}).load(); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestRunDrillAsync(t *testing.T) {
	res, err := runDrill(context.Background(), drillOptions{producers: 4, events: 500, capacity: 8}, zerolog.Nop())
	if err != nil {
		t.Fatalf("drill: %v", err)
	}
	if res.Handled != 2000 || res.OutOfSeq != 0 {
		t.Fatalf("result: %+v", res)
	}
	if res.Queue.Posted != 2001 || res.Queue.Delivered != 2001 || !res.Queue.Closed {
		t.Fatalf("queue stats: %+v", res.Queue)
	}
}

func TestRunDrillSync(t *testing.T) {
	res, err := runDrill(context.Background(), drillOptions{producers: 3, events: 100, capacity: 2, sync: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("drill: %v", err)
	}
	if res.Handled != 300 || res.OutOfSeq != 0 || res.Queue.WaitingSenders != 0 {
		t.Fatalf("result: %+v", res)
	}
}

func TestRunDrillRejectsBadOptions(t *testing.T) {
	if _, err := runDrill(context.Background(), drillOptions{producers: 0, events: 1, capacity: 1}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDrillCmdPrintsJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"drill", "--producers", "2", "--events", "50", "--capacity", "4", "--log-level", "error"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var res struct {
		Handled int64 `json:"handled"`
	}
	if err := json.Unmarshal(out.Bytes(), &res); err != nil || res.Handled != 100 {
		t.Fatalf("output %q: %v", out.String(), err)
	}
}
