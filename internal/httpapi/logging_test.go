package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelInfo,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := zlog
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { zlog = prev })
	return &buf
}

func TestRequestLogger_LevelGating(t *testing.T) {
	buf := captureLogs(t)
	ok := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	fail := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/quiet?log=off", nil))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/errors-only?log=error", nil))
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}

	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/boom?log=error", nil))
	if !strings.Contains(buf.String(), `"status":500`) || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("missing error line: %q", buf.String())
	}

	buf.Reset()
	req := httptest.NewRequest("GET", "/status?log=debug", nil)
	req.Header.Set("User-Agent", "client/1")
	ok.ServeHTTP(httptest.NewRecorder(), req)
	out := buf.String()
	if !strings.Contains(out, `"path":"/status"`) || !strings.Contains(out, `"user_agent":"client/1"`) || !strings.Contains(out, `"status":204`) {
		t.Fatalf("missing debug fields: %q", out)
	}
}
