package e2e

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"eventloopd/internal/config"
	"eventloopd/internal/hub"
	"eventloopd/pkg/types"
)

func TestE2E_HealthReadyAndQueues(t *testing.T) {
	srv, _ := newServer(t, hub.HubConfig{PoseRateHz: -1})
	for _, p := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + p)
		if err != nil {
			t.Fatalf("get %s: %v", p, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", p, resp.StatusCode)
		}
	}
	var qs types.QueuesResponse
	getJSON(t, srv, "/queues", &qs)
	if len(qs.Queues) != 2 || qs.Queues[0].Name != config.DefaultUIQueue {
		t.Fatalf("queues: %+v", qs)
	}
}

func TestE2E_PingsAndSensorThroughHTTP(t *testing.T) {
	srv, h := newServer(t, hub.HubConfig{PoseRateHz: -1})
	for i := 0; i < 3; i++ {
		if resp := postEvent(t, srv, "ui", `{"name":"ping","sync":true}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("sync ping status=%d", resp.StatusCode)
		}
	}
	if resp := postEvent(t, srv, "ui", `{"name":"set_sensor","data":{"mounted":true,"temperature":35.5,"battery":77}}`); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("set_sensor status=%d", resp.StatusCode)
	}
	eventually(t, "status", func() bool {
		s := h.Status()
		return s.Pings == 3 && s.Sensor.Battery == 77
	})
	var st types.StatusResponse
	getJSON(t, srv, "/status", &st)
	if st.State != "ready" || st.Pings != 3 || !st.Sensor.Mounted || st.Sensor.Temperature != 35.5 {
		t.Fatalf("status: %+v", st)
	}
}

func TestE2E_LoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "level.pak")
	if err := os.WriteFile(asset, make([]byte, 512), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv, h := newServer(t, hub.HubConfig{PoseRateHz: -1})
	body := `{"name":"load","data":{"path":"` + filepath.ToSlash(asset) + `"}}`
	if resp := postEvent(t, srv, "ui", body); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("load status=%d", resp.StatusCode)
	}
	eventually(t, "load result", func() bool { return h.LastLoad() != nil })
	var st types.StatusResponse
	getJSON(t, srv, "/status", &st)
	if st.LastLoad == nil || st.LastLoad.Bytes != 512 || st.LastLoad.Error != "" {
		t.Fatalf("last_load: %+v", st.LastLoad)
	}
}

func TestE2E_PoseAdvances(t *testing.T) {
	srv, _ := newServer(t, hub.HubConfig{PoseRateHz: 200})
	var first, later types.PoseResponse
	eventually(t, "first pose", func() bool {
		getJSON(t, srv, "/pose", &first)
		return first.Generation > 0
	})
	eventually(t, "pose advance", func() bool {
		getJSON(t, srv, "/pose", &later)
		return later.Generation > first.Generation
	})
	n := later.Pose.X*later.Pose.X + later.Pose.Y*later.Pose.Y + later.Pose.Z*later.Pose.Z + later.Pose.W*later.Pose.W
	if n < 0.999 || n > 1.001 {
		t.Fatalf("pose not unit length: %+v", later.Pose)
	}
}

func TestE2E_BackpressureAndClear(t *testing.T) {
	// The "busy" queue has a dispatcher; hold it inside a handler so the
	// queue fills up behind it.
	srv, h := newServer(t, hub.HubConfig{
		PoseRateHz: -1,
		Queues:     []config.QueueConfig{{Name: "busy", Capacity: 2}},
	})
	q, err := h.Queue("busy")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(func() { once.Do(func() { close(release) }) })
	entered := make(chan struct{})
	if err := q.PostFunc(func() { close(entered); <-release }); err != nil {
		t.Fatalf("post func: %v", err)
	}
	<-entered

	for i := 0; i < 2; i++ {
		if resp := postEvent(t, srv, "busy", `{"name":"tick"}`); resp.StatusCode != http.StatusAccepted {
			t.Fatalf("fill %d status=%d", i, resp.StatusCode)
		}
	}
	resp := postEvent(t, srv, "busy", `{"name":"tick"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `"code":429`) {
		t.Fatalf("body=%s", b)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/queues/busy", nil)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status=%d", dresp.StatusCode)
	}
	if q.Len() != 0 {
		t.Fatalf("len after clear = %d", q.Len())
	}
	once.Do(func() { close(release) })
}

func TestE2E_SyncSendTimesOut(t *testing.T) {
	srv, h := newServer(t, hub.HubConfig{
		PoseRateHz:  -1,
		SendTimeout: 50 * time.Millisecond,
		Queues:      []config.QueueConfig{{Name: "stuck", Capacity: 4}},
	})
	q, _ := h.Queue("stuck")
	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	if err := q.PostFunc(func() { close(entered); <-release }); err != nil {
		t.Fatalf("post func: %v", err)
	}
	<-entered
	if resp := postEvent(t, srv, "stuck", `{"name":"tick","sync":true}`); resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", resp.StatusCode)
	}
}

func TestE2E_UnknownQueueAndBadBody(t *testing.T) {
	srv, _ := newServer(t, hub.HubConfig{PoseRateHz: -1})
	if resp := postEvent(t, srv, "nope", `{"name":"ping"}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp := postEvent(t, srv, "ui", `{"name":`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestE2E_StopRejectsPosts(t *testing.T) {
	srv, h := newServer(t, hub.HubConfig{PoseRateHz: -1})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Stop(ctx); err != nil && !errors.Is(err, hub.ErrNotStarted) {
		t.Fatalf("stop: %v", err)
	}
	if resp := postEvent(t, srv, "ui", `{"name":"ping"}`); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after stop, got %d", resp.StatusCode)
	}
	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz after stop = %d", resp.StatusCode)
	}
}

func TestE2E_ReservedNamesCannotStopConsumer(t *testing.T) {
	srv, h := newServer(t, hub.HubConfig{PoseRateHz: -1})
	for _, name := range []string{"quit", "eventloop.func"} {
		if resp := postEvent(t, srv, "ui", `{"name":"`+name+`"}`); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s status=%d, want 400", name, resp.StatusCode)
		}
		if resp := postEvent(t, srv, "ui", `{"name":"`+name+`","sync":true}`); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("sync %s status=%d, want 400", name, resp.StatusCode)
		}
	}
	if resp := postEvent(t, srv, "ui", `{"name":"ping","sync":true}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("sync ping status=%d", resp.StatusCode)
	}
	eventually(t, "ping handled", func() bool { return h.Pings() == 1 })
	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}

func TestE2E_ReadyzReportsExitedConsumer(t *testing.T) {
	srv, h := newServer(t, hub.HubConfig{PoseRateHz: -1})
	eventually(t, "ui consumer running", func() bool {
		s, _ := h.QueueStatus("ui")
		return s.Running
	})
	q, err := h.Queue("ui")
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	// Bypass the hub boundary to stop the consumer the way Stop does.
	if err := q.PostName("quit"); err != nil {
		t.Fatalf("post quit: %v", err)
	}
	eventually(t, "readyz 503", func() bool {
		resp, err := http.Get(srv.URL + "/readyz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	})
	var st types.StatusResponse
	getJSON(t, srv, "/status", &st)
	if st.State != "degraded" {
		t.Fatalf("status state = %q", st.State)
	}
}
