package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charlie0129/battmon/pkg/batclass"
	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/events"
	"github.com/charlie0129/battmon/pkg/monitor"
	"github.com/charlie0129/battmon/pkg/platform"
	"github.com/charlie0129/battmon/pkg/version"
)

func newTestServer(t *testing.T) (*Server, *monitor.Monitor) {
	t.Helper()

	m := platform.NewMock(`\\?\battery#0`)
	m.SetReply(batclass.IOCTLQueryTag, platform.Reply{Out: batclass.EncodeTag(1)})
	m.SetReply(batclass.IOCTLQueryInformation, platform.Reply{Out: batclass.Encode(batclass.Information{
		Technology: 1,
		Chemistry:  [4]byte{'L', 'I', 'O', 'N'},
		CycleCount: 42,
	})})
	m.SetReply(batclass.IOCTLQueryStatus, platform.Reply{Out: batclass.Encode(batclass.Status{Voltage: 12450})})
	m.Power = platform.PowerStatus{
		ACLineStatus:        batclass.ACOnline,
		BatteryFlag:         batclass.FlagCharging,
		BatteryLifePercent:  90,
		BatteryLifeTime:     batclass.UnknownTime,
		BatteryFullLifeTime: batclass.UnknownTime,
	}

	h, id, err := battery.Acquire(m)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	hub := events.NewEventHub()
	mon := monitor.New(h, id, monitor.Options{Interval: time.Second, HistorySize: 10, Hub: hub})
	conf := config.NewFileFromConfig(nil, filepath.Join(t.TempDir(), "battmon.json"))

	return NewServer(mon, hub, conf), mon
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestGetIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/identity")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /identity = %d, want %d", w.Code, http.StatusOK)
	}
	var id battery.Identity
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil {
		t.Fatal(err)
	}
	if id.Chemistry != "Li-ion" || id.CycleCount != 42 {
		t.Errorf("GET /identity = %+v", id)
	}
}

func TestGetStatus(t *testing.T) {
	s, mon := newTestServer(t)

	if w := get(t, s, "/status"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /status before sampling = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	if _, err := mon.Poll(); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	w := get(t, s, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status == nil || resp.Status.Percentage != 90 || !resp.Status.ACConnected || resp.Status.Voltage != 12.45 {
		t.Errorf("GET /status = %+v", resp.Status)
	}
	if resp.Ts == 0 {
		t.Errorf("GET /status ts = 0")
	}
}

func TestGetHistory(t *testing.T) {
	s, mon := newTestServer(t)
	for i := 0; i < 3; i++ {
		if _, err := mon.Poll(); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
	}

	tests := []struct {
		name string
		path string
		code int
		want int
	}{
		{"all", "/history", http.StatusOK, 3},
		{"last minute", "/history?last=1m", http.StatusOK, 3},
		{"malformed", "/history?last=soon", http.StatusBadRequest, 0},
		{"negative", "/history?last=-1s", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.path)
			if w.Code != tt.code {
				t.Fatalf("GET %s = %d, want %d", tt.path, w.Code, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var records []monitor.Record
			if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
				t.Fatal(err)
			}
			if len(records) != tt.want {
				t.Errorf("GET %s returned %d records, want %d", tt.path, len(records), tt.want)
			}
		})
	}
}

func TestGetVersionAndConfig(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/version")
	var v string
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil || v != version.Version {
		t.Errorf("GET /version = %q, %v, want %q", v, err, version.Version)
	}

	w = get(t, s, "/config")
	var raw config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw.PollInterval == nil || *raw.PollInterval != 1 {
		t.Errorf("GET /config pollInterval = %v, want 1", raw.PollInterval)
	}
}

func TestStreamEvents(t *testing.T) {
	s, mon := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if s.hub.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", s.hub.Subscribers())
	}

	if _, err := mon.Poll(); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	var name, data string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			name = v
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = v
			break
		}
	}
	if name != events.StatusSampled {
		t.Errorf("event name = %q, want %q", name, events.StatusSampled)
	}
	ev, err := events.DecodeAs[events.StatusEvent](events.Event{Name: name, Data: json.RawMessage(data)})
	if err != nil {
		t.Fatalf("DecodeAs() error = %v", err)
	}
	if ev.Status == nil || ev.Status.Percentage != 90 {
		t.Errorf("event status = %+v", ev.Status)
	}
}

func TestReloadConfig(t *testing.T) {
	s, mon := newTestServer(t)
	p := filepath.Join(t.TempDir(), "battmon.json")
	if err := os.WriteFile(p, []byte(`{"pollInterval": 7, "historySize": 2}`), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := mon.Poll(); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
	}

	s.conf = mustFile(t, p)
	if err := s.reloadConfig(); err != nil {
		t.Fatalf("reloadConfig() error = %v", err)
	}
	if mon.Interval() != 7*time.Second {
		t.Errorf("Interval() = %v, want 7s", mon.Interval())
	}
	if n := len(mon.Recorder().Records()); n != 2 {
		t.Errorf("len(Records()) = %d, want 2", n)
	}
}

func mustFile(t *testing.T, p string) *config.File {
	t.Helper()
	f, err := config.NewFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
