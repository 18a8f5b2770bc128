// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/mapstate"
	"github.com/tomtom215/ghostmap/internal/models"
	"github.com/tomtom215/ghostmap/internal/protocol"
	"github.com/tomtom215/ghostmap/internal/router"
	ws "github.com/tomtom215/ghostmap/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type fakeFeed struct{ running bool }

func (f fakeFeed) IsRunning() bool { return f.running }

type testServer struct {
	*httptest.Server
	store     *mapstate.Store
	hub       *ws.Hub
	staticDir string
	tilesDir  string
}

type serverOption func(*HandlerDeps, *RouterConfig)

func withOrigins(origins ...string) serverOption {
	return func(d *HandlerDeps, c *RouterConfig) {
		d.AllowedOrigins = origins
		c.Middleware.CORSAllowedOrigins = origins
	}
}

func withRateLimit(n int) serverOption {
	return func(_ *HandlerDeps, c *RouterConfig) {
		c.Middleware.RateLimitRequests = n
	}
}

func withFeed(f FeedStatus) serverOption {
	return func(d *HandlerDeps, _ *RouterConfig) { d.Feed = f }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	store := mapstate.New(mapstate.Config{AlertTTL: 5 * time.Minute})
	hub := ws.NewHub(router.New(store, router.Config{}), ws.HubConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()

	root := t.TempDir()
	staticDir := filepath.Join(root, "public")
	tilesDir := filepath.Join(root, "tiles")
	for _, dir := range []string{staticDir, tilesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	deps := HandlerDeps{State: store, Hub: hub, AllowedOrigins: []string{"*"}}
	cfg := RouterConfig{
		Middleware: DefaultChiMiddlewareConfig(),
		StaticDir:  staticDir,
		TilesDir:   tilesDir,
	}
	cfg.Middleware.RateLimitRequests = 1000
	for _, opt := range opts {
		opt(&deps, &cfg)
	}

	srv := httptest.NewServer(NewRouter(NewHandler(deps), cfg).SetupChi())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})

	return &testServer{Server: srv, store: store, hub: hub, staticDir: staticDir, tilesDir: tilesDir}
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func (s *testServer) dial(t *testing.T, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

type envelope[T any] struct {
	Status   string           `json:"status"`
	Data     T                `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return env
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Inbound {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	in, err := protocol.Decode(frame)
	if err != nil {
		t.Fatalf("decode %s: %v", frame, err)
	}
	return in
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.store.AddMarker(1, 2, "seed")
	s.store.AppendChat("Anonymous", "hello")

	resp, body := s.get(t, "/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers on API response")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	env := decodeEnvelope[models.HealthStatus](t, body)
	if env.Status != "success" {
		t.Errorf("status = %q, want success", env.Status)
	}
	got := env.Data
	if got.Status != "healthy" || got.Markers != 1 || got.Chat != 1 || got.Users != 0 || got.Clients != 0 {
		t.Errorf("health = %+v", got)
	}
	if got.Feed != "" {
		t.Errorf("feed = %q, want empty when disabled", got.Feed)
	}
}

func TestHealth_FeedStatus(t *testing.T) {
	tests := []struct {
		running bool
		want    string
	}{
		{true, "connected"},
		{false, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := newTestServer(t, withFeed(fakeFeed{running: tt.running}))
			_, body := s.get(t, "/api/v1/health")
			if got := decodeEnvelope[models.HealthStatus](t, body).Data.Feed; got != tt.want {
				t.Errorf("feed = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState(t *testing.T) {
	s := newTestServer(t)
	s.store.AddMarker(10, 20, "a")
	s.store.AddAlert("fire", 1, 1, "b")

	resp, body := s.get(t, "/api/v1/state")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", resp.Header.Get("Cache-Control"))
	}

	snap := decodeEnvelope[models.Snapshot](t, body).Data
	if len(snap.Markers) != 1 || snap.Markers[0].Lat != 10 {
		t.Errorf("markers = %+v", snap.Markers)
	}
	if len(snap.Alerts) != 1 || snap.Alerts[0].Message != "fire" {
		t.Errorf("alerts = %+v", snap.Alerts)
	}
}

func TestWebSocket_EndToEnd(t *testing.T) {
	s := newTestServer(t)

	conn, _, err := s.dial(t, "https://anywhere.example")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	for _, want := range []string{
		protocol.EventExistingUsers,
		protocol.EventExistingMarkers,
		protocol.EventExistingDangerMarkers,
		protocol.EventExistingChatMessages,
	} {
		if got := readFrame(t, conn).Type; got != want {
			t.Fatalf("snapshot frame = %q, want %q", got, want)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"placeMarker","data":{"lat":51.5,"lng":-0.12}}`)); err != nil {
		t.Fatal(err)
	}
	in := readFrame(t, conn)
	if in.Type != protocol.EventNewMarker {
		t.Fatalf("frame = %q, want newMarker", in.Type)
	}
	var marker models.Marker
	if err := json.Unmarshal(in.Data, &marker); err != nil {
		t.Fatal(err)
	}
	if marker.ID < 1 || marker.Lat != 51.5 || marker.PlacedBy == "" {
		t.Errorf("marker = %+v", marker)
	}

	_, body := s.get(t, "/api/v1/health")
	if got := decodeEnvelope[models.HealthStatus](t, body).Data; got.Clients != 1 || got.Markers != 1 {
		t.Errorf("health after placeMarker = %+v", got)
	}
}

func TestWebSocket_OriginCheck(t *testing.T) {
	s := newTestServer(t, withOrigins("https://map.example"))

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"listed origin", "https://map.example", true},
		{"missing origin", "", true},
		{"other origin", "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := s.dial(t, tt.origin)
			if tt.ok && err != nil {
				t.Fatalf("Dial() error = %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Dial() should fail for an unlisted origin")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %v, want 403", resp)
				}
			}
		})
	}
}

func TestWebSocket_PlainGetRejected(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.get(t, "/ws")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStaticAndTiles(t *testing.T) {
	s := newTestServer(t)
	if err := os.WriteFile(filepath.Join(s.staticDir, "index.html"), []byte("<h1>ghostmap</h1>"), 0o600); err != nil {
		t.Fatal(err)
	}
	tile := filepath.Join(s.tilesDir, "3", "4")
	if err := os.MkdirAll(tile, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tile, "5.png"), []byte("PNGDATA"), 0o600); err != nil {
		t.Fatal(err)
	}

	resp, body := s.get(t, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ghostmap") {
		t.Errorf("index: status %d body %q", resp.StatusCode, body)
	}

	resp, body = s.get(t, "/tiles/3/4/5.png")
	if resp.StatusCode != http.StatusOK || string(body) != "PNGDATA" {
		t.Errorf("tile: status %d body %q", resp.StatusCode, body)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "max-age") {
		t.Errorf("tile Cache-Control = %q", cc)
	}

	resp, _ = s.get(t, "/tiles/9/9/9.png")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing tile status = %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/api/v1/health")

	resp, body := s.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "ghostmap_http_requests_total") {
		t.Error("metrics output missing ghostmap_http_requests_total")
	}
}

func TestAPINotFound(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.get(t, "/api/v1/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	env := decodeEnvelope[any](t, body)
	if env.Status != "error" || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, withRateLimit(2))

	for i := 0; i < 2; i++ {
		if resp, _ := s.get(t, "/api/v1/health"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, body := s.get(t, "/api/v1/health")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if env := decodeEnvelope[any](t, body); env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("envelope = %+v", env)
	}

	// Static assets are not rate limited.
	if resp, _ := s.get(t, "/"); resp.StatusCode == http.StatusTooManyRequests {
		t.Error("static route should not be rate limited")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, withOrigins("https://map.example"))

	req, _ := http.NewRequest(http.MethodOptions, s.URL+"/api/v1/state", nil)
	req.Header.Set("Origin", "https://map.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://map.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
