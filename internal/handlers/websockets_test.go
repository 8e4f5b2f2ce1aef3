package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"weighstation/internal/models"
	"weighstation/internal/station"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&mockStation{}, &mockHistory{}, nil, "")

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"duration_string", "/ws?interval=200ms", 200 * time.Millisecond},
		{"plain_millis", "/ws?interval=150", 150 * time.Millisecond},
		{"too_large_falls_back", "/ws?interval=20s", 1 * time.Second},
		{"negative_falls_back", "/ws?interval=-5s", 1 * time.Second},
		{"garbage_falls_back", "/ws?interval=bogus", 1 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestWebSocket_StateStream_InitialAndPeriodic(t *testing.T) {
	st := &mockStation{snapshot: station.Snapshot{
		Mode:    models.ModeAuto,
		Process: models.ProcessWeighing,
		Weight:  models.WeightData{CurrentWeight: 15230, Unit: "kg", Stability: models.StabilityStable},
	}}

	r := gin.New()
	h := NewHandler(st, &mockHistory{}, nil, "")
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval", "20ms")
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	type envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "state" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}

	var snap station.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Process != models.ProcessWeighing || snap.Weight.CurrentWeight != 15230 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "state" {
		t.Fatalf("expected type=state, got %+v", env)
	}
}
