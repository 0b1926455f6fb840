package navserver_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	goccyjson "github.com/goccy/go-json"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/navcore"
	"github.com/azybler/navcore/pkg/navserver"
	"github.com/azybler/navcore/pkg/testmap"
)

func newTestHandlers(t *testing.T) *navserver.Handlers {
	t.Helper()
	m := testmap.NewGrid(3, 3, 2000, 10, 10)
	cfg := navconfig.Default()
	cb, sink := navserver.NewSinkCallbacks()
	core := navcore.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg, cb)
	return navserver.NewHandlers(core, m, sink)
}

func doJSON(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestHandleRouteReturnsInstructionsAndGeometry(t *testing.T) {
	h := newTestHandlers(t)
	body := `{"start":{"lat":0,"lng":0.0005},"end":{"lat":0.003,"lng":0.0035}}`
	rr := doJSON(h.HandleRoute, http.MethodPost, body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp navserver.RouteResponse
	if err := goccyjson.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Instructions) == 0 {
		t.Fatal("expected at least one instruction")
	}
	if resp.Geometry == nil {
		t.Fatal("expected a non-nil geometry")
	}
}

func TestHandleRouteRejectsOutOfRangeCoordinates(t *testing.T) {
	h := newTestHandlers(t)
	body := `{"start":{"lat":999,"lng":0},"end":{"lat":0,"lng":0}}`
	rr := doJSON(h.HandleRoute, http.MethodPost, body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := httptest.NewRecorder()
	h.HandleHealth(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
