package navserver

import (
	"errors"
	"math"
	"mime"
	"net/http"
	"sync"

	goccyjson "github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"

	"github.com/azybler/navcore/pkg/annotate"
	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navcore"
)

// eventSink collects the events a core emits via Callbacks, so a single
// synchronous OnGPSFix call's effects can be drained back into an HTTP
// response instead of only reaching a host event loop.
type eventSink struct {
	mu     sync.Mutex
	events []EventJSON
}

func (s *eventSink) push(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, EventJSON{Kind: kind})
}

func (s *eventSink) drain() []EventJSON {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.events
	s.events = nil
	return ev
}

// NewSinkCallbacks builds Callbacks that record every emitted event into a
// fresh eventSink, returned alongside so NewHandlers can drain it per
// request.
func NewSinkCallbacks() (navcore.Callbacks, *eventSink) {
	sink := &eventSink{}
	cb := navcore.Callbacks{
		OnInstruction: func(maneuver annotate.Instruction, street mapmodel.StreetID, distanceHint float64) {
			sink.push("instruction:" + maneuver.String())
		},
		OnArrival:      func() { sink.push("arrival") },
		OnRouteChanged: func() { sink.push("route_changed") },
		OnRouteLost:    func() { sink.push("route_lost") },
		OnApproaching: func(node mapmodel.PointID, street mapmodel.StreetID) {
			sink.push("approaching")
		},
	}
	return cb, sink
}

// Handlers holds the HTTP handlers, their navigation core, and the map the
// core routes over (needed here only to resolve route geometry for the
// GeoJSON response).
type Handlers struct {
	core *navcore.Core
	m    mapmodel.Map
	sink *eventSink
}

// NewHandlers wires a Core (built with Callbacks from NewSinkCallbacks) and
// the map it routes over into request handlers.
func NewHandlers(core *navcore.Core, m mapmodel.Map, sink *eventSink) *Handlers {
	return &Handlers{core: core, m: m, sink: sink}
}

// HandleRoute handles POST /v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req RouteRequest
	if err := goccyjson.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates_start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates_end")
		return
	}

	if err := h.core.SetDeparture(toPosition(req.Start)); err != nil {
		writeErrorForCore(w, err)
		return
	}
	if err := h.core.SetDestination(toPosition(req.End)); err != nil {
		writeErrorForCore(w, err)
		return
	}

	res, err := h.core.CalculateRoute()
	if err != nil {
		writeErrorForCore(w, err)
		return
	}

	resp := RouteResponse{
		CostSeconds:  res.Cost,
		Instructions: make([]InstructionJSON, len(res.Segments)),
		Geometry:     h.routeGeometry(res.Segments),
	}
	for i, seg := range res.Segments {
		resp.Instructions[i] = InstructionJSON{
			Maneuver:   seg.Instruction.String(),
			StreetID:   uint32(seg.Street),
			GroupID:    seg.GroupID,
			DistanceM:  seg.Distance,
			CrossTimeS: seg.CrossTime,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	goccyjson.NewEncoder(w).Encode(resp)
}

// routeGeometry traces a route's annotated segments, including shape
// points, into a GeoJSON LineString: from-point, the line's shape in
// tail->head order, to-point, for every segment in turn.
func (h *Handlers) routeGeometry(segs []annotate.Segment) *geojson.Geometry {
	var coords [][]float64
	appendPos := func(p mapmodel.Position) {
		coords = append(coords, []float64{float64(p.LonE6) / 1e6, float64(p.LatE6) / 1e6})
	}
	for _, seg := range segs {
		appendPos(seg.FromPos)
		shape, err := h.m.LineShape(seg.Edge.Line)
		if err == nil {
			if seg.Edge.Reversed {
				for i := len(shape) - 1; i >= 0; i-- {
					appendPos(shape[i])
				}
			} else {
				for _, p := range shape {
					appendPos(p)
				}
			}
		}
		appendPos(seg.ToPos)
	}
	if len(coords) == 0 {
		return nil
	}
	return geojson.NewLineStringGeometry(coords)
}

// HandleGPS handles POST /v1/gps.
func (h *Handlers) HandleGPS(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req GPSRequest
	if err := goccyjson.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	pos := navcore.GpsPosition{
		LonE6:      int32(req.Lon * 1e6),
		LatE6:      int32(req.Lat * 1e6),
		SpeedKnots: req.SpeedKnots,
		HeadingDeg: req.HeadingDeg,
	}
	if err := h.core.OnGPSFix(req.Time, 0, pos); err != nil {
		writeErrorForCore(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	goccyjson.NewEncoder(w).Encode(GPSResponse{Events: h.sink.drain()})
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	goccyjson.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

func toPosition(ll LatLngJSON) mapmodel.Position {
	return mapmodel.Position{LonE6: int32(ll.Lng * 1e6), LatE6: int32(ll.Lat * 1e6)}
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	goccyjson.NewEncoder(w).Encode(ErrorResponse{Error: code})
}

func writeErrorForCore(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, navcore.ErrNoNearbyRoadSource), errors.Is(err, navcore.ErrNoNearbyRoadDestination):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, navcore.ErrNoPath):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, navcore.ErrRouterCancelled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
