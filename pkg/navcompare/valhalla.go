// Package navcompare is a development aid, not part of
// the navigation core: it sends the same origin/destination to a running
// Valhalla server and compares its route summary against navcore's own,
// to sanity-check total distance and travel time during development. The
// client shape is grounded directly on
// angelodlfrtr-valhalla-http-client-go (fasthttp transport, goccy/go-json
// encoding, gotidy/ptr for optional request fields).
package navcompare

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gotidy/ptr"
	"github.com/valyala/fasthttp"
)

// Location is one route waypoint, using pointer fields so zero values
// aren't confused with "unset" the way the Valhalla API distinguishes
// them, the same convention as the upstream client's RouteInputLocation.
type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NewLocation builds a Location from plain float64 coordinates.
func NewLocation(lat, lon float64) *Location {
	return &Location{Lat: ptr.Float64(lat), Lon: ptr.Float64(lon)}
}

// RouteInput is the request body for Valhalla's /route endpoint (trimmed
// to the fields this tool needs).
type RouteInput struct {
	Locations []*Location `json:"locations"`
	Costing   string      `json:"costing"`
}

// RouteSummary is the subset of Valhalla's trip.summary this tool reports.
type RouteSummary struct {
	LengthKm float64 `json:"length"`
	TimeSec  float64 `json:"time"`
}

// RouteOutput is the subset of Valhalla's /route response this tool reads.
type RouteOutput struct {
	Trip struct {
		Summary RouteSummary `json:"summary"`
		Legs    []struct {
			Summary RouteSummary `json:"summary"`
			Shape   string       `json:"shape"`
		} `json:"legs"`
	} `json:"trip"`
}

// ErrorResponse mirrors Valhalla's JSON error body.
type ErrorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error"`
	StatusCode   int    `json:"status_code"`
	Status       string `json:"status"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("valhalla: %s (%s)", e.ErrorMessage, e.Status)
}

// Client is a minimal fasthttp-based client for Valhalla's turn-by-turn
// service, scoped to the single /route call this tool needs.
type Client struct {
	endpoint string
	http     *fasthttp.Client
}

// NewClient creates a client against a Valhalla server's base URL (e.g.
// "http://localhost:8002").
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &fasthttp.Client{Name: "navcompare"},
	}
}

// Route calls Valhalla's /route endpoint with the costing model named in
// input.Costing (cmd/navcompare passes "auto").
func (c *Client) Route(input *RouteInput) (*RouteOutput, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("navcompare: encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	if err := req.URI().Parse(nil, []byte(c.endpoint+"/route")); err != nil {
		return nil, fmt.Errorf("navcompare: build request uri: %w", err)
	}
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.http.Do(req, resp); err != nil {
		return nil, fmt.Errorf("navcompare: calling valhalla: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		errRes := &ErrorResponse{}
		if err := json.Unmarshal(resp.Body(), errRes); err != nil {
			errRes.StatusCode = resp.StatusCode()
			errRes.ErrorMessage = string(resp.Body())
		}
		return nil, errRes
	}

	out := &RouteOutput{}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return nil, fmt.Errorf("navcompare: decoding valhalla response: %w", err)
	}
	return out, nil
}
