package navcore

import "errors"

// Sentinel errors the core surfaces to its host, following
// routing.ErrNoRoute / routing.ErrPointTooFar's convention of
// errors.Is-comparable sentinels rather than typed error structs.
var (
	ErrNoMapForPosition        = errors.New("navcore: no map loaded for this position")
	ErrNoNearbyRoadSource      = errors.New("navcore: no navigable road near the departure position")
	ErrNoNearbyRoadDestination = errors.New("navcore: no navigable road near the destination position")
	ErrNoPath                  = errors.New("navcore: no path between departure and destination")
	ErrRouterCancelled         = errors.New("navcore: route calculation cancelled")
	ErrRecalcFailed            = errors.New("navcore: route recalculation failed")
	ErrMapQueryFailed          = errors.New("navcore: map query failed")
	ErrNoDestination           = errors.New("navcore: no destination set")
	ErrNoDeparture             = errors.New("navcore: no departure set")
	ErrNoRoute                 = errors.New("navcore: no route calculated yet")
)
