package router

import (
	"github.com/azybler/navcore/pkg/mapmodel"
)

// CostFunc is the pluggable edge-cost contract of spec §4.3. Implementations
// receive the previous edge and node so that U-turn or fast-to-slow-road
// penalties can be applied uniformly.
type CostFunc interface {
	// EdgeCost returns the cost of entering edge, having arrived at
	// prevNode via prevEdge (prevEdge.Line == mapmodel.NoLine at the very
	// start of the search, where there is no previous edge).
	EdgeCost(m mapmodel.Map, prevEdge mapmodel.DirectedEdge, prevNode mapmodel.PointID, edge mapmodel.DirectedEdge) (float64, error)
	// Heuristic returns an admissible lower bound on the remaining cost
	// from pos to goal.
	Heuristic(pos, goal mapmodel.Position) float64
}

// TimeCost costs edges by cross-time in seconds, with a heuristic of
// straight-line distance over AssumedSpeedMPS (spec: "ASSUMED_SPEED ≈ 28
// m/s", HU_SPEED in the original source).
type TimeCost struct {
	Math            mapmodel.Math
	AssumedSpeedMPS float64
	// UTurnPenaltySeconds is added when edge reverses directly back onto
	// prevEdge (same line, opposite orientation).
	UTurnPenaltySeconds float64
}

func (c TimeCost) EdgeCost(m mapmodel.Map, prevEdge mapmodel.DirectedEdge, prevNode mapmodel.PointID, edge mapmodel.DirectedEdge) (float64, error) {
	t, err := m.LineCrossTime(edge.Line, edge.Reversed)
	if err != nil {
		return 0, err
	}
	cost := float64(t)
	if prevEdge.Line != mapmodel.NoLine && prevEdge.Line == edge.Line && prevEdge.Reversed != edge.Reversed {
		cost += c.UTurnPenaltySeconds
	}
	return cost, nil
}

func (c TimeCost) Heuristic(pos, goal mapmodel.Position) float64 {
	speed := c.AssumedSpeedMPS
	if speed <= 0 {
		speed = 28.0
	}
	return c.Math.Distance(pos, goal) / speed
}

// DistanceCost costs edges by physical length in meters, with a Euclidean
// (great-circle, via Math.Distance) heuristic.
type DistanceCost struct {
	Math mapmodel.Math
	// UTurnPenaltyMeters is added when edge reverses directly back onto
	// prevEdge.
	UTurnPenaltyMeters float64
}

func (c DistanceCost) EdgeCost(m mapmodel.Map, prevEdge mapmodel.DirectedEdge, prevNode mapmodel.PointID, edge mapmodel.DirectedEdge) (float64, error) {
	length, err := m.LineLength(edge.Line)
	if err != nil {
		return 0, err
	}
	if prevEdge.Line != mapmodel.NoLine && prevEdge.Line == edge.Line && prevEdge.Reversed != edge.Reversed {
		length += c.UTurnPenaltyMeters
	}
	return length, nil
}

func (c DistanceCost) Heuristic(pos, goal mapmodel.Position) float64 {
	return c.Math.Distance(pos, goal)
}
