// Package navconfig loads the tunable parameters scattered through the
// navigation core's specification (assumed speed, fuzzy-match thresholds,
// announce distances, cache sizes, ...) via viper, the way
// shivamshaw23-Hintro's config package loads its service configuration.
package navconfig

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tuning constant named in the core's design notes.
type Config struct {
	// AssumedSpeedMPS is the time-cost heuristic speed (HU_SPEED in the
	// original source), ~28 m/s.
	AssumedSpeedMPS float64

	// UTurnPenaltySeconds is added to the time cost of an edge that
	// reverses onto the edge just arrived from.
	UTurnPenaltySeconds float64

	// TileCacheCapacity bounds the number of StreetGraphTile entries kept
	// resident by the street graph index (C2).
	TileCacheCapacity int

	// FuzzyAcceptThreshold is the minimum composite fuzzy score (§4.5) for
	// a map-match candidate to be accepted.
	FuzzyAcceptThreshold float64
	// FuzzyMaxDistanceMeters is the distance at which fuzzy_distance decays
	// to zero.
	FuzzyMaxDistanceMeters float64
	// FuzzyDirectionToleranceDeg is the angular window fuzzy_direction
	// decays over.
	FuzzyDirectionToleranceDeg float64
	// SpeedFloorKnots is the GPS speed accuracy floor below which heading
	// is considered unreliable.
	SpeedFloorKnots float64
	// FocusRectMeters sizes the spatial focus rectangle used to re-search
	// for a map-match candidate.
	FocusRectMeters float64

	// AnnounceDistancesMeters is the static announcement threshold table,
	// largest first.
	AnnounceDistancesMeters []float64
	// AnnounceCompensateMeters (COMPENSATE) is the early-fire slack.
	AnnounceCompensateMeters float64
	// ArrivalRadiusMeters triggers on_arrival once within this distance of
	// the destination on the final segment.
	ArrivalRadiusMeters float64

	// RecalcBackoff is a fixed retry interval for C7 after a failed
	// recalculation (a fixed timer, not exponential backoff, after the
	// original source's navigate_main.c recalc timer). pkg/trip does not
	// read it: a failed recalculation is not retried on a timer.
	RecalcBackoff time.Duration

	// TurnThresholdDeg is the default junction turn/continue threshold (15°).
	TurnThresholdDeg float64
	// SameStreetTurnThresholdDeg raises the threshold on a junction between
	// segments of the same street, to avoid spurious turns on long curves
	// (45°).
	SameStreetTurnThresholdDeg float64
	// TurnKeepSplitDeg is the |delta| above which a turn is classified
	// TurnLeft/TurnRight rather than KeepLeft/KeepRight (45°).
	TurnKeepSplitDeg float64
}

// Default returns navcore's built-in tuning constants.
func Default() Config {
	return Config{
		AssumedSpeedMPS:            28.0,
		UTurnPenaltySeconds:        120.0,
		TileCacheCapacity:          75,
		FuzzyAcceptThreshold:       0.3,
		FuzzyMaxDistanceMeters:     30.0,
		FuzzyDirectionToleranceDeg: 45.0,
		SpeedFloorKnots:            3.0,
		FocusRectMeters:            60.0,
		AnnounceDistancesMeters:    []float64{800, 200, 50},
		AnnounceCompensateMeters:   20.0,
		ArrivalRadiusMeters:        20.0,
		RecalcBackoff:              5 * time.Second,
		TurnThresholdDeg:           15.0,
		SameStreetTurnThresholdDeg: 45.0,
		TurnKeepSplitDeg:           45.0,
	}
}

// Load reads configuration from an optional YAML file and
// NAVCORE_-prefixed environment variables, overlaying Default() where
// values are unset, mirroring Hintro's viper-based config loader.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("NAVCORE")
	v.AutomaticEnv()

	bind := func(key string, def any) {
		v.SetDefault(key, def)
	}
	bind("assumed_speed_mps", cfg.AssumedSpeedMPS)
	bind("uturn_penalty_seconds", cfg.UTurnPenaltySeconds)
	bind("tile_cache_capacity", cfg.TileCacheCapacity)
	bind("fuzzy_accept_threshold", cfg.FuzzyAcceptThreshold)
	bind("fuzzy_max_distance_meters", cfg.FuzzyMaxDistanceMeters)
	bind("fuzzy_direction_tolerance_deg", cfg.FuzzyDirectionToleranceDeg)
	bind("speed_floor_knots", cfg.SpeedFloorKnots)
	bind("focus_rect_meters", cfg.FocusRectMeters)
	bind("announce_compensate_meters", cfg.AnnounceCompensateMeters)
	bind("arrival_radius_meters", cfg.ArrivalRadiusMeters)
	bind("recalc_backoff_seconds", cfg.RecalcBackoff.Seconds())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.AssumedSpeedMPS = v.GetFloat64("assumed_speed_mps")
	cfg.UTurnPenaltySeconds = v.GetFloat64("uturn_penalty_seconds")
	cfg.TileCacheCapacity = v.GetInt("tile_cache_capacity")
	cfg.FuzzyAcceptThreshold = v.GetFloat64("fuzzy_accept_threshold")
	cfg.FuzzyMaxDistanceMeters = v.GetFloat64("fuzzy_max_distance_meters")
	cfg.FuzzyDirectionToleranceDeg = v.GetFloat64("fuzzy_direction_tolerance_deg")
	cfg.SpeedFloorKnots = v.GetFloat64("speed_floor_knots")
	cfg.FocusRectMeters = v.GetFloat64("focus_rect_meters")
	cfg.AnnounceCompensateMeters = v.GetFloat64("announce_compensate_meters")
	cfg.ArrivalRadiusMeters = v.GetFloat64("arrival_radius_meters")
	cfg.RecalcBackoff = time.Duration(v.GetFloat64("recalc_backoff_seconds") * float64(time.Second))

	if len(cfg.AnnounceDistancesMeters) == 0 {
		cfg.AnnounceDistancesMeters = Default().AnnounceDistancesMeters
	}

	return cfg, nil
}
