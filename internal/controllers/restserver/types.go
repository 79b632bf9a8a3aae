package restserver

import (
	"fmt"
	"time"

	"github.com/clearskies/obsplan/pkg/constraints"
)

// ObservabilityRequest asks for a constraint grid over a time window.
type ObservabilityRequest struct {
	Site        string           `json:"site,omitempty"`
	Target      TargetSpec       `json:"target"`
	Constraints []ConstraintSpec `json:"constraints"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	StepSeconds int              `json:"step_seconds"`
	Reduce      bool             `json:"reduce,omitempty"` // AND-reduce across constraints
}

// TargetSpec names a target either by catalog name or by explicit
// coordinates in degrees.
type TargetSpec struct {
	Name   string   `json:"name,omitempty"`
	RADeg  *float64 `json:"ra_deg,omitempty"`
	DecDeg *float64 `json:"dec_deg,omitempty"`
}

// ConstraintSpec selects one constraint kind with its bounds.
type ConstraintSpec struct {
	Kind     string   `json:"kind"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Twilight string   `json:"twilight,omitempty"` // civil, nautical, astronomical
}

// Build maps the spec onto a concrete constraint.
func (s ConstraintSpec) Build() (constraints.Constraint, error) {
	switch s.Kind {
	case "altitude":
		min, max := 0.0, 90.0
		if s.Min != nil {
			min = *s.Min
		}
		if s.Max != nil {
			max = *s.Max
		}
		return constraints.NewAltitude(min, max), nil
	case "at-night":
		switch s.Twilight {
		case "", "astronomical":
			return constraints.AtNightAstronomical(), nil
		case "nautical":
			return constraints.AtNightNautical(), nil
		case "civil":
			return constraints.AtNightCivil(), nil
		default:
			return nil, fmt.Errorf("unknown twilight definition %q", s.Twilight)
		}
	case "moon-separation":
		min, max := 0.0, 180.0
		if s.Min != nil {
			min = *s.Min
		}
		if s.Max != nil {
			max = *s.Max
		}
		return constraints.MoonSeparation{MinDeg: min, MaxDeg: max}, nil
	case "moon-illumination":
		min, max := 0.0, 1.0
		if s.Min != nil {
			min = *s.Min
		}
		if s.Max != nil {
			max = *s.Max
		}
		return constraints.MoonIllumination{Min: min, Max: max}, nil
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", s.Kind)
	}
}

// GridResponse is the flat data contract consumed by plotting and reporting
// layers: axis labels plus the cell matrix, rows in constraint (or target)
// order and columns in time order.
type GridResponse struct {
	RequestID       string      `json:"request_id"`
	Site            string      `json:"site"`
	Target          string      `json:"target"`
	ConstraintNames []string    `json:"constraint_names,omitempty"`
	TargetNames     []string    `json:"target_names,omitempty"`
	Times           []time.Time `json:"times"`
	Rows            [][]CellDTO `json:"rows"`
	Observable      bool        `json:"observable"`
}

// CellDTO mirrors observability.Cell for serialization.
type CellDTO struct {
	Score float64 `json:"score"`
	Known bool    `json:"known"`
}

// EventsResponse lists predicted mid-event times for a periodic system.
type EventsResponse struct {
	RequestID string      `json:"request_id"`
	System    string      `json:"system"`
	Which     string      `json:"which"`
	Events    []time.Time `json:"events"`
}

// EphemerisResponse is a sun/moon snapshot for one site and time.
type EphemerisResponse struct {
	Site             string    `json:"site"`
	Time             time.Time `json:"time"`
	SunAltitudeDeg   float64   `json:"sun_altitude_deg"`
	SunAzimuthDeg    float64   `json:"sun_azimuth_deg"`
	MoonAltitudeDeg  float64   `json:"moon_altitude_deg"`
	MoonAzimuthDeg   float64   `json:"moon_azimuth_deg"`
	MoonIllumination float64   `json:"moon_illumination"`
}
