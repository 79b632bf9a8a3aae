// Package catalog provides target construction and name resolution. A target
// is resolved once, at construction time, and never re-resolved; after that
// it is an immutable value object.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearskies/obsplan/pkg/ephemeris"
)

// Target is a fixed celestial direction with a display name.
type Target struct {
	Name  string
	Coord ephemeris.Equatorial
}

// NewTarget builds a target from explicit coordinates in degrees.
func NewTarget(name string, raDeg, decDeg float64) Target {
	return Target{Name: name, Coord: ephemeris.Equatorial{RADeg: raDeg, DecDeg: decDeg}}
}

// NameNotFoundError reports that a target name could not be resolved.
type NameNotFoundError struct {
	Name string
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("target name not found: %q", e.Name)
}

// Resolver maps a catalog name to equatorial coordinates. Implementations
// may be backed by a local database or a remote lookup service.
type Resolver interface {
	Resolve(ctx context.Context, name string) (ephemeris.Equatorial, error)
}

// ResolveTarget looks the name up once and returns the finished target.
func ResolveTarget(ctx context.Context, r Resolver, name string) (Target, error) {
	coord, err := r.Resolve(ctx, name)
	if err != nil {
		return Target{}, err
	}
	return Target{Name: name, Coord: coord}, nil
}

// StaticResolver resolves from an in-memory table. Lookup is
// case-insensitive. The zero value resolves nothing.
type StaticResolver struct {
	entries map[string]ephemeris.Equatorial
}

// NewStaticResolver copies the given entries into a resolver.
func NewStaticResolver(entries map[string]ephemeris.Equatorial) *StaticResolver {
	m := make(map[string]ephemeris.Equatorial, len(entries))
	for k, v := range entries {
		m[strings.ToLower(k)] = v
	}
	return &StaticResolver{entries: m}
}

// BrightStars returns a resolver preloaded with a handful of common
// navigation and calibration stars (J2000 coordinates).
func BrightStars() *StaticResolver {
	return NewStaticResolver(map[string]ephemeris.Equatorial{
		"sirius":     {RADeg: 101.2872, DecDeg: -16.7161},
		"canopus":    {RADeg: 95.9880, DecDeg: -52.6957},
		"arcturus":   {RADeg: 213.9154, DecDeg: 19.1824},
		"vega":       {RADeg: 279.2347, DecDeg: 38.7837},
		"capella":    {RADeg: 79.1723, DecDeg: 45.9980},
		"rigel":      {RADeg: 78.6345, DecDeg: -8.2016},
		"procyon":    {RADeg: 114.8255, DecDeg: 5.2250},
		"betelgeuse": {RADeg: 88.7929, DecDeg: 7.4071},
		"altair":     {RADeg: 297.6958, DecDeg: 8.8683},
		"aldebaran":  {RADeg: 68.9802, DecDeg: 16.5093},
		"antares":    {RADeg: 247.3519, DecDeg: -26.4320},
		"spica":      {RADeg: 201.2983, DecDeg: -11.1614},
		"polaris":    {RADeg: 37.9546, DecDeg: 89.2641},
		"deneb":      {RADeg: 310.3580, DecDeg: 45.2803},
	})
}

func (s *StaticResolver) Resolve(_ context.Context, name string) (ephemeris.Equatorial, error) {
	coord, ok := s.entries[strings.ToLower(name)]
	if !ok {
		return ephemeris.Equatorial{}, &NameNotFoundError{Name: name}
	}
	return coord, nil
}
