package constraints

import (
	"context"
	"time"

	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/ephemeris"
)

// Observer ties an observing site to an ephemeris provider. It holds no
// mutable state and no clock: every query takes an explicit time, so an
// Observer is safe for concurrent use across evaluation workers.
type Observer struct {
	Name     string
	Location ephemeris.Location
	Provider ephemeris.Provider
}

// NewObserver builds an observer for the given site. The provider supplies
// all apparent geometry; pass ephemeris.NewMeeus() for local computation.
func NewObserver(name string, loc ephemeris.Location, provider ephemeris.Provider) *Observer {
	return &Observer{Name: name, Location: loc, Provider: provider}
}

// TargetAltAz returns the apparent direction of the target at time t.
func (o *Observer) TargetAltAz(ctx context.Context, target catalog.Target, t time.Time) (ephemeris.AltAz, error) {
	return o.Provider.TargetAltAz(ctx, o.Location, t, target.Coord)
}

// SunAltAz returns the apparent direction of the sun at time t.
func (o *Observer) SunAltAz(ctx context.Context, t time.Time) (ephemeris.AltAz, error) {
	return o.Provider.SunAltAz(ctx, o.Location, t)
}

// MoonAltAz returns the apparent direction of the moon at time t.
func (o *Observer) MoonAltAz(ctx context.Context, t time.Time) (ephemeris.AltAz, error) {
	return o.Provider.MoonAltAz(ctx, o.Location, t)
}

// MoonIllumination returns the illuminated fraction of the moon at time t.
func (o *Observer) MoonIllumination(ctx context.Context, t time.Time) (float64, error) {
	return o.Provider.MoonIllumination(ctx, t)
}
