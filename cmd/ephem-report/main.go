package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clearskies/obsplan/pkg/ephemeris"
)

func main() {
	var (
		timeStr   string
		latitude  float64
		longitude float64
		elevation float64
	)
	flag.StringVar(&timeStr, "time", "", "UTC time to report for (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	flag.Float64Var(&latitude, "lat", 0, "Site latitude in degrees (north positive)")
	flag.Float64Var(&longitude, "lon", 0, "Site longitude in degrees (east positive)")
	flag.Float64Var(&elevation, "elevation", 0, "Site elevation in meters")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	loc := ephemeris.Location{
		LatitudeDeg:  latitude,
		LongitudeDeg: longitude,
		ElevationM:   elevation,
	}

	ctx := context.Background()
	provider := ephemeris.NewMeeus()

	sun, err := provider.SunAltAz(ctx, loc, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing sun position: %v\n", err)
		os.Exit(1)
	}
	moon, err := provider.MoonAltAz(ctx, loc, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing moon position: %v\n", err)
		os.Exit(1)
	}
	illum, err := provider.MoonIllumination(ctx, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing moon illumination: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ephemeris for %s at %.4f°, %.4f°\n", t.Format(time.RFC3339), latitude, longitude)
	fmt.Printf("  Sun altitude:       %7.2f°\n", sun.AltitudeDeg)
	fmt.Printf("  Sun azimuth:        %7.2f°\n", sun.AzimuthDeg)
	fmt.Printf("  Moon altitude:      %7.2f°\n", moon.AltitudeDeg)
	fmt.Printf("  Moon azimuth:       %7.2f°\n", moon.AzimuthDeg)
	fmt.Printf("  Moon illumination:  %6.1f%%\n", illum*100)
}
