package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clearskies/obsplan/pkg/transit"
)

func main() {
	var (
		name          string
		epochStr      string
		refStr        string
		periodHours   float64
		durationHours float64
		count         int
		which         string
	)
	flag.StringVar(&name, "name", "", "Name of the eclipsing system")
	flag.StringVar(&epochStr, "epoch", "", "Reference mid-eclipse time (RFC3339 format, required)")
	flag.StringVar(&refStr, "ref", "", "Reference time to predict from (RFC3339 format, default now)")
	flag.Float64Var(&periodHours, "period-hours", 0, "Orbital period in hours (required)")
	flag.Float64Var(&durationHours, "duration-hours", 0, "Eclipse duration in hours")
	flag.IntVar(&count, "count", 3, "Number of events to predict")
	flag.StringVar(&which, "which", "next", "Which events: next, previous, nearest, or secondary")
	flag.Parse()

	epoch, err := time.Parse(time.RFC3339, epochStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing epoch: %v\n", err)
		os.Exit(1)
	}

	ref := time.Now().UTC()
	if refStr != "" {
		ref, err = time.Parse(time.RFC3339, refStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing ref: %v\n", err)
			os.Exit(1)
		}
	}

	sys, err := transit.NewEclipsingSystem(name, epoch,
		time.Duration(periodHours*float64(time.Hour)),
		time.Duration(durationHours*float64(time.Hour)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var events []time.Time
	switch which {
	case "next":
		events = sys.NextEventTimes(ref, count)
	case "previous":
		events = sys.PreviousEventTimes(ref, count)
	case "nearest":
		events = []time.Time{sys.NearestEventTime(ref)}
	case "secondary":
		events = sys.NextSecondaryEventTimes(ref, count)
	default:
		fmt.Fprintf(os.Stderr, "Error: -which must be next, previous, nearest, or secondary\n")
		os.Exit(1)
	}

	label := sys.Name
	if label == "" {
		label = "system"
	}
	fmt.Printf("%s events (%s) relative to %s\n", label, which, ref.Format(time.RFC3339))
	for i, ev := range events {
		fmt.Printf("  %2d. %s", i+1, ev.Format(time.RFC3339))
		if sys.Duration > 0 {
			half := sys.Duration / 2
			fmt.Printf("  (ingress %s, egress %s)",
				ev.Add(-half).Format(time.RFC3339), ev.Add(half).Format(time.RFC3339))
		}
		fmt.Println()
	}
}
