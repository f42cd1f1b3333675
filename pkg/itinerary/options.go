package itinerary

import (
	"strings"

	"golang.org/x/exp/slices"
)

const (
	DefaultSource      = "Delhi"
	DefaultDestination = "Cochin"
	DefaultStops       = "0"
	DefaultAirline     = "Jet Airways"
)

var Sources = []string{"Delhi", "Kolkata", "Mumbai", "Chennai"}

var Destinations = []string{"Cochin", "Delhi", "New Delhi", "Hyderabad", "Kolkata"}

var StopCounts = []string{"0", "1", "2", "3", "4"}

var Airlines = []string{
	"Jet Airways",
	"IndiGo",
	"Air India",
	"Multiple carriers",
	"SpiceJet",
	"Vistara",
	"Air Asia",
	"GoAir",
	"Multiple carriers Premium economy",
	"Jet Airways Business",
	"Vistara Premium economy",
	"Trujet",
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options returns the selectable values of a categorical field with their display
// labels. Timestamp fields have no options.
func Options(name string) []Option {
	var values []string
	label := func(value string) string { return value }

	switch canonicalNames[strings.ToLower(name)] {
	case FieldSource:
		values = Sources
	case FieldDestination:
		values = Destinations
	case FieldStops:
		values = StopCounts
		label = StopLabel
	case FieldAirline:
		values = Airlines
	default:
		return nil
	}

	options := make([]Option, 0, len(values))
	for _, value := range values {
		options = append(options, Option{Value: value, Label: label(value)})
	}

	return options
}

func StopLabel(stops string) string {
	if stops == "0" {
		return "Non-Stop"
	}

	return stops
}

func isOption(options []string, value string) bool {
	return slices.Contains(options, value)
}
