package itinerary

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FieldDepartureTime = "Dep_Time"
	FieldArrivalTime   = "Arrival_Time"
	FieldSource        = "Source"
	FieldDestination   = "Destination"
	FieldStops         = "stops"
	FieldAirline       = "airline"
)

// FieldNames lists the wire names of every itinerary field in form order
var FieldNames = []string{
	FieldDepartureTime,
	FieldArrivalTime,
	FieldSource,
	FieldDestination,
	FieldStops,
	FieldAirline,
}

var ErrUnknownField = errors.New("unknown itinerary field")

// Input is the itinerary being edited on the prediction form. Every value is kept
// exactly as the form control produced it and is sent to the prediction service
// unmodified.
type Input struct {
	DepartureTime string `json:"Dep_Time" groups:"basic"`
	ArrivalTime   string `json:"Arrival_Time" groups:"basic"`
	Source        string `json:"Source" groups:"basic" validate:"source"`
	Destination   string `json:"Destination" groups:"basic" validate:"destination"`
	Stops         string `json:"stops" groups:"basic" validate:"stops"`
	Airline       string `json:"airline" groups:"basic" validate:"airline"`
}

type Field struct {
	Name  string
	Value string
}

func Defaults() Input {
	return Input{
		Source:      DefaultSource,
		Destination: DefaultDestination,
		Stops:       DefaultStops,
		Airline:     DefaultAirline,
	}
}

// IsField reports whether name is a known field, ignoring case
func IsField(name string) bool {
	_, ok := canonicalNames[strings.ToLower(name)]
	return ok
}

var canonicalNames = func() map[string]string {
	names := map[string]string{}
	for _, name := range FieldNames {
		names[strings.ToLower(name)] = name
	}
	return names
}()

func (i *Input) field(name string) (*string, error) {
	switch canonicalNames[strings.ToLower(name)] {
	case FieldDepartureTime:
		return &i.DepartureTime, nil
	case FieldArrivalTime:
		return &i.ArrivalTime, nil
	case FieldSource:
		return &i.Source, nil
	case FieldDestination:
		return &i.Destination, nil
	case FieldStops:
		return &i.Stops, nil
	case FieldAirline:
		return &i.Airline, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// Set overwrites the named field. No coercion or validation happens here.
func (i *Input) Set(name string, value string) error {
	target, err := i.field(name)
	if err != nil {
		return err
	}

	*target = value

	return nil
}

func (i Input) Get(name string) (string, error) {
	target, err := i.field(name)
	if err != nil {
		return "", err
	}

	return *target, nil
}

func (i Input) Fields() []Field {
	return []Field{
		{Name: FieldDepartureTime, Value: i.DepartureTime},
		{Name: FieldArrivalTime, Value: i.ArrivalTime},
		{Name: FieldSource, Value: i.Source},
		{Name: FieldDestination, Value: i.Destination},
		{Name: FieldStops, Value: i.Stops},
		{Name: FieldAirline, Value: i.Airline},
	}
}
