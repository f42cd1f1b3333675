package itinerary

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationKind string

const (
	KindUnparseableTimestamp ValidationKind = "unparseable-timestamp"
	KindContradictory        ValidationKind = "contradictory-itinerary"
	KindInverted             ValidationKind = "inverted-itinerary"
	KindInvalidField         ValidationKind = "invalid-field"
)

const (
	ContradictoryMessage = "Departure date is in the future and arrival date is in the past!"
	InvertedMessage      = "Arrival date cannot be before departure date!"
)

// ValidationError is a problem with the itinerary found before anything is sent to
// the prediction service.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Times holds the parsed departure and arrival of a checked itinerary
type Times struct {
	Departure time.Time
	Arrival   time.Time
}

func (t Times) Duration() time.Duration {
	return t.Arrival.Sub(t.Departure)
}

// Layouts accepted by ParseTimestamp, in the order they are tried. The first two
// are what a datetime-local control submits.
var timestampLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseTimestamp parses a datetime-local value in loc. RFC3339 values carrying
// their own offset are accepted as well.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a valid date and time", value)
	}

	return parsed, nil
}

// Check runs the submission checks in order and returns the first failure.
//  1. both timestamps parse
//  2. the departure is not in the future while the arrival is in the past
//  3. the arrival is not before the departure
//  4. every categorical field holds one of its options
func (i Input) Check(now time.Time, loc *time.Location) (Times, error) {
	var times Times
	var err error

	times.Departure, err = ParseTimestamp(i.DepartureTime, loc)
	if err != nil {
		return Times{}, &ValidationError{
			Kind:    KindUnparseableTimestamp,
			Field:   FieldDepartureTime,
			Message: fmt.Sprintf("Departure date is invalid: %s", err),
		}
	}

	times.Arrival, err = ParseTimestamp(i.ArrivalTime, loc)
	if err != nil {
		return Times{}, &ValidationError{
			Kind:    KindUnparseableTimestamp,
			Field:   FieldArrivalTime,
			Message: fmt.Sprintf("Arrival date is invalid: %s", err),
		}
	}

	if times.Departure.After(now) && times.Arrival.Before(now) {
		return times, &ValidationError{Kind: KindContradictory, Message: ContradictoryMessage}
	}

	if times.Arrival.Before(times.Departure) {
		return times, &ValidationError{Kind: KindInverted, Message: InvertedMessage}
	}

	if err := fieldValidator.Struct(i); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fieldError := fieldErrors[0]

			return times, &ValidationError{
				Kind:    KindInvalidField,
				Field:   fieldError.Field(),
				Message: fmt.Sprintf("%q is not a valid %s", fmt.Sprint(fieldError.Value()), fieldLabel(fieldError.Field())),
			}
		}

		return times, err
	}

	return times, nil
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	for tag, options := range map[string][]string{
		"source":      Sources,
		"destination": Destinations,
		"stops":       StopCounts,
		"airline":     Airlines,
	} {
		options := options
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return isOption(options, fl.Field().String())
		})
		if err != nil {
			panic(err)
		}
	}

	return v
}

func fieldLabel(name string) string {
	switch name {
	case FieldSource:
		return "source"
	case FieldDestination:
		return "destination"
	case FieldStops:
		return "number of stops"
	case FieldAirline:
		return "airline"
	default:
		return name
	}
}
