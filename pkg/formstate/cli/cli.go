package cli

import (
	"errors"
	"fmt"

	"github.com/Mandeep1904/flight-price-prediction/pkg/config"
	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
)

var itineraryFlags = map[string]string{
	"departure":   itinerary.FieldDepartureTime,
	"arrival":     itinerary.FieldArrivalTime,
	"source":      itinerary.FieldSource,
	"destination": itinerary.FieldDestination,
	"stops":       itinerary.FieldStops,
	"airline":     itinerary.FieldAirline,
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Usage:     "Validate an itinerary and request a single fare prediction",
		UsageText: "flightfare predict --departure 2025-03-12T09:30 --arrival 2025-03-12T12:15 [--airline IndiGo]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "departure",
				Usage:    "departure date and time, e.g. 2025-03-12T09:30",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "arrival",
				Usage:    "arrival date and time, e.g. 2025-03-12T12:15",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "source",
				Value: itinerary.DefaultSource,
				Usage: "departure city",
			},
			&cli.StringFlag{
				Name:  "destination",
				Value: itinerary.DefaultDestination,
				Usage: "arrival city",
			},
			&cli.StringFlag{
				Name:  "stops",
				Value: itinerary.DefaultStops,
				Usage: "number of stops",
			},
			&cli.StringFlag{
				Name:  "airline",
				Value: itinerary.DefaultAirline,
				Usage: "operating airline",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print the full form state after submitting",
			},
		}, config.PredictionFlags()...),
		Action: func(c *cli.Context) error {
			location, err := config.LoadLocation(c.String("timezone"))
			if err != nil {
				return err
			}

			predictor := prediction.NewClient(c.String("prediction-endpoint"), c.Duration("prediction-timeout"))
			controller := formstate.New(predictor, formstate.WithLocation(location))

			for flag, field := range itineraryFlags {
				if err := controller.SetField(field, c.String(flag)); err != nil {
					return err
				}
			}

			submitErr := controller.Submit(c.Context)
			state := controller.State()

			if c.Bool("verbose") {
				pretty.Fprintf(c.App.Writer, "%# v\n", state)
			}

			if submitErr != nil {
				var transportErr *prediction.TransportError
				if errors.As(submitErr, &transportErr) {
					return cli.Exit(fmt.Sprintf("%s (%s)", state.Notification.Message, transportErr), 1)
				}

				return cli.Exit(state.Notification.Message, 1)
			}

			fmt.Fprintln(c.App.Writer, state.PredictionResult)

			return nil
		},
	}
}
