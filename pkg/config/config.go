package config

import (
	"strings"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/util"
	"github.com/urfave/cli/v2"
)

// Config is everything the web service and the predict command read from flags
// or FLIGHTFARE_* environment variables
type Config struct {
	Listen             string
	PredictionEndpoint string
	PredictionTimeout  time.Duration
	WaitForPredictor   time.Duration
	SessionTTL         time.Duration
	Location           *time.Location
	CORSOrigins        string
}

func PredictionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "prediction-endpoint",
			Value:   prediction.DefaultEndpoint,
			Usage:   "URL the itinerary is POSTed to for a fare prediction",
			EnvVars: []string{"FLIGHTFARE_PREDICTION_ENDPOINT"},
		},
		&cli.DurationFlag{
			Name:    "prediction-timeout",
			Value:   prediction.DefaultTimeout,
			Usage:   "how long to wait for the prediction service",
			EnvVars: []string{"FLIGHTFARE_PREDICTION_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "timezone",
			Value:   "Local",
			Usage:   "time zone departure and arrival times are entered in",
			EnvVars: []string{"FLIGHTFARE_TIMEZONE"},
		},
	}
}

func WebFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Value:   ":8080",
			Usage:   "listen target for the web server",
			EnvVars: []string{"FLIGHTFARE_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "wait-for-predictor",
			Value:   0,
			Usage:   "wait up to this long for the prediction service to accept connections before serving",
			EnvVars: []string{"FLIGHTFARE_WAIT_FOR_PREDICTOR"},
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   session.DefaultTTL,
			Usage:   "idle time after which a form session is discarded",
			EnvVars: []string{"FLIGHTFARE_SESSION_TTL"},
		},
		&cli.StringFlag{
			Name:    "cors-origins",
			Value:   "*",
			Usage:   "comma separated origins allowed to call the JSON API",
			EnvVars: []string{"FLIGHTFARE_CORS_ORIGINS"},
		},
	}, PredictionFlags()...)
}

func FromCLI(c *cli.Context) (*Config, error) {
	location, err := LoadLocation(c.String("timezone"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Listen:             c.String("listen"),
		PredictionEndpoint: c.String("prediction-endpoint"),
		PredictionTimeout:  c.Duration("prediction-timeout"),
		WaitForPredictor:   c.Duration("wait-for-predictor"),
		SessionTTL:         c.Duration("session-ttl"),
		Location:           location,
		CORSOrigins:        strings.Join(util.SplitList(c.String("cors-origins")), ","),
	}, nil
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}

	return time.LoadLocation(name)
}
