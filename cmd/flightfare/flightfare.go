package main

import (
	"os"
	"strings"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/util"
	"github.com/Mandeep1904/flight-price-prediction/pkg/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	predictcli "github.com/Mandeep1904/flight-price-prediction/pkg/formstate/cli"

	_ "time/tzdata"
)

func main() {
	if err := util.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}

	if os.Getenv("FLIGHTFARE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("FLIGHTFARE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	for name, value := range util.GetEnvironmentVariables() {
		if strings.HasPrefix(name, "FLIGHTFARE_") {
			log.Debug().Str("name", name).Str("value", value).Msg("Environment override")
		}
	}

	app := &cli.App{
		Name:        "flightfare",
		Description: "Flight price prediction form and API in front of a fare prediction service",

		Commands: []*cli.Command{
			web.RegisterCLI(),
			predictcli.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
