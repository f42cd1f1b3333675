package web

import (
	"github.com/Mandeep1904/flight-price-prediction/pkg/config"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Provides the flight price prediction form and JSON API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web server",
				Flags: config.WebFlags(),
				Action: func(c *cli.Context) error {
					cfg, err := config.FromCLI(c)
					if err != nil {
						return err
					}

					return Run(c.Context, cfg)
				},
			},
		},
	}
}
