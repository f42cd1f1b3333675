package web

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/config"
	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/modelinfo"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/web/routes"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humafiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const shutdownTimeout = 10 * time.Second

func NewApp(env *routes.Env, cfg *config.Config) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.PredictionTimeout + 5*time.Second,
	})

	webApp.Use(NewLogger())
	webApp.Use(recover.New())
	webApp.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	webApp.Get("/version", routes.APIVersion)
	webApp.Get("/health", env.Health)

	routes.FormRouter(webApp, env)
	routes.SessionRouter(webApp, env)
	routes.ViewRouter(webApp.Group("/view"), env)
	routes.ModelInfoRouter(webApp.Group("/model-info"), env)

	apiConfig := huma.DefaultConfig("Flight Price Prediction API", routes.Version)
	apiConfig.OpenAPI.Info.Description = "Validate itineraries and request fare predictions"
	routes.RegisterAPI(humafiber.New(webApp, apiConfig), env)

	return webApp
}

func NewEnv(cfg *config.Config, predictor prediction.Predictor) (*routes.Env, error) {
	modelInfo, err := modelinfo.Load()
	if err != nil {
		return nil, err
	}

	newController := func() *formstate.Controller {
		return formstate.New(predictor, formstate.WithLocation(cfg.Location))
	}

	return &routes.Env{
		Sessions:      session.NewStore(cfg.SessionTTL, newController),
		ModelInfo:     modelInfo,
		NewController: newController,
	}, nil
}

// Run serves the form until SIGINT or SIGTERM, then drains in-flight requests
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WaitForPredictor > 0 {
		log.Info().Str("endpoint", cfg.PredictionEndpoint).Msg("Waiting for prediction service")

		if err := prediction.WaitForEndpoint(ctx, cfg.PredictionEndpoint, cfg.WaitForPredictor); err != nil {
			return err
		}
	}

	env, err := NewEnv(cfg, prediction.NewClient(cfg.PredictionEndpoint, cfg.PredictionTimeout))
	if err != nil {
		return err
	}

	webApp := NewApp(env, cfg)

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		log.Info().Str("listen", cfg.Listen).Str("predictor", cfg.PredictionEndpoint).Msg("Starting web server")
		return webApp.Listen(cfg.Listen)
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()

		log.Info().Msg("Shutting down web server")
		return webApp.ShutdownWithTimeout(shutdownTimeout)
	})

	return p.Wait()
}
