package main

import (
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/config"
	apphttp "github.com/oakline/banklink/internal/http"
	"github.com/oakline/banklink/internal/logger"
	"github.com/oakline/banklink/internal/reports"
	"github.com/oakline/banklink/internal/router"
	"github.com/oakline/banklink/internal/session"
	"github.com/oakline/banklink/internal/upstream"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.New("banklink-api")

	cfg, err := config.Load(os.Getenv("BANKLINK_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var bank upstream.Service
	if cfg.DemoMode {
		log.Warn().Msg("demo mode: serving generated data, no upstream calls")
		bank = upstream.NewDemo(uint64(time.Now().UnixNano()))
	} else {
		bank = upstream.NewClient(cfg.UpstreamBaseURL, log)
	}

	sessions := session.NewStore()
	secret := []byte(cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	r := &router.Router{
		AuthHandler: &apphttp.AuthHandler{
			Upstream:   bank,
			Sessions:   sessions,
			JWTSecret:  secret,
			SessionTTL: cfg.SessionTTL,
			Log:        log,
		},
		AccountHandler: &apphttp.AccountHandler{
			Upstream: bank,
			Log:      log,
		},
		TransferHandler: &apphttp.TransferHandler{
			JWTSecret:  secret,
			ConfirmTTL: cfg.ConfirmTTL,
			Log:        log,
		},
		ReportsHandler:     &reports.Handler{},
		AuthMW:             apphttp.SessionMiddleware(secret, sessions),
		TransferRateMax:    cfg.TransferRateMax,
		TransferRateWindow: cfg.TransferRateWindow,
	}
	r.RegisterRoutes(app)

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
