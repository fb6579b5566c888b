package server

import (
	"net/http"

	"shopify-ar-delivery/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo           *echo.Echo
	webhookHandler *handler.WebhookHandler
	receiveHandler *handler.ReceiveHandler
	adminHandler   *handler.AdminHandler
}

func NewServer(
	webhookHandler *handler.WebhookHandler,
	receiveHandler *handler.ReceiveHandler,
	adminHandler *handler.AdminHandler,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))

	// Internal faults must not leak detail; echo's default handler would
	// echo the error message back.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "internal error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else {
			logger.Error().Err(err).Msg("unhandled handler error")
		}
		_ = c.String(code, message)
	}

	s := &Server{
		echo:           e,
		webhookHandler: webhookHandler,
		receiveHandler: receiveHandler,
		adminHandler:   adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Non-POST on the webhook path falls through to echo's 405.
	api.POST("/webhooks/orders-paid", s.webhookHandler.OrdersPaid)

	api.GET("/receive", s.receiveHandler.Receive)
	api.GET("/admin/check", s.adminHandler.Check)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
