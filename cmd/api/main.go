package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopify-ar-delivery/internal/client"
	"shopify-ar-delivery/internal/config"
	"shopify-ar-delivery/internal/handler"
	"shopify-ar-delivery/internal/server"
	"shopify-ar-delivery/internal/service"
	"shopify-ar-delivery/internal/signing"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	shopifyClient := client.NewShopifyClient(&cfg.Shopify, logger)
	signer := signing.NewSigner(cfg.Signing.Secret)
	routes := service.RouteTable{
		Bases:       cfg.AR.RouteTable,
		DefaultBase: cfg.AR.DefaultBase,
	}
	dispatcher := service.NewLogDispatcher(logger)

	deliveryService := service.NewDeliveryService(shopifyClient, signer, routes, dispatcher, logger)

	webhookHandler := handler.NewWebhookHandler(deliveryService, cfg.Shopify.WebhookSecret, cfg.HTTP.MaxBodySize, logger)
	receiveHandler := handler.NewReceiveHandler(deliveryService)
	adminHandler := handler.NewAdminHandler(shopifyClient)

	srv := server.NewServer(webhookHandler, receiveHandler, adminHandler, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info().Str("addr", serverAddr).Msg("starting HTTP server")

	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info().Msg("signal received, shutting down")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func newLogger(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
