package config

import (
	"errors"
	"time"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Shopify Shopify `envPrefix:"SHOPIFY_"`
	Signing Signing `envPrefix:"SERVICE_"`
	AR      AR      `envPrefix:"AR_"`
}

type Shopify struct {
	StoreDomain   string        `env:"STORE_DOMAIN"`
	AccessToken   string        `env:"ACCESS_TOKEN"`
	APIVersion    string        `env:"API_VERSION" envDefault:"2025-04"`
	WebhookSecret string        `env:"API_SECRET"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Signing struct {
	Secret string `env:"SIGNING_SECRET"`
}

// AR maps SKUs to experience base endpoints. ROUTE_TABLE uses
// "SKU=url" pairs separated by commas; the default base catches
// every SKU without an exact entry.
type AR struct {
	RouteTable  map[string]string `env:"ROUTE_TABLE" envSeparator:"," envKeyValSeparator:"="`
	DefaultBase string            `env:"DEFAULT_BASE"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
	// MaxBodySize caps the raw webhook body read, in bytes.
	MaxBodySize int64 `env:"HTTP_MAX_BODY_SIZE" envDefault:"1048576"`
}

// Validate catches configuration faults at startup so they never surface
// as request-time signing or upstream failures.
func (c *Config) Validate() error {
	if c.Shopify.StoreDomain == "" {
		return errors.New("SHOPIFY_STORE_DOMAIN is required")
	}
	if c.Shopify.AccessToken == "" {
		return errors.New("SHOPIFY_ACCESS_TOKEN is required")
	}
	if c.Shopify.WebhookSecret == "" {
		return errors.New("SHOPIFY_API_SECRET is required")
	}
	if c.Signing.Secret == "" {
		return errors.New("SERVICE_SIGNING_SECRET is required")
	}
	if c.AR.DefaultBase == "" {
		return errors.New("AR_DEFAULT_BASE is required")
	}
	return nil
}
