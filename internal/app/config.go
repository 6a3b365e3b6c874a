package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vk/dyninputs/internal/cleanup"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RegistryPath string // extra node_type definitions, hcl files

	// NodeType and Counts script the session Run drives.
	NodeType string `validate:"required"`
	Counts   []int  `validate:"dive,min=0"`

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"min=0,max=65535"`

	// EventsURL is the backend socket.io endpoint; empty disables the
	// cleanup relay. FreeURL defaults to the backend's free endpoint.
	EventsURL string `validate:"omitempty,url"`
	FreeURL   string `validate:"omitempty,url"`

	PollInterval time.Duration `validate:"min=0"`
	InitialDelay time.Duration `validate:"min=0"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.NodeType == "" {
		return nil, errors.New("NodeType is a required configuration field and cannot be empty")
	}

	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.EventsURL != "" && cfg.FreeURL == "" {
		freeURL, err := deriveFreeURL(cfg.EventsURL)
		if err != nil {
			return nil, err
		}
		cfg.FreeURL = freeURL
	}
	return &cfg, nil
}

// deriveFreeURL maps the events endpoint onto the free endpoint of the same
// backend, switching websocket schemes to their HTTP counterparts.
func deriveFreeURL(eventsURL string) (string, error) {
	u, err := url.Parse(eventsURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse events URL: %w", err)
	}
	scheme := u.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: cleanup.DefaultFreePath}).String(), nil
}
