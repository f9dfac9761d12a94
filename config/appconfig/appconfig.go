package appconfig

import (
	"bytes"
	"fmt"
	"os"

	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"gopkg.in/yaml.v3"
)

type ToastPosition string

const (
	ToastTopRight     ToastPosition = "top-right"
	ToastTopCenter    ToastPosition = "top-center"
	ToastTopLeft      ToastPosition = "top-left"
	ToastBottomRight  ToastPosition = "bottom-right"
	ToastBottomCenter ToastPosition = "bottom-center"
	ToastBottomLeft   ToastPosition = "bottom-left"
)

func (p ToastPosition) Valid() bool {
	switch p {
	case ToastTopRight, ToastTopCenter, ToastTopLeft,
		ToastBottomRight, ToastBottomCenter, ToastBottomLeft:
		return true
	}
	return false
}

type App struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type Auth struct{}

type ToastNotification struct {
	Position ToastPosition `yaml:"position" json:"position"`
}

// Config is the client-facing application configuration.
type Config struct {
	App               App               `yaml:"app" json:"app"`
	Auth              Auth              `yaml:"auth" json:"auth"`
	ToastNotification ToastNotification `yaml:"toast_notification" json:"toast_notification"`
}

func Default() Config {
	return Config{
		App: App{
			Name:        "Next.js Build Plate",
			Description: "A boilerplate made for vibe coders.",
		},
		ToastNotification: ToastNotification{Position: ToastBottomRight},
	}
}

func (c Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name must not be empty")
	}
	if !c.ToastNotification.Position.Valid() {
		return fmt.Errorf("invalid toast_notification.position: %q", c.ToastNotification.Position)
	}
	return nil
}

// Parse overlays the YAML document on top of the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("could not decode app config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read app config %s: %w", path, err)
	}
	return Parse(raw)
}

// NewFromEnv loads the file named by APP_CONFIG_FILE.
func NewFromEnv() (*Config, error) {
	cfg, err := Load(environment_variables.EnvironmentVariables.APP_CONFIG_FILE)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
