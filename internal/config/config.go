// Package config loads the workstation's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"daiw-cli/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini    GeminiConfig      `json:"gemini" yaml:"gemini"`
	Project   model.ProjectMeta `json:"project" yaml:"project"`
	Assistant AssistantConfig   `json:"assistant" yaml:"assistant"`
	Logging   LoggingConfig     `json:"logging" yaml:"logging"`
	UI        UIConfig          `json:"ui" yaml:"ui"`
}

type GeminiConfig struct {
	// APIKey is usually left empty and taken from GEMINI_API_KEY.
	APIKey          string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL         string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	TextModel       string        `json:"text_model" yaml:"text_model" validate:"required"`
	TranscribeModel string        `json:"transcribe_model" yaml:"transcribe_model" validate:"required"`
	ImageModel      string        `json:"image_model" yaml:"image_model" validate:"required"`
	ImageModelHD    string        `json:"image_model_hd" yaml:"image_model_hd" validate:"required"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
	BreakerFailures uint32        `json:"breaker_failures" yaml:"breaker_failures" validate:"gt=0"`
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown" validate:"gt=0"`
}

type AssistantConfig struct {
	ImageSize string `json:"image_size" yaml:"image_size" validate:"oneof=1K 2K 4K"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	// File receives TUI logs. Empty keeps the TUI silent.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

type UIConfig struct {
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty" validate:"omitempty,oneof=auto light dark"`
}

func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			TextModel:       "gemini-3-pro-preview",
			TranscribeModel: "gemini-3-flash-preview",
			ImageModel:      "gemini-2.5-flash-image",
			ImageModelHD:    "gemini-3-pro-image-preview",
			Timeout:         2 * time.Minute,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Project:   model.DefaultProjectMeta(),
		Assistant: AssistantConfig{ImageSize: string(model.ImageSize1K)},
		Logging:   LoggingConfig{Level: "info"},
		UI:        UIConfig{Theme: "auto"},
	}
}

// ImageSize returns the configured default cover size.
func (c *Config) ImageSize() model.ImageSize {
	s, err := model.ParseImageSize(c.Assistant.ImageSize)
	if err != nil {
		return model.ImageSize1K
	}
	return s
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.daiw).
	if v := strings.TrimSpace(os.Getenv("DAIW_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".daiw"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (the default location when empty), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.Assistant.ImageSize = strings.ToUpper(strings.TrimSpace(cfg.Assistant.ImageSize))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c as YAML, replacing path atomically. The API key is never written.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out := *c
	out.Gemini.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, data, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// apiKeyEnv lists key variables in precedence order.
var apiKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

func (c *Config) applyEnvOverrides() {
	for _, name := range apiKeyEnv {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			c.Gemini.APIKey = key
			break
		}
	}
	if v := strings.TrimSpace(os.Getenv("DAIW_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("DAIW_IMAGE_SIZE")); v != "" {
		c.Assistant.ImageSize = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	// Namespace is "Config.project.bpm"; drop the root type.
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field, e.Param(), fmt.Sprint(e.Value()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
