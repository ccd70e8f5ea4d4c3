/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration from a YAML file in the user
// config directory. Missing keys keep their defaults, the document is checked
// against an embedded JSON schema, and IV_* environment variables override
// the result at runtime without being written back.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a config file that could not be parsed or failed schema
// validation. Load still returns usable defaults alongside it.
var ErrInvalid = errors.New("invalid configuration")

//go:embed schema.json
var schemaJSON []byte

type SizeConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type MinimapConfig struct {
	Shown              bool       `yaml:"shown"`
	AutoHide           bool       `yaml:"auto_hide"`
	Image              bool       `yaml:"image"` // draw the thumbnail; false leaves only the overlay
	Padding            float64    `yaml:"padding"`
	Size               SizeConfig `yaml:"size"`
	ImageOpacity       float64    `yaml:"image_opacity"`
	Location           string     `yaml:"location"`
	OverlayMovable     bool       `yaml:"overlay_movable"`
	Clickable          bool       `yaml:"clickable"`
	BorderColor        string     `yaml:"border_color"`
	BorderWidth        int        `yaml:"border_width"`
	OverlayColor       string     `yaml:"overlay_color"`
	OverlayBorderColor string     `yaml:"overlay_border_color"`
	OverlayBorderWidth int        `yaml:"overlay_border_width"`
}

type ViewConfig struct {
	ZoomFactor float64 `yaml:"zoom_factor"`
	ScrollStep float64 `yaml:"scroll_step"`
}

type BehaviorConfig struct {
	AutoFit bool `yaml:"auto_fit"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type TelemetryConfig struct {
	OptIn    bool   `yaml:"opt_in"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Minimap       MinimapConfig   `yaml:"minimap"`
	View          ViewConfig      `yaml:"view"`
	Behavior      BehaviorConfig  `yaml:"behavior"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Minimap: MinimapConfig{
			Shown:              true,
			AutoHide:           true,
			Image:              true,
			Padding:            10,
			Size:               SizeConfig{Width: 200, Height: 200},
			ImageOpacity:       0.7,
			Location:           "bottom_right",
			OverlayMovable:     true,
			Clickable:          true,
			BorderColor:        "#550000FF",
			BorderWidth:        1,
			OverlayColor:       "#55FF0000",
			OverlayBorderColor: "#5500FF00",
			OverlayBorderWidth: 1,
		},
		View:     ViewConfig{ZoomFactor: 1.25, ScrollStep: 30},
		Behavior: BehaviorConfig{AutoFit: false},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvMinimapShown    = "IV_MINIMAP_SHOWN"
	EnvMinimapLocation = "IV_MINIMAP_LOCATION"
	EnvAutoFit         = "IV_AUTO_FIT"
	EnvTelemetryOptIn  = "IV_TELEMETRY_OPT_IN"
	EnvLogLevel        = "IV_LOG_LEVEL"
	EnvLogFormat       = "IV_LOG_FORMAT"
	EnvLogSource       = "IV_LOG_SOURCE"
	EnvLogFile         = "IV_LOG_FILE"
)

// envKeys maps dotted config keys to their override variable.
var envKeys = map[string]string{
	"minimap.shown":     EnvMinimapShown,
	"minimap.location":  EnvMinimapLocation,
	"behavior.auto_fit": EnvAutoFit,
	"telemetry.opt_in":  EnvTelemetryOptIn,
	"logging.level":     EnvLogLevel,
	"logging.format":    EnvLogFormat,
	"logging.source":    EnvLogSource,
	"logging.file":      EnvLogFile,
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "goiv"), nil
	case "darwin":
		base = os.Getenv("HOME")
		if base == "" {
			return "", errors.New("cannot resolve config directory")
		}
		return filepath.Join(base, "Library", "Application Support", "goiv"), nil
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home := os.Getenv("HOME")
			if home == "" {
				return "", errors.New("cannot resolve config directory")
			}
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "goiv"), nil
	}
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file from ConfigPath.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults and applies env overrides. A missing
// file is not an error. An unreadable or invalid file yields the defaults
// (plus overrides) and an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = nil
	case err != nil:
		err = fmt.Errorf("config: read %s: %w", path, err)
	default:
		var parsed AppConfig
		parsed, err = parse(data)
		if err == nil {
			cfg = parsed
		} else {
			err = fmt.Errorf("config: %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, err
}

// parse validates data and decodes it over the defaults.
func parse(data []byte) (AppConfig, error) {
	cfg := Defaults()
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc == nil {
		return cfg, nil
	}
	if err := validate(doc); err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	return cfg, nil
}

func validate(doc any) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Save writes cfg to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v, ok := envBool(EnvMinimapShown); ok {
		cfg.Minimap.Shown = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMinimapLocation)); v != "" {
		cfg.Minimap.Location = strings.ToLower(v)
	}
	if v, ok := envBool(EnvAutoFit); ok {
		cfg.Behavior.AutoFit = v
	}
	if v, ok := envBool(EnvTelemetryOptIn); ok {
		cfg.Telemetry.OptIn = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v, ok := envBool(EnvLogSource); ok {
		cfg.Logging.Source = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// envBool reads a boolean override; ok is false when the variable is unset.
func envBool(key string) (value, ok bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return false, false
	}
	switch v {
	case "1", "true", "on", "yes":
		return true, true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b, true
	}
	return false, true
}

// EnvOverrideFor returns the env var name if the dotted key is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
