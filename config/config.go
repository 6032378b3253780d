// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads console settings from defaults, an optional
// config.toml, an optional .env file and CAMPUSADMIN_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"campusadmin/export"
	"campusadmin/prefs"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CAMPUSADMIN"

// Config holds the resolved settings.
type Config struct {
	Env          string `validate:"required,oneof=dev test qa prod"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	PrefsDir     string `validate:"required"`
	ExportDir    string `validate:"required"`
	ExportFormat export.Format

	DeltaSharingTimeout time.Duration `validate:"gt=0"`
	DeltaSharingProfile string
}

// Load resolves the configuration rooted at dir. dir holds the optional
// config.toml and config/.env.<env> files.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToLower(os.Getenv(EnvPrefix + "_ENV"))
	if env == "" {
		env = "dev"
	}

	v.SetDefault("env", env)
	v.SetDefault("logLevel", "info")
	v.SetDefault("prefsDir", defaultPrefsDir(dir))
	v.SetDefault("exportDir", dir)
	v.SetDefault("exportFormat", "csv")
	v.SetDefault("deltaSharing.timeout", 60*time.Second)
	v.SetDefault("deltaSharing.profile", "")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(dir, "config", ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.ReadInConfig: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	format, err := export.ParseFormat(v.GetString("exportFormat"))
	if err != nil {
		return nil, fmt.Errorf("config.exportFormat: %w", err)
	}

	c := &Config{
		Env:                 strings.ToLower(v.GetString("env")),
		LogLevel:            strings.ToLower(v.GetString("logLevel")),
		PrefsDir:            v.GetString("prefsDir"),
		ExportDir:           v.GetString("exportDir"),
		ExportFormat:        format,
		DeltaSharingTimeout: v.GetDuration("deltaSharing.timeout"),
		DeltaSharingProfile: v.GetString("deltaSharing.profile"),
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// PreferenceKV opens the directory-backed preference store.
func (c *Config) PreferenceKV() (*prefs.FileKV, error) {
	return prefs.NewFileKV(c.PrefsDir)
}

func defaultPrefsDir(dir string) string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "campusadmin", "prefs")
	}
	return filepath.Join(dir, ".campusadmin", "prefs")
}
