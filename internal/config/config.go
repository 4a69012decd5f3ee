// Package config loads driver configuration from a config file, .env files
// and FLUENTQUERY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/fluent-query-go/internal/adapters/database"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension.
	FileName = ".fluentquery"
	// EnvPrefix prefixes environment overrides, e.g. FLUENTQUERY_DATABASE.
	EnvPrefix = "FLUENTQUERY"
)

// Config holds the driver configuration
type Config struct {
	Driver     string
	Settings   database.Settings
	Debug      bool
	TrackLeaks bool
	LogQueries bool
}

// New returns a viper instance searching workDir, the home directory and
// ~/.config/fluentquery, with environment binding and defaults applied.
func New(workDir string) (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)

	// Set config file paths
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(workDir)
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "fluentquery"))

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("driver", "sqlite")
	v.SetDefault("host", "")
	v.SetDefault("port", 0)
	v.SetDefault("socket", "")
	v.SetDefault("database", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("debug", false)
	v.SetDefault("track_leaks", false)
	v.SetDefault("log_queries", false)

	return v, nil
}

// Load reads .env files from workDir and the config file into v and
// returns the resulting configuration. A missing config file is not an
// error.
func Load(v *viper.Viper, workDir string) (*Config, error) {
	// Load .env if it exists; it does not replace variables already set
	if err := loadEnvFile(filepath.Join(workDir, ".env"), false); err != nil {
		return nil, err
	}

	// Load .env.local if it exists (higher priority)
	if err := loadEnvFile(filepath.Join(workDir, ".env.local"), true); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v), nil
}

// LoadConfig loads configuration for the current directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	v, err := New(wd)
	if err != nil {
		return nil, err
	}
	return Load(v, wd)
}

// FromViper decodes the configuration held by v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Driver: v.GetString("driver"),
		Settings: database.Settings{
			Server:   v.GetString("host"),
			Port:     v.GetInt("port"),
			Socket:   v.GetString("socket"),
			Database: v.GetString("database"),
			Username: v.GetString("username"),
			Password: v.GetString("password"),
		},
		Debug:      v.GetBool("debug"),
		TrackLeaks: v.GetBool("track_leaks"),
		LogQueries: v.GetBool("log_queries"),
	}
}

// SaveConfig saves configuration to ~/.config/fluentquery. The password is
// never written.
func SaveConfig(cfg *Config) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(home, ".config", "fluentquery")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return "", err
	}

	configFile := filepath.Join(configPath, FileName+".yaml")
	return configFile, SaveConfigAs(cfg, configFile)
}

// SaveConfigAs saves configuration to path.
func SaveConfigAs(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)

	v.Set("driver", cfg.Driver)
	v.Set("host", cfg.Settings.Server)
	v.Set("port", cfg.Settings.Port)
	v.Set("socket", cfg.Settings.Socket)
	v.Set("database", cfg.Settings.Database)
	v.Set("username", cfg.Settings.Username)
	v.Set("debug", cfg.Debug)
	v.Set("track_leaks", cfg.TrackLeaks)
	v.Set("log_queries", cfg.LogQueries)

	return v.WriteConfigAs(path)
}

// loadEnvFile exports the variables of path. Without override, variables
// that already have a non-empty value are kept.
func loadEnvFile(path string, override bool) error {
	f, err := AppFs.Open(path)
	if err != nil {
		// Don't fail if the file does not exist
		return nil
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for key, value := range vars {
		if !override && os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
