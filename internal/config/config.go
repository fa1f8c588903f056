// Package config loads the service configuration.
//
// Layers, lowest precedence first: an optional .env file, an optional YAML
// file (ETL_CONFIG or conf/config.yaml), then ETL_-prefixed environment
// variables where "__" separates sections (ETL_DATABASE__HOST -> database.host).
// The merged tree is unmarshalled over Default() and validated.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "ETL_"
	defaultPath = "conf/config.yaml"
)

type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
}

type HTTPConfig struct {
	ListenAddr  string   `koanf:"listen_addr" validate:"required,hostname_port"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig points at the metadata store.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,min=1,max=65535"`
	Username string `koanf:"username" validate:"required"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `koanf:"max_conns" validate:"min=1"`
	MinConns int32  `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
}

// DSN returns a postgres:// URL with credentials escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type LogConfig struct {
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
	Dir     string `koanf:"dir"`
	Console bool   `koanf:"console"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			ListenAddr:  ":8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Username: "postgres",
			Name:     "etl_manager",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

var validate = validator.New()

// Load resolves the YAML path from ETL_CONFIG and defers to LoadFile.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv(envPrefix + "CONFIG")
	if path == "" {
		path = defaultPath
	}
	return LoadFile(path)
}

// LoadFile merges the YAML file at path (skipped when absent) with the
// environment and validates the result.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("config env overlay: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}
