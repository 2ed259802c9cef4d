// Package config provides configuration loading for the canary service.
//
// Two sources are supported:
//
//   - [FromEnv]: environment-only configuration for the common
//     "drop a binary on a box" deployment. OPERATOR_TOKEN is required;
//     IP and PORT are optional with defaults.
//   - [Load] / [Parse]: YAML configuration files with environment
//     variable expansion, for installations that prefer a config file.
//
// Example configuration:
//
//	title: presence canary
//	ip: 0.0.0.0
//	port: 3000
//	capacity: 8
//	token: ${OPERATOR_TOKEN}
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultIP is the listen address used when none is configured.
	DefaultIP = "127.0.0.1"

	// DefaultPort is the listen port used when none is configured.
	DefaultPort = 3000

	// DefaultCapacity is the number of pings retained when none is configured.
	DefaultCapacity = 8
)

// Config is the root configuration structure for the canary service.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse], or [FromEnv] to create a Config.
type Config struct {
	// Title is the status page title. Defaults to "presence canary" if not set.
	Title string `yaml:"title"`

	// IP is the listen address. Defaults to 127.0.0.1.
	IP string `yaml:"ip"`

	// Port is the HTTP server port. Defaults to 3000.
	Port int `yaml:"port"`

	// Capacity is the number of recent pings retained. Defaults to 8.
	Capacity int `yaml:"capacity"`

	// Token is the shared operator secret compared against incoming
	// Bearer credentials. Required.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}.
	Token string `yaml:"token"`
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the Token value.
// Defaults are applied for IP (127.0.0.1), Port (3000), and Capacity (8).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.IP == "" {
		cfg.IP = DefaultIP
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables alone.
//
// OPERATOR_TOKEN is required; the process must not start without it.
// IP defaults to 127.0.0.1 and PORT to 3000 when unset; when set, they
// must parse, so a typo fails loudly at startup rather than silently
// binding the wrong address.
func FromEnv() (*Config, error) {
	cfg := &Config{
		IP:       DefaultIP,
		Port:     DefaultPort,
		Capacity: DefaultCapacity,
		Token:    os.Getenv("OPERATOR_TOKEN"),
	}

	if ip := os.Getenv("IP"); ip != "" {
		cfg.IP = ip
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.Token)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	c.Token = expanded

	return c.validate()
}

// validate checks that all fields hold usable values.
func (c *Config) validate() error {
	if c.Token == "" {
		return errors.New("token is required (set OPERATOR_TOKEN)")
	}
	if net.ParseIP(c.IP) == nil {
		return fmt.Errorf("invalid ip %q", c.IP)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	return nil
}
