// Package config loads the application configuration from the
// environment, falling back to sensible defaults for every field.
package config

import (
	"os"
	"strconv"
	"time"
)

// ApplicationType mirrors sessionmgr.ApplicationType without importing
// it, to keep config dependency-free of the runtime packages it feeds.
type ApplicationType uint8

const (
	ApplicationServer ApplicationType = 1 << iota
	ApplicationClient
	ApplicationClientAndServer
	ApplicationDiscoveryServer
)

// Config holds the runtime configuration's "Application
// configuration (enumerated)" table.
type Config struct {
	SupportedApplicationTypes ApplicationType
	RequestTimeout            time.Duration

	BindAddress     string
	BindPort        int
	ServerName      string
	ApplicationURI  string
	ProductURI      string
	ApplicationName string

	HealthPort           int
	MaxBrowseContinuations int
	AutoConnectAfterDiscovery bool
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SupportedApplicationTypes: ApplicationType(getEnvAsIntOrDefault("SUPPORTED_APPLICATION_TYPES", int(ApplicationServer))),
		RequestTimeout:            getDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),

		BindAddress:     getEnvOrDefault("BIND_ADDRESS", "0.0.0.0"),
		BindPort:        getEnvAsIntOrDefault("BIND_PORT", 4840),
		ServerName:      getEnvOrDefault("SERVER_NAME", "edge-opcuad"),
		ApplicationURI:  getEnvOrDefault("APPLICATION_URI", "urn:edge-opcuad:server"),
		ProductURI:      getEnvOrDefault("PRODUCT_URI", "urn:edge-opcuad:product"),
		ApplicationName: getEnvOrDefault("APPLICATION_NAME", "edge-opcuad"),

		HealthPort:                getEnvAsIntOrDefault("HEALTH_PORT", 8081),
		MaxBrowseContinuations:    getEnvAsIntOrDefault("MAX_BROWSE_CONTINUATIONS", 100),
		AutoConnectAfterDiscovery: getEnvAsBoolOrDefault("AUTO_CONNECT_AFTER_DISCOVERY", false),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
