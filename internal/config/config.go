// Package config loads process-wide configuration the way the teacher's
// verifier service does: a YAML file read at startup, overlaid with
// environment variables, falling back to sane defaults when the file is
// absent or unparsable.
package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the verifier's process-wide configuration (spec.md §6's
// environment variables plus the ambient SMTP/server settings the teacher
// carries).
type Config struct {
	ServerPort     string
	SenderDomain   string
	EHLOHostname   string
	CacheTTL       time.Duration
	SMTPConnect    time.Duration
	SMTPConnectFast time.Duration

	EnableInternetChecks bool
	EnableHIBP           bool
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		SenderDomain:    getEnv("VERIFIER_SENDER_DOMAIN", hostname),
		EHLOHostname:    hostname,
		CacheTTL:        time.Hour,
		SMTPConnect:     5 * time.Second,
		SMTPConnectFast: 3 * time.Second,

		EnableInternetChecks: getEnvBool("ENABLE_INTERNET_CHECKS", true),
		EnableHIBP:           getEnvBool("ENABLE_HIBP", true),
	}
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	SMTP struct {
		EHLOHostname string `yaml:"ehlo_hostname"`
		SenderDomain string `yaml:"sender_domain"`
	} `yaml:"smtp"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
}

// Load reads configPath, overlays it onto the defaults, and applies
// environment variables on top (env always wins, mirroring the teacher's
// getEnv-first convention). A missing or unparsable file is not fatal.
func Load(configPath string) *Config {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("config: could not read %s, using defaults: %v", configPath, err)
		return config
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		log.Printf("config: could not parse %s, using defaults: %v", configPath, err)
		return config
	}

	if parsed.Server.Port != "" {
		config.ServerPort = parsed.Server.Port
	}
	if parsed.SMTP.EHLOHostname != "" {
		config.EHLOHostname = parsed.SMTP.EHLOHostname
	}
	if parsed.SMTP.SenderDomain != "" {
		config.SenderDomain = parsed.SMTP.SenderDomain
	}
	if parsed.Cache.TTL > 0 {
		config.CacheTTL = parsed.Cache.TTL
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		config.ServerPort = v
	}
	if v := os.Getenv("VERIFIER_SENDER_DOMAIN"); v != "" {
		config.SenderDomain = v
	}
	config.EnableInternetChecks = getEnvBool("ENABLE_INTERNET_CHECKS", config.EnableInternetChecks)
	config.EnableHIBP = getEnvBool("ENABLE_HIBP", config.EnableHIBP)

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}
