// Package config loads process configuration from the environment, an
// optional .env file and an optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// Config is everything the service reads at startup.
type Config struct {
	Port         string
	TickInterval time.Duration
	Seed         int64
	DemoControls bool

	AdminUsername string
	AdminPassword string
	JWTSecret     string
	JWTExpiry     time.Duration

	GeminiAPIKey string
	GeminiModel  string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	MongoURI string
	MongoDB  string

	LogLevel  string
	LogFormat string

	// SettingsFile is an optional YAML file with the initial settings.
	SettingsFile string
}

// Load reads .env when present and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DemoControls:    getEnvBool("DEMO_CONTROLS", false),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin1234"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpiry:       24 * time.Hour,
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "fleet-dispatch"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "fleet"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DB", "fleet"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		SettingsFile:    os.Getenv("FLEET_CONFIG"),
	}

	ms, err := strconv.Atoi(getEnv("SIM_TICK_MS", "1500"))
	if err != nil || ms <= 0 {
		return Config{}, fmt.Errorf("invalid SIM_TICK_MS %q", os.Getenv("SIM_TICK_MS"))
	}
	cfg.TickInterval = time.Duration(ms) * time.Millisecond

	if cfg.Seed, err = strconv.ParseInt(getEnv("SIM_SEED", "0"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid SIM_SEED: %w", err)
	}

	if exp := os.Getenv("JWT_EXPIRY"); exp != "" {
		parsed, err := time.ParseDuration(exp)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
		}
		cfg.JWTExpiry = parsed
	}
	return cfg, nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// InitialSettings returns the defaults overlaid with the settings file and
// GEMINI_API_KEY. The environment key wins over the file.
func (c Config) InitialSettings() (models.Settings, error) {
	settings := models.DefaultSettings()
	if c.SettingsFile != "" {
		loaded, err := LoadSettingsFile(c.SettingsFile)
		if err != nil {
			return settings, err
		}
		settings = loaded
	}
	if c.GeminiAPIKey != "" {
		settings.Costs.APIKey = c.GeminiAPIKey
	}
	return settings, nil
}

// LoadSettingsFile reads a YAML settings file. Sections missing from the
// file keep their defaults.
func LoadSettingsFile(path string) (models.Settings, error) {
	settings := models.DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return settings, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
