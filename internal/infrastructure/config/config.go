package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the akuaponik gateway.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig contains relational store settings.
type DatabaseConfig struct {
	// Driver is "sqlite3" or "pgx".
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DSN         string `yaml:"dsn"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    MQTTTopicsConfig    `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTTopicsConfig names the topics the gateway subscribes and publishes to.
type MQTTTopicsConfig struct {
	// Telemetry is the topic carrying JSON sensor readings.
	Telemetry string `yaml:"telemetry"`
	// Solenoid receives a notification for every solenoid command.
	Solenoid string `yaml:"solenoid"`
	// Aerator receives a notification for every aerator command.
	Aerator string `yaml:"aerator"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains live feed settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains settings for the optional reading mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file is not an error: the gateway can run from defaults and
// environment alone. Environment variables follow the pattern
// AKUAPONIK_SECTION_KEY, for example AKUAPONIK_DATABASE_DSN or AKUAPONIK_API_PORT.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed, an override is malformed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config matching the deployment the gateway was
// built for: public EMQX broker, sensor/mac telemetry, HTTP on port 3000.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      "sqlite3",
			Path:        "./data/akuaponik.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "broker.emqx.io",
				Port:     1883,
				ClientID: "akuaponik-gateway",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Topics: MQTTTopicsConfig{
				Telemetry: "sensor/mac",
				Solenoid:  "solenoid_info",
				Aerator:   "aerator_info",
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	var errs []string

	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
				return
			}
			*dst = b
		}
	}

	// Database
	str("AKUAPONIK_DATABASE_DRIVER", &cfg.Database.Driver)
	str("AKUAPONIK_DATABASE_PATH", &cfg.Database.Path)
	str("AKUAPONIK_DATABASE_DSN", &cfg.Database.DSN)

	// MQTT
	str("AKUAPONIK_MQTT_HOST", &cfg.MQTT.Broker.Host)
	num("AKUAPONIK_MQTT_PORT", &cfg.MQTT.Broker.Port)
	flag("AKUAPONIK_MQTT_TLS", &cfg.MQTT.Broker.TLS)
	str("AKUAPONIK_MQTT_CLIENT_ID", &cfg.MQTT.Broker.ClientID)
	str("AKUAPONIK_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	str("AKUAPONIK_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)
	str("AKUAPONIK_MQTT_TELEMETRY_TOPIC", &cfg.MQTT.Topics.Telemetry)

	// API
	str("AKUAPONIK_API_HOST", &cfg.API.Host)
	num("AKUAPONIK_API_PORT", &cfg.API.Port)

	// InfluxDB
	flag("AKUAPONIK_INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	str("AKUAPONIK_INFLUXDB_URL", &cfg.InfluxDB.URL)
	str("AKUAPONIK_INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	// Logging
	str("AKUAPONIK_LOG_LEVEL", &cfg.Logging.Level)
	str("AKUAPONIK_LOG_FORMAT", &cfg.Logging.Format)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite3")
		}
	case "pgx":
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn is required for pgx (set AKUAPONIK_DATABASE_DSN)")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite3 or pgx", c.Database.Driver))
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Topics.Telemetry == "" {
		errs = append(errs, "mqtt.topics.telemetry is required")
	}
	if c.MQTT.Topics.Solenoid == "" || c.MQTT.Topics.Aerator == "" {
		errs = append(errs, "mqtt.topics.solenoid and mqtt.topics.aerator are required")
	}

	// Port 0 binds an ephemeral port.
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 0 and 65535")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not recognised", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the HTTP read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the HTTP write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the keep-alive idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
