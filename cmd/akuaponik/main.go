// Akuaponik Gateway - aquaponics telemetry and control
//
// This is the main entry point for the gateway. It:
//   - subscribes to pond sensor telemetry on the MQTT broker and stores it
//   - serves the REST API used by the mobile app for farms, ponds, sensors,
//     actuators, accounts, and access requests
//   - announces solenoid and aerator commands to field devices
//
// Configuration is read from a YAML file (see configs/config.yaml) with
// AKUAPONIK_* environment overrides. A .env file in the working directory
// is loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/akuaponik-iot/gateway/internal/access"
	"github.com/akuaponik-iot/gateway/internal/actuator"
	"github.com/akuaponik-iot/gateway/internal/api"
	"github.com/akuaponik-iot/gateway/internal/auth"
	"github.com/akuaponik-iot/gateway/internal/farm"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/config"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/influxdb"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/mqtt"
	"github.com/akuaponik-iot/gateway/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Variables already set in the environment win over .env.
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error { //nolint:gocognit,gocyclo // startup wiring is linear
	log := logging.Default()
	log.Info("starting akuaponik gateway",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath, err := getConfigPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Driver:      cfg.Database.Driver,
		Path:        cfg.Database.Path,
		DSN:         cfg.Database.DSN,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", db.Driver(), "path", db.Path())

	if schemaErr := db.EnsureSchema(ctx); schemaErr != nil {
		return fmt.Errorf("applying schema: %w", schemaErr)
	}

	// Connect to MQTT broker. An unreachable broker is not fatal; the
	// client keeps retrying in the background.
	mqttClient, err := mqtt.Connect(cfg.MQTT, log.With("component", "mqtt"))
	if err != nil {
		return fmt.Errorf("configuring MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	// Connect to InfluxDB (optional)
	var (
		mirror       telemetry.Mirror
		mirrorHealth api.HealthChecker
	)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		log.Warn("InfluxDB unavailable, readings will not be mirrored", "error", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror, mirrorHealth = influxClient, influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Live feed hub, shared by the subscriber, the actuator service and the API.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(hubCtx)

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2

	// Telemetry ingestion
	subCtx, stopSubscriber := context.WithCancel(ctx)
	defer stopSubscriber()
	readings := telemetry.NewSQLRepository(db)
	subscriber := telemetry.NewSubscriber(telemetry.SubscriberDeps{
		Repo:     readings,
		Source:   mqttClient,
		Topic:    cfg.MQTT.Topics.Telemetry,
		QoS:      qos,
		Mirror:   mirror,
		Notifier: hub,
		Logger:   log,
	})
	if subErr := subscriber.Start(subCtx); subErr != nil {
		return fmt.Errorf("subscribing to telemetry: %w", subErr)
	}

	// Domain services
	accounts := auth.NewService(auth.NewUserRepository(db), auth.NewArgon2idHasher())
	actuators := actuator.NewService(actuator.ServiceDeps{
		Repo:      actuator.NewSQLRepository(db),
		Publisher: mqttClient,
		Notifier:  hub,
		Logger:    log,
		Topics: map[actuator.Kind]string{
			actuator.Solenoid: cfg.MQTT.Topics.Solenoid,
			actuator.Aerator:  cfg.MQTT.Topics.Aerator,
		},
		QoS: qos,
	})

	// HTTP API
	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Store:     db,
		Broker:    mqttClient,
		Mirror:    mirrorHealth,
		Accounts:  accounts,
		Farms:     farm.NewSQLRepository(db),
		Readings:  readings,
		Actuators: actuators,
		Access:    access.NewService(access.NewSQLRepository(db), accounts),
		Hub:       hub,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// The subscriber already stops taking messages: its context derives
	// from ctx. Deferred calls then run in reverse order:
	// 1. API server
	// 2. Live feed hub
	// 3. InfluxDB (flushes pending points)
	// 4. MQTT
	// 5. Database

	return nil
}

// getConfigPath returns the configuration file path.
// The --config flag wins, then AKUAPONIK_CONFIG, then the default.
func getConfigPath(args []string) (string, error) {
	flags := pflag.NewFlagSet("akuaponik", pflag.ContinueOnError)
	path := flags.StringP("config", "c", "", "path to the YAML configuration file")
	if err := flags.Parse(args); err != nil {
		return "", fmt.Errorf("parsing flags: %w", err)
	}

	if *path != "" {
		return *path, nil
	}
	if env := os.Getenv("AKUAPONIK_CONFIG"); env != "" {
		return env, nil
	}
	return defaultConfigPath, nil
}
