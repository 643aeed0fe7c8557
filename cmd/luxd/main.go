// luxd - automatic display brightness daemon
//
// luxd evaluates a time-of-day schedule (with optional astronomical
// sunrise/sunset rules) and drives the brightness of attached displays
// through an MQTT bridge. It exposes a local REST API for rule
// management and records applied changes for auditing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lumatech/luxd/migrations"

	"github.com/lumatech/luxd/internal/api"
	"github.com/lumatech/luxd/internal/infrastructure/config"
	"github.com/lumatech/luxd/internal/infrastructure/database"
	"github.com/lumatech/luxd/internal/infrastructure/influxdb"
	"github.com/lumatech/luxd/internal/infrastructure/logging"
	"github.com/lumatech/luxd/internal/infrastructure/mqtt"
	"github.com/lumatech/luxd/internal/monitor"
	"github.com/lumatech/luxd/internal/process"
	"github.com/lumatech/luxd/internal/schedule"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error lets main handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting luxd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	loc, err := cfg.TimeLocation()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}

	// Open database and apply migrations
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
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
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Schedule store seeded with the site coordinates; a persisted
	// document replaces these when the runner loads it.
	repo := schedule.NewSQLiteRepository(db.DB)
	store := schedule.NewStore(schedule.SunConfig{
		Latitude:  cfg.Site.Location.Latitude,
		Longitude: cfg.Site.Location.Longitude,
	})
	store.SetLogger(log)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	qos := byte(cfg.MQTT.QoS)

	// Start the managed DDC bridge helper before subscribing, so its
	// retained monitor state is fresh when the controller comes up.
	var supervisor *process.Supervisor
	if cfg.Bridge.Managed {
		supervisor = process.NewSupervisor(process.Config{
			Name:               "ddc-bridge",
			Binary:             cfg.Bridge.Binary,
			Args:               cfg.Bridge.Args,
			RestartOnFailure:   cfg.Bridge.RestartOnFailure,
			RestartDelay:       time.Duration(cfg.Bridge.RestartDelaySeconds) * time.Second,
			MaxRestartAttempts: cfg.Bridge.MaxRestartAttempts,
		})
		supervisor.SetLogger(log)
		if startErr := supervisor.Start(ctx); startErr != nil {
			return fmt.Errorf("starting bridge helper: %w", startErr)
		}
		defer func() {
			log.Info("stopping bridge helper")
			if stopErr := supervisor.Stop(); stopErr != nil {
				log.Error("error stopping bridge helper", "error", stopErr)
			}
		}()
	} else {
		log.Info("bridge helper not managed, expecting external bridge")
	}

	// Monitor controller mirrors bridge state into memory
	controller := monitor.NewController(mqttClient,
		monitor.WithQoS(qos),
		monitor.WithLogger(log),
	)
	if err := controller.Start(); err != nil {
		return fmt.Errorf("starting monitor controller: %w", err)
	}
	defer controller.Stop()

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Schedule runner
	runnerOpts := []schedule.RunnerOption{
		schedule.WithEventStore(repo),
		schedule.WithNotifier(&mqttNotifier{client: mqttClient, qos: qos}),
		schedule.WithTickInterval(cfg.TickInterval()),
		schedule.WithLocation(loc),
		schedule.WithRunnerLogger(log),
	}
	if influxClient != nil {
		runnerOpts = append(runnerOpts, schedule.WithTelemetry(influxClient))
	}
	runner := schedule.NewRunner(store, repo, controller, runnerOpts...)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("starting schedule runner: %w", err)
	}
	defer runner.Stop()

	// HTTP API
	apiServer, err := api.New(api.Deps{
		Config:     *cfg,
		Logger:     log,
		Store:      store,
		Evaluator:  schedule.NewEvaluator(store),
		Runner:     runner,
		Monitors:   controller,
		Events:     repo,
		Supervisor: supervisor,
		Location:   loc,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("luxd stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the LUXD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUXD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// mqttNotifier adapts the MQTT client to the runner's notifier
// interface, publishing applied-rule events on the schedule topic.
type mqttNotifier struct {
	client *mqtt.Client
	topics mqtt.Topics
	qos    byte
}

func (n *mqttNotifier) RuleApplied(ruleID string, payload []byte) error {
	return n.client.Publish(n.topics.RuleApplied(ruleID), payload, n.qos, false)
}
