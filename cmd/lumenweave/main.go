// Lumenweave Core - Lighting Choreography Compiler
//
// This is the main entry point for the Lumenweave Core application.
// Lumenweave compiles reusable choreography templates into per-fixture
// DMX channel segments for a moving-head rig, plans the transitions
// between show sections, and serves the results to renderers and
// operator consoles over HTTP, WebSocket, and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lumenweave/lumenweave-core/migrations"

	"github.com/lumenweave/lumenweave-core/internal/api"
	"github.com/lumenweave/lumenweave-core/internal/auth"
	"github.com/lumenweave/lumenweave-core/internal/compiler"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/config"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/database"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/logging"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/mqtt"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/tsdb"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/template"
	"github.com/lumenweave/lumenweave-core/internal/transition"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error { //nolint:gocognit // sequential startup wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumenweave Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Seed the first admin account on an empty user table. The generated
	// password is logged once; the operator must change it.
	userRepo := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Load the template catalogue
	registry := template.NewRegistry(template.NewSQLiteRepository(db.DB))
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading template catalogue: %w", refreshErr)
	}

	if cfg.Templates.ImportDir != "" {
		imported, importErr := template.ImportDir(ctx, cfg.Templates.ImportDir, registry)
		if importErr != nil {
			return fmt.Errorf("importing templates from %s: %w", cfg.Templates.ImportDir, importErr)
		}
		log.Info("template import complete", "dir", cfg.Templates.ImportDir, "imported", imported)
	}

	// Load the rig profile
	showRig, err := rig.LoadProfile(cfg.Rig.ProfilePath)
	if err != nil {
		return fmt.Errorf("loading rig profile: %w", err)
	}
	log.Info("rig profile loaded",
		"path", cfg.Rig.ProfilePath,
		"fixtures", showRig.Size(),
		"groups", len(showRig.GroupNames()),
	)

	// Build the compiler and transition engines
	comp, err := compiler.New(showRig,
		compiler.WithLogger(log),
		compiler.WithSampleCounts(cfg.Compiler.MovementSamples, cfg.Compiler.DimmerSamples),
	)
	if err != nil {
		return fmt.Errorf("creating compiler: %w", err)
	}

	planner := transition.NewPlanner(transition.WithPlannerLogger(log))
	blender := transition.NewBlender(transition.WithBlenderLogger(log))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled; compiled sections served over HTTP/WebSocket only")
	}

	// Connect to InfluxDB (optional)
	var tsdbClient *tsdb.Client
	if cfg.InfluxDB.Enabled {
		tsdbClient, err = tsdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		tsdbClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log,
		Templates: registry,
		Rig:       showRig,
		Compiler:  comp,
		Planner:   planner,
		Blender:   blender,
		Users:     userRepo,
		MQTT:      mqttClient,
		TSDB:      tsdbClient,
		ShowID:    cfg.Show.ID,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, tsdbClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"show_id", cfg.Show.ID,
		"show_name", cfg.Show.Name,
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Lumenweave Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LUMENWEAVE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMENWEAVE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and tsdbClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, tsdbClient *tsdb.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if tsdbClient != nil {
		if err := tsdbClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
