// Package wire provides dependency injection for the fitout application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/fitout/internal/adapters/cli"
	"github.com/example/fitout/internal/adapters/httpapi"
	"github.com/example/fitout/internal/adapters/metrics"
	"github.com/example/fitout/internal/adapters/sqlite"
	"github.com/example/fitout/internal/app"
	"github.com/example/fitout/internal/config"
	"github.com/example/fitout/internal/core/pipeline"
	"github.com/example/fitout/internal/db"
	"github.com/example/fitout/internal/logging"
	"github.com/example/fitout/internal/ports/primary"
)

var (
	cfg           *config.Config
	logger        *zap.Logger
	database      *sql.DB
	recorder      *metrics.Recorder
	clientService primary.ClientService
	ledgerService primary.LedgerService
	once          sync.Once
	initErr       error
	logProfile    = config.CLILogging
)

// UseLogProfile sets the log defaults applied when the configuration leaves
// them unset. It has no effect once services are initialized.
func UseLogProfile(p config.LogProfile) {
	logProfile = p
}

// Init builds every service from the configuration resolved for dir.
// Later calls return the first result.
func Init(dir string) error {
	once.Do(func() {
		initErr = initServices(dir)
	})
	return initErr
}

func ensure() {
	dir, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	if err := Init(dir); err != nil {
		log.Fatalf("failed to initialize fitout: %v", err)
	}
}

// initServices initializes all services and their dependencies.
func initServices(dir string) error {
	var err error
	cfg, err = config.Resolve(dir)
	if err != nil {
		return err
	}

	cfg.ApplyLogDefaults(logProfile)
	logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		if dbPath, err = db.DefaultPath(); err != nil {
			return err
		}
	}
	database, err = db.Open(dbPath)
	if err != nil {
		return err
	}

	pipelineFile := cfg.PipelineFile
	if pipelineFile != "" && !filepath.IsAbs(pipelineFile) {
		pipelineFile = filepath.Join(dir, pipelineFile)
	}
	pipe, err := config.LoadPipeline(pipelineFile)
	if err != nil {
		return err
	}
	engine, err := pipeline.New(pipe.EngineConfig())
	if err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}
	catalog, err := pipe.LedgerCatalog()
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	clientRepo := sqlite.NewClientRepository(database)
	ledgerRepo := sqlite.NewLedgerRepository(database)
	crewRepo := sqlite.NewCrewRepository(database)

	// Both services share the lock table so ledger commands and approval
	// serialize on the same client.
	locks := app.NewClientLocks()
	recorder = metrics.NewRecorder()

	clientService = app.NewClientService(engine, clientRepo, ledgerRepo, locks, logger, recorder)
	ledgerService = app.NewLedgerService(clientRepo, ledgerRepo, crewRepo, catalog, locks, logger, recorder)

	schema, err := db.SchemaVersion(database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Debug("services initialized",
		zap.String("database", dbPath),
		zap.Int("schema_version", schema),
		zap.String("pipeline", pipelineFile),
		zap.Int("stages", len(engine.Stages())))
	return nil
}

// Close flushes the logger and closes the database if they were opened.
func Close() error {
	if logger != nil {
		_ = logger.Sync()
	}
	if database != nil {
		return database.Close()
	}
	return nil
}

// Config returns the effective configuration.
func Config() *config.Config {
	ensure()
	return cfg
}

// SchemaVersion returns the database's applied migration version.
func SchemaVersion() (int, error) {
	ensure()
	return db.SchemaVersion(database)
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	ensure()
	return logger
}

// ClientService returns the singleton ClientService instance.
func ClientService() primary.ClientService {
	ensure()
	return clientService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	ensure()
	return ledgerService
}

// HTTPHandler returns the JSON API routed over the singleton services.
func HTTPHandler() http.Handler {
	ensure()
	return httpapi.NewServer(clientService, ledgerService, logger, recorder).Routes()
}

// ClientAdapter returns a new ClientAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ClientAdapter() *cliadapter.ClientAdapter {
	return ClientAdapterWithOutput(os.Stdout)
}

// ClientAdapterWithOutput returns a new ClientAdapter writing to the given output.
func ClientAdapterWithOutput(out io.Writer) *cliadapter.ClientAdapter {
	ensure()
	return cliadapter.NewClientAdapter(clientService, out)
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
func LedgerAdapter() *cliadapter.LedgerAdapter {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a new LedgerAdapter writing to the given output.
func LedgerAdapterWithOutput(out io.Writer) *cliadapter.LedgerAdapter {
	ensure()
	return cliadapter.NewLedgerAdapter(ledgerService, out)
}
