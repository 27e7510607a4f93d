// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditService "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/service"
	auditUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/config"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	documentsUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/documents/usecase"
	escrowUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/http"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/locker"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/metrics"
	rotationUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager
	locks     *locker.KeyedMutex

	// Observability
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	metricsServer   *http.MetricsServer

	// Crypto services
	keyDerivation cryptoService.KeyDeriver
	keyWrapper    cryptoService.KeyWrapper
	kmsService    cryptoService.KMSService

	// Repositories
	userKeyRepo     cryptoUseCase.UserKeyRepository
	masterKeyRepo   cryptoUseCase.MasterKeyRepository
	documentKeyRepo documentsUseCase.DocumentKeyRepository
	rotationJobRepo rotationUseCase.RotationJobRepository
	escrowRepo      escrowUseCase.EscrowRepository
	auditLogRepo    auditUseCase.AuditLogRepository

	// Use Cases
	userKeyStore       cryptoUseCase.UserKeyStore
	baseMasterKeyStore cryptoUseCase.MasterKeyStore
	masterKeyStore     cryptoUseCase.MasterKeyStore
	documentKeyService documentsUseCase.DocumentKeyService
	rotationEngine     rotationUseCase.RotationEngine
	escrowService      escrowUseCase.EscrowService
	entrySigner        auditService.EntrySigner
	auditLog           auditUseCase.AuditLog

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	locksInit              sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	metricsServerInit      sync.Once
	keyDerivationInit      sync.Once
	keyWrapperInit         sync.Once
	kmsServiceInit         sync.Once
	userKeyRepoInit        sync.Once
	masterKeyRepoInit      sync.Once
	documentKeyRepoInit    sync.Once
	rotationJobRepoInit    sync.Once
	escrowRepoInit         sync.Once
	auditLogRepoInit       sync.Once
	userKeyStoreInit       sync.Once
	baseMasterKeyStoreInit sync.Once
	masterKeyStoreInit     sync.Once
	documentKeyServiceInit sync.Once
	rotationEngineInit     sync.Once
	escrowServiceInit      sync.Once
	entrySignerInit        sync.Once
	auditLogInit           sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Locks returns the process-wide keyed mutex used to serialize key lifecycle
// mutations per user and per master key purpose.
func (c *Container) Locks() *locker.KeyedMutex {
	c.locksInit.Do(func() {
		c.locks = locker.NewKeyedMutex()
	})
	return c.locks
}

// MetricsProvider returns the metrics provider instance.
// Returns nil when metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Returns a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MetricsServer returns the operational HTTP server serving metrics, health
// and readiness endpoints.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initMetricsServer creates the operational HTTP server with all its dependencies.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for metrics server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	server := http.NewMetricsServer(
		db,
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
		c.config.MetricsNamespace,
	)

	return server, nil
}
