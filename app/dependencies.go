// Package app wires configuration, storage, services, middleware, and
// handlers into a single dependency graph.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oneclass/platform/auth"
	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/handlers"
	"github.com/oneclass/platform/middleware"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/repositories/postgres"
	"github.com/oneclass/platform/services/audit"
	"github.com/oneclass/platform/services/directory"
	"github.com/oneclass/platform/services/schools"
	"github.com/oneclass/platform/tenancy"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Schools   repositories.SchoolRepository
	Users     repositories.UserRepository
	Students  repositories.StudentRepository
	Invoices  repositories.InvoiceRepository
	Classes   repositories.ClassRepository
	AuditLogs repositories.AuditRepository
	TxManager repositories.TransactionManager

	// Services
	Directory     *directory.Service
	Auth          *auth.Service
	Audit         *audit.Service
	SchoolService *schools.Service

	// Tenancy pipeline
	Tenancy *middleware.TenancyMiddleware

	// Handlers
	HealthHandler   *handlers.HealthHandler
	AuthHandler     *handlers.AuthHandler
	SchoolHandler   *handlers.SchoolHandler
	PlatformHandler *handlers.PlatformHandler
	StudentHandler  *handlers.StudentHandler
	InvoiceHandler  *handlers.InvoiceHandler
	ClassHandler    *handlers.ClassHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initTenancy(cfg)
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection pool and applies
// pending migrations.
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Schools = repos.Schools
	d.Users = repos.Users
	d.Students = repos.Students
	d.Invoices = repos.Invoices
	d.Classes = repos.Classes
	d.AuditLogs = repos.Audit
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices initializes the domain services. The audit workers start
// here so every later service can record entries.
func (d *Dependencies) initServices(cfg *config.Config) error {
	dir, err := directory.NewService(d.Schools, cfg.Directory, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create directory service: %w", err)
	}
	d.Directory = dir

	d.Auth = auth.NewService(d.Users, cfg.Auth, d.Logger)

	d.Audit = audit.NewService(d.AuditLogs, d.Logger, audit.DefaultConfig())
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	d.SchoolService = schools.NewService(
		d.Schools,
		d.Users,
		d.TxManager,
		d.Auth,
		d.Directory,
		d.Audit,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initTenancy wires the resolver and the middleware pipeline around it
func (d *Dependencies) initTenancy(cfg *config.Config) {
	resolver := tenancy.NewResolver(d.Directory, d.Auth, cfg, d.Logger)
	d.Tenancy = middleware.NewTenancyMiddleware(resolver, d.Auth, d.Audit, d.Logger)
	d.Logger.Info("tenancy pipeline initialized",
		zap.String("base_domain", cfg.Tenancy.BaseDomain),
		zap.Bool("dev_fallback", cfg.Tenancy.DevFallbackEnabled))
}

// initHandlers initializes all HTTP handlers
func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.HealthHandler = handlers.NewHealthHandler(d.DB, cfg.Environment, d.Logger)
	d.AuthHandler = handlers.NewAuthHandler(d.Auth, d.Directory, cfg, d.Logger)
	d.SchoolHandler = handlers.NewSchoolHandler(d.SchoolService, d.Directory, cfg, d.Logger)
	d.PlatformHandler = handlers.NewPlatformHandler(d.SchoolService, d.AuditLogs, d.Logger)
	d.StudentHandler = handlers.NewStudentHandler(d.Students, d.Logger)
	d.InvoiceHandler = handlers.NewInvoiceHandler(d.Invoices, d.Students, d.Logger)
	d.ClassHandler = handlers.NewClassHandler(d.Classes, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Flush the audit queue before the database goes away
	if d.Audit != nil {
		if err := d.Audit.Stop(5 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.Directory != nil {
		d.Directory.Close()
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
