package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/cloudgrid/api-gateway/config"
	"github.com/cloudgrid/api-gateway/gateway"
	"github.com/cloudgrid/api-gateway/query"
	"github.com/cloudgrid/api-gateway/repositories"
	"github.com/cloudgrid/api-gateway/repositories/postgres"
	"github.com/cloudgrid/api-gateway/services"
	"github.com/cloudgrid/api-gateway/session"
	"go.uber.org/zap"
)

// Version is reported by the listCapabilities command; set at build time.
var Version = "dev"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection: every
// collaborator the dispatcher and session manager use is constructed and
// passed in here, never reached through a process-wide singleton.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Users    repositories.UserRepository
	Accounts repositories.AccountRepository
	Domains  repositories.DomainRepository

	// Services
	SessionKeys *services.SessionKeys
	Directory   *services.Directory
	Verifier    *services.SignatureVerifier
	Commands    *services.CommandRegistry

	// Gateway
	SessionStore *session.Store
	Sessions     *session.Manager
	Dispatcher   *gateway.Dispatcher
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
	deps.initServices(cfg)
	deps.initGateway()
	deps.registerCommands()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Users = postgres.NewUserRepository(d.DB, d.Logger)
	d.Accounts = postgres.NewAccountRepository(d.DB, d.Logger)
	d.Domains = postgres.NewDomainRepository(d.DB, d.Logger)
	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.SessionKeys = services.NewSessionKeys(cfg.Auth.SessionKeySecret, cfg.Auth.SessionKeyTTL)
	d.Directory = services.NewDirectory(d.Users, d.Accounts, d.Domains, d.SessionKeys, d.Logger)
	d.Verifier = services.NewSignatureVerifier(d.Users, d.Logger)
	d.Commands = services.NewCommandRegistry(d.Logger)
}

func (d *Dependencies) initGateway() {
	d.SessionStore = session.NewStore(d.Logger)
	d.Sessions = session.NewManager(d.SessionStore, d.Directory, d.Logger)
	d.Dispatcher = gateway.NewDispatcher(
		d.Sessions,
		d.SessionStore,
		d.Verifier,
		d.Commands,
		d.SessionKeys,
		d.Directory,
		d.Logger,
	)
	d.Logger.Info("request dispatcher initialized")
}

// registerCommands installs the commands served by the gateway itself.
// Everything else belongs to downstream orchestration services.
func (d *Dependencies) registerCommands() {
	d.Commands.Register("listCapabilities", func(ctx context.Context, params query.Params, out *bytes.Buffer) int {
		fmt.Fprintf(out, `{"listcapabilitiesresponse":{"capability":{"gatewayversion":%q}}}`, Version)
		return http.StatusOK
	})
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
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
