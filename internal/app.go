// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"dinero/internal/config"
	"dinero/internal/ledger"
	"dinero/internal/ledger/nocodb"
	"dinero/internal/ledger/postgres"
	"dinero/internal/rules"
	"dinero/internal/source/plaid"
	"dinero/internal/util"
	"dinero/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	Location *time.Location
	Rules    rules.Table

	// DB is only connected for the postgres backend, lazily on first use.
	DB *sqlx.DB
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads configuration, sets up logging, resolves the reference
// timezone and loads the rule table. It does not touch the database; stores
// are opened on demand because the NocoDB backend needs a year to bind to.
func (app *Application) Initialize(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	app.Location = loc

	// Rule table: read once at startup, cached for the process lifetime.
	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rule table: %w", err)
	}
	app.Rules = table
	app.Logger.Info("Rule table loaded", "rules", len(table), "path", cfg.RulesPath)

	return nil
}

// OpenStore returns the configured ledger backend. For NocoDB the store is
// bound to the yearly table for `year`; the relational backend ignores it.
func (app *Application) OpenStore(ctx context.Context, year int) (ledger.Store, error) {
	switch app.Config.Backend {
	case "postgres", "":
		pg, err := app.postgresStore()
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "nocodb":
		cfg := nocodb.Config{
			Host:    app.Config.NocoDB.Host,
			Token:   app.Config.NocoDB.Token,
			Org:     app.Config.NocoDB.Org,
			Project: app.Config.NocoDB.Project,
		}
		return nocodb.NewStore(cfg, year, nil, app.Logger), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", app.Config.Backend)
	}
}

// PostgresStore returns the relational store regardless of the configured
// backend. Schema management and dataset export always run against it.
func (app *Application) PostgresStore() (*postgres.Store, error) {
	return app.postgresStore()
}

func (app *Application) postgresStore() (*postgres.Store, error) {
	if app.DB == nil {
		database, err := db.NewPostgresDB(app.Config.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		app.Logger.Info("Database connection established.")
	}
	return postgres.NewStore(app.DB, app.DB, db.BeginTx, db.CommitTx, db.RollbackTx, app.Logger), nil
}

// PlaidClient constructs the aggregation API client for this run.
func (app *Application) PlaidClient() *plaid.Client {
	cfg := plaid.Config{
		ClientID:        app.Config.Plaid.ClientID,
		Secret:          app.Config.Plaid.Secret,
		BaseURL:         plaidBaseURL(app.Config.Plaid.Env),
		Tokens:          app.Config.Plaid.Tokens,
		AccountIDToName: app.Config.Plaid.AccountIDToName,
	}
	return plaid.NewClient(cfg, nil, app.Location, app.Logger)
}

func plaidBaseURL(env string) string {
	switch env {
	case "sandbox", "development", "production":
		return fmt.Sprintf("https://%s.plaid.com", env)
	case "":
		return "https://sandbox.plaid.com"
	default:
		// Allow a full URL for testing against a fake server.
		return env
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	return nil
}
