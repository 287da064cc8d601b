package container

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gowelch/adapters/memory"
	"gowelch/adapters/postgres"
	"gowelch/app"
	"gowelch/internal"
	"gowelch/internal/api"
	"gowelch/internal/batch"
	"gowelch/internal/config"
	"gowelch/internal/errors"
	"gowelch/internal/migration"
	"gowelch/ports"
	"gowelch/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	AnalysisRepo ports.AnalysisRepository

	// Services
	Executor     *batch.Executor
	WelchService *app.WelchService

	// HTTP surface
	APIHandler *api.WelchHandler
	API        *gin.Engine
	UI         *ui.App

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		logger: internal.DefaultLogger.Named("Container"),
	}, nil
}

// Init wires every component. With a database URL it connects and migrates;
// otherwise analyses are kept in memory for the life of the process.
func (c *Container) Init(ctx context.Context) error {
	if c.Config.Database.Enabled() {
		db, err := initDatabase(ctx, c.Config.Database.URL)
		if err != nil {
			return err
		}
		c.InitWithDatabase(db)
	} else {
		c.logger.Warn("DATABASE_URL not set, saved analyses are kept in memory")
		c.AnalysisRepo = memory.NewAnalysisRepository()
	}

	return c.initServices()
}

// InitWithDatabase uses an existing connection for the repositories
func (c *Container) InitWithDatabase(db *sqlx.DB) {
	c.DB = db
	c.AnalysisRepo = postgres.NewAnalysisRepository(db)
}

func (c *Container) initServices() error {
	gin.SetMode(c.Config.Server.GinMode)

	c.Executor = batch.NewExecutor(c.Config.Batch.Concurrency)
	c.WelchService = app.NewWelchService(c.AnalysisRepo, c.Config.Analysis, c.Executor)
	c.APIHandler = api.NewWelchHandler(c.WelchService, c.Config.Server.MaxUploadBytes())
	c.API = api.NewEngine(c.APIHandler)

	uiApp, err := ui.NewApp(ui.Config{Port: c.Config.Server.Port, Defaults: c.Config.Analysis}, c.WelchService, c.API)
	if err != nil {
		return errors.Wrap(err, "failed to initialize UI")
	}
	c.UI = uiApp
	return nil
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
