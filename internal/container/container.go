package container

import (
	"context"
	"fmt"
	"net/http"

	"datadesk/adapters/excel"
	"datadesk/adapters/llm"
	"datadesk/adapters/memory"
	"datadesk/adapters/postgres"
	"datadesk/internal"
	"datadesk/internal/api"
	"datadesk/internal/config"
	"datadesk/internal/ingest"
	"datadesk/internal/storage"
	"datadesk/internal/usage"
	"datadesk/models"
	"datadesk/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	UserRepo   ports.UserRepository
	FileRepo   ports.FileRepository
	ResultRepo ports.ResultRepository
	Blobs      ports.BlobStorage
	LLM        ports.LLMClient

	// Services
	Usage  *usage.Service
	Ingest *ingest.Service

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		logger: internal.DefaultLogger.With("Container"),
	}

	return c, nil
}

// InitWithDatabase initializes components backed by PostgreSQL and local
// disk storage
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.UserRepo = postgres.NewUserRepository(db)
	c.FileRepo = postgres.NewFileRepository(db)
	c.ResultRepo = postgres.NewResultRepository(db)

	blobs, err := storage.NewLocalFileStorage(c.Config.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	c.Blobs = blobs

	c.initServices()
	c.logger.Info("Initialized with database and storage at %s", c.Config.Storage.UploadDir)
	return nil
}

// InitInMemory initializes every component in process memory. Nothing
// survives the process; the CLI runs this way.
func (c *Container) InitInMemory() {
	c.UserRepo = memory.NewUserRepository(models.DefaultPlans(c.Config.Ingest.DefaultPlanFiles))
	c.FileRepo = memory.NewFileRepository()
	c.ResultRepo = memory.NewResultRepository()
	c.Blobs = memory.NewBlobStorage()
	c.initServices()
	c.logger.Debug("Initialized in memory")
}

func (c *Container) initServices() {
	c.Usage = usage.NewService(c.UserRepo, c.FileRepo)
	c.LLM = c.newLLMClient()

	ai := c.Config.AI
	cfg := ingest.Config{
		MaxUploadBytes:      c.Config.Ingest.MaxUploadBytes,
		PreviewLimit:        c.Config.Ingest.PreviewLimit,
		AllowedExtensions:   c.Config.Ingest.AllowedExtensions,
		MaxConcurrentParses: c.Config.Ingest.MaxConcurrentParses,
		Reader:              excel.DefaultConfig(),
		LLMModel:            ai.Model,
		LLMMaxTokens:        ai.MaxTokens,
		ContextRows:         ai.ContextRows,
	}
	c.Ingest = ingest.NewService(cfg, c.FileRepo, c.ResultRepo, c.Blobs, c.Usage, c.LLM)
}

// newLLMClient returns nil without an API key so Ask reports the LLM as
// unavailable
func (c *Container) newLLMClient() ports.LLMClient {
	ai := c.Config.AI
	if ai.OpenAIKey == "" {
		c.logger.Warn("OPENAI_API_KEY not set; ask and summary endpoints are disabled")
		return nil
	}
	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      ai.OpenAIKey,
		BaseURL:     ai.BaseURL,
		Timeout:     ai.Timeout,
		Temperature: ai.Temperature,
	})
	if err != nil {
		c.logger.Warn("Failed to create LLM client: %v", err)
		return nil
	}
	return client
}

// Handler builds the HTTP handler for the initialized components
func (c *Container) Handler() (http.Handler, error) {
	if c.Ingest == nil {
		return nil, fmt.Errorf("container is not initialized")
	}
	files := api.NewFileHandler(c.Ingest, c.Usage, c.Config.Ingest.MaxUploadBytes)
	return api.NewRouter(api.RouterConfig{
		JWTSecret:      []byte(c.Config.Auth.JWTSecret),
		GinMode:        c.Config.Server.GinMode,
		RequestTimeout: c.Config.Server.RequestTimeout,
	}, files, c.UserRepo), nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
