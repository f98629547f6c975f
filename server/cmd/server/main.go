package main

import (
	"os"

	"github.com/bhandras/docchat/pkg/logger"
	"github.com/bhandras/docchat/pkg/version"
	"github.com/bhandras/docchat/server/internal/api/handlers"
	"github.com/bhandras/docchat/server/internal/api/middleware"
	"github.com/bhandras/docchat/server/internal/assistant"
	"github.com/bhandras/docchat/server/internal/config"
	"github.com/bhandras/docchat/server/internal/orchestrator"
	"github.com/bhandras/docchat/server/internal/registry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Thread registry: in-memory by default, sqlite when configured
	var threads registry.Registry = registry.NewMemory()
	if cfg.DatabasePath != "" {
		logger.Infof("Opening thread registry: %s", cfg.DatabasePath)
		store, err := registry.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			logger.Errorf("Failed to open thread registry: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		threads = store
	}

	// Remote assistant engine
	engine := assistant.NewClient(cfg.OpenAIAPIKey, cfg.AssistantID, cfg.VectorStoreID)
	runner := orchestrator.New(engine, threads, cfg.PollInterval, cfg.RunTimeout)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Docchat Server!")
	})

	// Query streaming endpoint
	queryHandler := handlers.NewQueryHandler(runner)
	router.POST("/api/query/stream", queryHandler.StreamQuery)

	// Start HTTP server
	logger.Infof("Docchat Server %s starting on http://localhost%s",
		version.RichVersion(), cfg.Addr)
	logger.Infof("Assistant: %s, vector store: %s", cfg.AssistantID, cfg.VectorStoreID)

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
