package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// OpenAIAPIKey authenticates against the remote assistant engine.
	OpenAIAPIKey string
	// AssistantID is the pre-provisioned assistant to run queries against.
	AssistantID string
	// VectorStoreID is the pre-provisioned document index for file search.
	VectorStoreID string
	// DatabasePath, when non-empty, enables the sqlite-backed thread
	// registry so known threads survive restarts.
	DatabasePath string
	// PollInterval is the delay between run status polls.
	PollInterval time.Duration
	// RunTimeout bounds the total polling time for one run.
	RunTimeout     time.Duration
	Debug          bool
	AllowedOrigins []string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr          *string
	OpenAIAPIKey  *string
	AssistantID   *string
	VectorStoreID *string
	DatabasePath  *string
	Debug         *bool
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 3001
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if overrides.OpenAIAPIKey != nil {
		apiKey = *overrides.OpenAIAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	assistantID := os.Getenv("ASSISTANT_ID")
	if overrides.AssistantID != nil {
		assistantID = *overrides.AssistantID
	}
	if assistantID == "" {
		return nil, fmt.Errorf("ASSISTANT_ID environment variable is required")
	}

	vectorStoreID := os.Getenv("VECTOR_STORE_ID")
	if overrides.VectorStoreID != nil {
		vectorStoreID = *overrides.VectorStoreID
	}
	if vectorStoreID == "" {
		return nil, fmt.Errorf("VECTOR_STORE_ID environment variable is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	pollInterval := 500 * time.Millisecond
	if raw := os.Getenv("POLL_INTERVAL_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			pollInterval = time.Duration(ms) * time.Millisecond
		}
	}

	runTimeout := 300 * time.Second
	if raw := os.Getenv("RUN_TIMEOUT_SECONDS"); raw != "" {
		if s, err := strconv.Atoi(raw); err == nil && s > 0 {
			runTimeout = time.Duration(s) * time.Second
		}
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	return &Config{
		Addr:           addr,
		OpenAIAPIKey:   apiKey,
		AssistantID:    assistantID,
		VectorStoreID:  vectorStoreID,
		DatabasePath:   dbPath,
		PollInterval:   pollInterval,
		RunTimeout:     runTimeout,
		Debug:          debug,
		AllowedOrigins: []string{"*"},
	}, nil
}
