package config

import "os"

type Config struct {
	// ServerURL is the base URL of the docchat server API.
	ServerURL string
	// Debug enables verbose logging.
	Debug bool
}

// Load loads configuration from environment and defaults
func Load() (*Config, error) {
	serverURL := os.Getenv("DOCCHAT_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:3001"
	}

	debug := false
	if raw := os.Getenv("DEBUG"); raw == "true" || raw == "1" {
		debug = true
	}

	return &Config{
		ServerURL: serverURL,
		Debug:     debug,
	}, nil
}
