package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Delete policy values for entities that are still referenced by relationships.
const (
	DeleteRestrict = "restrict"
	DeleteCascade  = "cascade"
)

// Validation modes for properties not declared in the schema.
const (
	ValidationStrict  = "strict"
	ValidationLenient = "lenient"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Schema catalogs
	SchemaDir string

	// Behavior
	OnDelete       string
	ValidationMode string
	QueryTimeout   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		SchemaDir:      getEnv("SCHEMA_DIR", "schemas"),
		OnDelete:       getEnv("ON_DELETE", DeleteRestrict),
		ValidationMode: getEnv("VALIDATION_MODE", ValidationStrict),
		QueryTimeout:   time.Duration(getEnvInt("QUERY_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USERNAME is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.OnDelete != DeleteRestrict && c.OnDelete != DeleteCascade {
		return fmt.Errorf("ON_DELETE must be %q or %q, got %q", DeleteRestrict, DeleteCascade, c.OnDelete)
	}
	if c.ValidationMode != ValidationStrict && c.ValidationMode != ValidationLenient {
		return fmt.Errorf("VALIDATION_MODE must be %q or %q, got %q", ValidationStrict, ValidationLenient, c.ValidationMode)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
