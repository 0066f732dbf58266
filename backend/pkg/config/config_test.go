package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD",
		"SCHEMA_DIR", "ON_DELETE", "VALIDATION_MODE", "QUERY_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.OnDelete != DeleteRestrict {
		t.Errorf("Expected default delete policy restrict, got %s", cfg.OnDelete)
	}
	if cfg.ValidationMode != ValidationStrict {
		t.Errorf("Expected default validation mode strict, got %s", cfg.ValidationMode)
	}
	if cfg.QueryTimeout != 30*time.Second {
		t.Errorf("Expected default query timeout 30s, got %s", cfg.QueryTimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ON_DELETE", "cascade")
	t.Setenv("VALIDATION_MODE", "lenient")
	t.Setenv("QUERY_TIMEOUT_SECONDS", "5")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OnDelete != DeleteCascade {
		t.Errorf("Expected cascade, got %s", cfg.OnDelete)
	}
	if cfg.ValidationMode != ValidationLenient {
		t.Errorf("Expected lenient, got %s", cfg.ValidationMode)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.QueryTimeout)
	}
	if !cfg.IsProduction() {
		t.Error("Expected production mode")
	}
}

func TestLoad_InvalidDeletePolicy(t *testing.T) {
	t.Setenv("ON_DELETE", "ignore")

	if _, err := Load(); err == nil {
		t.Fatal("Expected invalid delete policy to fail validation")
	}
}

func TestLoad_InvalidValidationMode(t *testing.T) {
	t.Setenv("VALIDATION_MODE", "sometimes")

	if _, err := Load(); err == nil {
		t.Fatal("Expected invalid validation mode to fail validation")
	}
}

func TestValidate_MissingNeo4jURI(t *testing.T) {
	cfg := &Config{
		Neo4jUser:      "neo4j",
		Neo4jPassword:  "password",
		OnDelete:       DeleteRestrict,
		ValidationMode: ValidationStrict,
		QueryTimeout:   time.Second,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected missing NEO4J_URI to fail validation")
	}
}
