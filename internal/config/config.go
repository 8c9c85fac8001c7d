package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// PublicBaseURL, when set, is prepended to stored blob keys in API
	// responses. When empty the raw key is returned as-is.
	PublicBaseURL string

	// Auth secrets. StaffSecret gates privileged mutation endpoints,
	// AdminSecret gates the instax-history endpoints.
	StaffSecret string
	AdminSecret string

	// IDStrategy selects how entity identifiers are generated and
	// validated: "uuid" or "serial".
	IDStrategy string

	// MaidListDefault controls GET /maids when is_active is omitted:
	// "all" (no filter) or "active" (is_active=true only).
	MaidListDefault string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "cafe-images"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		StaffSecret: getEnv("STAFF_SECRET", ""),
		AdminSecret: getEnv("ADMIN_SECRET", ""),

		IDStrategy:      getEnv("ID_STRATEGY", "uuid"),
		MaidListDefault: getEnv("MAID_LIST_DEFAULT", "all"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IDStrategy != "uuid" && c.IDStrategy != "serial" {
		return fmt.Errorf("ID_STRATEGY must be \"uuid\" or \"serial\", got %q", c.IDStrategy)
	}
	if c.MaidListDefault != "all" && c.MaidListDefault != "active" {
		return fmt.Errorf("MAID_LIST_DEFAULT must be \"all\" or \"active\", got %q", c.MaidListDefault)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
