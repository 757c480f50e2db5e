package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// PostgresRegistryConfig configures the PostgreSQL-backed registry.
// Unset fields fall back to the standard PG* environment variables.
type PostgresRegistryConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSL      bool   `json:"ssl" yaml:"ssl"`
}

// PostgresRegistry stores prototypes in PostgreSQL, for deployments where
// the prototype catalog is shared across services.
type PostgresRegistry struct {
	mu      sync.RWMutex
	db      *sql.DB
	connStr string
}

// NewPostgresRegistry creates a PostgreSQL registry. Connect must be called
// before use.
func NewPostgresRegistry(config PostgresRegistryConfig) *PostgresRegistry {
	if config.Host == "" {
		config.Host = getEnvOrDefault("PGHOST", "localhost")
	}
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.User == "" {
		config.User = getEnvOrDefault("PGUSER", "postgres")
	}
	if config.Password == "" {
		config.Password = os.Getenv("PGPASSWORD")
	}
	if config.Database == "" {
		config.Database = os.Getenv("PGDATABASE")
	}

	return &PostgresRegistry{connStr: buildConnectionString(config)}
}

func buildConnectionString(config PostgresRegistryConfig) string {
	sslMode := "disable"
	if config.SSL {
		sslMode = "require"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Database, sslMode,
	)
	if config.Password != "" {
		connStr += fmt.Sprintf(" password=%s", config.Password)
	}
	return connStr
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Connect opens the connection pool and ensures the schema exists.
func (r *PostgresRegistry) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", r.connStr)
	if err != nil {
		return fmt.Errorf("postgres registry: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("postgres registry: failed to ping database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS prototypes (
			id TEXT NOT NULL,
			family TEXT NOT NULL,
			weights JSONB NOT NULL,
			gates JSONB,
			PRIMARY KEY (family, id)
		);

		CREATE INDEX IF NOT EXISTS idx_prototypes_family ON prototypes(family);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("postgres registry: failed to create schema: %w", err)
	}

	r.db = db
	return nil
}

// GetPrototypesByType implements shared.Registry.
func (r *PostgresRegistry) GetPrototypesByType(family string) ([]*shared.Prototype, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return nil, fmt.Errorf("postgres registry: not connected")
	}

	rows, err := r.db.Query(`
		SELECT id, family, weights, gates FROM prototypes
		WHERE family = $1 ORDER BY id
	`, family)
	if err != nil {
		return nil, fmt.Errorf("postgres registry: failed to query family %q: %w", family, err)
	}
	defer rows.Close()

	return scanPrototypes(rows)
}

// Close closes the connection pool.
func (r *PostgresRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}
