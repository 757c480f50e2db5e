package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// SQLiteRegistryConfig configures the SQLite-backed registry.
type SQLiteRegistryConfig struct {
	DatabasePath string `json:"databasePath" yaml:"databasePath"`
}

// SQLiteRegistry stores prototypes in a local SQLite database. Weights and
// gates are serialized as JSON columns.
type SQLiteRegistry struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// NewSQLiteRegistry opens (creating if needed) a SQLite-backed registry.
func NewSQLiteRegistry(config SQLiteRegistryConfig) (*SQLiteRegistry, error) {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = ".data/prototypes.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("sqlite registry: failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite registry: failed to open database: %w", err)
	}

	r := &SQLiteRegistry{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRegistry) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS prototypes (
			id TEXT NOT NULL,
			family TEXT NOT NULL,
			weights TEXT NOT NULL,
			gates TEXT,
			PRIMARY KEY (family, id)
		);

		CREATE INDEX IF NOT EXISTS idx_prototypes_family ON prototypes(family);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite registry: failed to create schema: %w", err)
	}
	return nil
}

// Save inserts or replaces one prototype.
func (r *SQLiteRegistry) Save(p *shared.Prototype) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("sqlite registry: store is closed")
	}
	if p == nil || p.ID == "" {
		return fmt.Errorf("sqlite registry: prototype with non-empty id is required")
	}

	weights, err := json.Marshal(p.Weights)
	if err != nil {
		return fmt.Errorf("sqlite registry: failed to serialize weights for %s: %w", p.ID, err)
	}
	gatesJSON, err := json.Marshal(p.Gates)
	if err != nil {
		return fmt.Errorf("sqlite registry: failed to serialize gates for %s: %w", p.ID, err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO prototypes (id, family, weights, gates)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Type, string(weights), string(gatesJSON))
	if err != nil {
		return fmt.Errorf("sqlite registry: failed to save prototype %s: %w", p.ID, err)
	}
	return nil
}

// GetPrototypesByType implements shared.Registry. Results are ordered by id
// so repeated runs see a stable sequence.
func (r *SQLiteRegistry) GetPrototypesByType(family string) ([]*shared.Prototype, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("sqlite registry: store is closed")
	}

	rows, err := r.db.Query(`
		SELECT id, family, weights, gates FROM prototypes
		WHERE family = ? ORDER BY id
	`, family)
	if err != nil {
		return nil, fmt.Errorf("sqlite registry: failed to query family %q: %w", family, err)
	}
	defer rows.Close()

	return scanPrototypes(rows)
}

// Close closes the underlying database.
func (r *SQLiteRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}

func scanPrototypes(rows *sql.Rows) ([]*shared.Prototype, error) {
	result := make([]*shared.Prototype, 0)
	for rows.Next() {
		var id, family, weightsJSON string
		var gatesJSON sql.NullString
		if err := rows.Scan(&id, &family, &weightsJSON, &gatesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan prototype row: %w", err)
		}

		p := &shared.Prototype{ID: id, Type: family}
		if err := json.Unmarshal([]byte(weightsJSON), &p.Weights); err != nil {
			return nil, fmt.Errorf("failed to decode weights for %s: %w", id, err)
		}
		if gatesJSON.Valid && gatesJSON.String != "" && gatesJSON.String != "null" {
			var gates interface{}
			if err := json.Unmarshal([]byte(gatesJSON.String), &gates); err != nil {
				return nil, fmt.Errorf("failed to decode gates for %s: %w", id, err)
			}
			p.Gates = gates
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prototype rows: %w", err)
	}
	return result, nil
}
