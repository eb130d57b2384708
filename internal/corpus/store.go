package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/config"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store persists commentary pairs. The (structured_event, natural_description)
// pair is unique, so re-running a build only adds new pairs.
type Store struct {
	db     *sql.DB
	driver string
	table  string
	runID  string
	logger *zap.Logger
}

// Open connects to the corpus database and creates the table if needed
func Open(ctx context.Context, cfg config.CorpusConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !tableNamePattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid corpus table name %q", cfg.Table)
	}

	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if dsn == ":memory:" {
			// Every pooled connection must see the same in-memory database
			dsn = "file::memory:?cache=shared"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported corpus driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		driver: cfg.Driver,
		table:  cfg.Table,
		runID:  uuid.NewString(),
		logger: logger,
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create corpus table: %w", err)
	}

	return s, nil
}

// RunID identifies the rows inserted through this store instance
func (s *Store) RunID() string {
	return s.runID
}

func (s *Store) migrate(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		%s,
		run_id TEXT NOT NULL,
		game_id TEXT NOT NULL DEFAULT '',
		time_remaining TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		structured_event TEXT NOT NULL,
		natural_description TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (structured_event, natural_description)
	)`, s.table, idColumn)

	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Publish inserts a record, ignoring pairs that are already stored
func (s *Store) Publish(ctx context.Context, record *models.CommentaryRecord) error {
	_, err := s.Insert(ctx, record)
	return err
}

// Insert reports whether the pair was new
func (s *Store) Insert(ctx context.Context, record *models.CommentaryRecord) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, game_id, time_remaining, category, structured_event, natural_description)
		VALUES (%s)
		ON CONFLICT (structured_event, natural_description) DO NOTHING`,
		s.table, s.placeholders(6))

	res, err := s.db.ExecContext(ctx, query,
		s.runID,
		record.GameID,
		record.TimeRemaining,
		record.Category,
		record.StructuredEvent,
		record.NaturalDescription,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert commentary pair: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of stored pairs
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count corpus: %w", err)
	}
	return n, nil
}

// Records returns every stored pair in insertion order
func (s *Store) Records(ctx context.Context) ([]models.CommentaryRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT structured_event, natural_description, game_id, time_remaining, category
		FROM %s
		ORDER BY id`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	var records []models.CommentaryRecord
	for rows.Next() {
		var r models.CommentaryRecord
		if err := rows.Scan(&r.StructuredEvent, &r.NaturalDescription, &r.GameID, &r.TimeRemaining, &r.Category); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.driver == DriverPostgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
