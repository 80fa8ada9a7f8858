package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"github.com/sweetpotato0/gov-allin/config"
	"github.com/sweetpotato0/gov-allin/governance"
	"github.com/sweetpotato0/gov-allin/history"
)

var _ history.Store = (*Store)(nil)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds PostgreSQL settings.
type Config struct {
	DSN      string
	Table    string
	Capacity int
}

// Store keeps evaluations in a table trimmed to capacity by insertion order.
type Store struct {
	db       *sql.DB
	table    string
	capacity int
}

// New opens the database and creates the table if needed.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Table == "" {
		cfg.Table = "evaluation_history"
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = history.DefaultCapacity
	}
	if err := config.ValidatePostgresConfig(cfg.DSN, cfg.Table, cfg.Capacity); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL configuration: %w", err)
	}
	if !tableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid PostgreSQL configuration: table %q is not a plain identifier", cfg.Table)
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	s := &Store{db: db, table: cfg.Table, capacity: cfg.Capacity}
	if err := s.createTable(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s, nil
}

func (s *Store) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		seq BIGSERIAL PRIMARY KEY,
		id VARCHAR(255) NOT NULL,
		overall_score DOUBLE PRECISION NOT NULL,
		level VARCHAR(32) NOT NULL,
		result JSONB NOT NULL,
		evaluated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_evaluated_at ON %[1]s(evaluated_at);
	`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Append inserts rec and deletes rows beyond capacity in one transaction.
func (s *Store) Append(ctx context.Context, rec governance.EvaluationResult) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	evaluatedAt := rec.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(`INSERT INTO %s (id, overall_score, level, result, evaluated_at) VALUES ($1, $2, $3, $4, $5)`, s.table)
	if _, err := tx.ExecContext(ctx, insert, rec.ID, rec.OverallScore, string(rec.Level), string(data), evaluatedAt); err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	trim := fmt.Sprintf(`DELETE FROM %[1]s WHERE seq NOT IN (SELECT seq FROM %[1]s ORDER BY seq DESC LIMIT $1)`, s.table)
	if _, err := tx.ExecContext(ctx, trim, s.capacity); err != nil {
		return fmt.Errorf("failed to trim evaluations: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Recent(ctx context.Context, n int) ([]governance.EvaluationResult, error) {
	query := fmt.Sprintf(`SELECT result FROM %s ORDER BY seq DESC`, s.table)
	args := []any{}
	if n > 0 {
		query += " LIMIT $1"
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluations: %w", err)
	}
	defer rows.Close()

	var out []governance.EvaluationResult
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		var rec governance.EvaluationResult
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return n, nil
}

// Clear removes every row.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table))
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
