package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sweetpotato0/gov-allin/config"
	apperrors "github.com/sweetpotato0/gov-allin/errors"
	"github.com/sweetpotato0/gov-allin/vector"
)

var (
	_ vector.VectorStore      = (*VectorStore)(nil)
	_ vector.DistanceSearcher = (*VectorStore)(nil)
)

// VectorStore implements vector.VectorStore on PostgreSQL with the pgvector extension.
// pgvector orders by L2 distance, so the store reports distances only.
type VectorStore struct {
	db        *sql.DB
	dimension int
	tableName string
}

// Config holds pgvector configuration
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int    // embedding dimension (default: 1536)
	TableName string // table name (default: governance_vectors)
	IndexType string // HNSW or IVFFLAT (default: HNSW)
}

// DefaultConfig returns default pgvector configuration
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		DBName:    "gov_allin",
		SSLMode:   "disable",
		Dimension: 1536,
		TableName: "governance_vectors",
		IndexType: "HNSW",
	}
}

// DSN renders the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// New connects to PostgreSQL and prepares the vector table.
func New(ctx context.Context, cfg *Config) (*VectorStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := config.ValidatePGVectorConfig(cfg.Host, cfg.Port, cfg.User, cfg.DBName,
		cfg.SSLMode, cfg.Dimension, cfg.TableName, cfg.IndexType); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &VectorStore{
		db:        db,
		dimension: cfg.Dimension,
		tableName: cfg.TableName,
	}
	if err := store.setup(ctx, cfg.IndexType); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup pgvector: %w", err)
	}
	return store, nil
}

func (s *VectorStore) setup(ctx context.Context, indexType string) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		seq BIGSERIAL,
		id VARCHAR(255) PRIMARY KEY,
		text TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.tableName, s.dimension)
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	method := "hnsw"
	if strings.EqualFold(indexType, "IVFFLAT") {
		method = "ivfflat"
	}
	indexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING %s (embedding vector_l2_ops)`,
		s.tableName, s.tableName, method)
	if _, err := s.db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// AddEmbedding inserts or updates an embedding.
func (s *VectorStore) AddEmbedding(ctx context.Context, embedding *vector.Embedding) error {
	if embedding == nil || embedding.ID == "" {
		return fmt.Errorf("embedding with ID required: %w", apperrors.ErrInvalidInput)
	}
	if len(embedding.Vector) != s.dimension {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d: %w",
			s.dimension, len(embedding.Vector), apperrors.ErrInvalidInput)
	}

	meta, err := json.Marshal(embedding.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", embedding.ID, err)
	}
	if embedding.Metadata == nil {
		meta = []byte("{}")
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (id, text, metadata, embedding)
	VALUES ($1, $2, $3::jsonb, $4::vector)
	ON CONFLICT (id) DO UPDATE SET
		text = EXCLUDED.text,
		metadata = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding,
		created_at = CURRENT_TIMESTAMP
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, embedding.ID, embedding.Text, string(meta), vectorToString(embedding.Vector)); err != nil {
		return fmt.Errorf("failed to add embedding: %w", err)
	}
	return nil
}

// Search returns the nearest embeddings by L2 distance.
func (s *VectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	scored, err := s.SearchWithDistance(ctx, queryVector, topK)
	if err != nil {
		return nil, err
	}
	out := make([]*vector.Embedding, len(scored))
	for i, item := range scored {
		out[i] = item.Embedding
	}
	return out, nil
}

// SearchWithDistance reports the pgvector L2 distance for each hit. Rows at equal
// distance come back in insertion order.
func (s *VectorStore) SearchWithDistance(ctx context.Context, queryVector []float32, topK int) ([]vector.ScoredEmbedding, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: expected %d, got %d: %w",
			s.dimension, len(queryVector), apperrors.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = 10
	}

	query := fmt.Sprintf(`
	SELECT id, text, metadata, embedding, embedding %s $1::vector AS distance
	FROM %s
	ORDER BY distance, seq
	LIMIT $2
	`, vector.L2DistanceOperator(), s.tableName)

	rows, err := s.db.QueryContext(ctx, query, vectorToString(queryVector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer rows.Close()

	results := make([]vector.ScoredEmbedding, 0, topK)
	for rows.Next() {
		var (
			id, text, vecStr string
			meta             []byte
			distance         float64
		)
		if err := rows.Scan(&id, &text, &meta, &vecStr, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		emb, err := decodeRow(id, text, meta, vecStr)
		if err != nil {
			return nil, err
		}
		results = append(results, vector.ScoredEmbedding{Embedding: emb, Score: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embeddings: %w", err)
	}
	return results, nil
}

// DeleteEmbedding removes an embedding by ID
func (s *VectorStore) DeleteEmbedding(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName), id)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("embedding %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// GetEmbedding retrieves a specific embedding by ID
func (s *VectorStore) GetEmbedding(ctx context.Context, id string) (*vector.Embedding, error) {
	query := fmt.Sprintf(`SELECT id, text, metadata, embedding FROM %s WHERE id = $1`, s.tableName)

	var (
		embID, text, vecStr string
		meta                []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&embID, &text, &meta, &vecStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("embedding %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return decodeRow(embID, text, meta, vecStr)
}

// Clear removes all embeddings
func (s *VectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", s.tableName)); err != nil {
		return fmt.Errorf("failed to clear embeddings: %w", err)
	}
	return nil
}

// Count returns the number of embeddings
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *VectorStore) Close() error {
	return s.db.Close()
}

func decodeRow(id, text string, meta []byte, vecStr string) (*vector.Embedding, error) {
	vec, err := stringToVector(vecStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector for embedding %s: %w", id, err)
	}
	var metadata map[string]any
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for embedding %s: %w", id, err)
		}
	}
	return &vector.Embedding{ID: id, Text: text, Vector: vec, Metadata: metadata}, nil
}

func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func stringToVector(str string) ([]float32, error) {
	str = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(str), "["), "]")
	if str == "" {
		return nil, nil
	}
	parts := strings.Split(str, ",")
	vec := make([]float32, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vector component at index %d: %q", i, part)
		}
		vec = append(vec, float32(v))
	}
	return vec, nil
}
