package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesYAMLEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
retrieval:
  case_top_k: 3
policy:
  default_level: street
  level_weights:
    municipal: 0.7
pipeline:
  batch_concurrency: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOVALLIN_LLM_PROVIDER", "claude")
	t.Setenv("GOVALLIN_HISTORY_SIZE", "20")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Retrieval.CaseTopK != 3 {
		t.Errorf("case_top_k = %d, want 3", cfg.Retrieval.CaseTopK)
	}
	if cfg.Retrieval.PolicyTopK != 5 {
		t.Errorf("policy_top_k default = %d, want 5", cfg.Retrieval.PolicyTopK)
	}
	if cfg.Policy.DefaultLevel != "street" {
		t.Errorf("default_level = %q, want street", cfg.Policy.DefaultLevel)
	}
	if cfg.Policy.LevelWeights["municipal"] != 0.7 {
		t.Errorf("municipal weight = %v, want 0.7", cfg.Policy.LevelWeights["municipal"])
	}
	if cfg.Policy.LevelWeights["central"] != 1.0 {
		t.Errorf("central weight default = %v, want 1.0", cfg.Policy.LevelWeights["central"])
	}
	if cfg.LLM.Provider != "claude" {
		t.Errorf("provider = %q, want claude from env", cfg.LLM.Provider)
	}
	if cfg.Evaluation.HistorySize != 20 {
		t.Errorf("history_size = %d, want 20 from env", cfg.Evaluation.HistorySize)
	}
	if cfg.Pipeline.BatchConcurrency != 4 {
		t.Errorf("batch_concurrency = %d, want 4", cfg.Pipeline.BatchConcurrency)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "default level", content: "policy:\n  default_level: village\n"},
		{name: "vector store", content: "storage:\n  vector: faiss\n"},
		{name: "chunker", content: "knowledge:\n  chunker: paragraph\n"},
		{name: "sample ratio", content: "telemetry:\n  sample_ratio: 1.5\n"},
		{name: "provider", content: "llm:\n  provider: cohere\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestStorageAndKnowledgeDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Vector != "memory" || cfg.Storage.History != "memory" {
		t.Errorf("storage defaults = %q/%q", cfg.Storage.Vector, cfg.Storage.History)
	}
	pg := cfg.Storage.PGVector
	if pg.Host != "127.0.0.1" || pg.Port != 5432 || pg.SSLMode != "disable" || pg.IndexType != "HNSW" {
		t.Errorf("pgvector defaults = %+v", pg)
	}
	if cfg.Knowledge.Chunker != "window" || cfg.Knowledge.ChunkTokens != 256 {
		t.Errorf("knowledge defaults = %q/%d", cfg.Knowledge.Chunker, cfg.Knowledge.ChunkTokens)
	}
}

func TestLoadPGVectorFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  vector: pgvector
  pgvector:
    host: db.internal
    dbname: governance
knowledge:
  chunker: token
  chunk_tokens: 128
llm:
  provider: groq
  requests_per_second: 2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOVALLIN_PGVECTOR_PASSWORD", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pg := cfg.Storage.PGVector
	if cfg.Storage.Vector != "pgvector" || pg.Host != "db.internal" || pg.DBName != "governance" || pg.Port != 5432 {
		t.Errorf("pgvector = %+v", pg)
	}
	if pg.Password != "secret" {
		t.Errorf("password not taken from env")
	}
	if cfg.Knowledge.Chunker != "token" || cfg.Knowledge.ChunkTokens != 128 {
		t.Errorf("knowledge = %+v", cfg.Knowledge)
	}
	if cfg.LLM.Provider != "groq" || cfg.LLM.RequestsPerSecond != 2 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
