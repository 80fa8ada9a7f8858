package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the governance advisor.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Telemetry struct {
		Disable     bool    `yaml:"disable"`
		ServiceName string  `yaml:"service_name"`
		Environment string  `yaml:"environment"`
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"telemetry"`

	Retrieval struct {
		CaseTopK        int `yaml:"case_top_k"`
		PolicyTopK      int `yaml:"policy_top_k"`
		OverFetchFactor int `yaml:"over_fetch_factor"`
	} `yaml:"retrieval"`

	Policy struct {
		LevelWeights map[string]float64 `yaml:"level_weights"`
		RegionBoost  float64            `yaml:"region_boost"`
		DefaultLevel string             `yaml:"default_level"`
	} `yaml:"policy"`

	Evaluation struct {
		HistorySize int `yaml:"history_size"`
	} `yaml:"evaluation"`

	Pipeline struct {
		BatchConcurrency   int  `yaml:"batch_concurrency"`
		SkipCompliance     bool `yaml:"skip_compliance"`
		ContextTokenBudget int  `yaml:"context_token_budget"`
	} `yaml:"pipeline"`

	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
		// RequestsPerSecond paces provider calls; 0 disables pacing.
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"llm"`

	Embedder struct {
		Model     string `yaml:"model"`
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embedder"`

	Storage struct {
		Vector   string `yaml:"vector"`  // memory or pgvector
		History  string `yaml:"history"` // memory, redis, mongo or postgres
		PGVector struct {
			Host      string `yaml:"host"`
			Port      int    `yaml:"port"`
			User      string `yaml:"user"`
			Password  string `yaml:"password"`
			DBName    string `yaml:"dbname"`
			SSLMode   string `yaml:"sslmode"`
			IndexType string `yaml:"index_type"`
		} `yaml:"pgvector"`
		Postgres struct {
			DSN   string `yaml:"dsn"`
			Table string `yaml:"table"`
		} `yaml:"postgres"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
		Mongo struct {
			URI        string `yaml:"uri"`
			Database   string `yaml:"database"`
			Collection string `yaml:"collection"`
		} `yaml:"mongo"`
	} `yaml:"storage"`

	Knowledge struct {
		CasePaths   []string `yaml:"case_paths"`
		PolicyPaths []string `yaml:"policy_paths"`
		Chunker     string   `yaml:"chunker"` // window or token
		ChunkTokens int      `yaml:"chunk_tokens"`
	} `yaml:"knowledge"`
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads an optional .env file, then the YAML file at path (if any), then
// GOVALLIN_* environment overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("GOVALLIN_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("GOVALLIN_LOG_FORMAT", c.Log.Format)
	c.LLM.Provider = getEnv("GOVALLIN_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("GOVALLIN_LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("GOVALLIN_LLM_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("GOVALLIN_LLM_BASE_URL", c.LLM.BaseURL)
	c.Embedder.APIKey = getEnv("GOVALLIN_EMBEDDER_API_KEY", c.Embedder.APIKey)
	c.Storage.History = getEnv("GOVALLIN_HISTORY_STORE", c.Storage.History)
	c.Storage.Vector = getEnv("GOVALLIN_VECTOR_STORE", c.Storage.Vector)
	c.Storage.PGVector.Host = getEnv("GOVALLIN_PGVECTOR_HOST", c.Storage.PGVector.Host)
	c.Storage.PGVector.Password = getEnv("GOVALLIN_PGVECTOR_PASSWORD", c.Storage.PGVector.Password)
	c.Storage.Postgres.DSN = getEnv("GOVALLIN_PG_DSN", c.Storage.Postgres.DSN)
	c.Storage.Redis.Addr = getEnv("GOVALLIN_REDIS_ADDR", c.Storage.Redis.Addr)
	c.Storage.Redis.Password = getEnv("GOVALLIN_REDIS_PASSWORD", c.Storage.Redis.Password)
	c.Storage.Mongo.URI = getEnv("GOVALLIN_MONGO_URI", c.Storage.Mongo.URI)
	c.Pipeline.BatchConcurrency = getEnvInt("GOVALLIN_BATCH_CONCURRENCY", c.Pipeline.BatchConcurrency)
	c.Evaluation.HistorySize = getEnvInt("GOVALLIN_HISTORY_SIZE", c.Evaluation.HistorySize)
	if paths := os.Getenv("GOVALLIN_CASE_PATHS"); paths != "" {
		c.Knowledge.CasePaths = strings.Split(paths, ",")
	}
	if paths := os.Getenv("GOVALLIN_POLICY_PATHS"); paths != "" {
		c.Knowledge.PolicyPaths = strings.Split(paths, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "gov-allin"
	}
	if c.Retrieval.CaseTopK == 0 {
		c.Retrieval.CaseTopK = 5
	}
	if c.Retrieval.PolicyTopK == 0 {
		c.Retrieval.PolicyTopK = 5
	}
	if c.Retrieval.OverFetchFactor == 0 {
		c.Retrieval.OverFetchFactor = 3
	}
	if c.Policy.LevelWeights == nil {
		c.Policy.LevelWeights = map[string]float64{}
	}
	for level, weight := range map[string]float64{
		"central": 1.0, "provincial": 0.8, "municipal": 0.6, "county": 0.4, "street": 0.2,
	} {
		if _, ok := c.Policy.LevelWeights[level]; !ok {
			c.Policy.LevelWeights[level] = weight
		}
	}
	if c.Policy.RegionBoost == 0 {
		c.Policy.RegionBoost = 1.25
	}
	if c.Policy.DefaultLevel == "" {
		c.Policy.DefaultLevel = "central"
	}
	if c.Evaluation.HistorySize == 0 {
		c.Evaluation.HistorySize = 100
	}
	if c.Pipeline.BatchConcurrency == 0 {
		c.Pipeline.BatchConcurrency = 1
	}
	if c.Knowledge.Chunker == "" {
		c.Knowledge.Chunker = "window"
	}
	if c.Knowledge.ChunkTokens == 0 {
		c.Knowledge.ChunkTokens = 256
	}
	if c.Pipeline.ContextTokenBudget == 0 {
		c.Pipeline.ContextTokenBudget = 3000
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.Embedder.Model == "" {
		c.Embedder.Model = "text-embedding-3-small"
	}
	if c.Embedder.Dimension == 0 {
		c.Embedder.Dimension = 1536
	}
	if c.Storage.History == "" {
		c.Storage.History = "memory"
	}
	if c.Storage.Vector == "" {
		c.Storage.Vector = "memory"
	}
	if c.Storage.PGVector.Host == "" {
		c.Storage.PGVector.Host = "127.0.0.1"
	}
	if c.Storage.PGVector.Port == 0 {
		c.Storage.PGVector.Port = 5432
	}
	if c.Storage.PGVector.User == "" {
		c.Storage.PGVector.User = "postgres"
	}
	if c.Storage.PGVector.DBName == "" {
		c.Storage.PGVector.DBName = "gov_allin"
	}
	if c.Storage.PGVector.SSLMode == "" {
		c.Storage.PGVector.SSLMode = "disable"
	}
	if c.Storage.PGVector.IndexType == "" {
		c.Storage.PGVector.IndexType = "HNSW"
	}
	if c.Storage.Postgres.Table == "" {
		c.Storage.Postgres.Table = "evaluation_history"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Storage.Redis.Key == "" {
		c.Storage.Redis.Key = "gov-allin:evaluations"
	}
	if c.Storage.Mongo.URI == "" {
		c.Storage.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "gov_allin"
	}
	if c.Storage.Mongo.Collection == "" {
		c.Storage.Mongo.Collection = "evaluations"
	}
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	v := NewValidator()

	v.ValidateOneOf("log.level", c.Log.Level, "debug", "info", "warn", "error")
	v.ValidateOneOf("log.format", c.Log.Format, "json", "text")
	v.ValidateFloatRange("telemetry.sample_ratio", c.Telemetry.SampleRatio, 0, 1)
	v.RequirePositive("retrieval.case_top_k", c.Retrieval.CaseTopK)
	v.RequirePositive("retrieval.policy_top_k", c.Retrieval.PolicyTopK)
	v.ValidateRange("retrieval.over_fetch_factor", c.Retrieval.OverFetchFactor, 1, 20)
	for level, weight := range c.Policy.LevelWeights {
		v.ValidateOneOf("policy.level_weights", level, "central", "provincial", "municipal", "county", "street")
		v.ValidateFloatRange("policy.level_weights."+level, weight, 0, 10)
	}
	v.ValidateFloatRange("policy.region_boost", c.Policy.RegionBoost, 1, 10)
	v.ValidateOneOf("policy.default_level", c.Policy.DefaultLevel, "central", "provincial", "municipal", "county", "street")
	v.RequirePositive("evaluation.history_size", c.Evaluation.HistorySize)
	v.ValidateRange("pipeline.batch_concurrency", c.Pipeline.BatchConcurrency, 1, 256)
	v.RequirePositive("pipeline.context_token_budget", c.Pipeline.ContextTokenBudget)
	v.ValidateOneOf("llm.provider", c.LLM.Provider, "openai", "claude", "gemini", "groq")
	v.ValidateFloatRange("llm.temperature", c.LLM.Temperature, 0, 2)
	v.RequirePositive("llm.max_tokens", c.LLM.MaxTokens)
	v.ValidateOneOf("storage.history", c.Storage.History, "memory", "redis", "mongo", "postgres")
	v.ValidateOneOf("storage.vector", c.Storage.Vector, "memory", "pgvector")
	v.ValidateOneOf("knowledge.chunker", c.Knowledge.Chunker, "window", "token")
	if c.Storage.History == "postgres" {
		v.RequireNonEmpty("storage.postgres.dsn", c.Storage.Postgres.DSN)
	}

	return v.Error()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
