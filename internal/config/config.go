package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	AI            AIConfig         `json:"ai"`
	FileStore     FileStoreConfig  `json:"file_store"`
	Suggest       SuggestConfig    `json:"suggest"`
	Ingest        IngestConfig     `json:"ingest"`
	Jobs          JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	EmbedModel    string      `json:"embed_model"`
	MaxTokens     int         `json:"max_tokens"`
	Temperature   float32     `json:"temperature"`
	Timeout       int         `json:"timeout"`
	MaxInputChars int         `json:"max_input_chars"`
	Data          interface{} `json:"data"`
	// Providers tried in order when the primary fails.
	Fallbacks []AIFallbackConfig `json:"fallbacks"`
	// Embedding cache layers in front of the provider.
	CacheSize       int `json:"cache_size"`
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
}

type AIFallbackConfig struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	EmbedModel string      `json:"embed_model"`
	Data       interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SuggestConfig tunes the retrieval/ranking pipeline.
type SuggestConfig struct {
	Threshold          float32 `json:"threshold"`
	Count              int     `json:"count"`
	LiteralWeight      float32 `json:"literal_weight"`
	Ranking            string  `json:"ranking"`
	MaxSuggestions     int     `json:"max_suggestions"`
	ContextChunks      int     `json:"context_chunks"`
	CacheSize          int     `json:"cache_size"`
	CacheTTLSeconds    int     `json:"cache_ttl_seconds"`
	DuplicateThreshold float32 `json:"duplicate_threshold"`
	// Minimum gap between suggest calls per client/path; 0 disables.
	RateGapMillis int `json:"rate_gap_millis"`
}

type IngestConfig struct {
	BatchSize      int `json:"batch_size"`
	TimeoutSeconds int `json:"timeout_seconds"`
}

type JobsConfig struct {
	IngestResumeSpec  string `json:"ingest_resume_spec"`
	CacheCleanupSpec  string `json:"cache_cleanup_spec"`
	CacheMaxAgeDays   int    `json:"cache_max_age_days"`
	IngestResumeLimit int    `json:"ingest_resume_limit"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/db_name is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 15
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 48
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	applySuggestDefaults(&cfg.Suggest)
	if cfg.Ingest.BatchSize <= 0 {
		cfg.Ingest.BatchSize = 50
	}
	if cfg.Ingest.TimeoutSeconds <= 0 {
		cfg.Ingest.TimeoutSeconds = 25
	}
	if cfg.Jobs.IngestResumeSpec == "" {
		cfg.Jobs.IngestResumeSpec = "*/5 * * * *"
	}
	if cfg.Jobs.CacheCleanupSpec == "" {
		cfg.Jobs.CacheCleanupSpec = "0 4 * * *"
	}
	if cfg.Jobs.CacheMaxAgeDays <= 0 {
		cfg.Jobs.CacheMaxAgeDays = 30
	}
	if cfg.Jobs.IngestResumeLimit <= 0 {
		cfg.Jobs.IngestResumeLimit = 5
	}
	return &cfg, nil
}

func applySuggestDefaults(s *SuggestConfig) {
	if s.Threshold <= 0 {
		s.Threshold = 0.2
	}
	if s.Count <= 0 {
		s.Count = 10
	}
	if s.LiteralWeight <= 0 {
		s.LiteralWeight = 0.5
	}
	if s.Ranking == "" {
		s.Ranking = "corpus-first"
	}
	if s.MaxSuggestions <= 0 || s.MaxSuggestions > 5 {
		s.MaxSuggestions = 5
	}
	if s.ContextChunks <= 0 {
		s.ContextChunks = 3
	}
	if s.CacheSize <= 0 {
		s.CacheSize = 4096
	}
	if s.CacheTTLSeconds <= 0 {
		s.CacheTTLSeconds = 60
	}
	if s.DuplicateThreshold <= 0 {
		s.DuplicateThreshold = 0.95
	}
}
