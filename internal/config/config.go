package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int              `json:"port"`
	APIKey           string           `json:"api_key"`
	CORSAllowlist    []string         `json:"cors_allowlist"`
	RateLimitSeconds int              `json:"rate_limit_seconds"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Database         DatabaseConfig   `json:"database"`
	AI               AIConfig         `json:"ai"`
	Index            IndexConfig      `json:"index"`
	EmbedCache       EmbedCacheConfig `json:"embed_cache"`
	Retention        RetentionConfig  `json:"retention"`
}

type DatabaseConfig struct {
	DSN          string `json:"dsn"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type AIConfig struct {
	Provider      string            `json:"provider"`
	Data          interface{}       `json:"data"`
	ChatModel     string            `json:"chat_model"`
	ClassifyModel string            `json:"classify_model"`
	RefineModel   string            `json:"refine_model"`
	EmbedModel    string            `json:"embed_model"`
	Timeout       int               `json:"timeout"`
	Fallback      *AIFallbackConfig `json:"fallback"`
}

// AIFallbackConfig names a secondary provider tried when the primary chat
// provider fails a call.
type AIFallbackConfig struct {
	Provider  string      `json:"provider"`
	Data      interface{} `json:"data"`
	ChatModel string      `json:"chat_model"`
}

type IndexConfig struct {
	SourceDir           string  `json:"source_dir"`
	TopK                int     `json:"top_k"`
	ChunkTargetWords    int     `json:"chunk_target_words"`
	MinChunkSize        int     `json:"min_chunk_size"`
	BreakpointThreshold float64 `json:"breakpoint_threshold"`
	IngestWorkers       int     `json:"ingest_workers"`
}

type EmbedCacheConfig struct {
	LRUSize     int `json:"lru_size"`
	LRUTTLHours int `json:"lru_ttl_hours"`
	DBTTLDays   int `json:"db_ttl_days"`
}

type RetentionConfig struct {
	ConversationDays int `json:"conversation_days"`
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
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.ChatModel == "" {
		return nil, fmt.Errorf("ai.chat_model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.ClassifyModel == "" {
		cfg.AI.ClassifyModel = cfg.AI.ChatModel
	}
	if cfg.AI.RefineModel == "" {
		cfg.AI.RefineModel = cfg.AI.ChatModel
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 10
	}
	if cfg.Index.ChunkTargetWords == 0 {
		cfg.Index.ChunkTargetWords = 80
	}
	if cfg.Index.MinChunkSize == 0 {
		cfg.Index.MinChunkSize = 300
	}
	if cfg.Index.BreakpointThreshold == 0 {
		cfg.Index.BreakpointThreshold = 0.5
	}
	if cfg.Index.IngestWorkers == 0 {
		cfg.Index.IngestWorkers = 4
	}
	if cfg.EmbedCache.LRUSize == 0 {
		cfg.EmbedCache.LRUSize = 10000
	}
	if cfg.EmbedCache.LRUTTLHours == 0 {
		cfg.EmbedCache.LRUTTLHours = 2
	}
	if cfg.EmbedCache.DBTTLDays == 0 {
		cfg.EmbedCache.DBTTLDays = 30
	}
	if cfg.Retention.ConversationDays == 0 {
		cfg.Retention.ConversationDays = 30
	}
	return &cfg, nil
}
