package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Speech   SpeechConfig   `yaml:"speech"`
	LLM      LLMConfig      `yaml:"llm"`
	Media    MediaConfig    `yaml:"media"`
	Index    IndexConfig    `yaml:"index"`
	Announce AnnounceConfig `yaml:"announce"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Bind        string   `yaml:"bind"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// SpeechConfig points at the Clova speech-to-text endpoint.
type SpeechConfig struct {
	APIURL         string `yaml:"api_url"`
	APIKey         string `yaml:"api_key"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LLMConfig covers both the embedding model and the chat model behind one
// OpenAI-compatible endpoint.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Key            string `yaml:"key"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
}

type MediaConfig struct {
	VideoDir string `yaml:"video_dir"`
	AudioDir string `yaml:"audio_dir"`
}

type IndexConfig struct {
	VectorDir    string `yaml:"vector_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
}

// AnnounceConfig names the shared collection built from the crawled
// school announcements.
type AnnounceConfig struct {
	Dir        string `yaml:"dir"`
	Collection string `yaml:"collection"`
}

type RedisConfig struct {
	Addr            string `yaml:"addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type SessionConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type StorageConfig struct {
	CSVPath    string `yaml:"csv_path"`
	WebhookURL string `yaml:"webhook_url"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SPEECH_API_URL"); v != "" {
		c.Speech.APIURL = v
	}
	if v := os.Getenv("SPEECH_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
	if v := os.Getenv("LLM_KEY"); v != "" {
		c.LLM.Key = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

func (c *Config) ApplyDefaults() {
	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1:8000"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "ko-KR"
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = 120
	}
	if c.Media.VideoDir == "" {
		c.Media.VideoDir = "./data/video"
	}
	if c.Media.AudioDir == "" {
		c.Media.AudioDir = "./data/audio"
	}
	if c.Index.VectorDir == "" {
		c.Index.VectorDir = "./chromem/lecture_summary"
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = 1000
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		c.Index.ChunkOverlap = 100
	}
	if c.Index.TopK <= 0 {
		c.Index.TopK = 5
	}
	if c.Announce.Dir == "" {
		c.Announce.Dir = "./chromem/promotion"
	}
	if c.Announce.Collection == "" {
		c.Announce.Collection = "promotion"
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		c.Redis.CacheTTLSeconds = 300
	}
	if c.Session.TTLSeconds <= 0 {
		// two weeks, same cookie age the frontend was built against
		c.Session.TTLSeconds = 1209600
	}
	if c.Storage.CSVPath == "" {
		c.Storage.CSVPath = "./data/csv/mjc_promotion.csv"
	}
}

func (c *Config) Validate() error {
	if c.Speech.APIURL == "" {
		return fmt.Errorf("config: speech.api_url is required")
	}
	if c.Speech.APIKey == "" {
		return fmt.Errorf("config: speech.api_key is required")
	}
	if c.LLM.Key == "" {
		return fmt.Errorf("config: llm.key is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required")
	}
	return nil
}

func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}
