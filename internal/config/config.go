package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Extraction ExtractionConfig
	Scraper    ScraperConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
}

type ExtractionConfig struct {
	PrefixChars   int
	MinTextLength int
}

type ScraperConfig struct {
	Mode      string
	ReaderURL string
	APIKey    string
	Timeout   time.Duration
}

type LogConfig struct {
	JSON         bool
	Debug        bool
	PreviewChars int
}

var defaults = map[string]any{
	"PORT":                    "3000",
	"ENV":                     "development",
	"GEMINI_API_KEY":          "",
	"GEMINI_MODEL":            "gemini-2.5-flash",
	"MAX_FILE_SIZE":           int64(10485760),
	"WORKER_CONCURRENCY":      4,
	"EXTRACTION_PREFIX_CHARS": 4000,
	"MIN_CV_TEXT_LENGTH":      50,
	"SCRAPER_MODE":            "reader",
	"SCRAPER_READER_URL":      "https://r.jina.ai/",
	"SCRAPER_API_KEY":         "",
	"SCRAPER_TIMEOUT":         "30s",
	"LOG_JSON":                false,
	"LOG_DEBUG":               false,
	"LOG_PREVIEW_CHARS":       200,
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
// Values that fail to parse or are out of range fall back to the defaults.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			Model:  strings.TrimSpace(v.GetString("GEMINI_MODEL")),
		},
		Storage: StorageConfig{
			MaxFileSize: positiveInt64(v, "MAX_FILE_SIZE"),
		},
		Worker: WorkerConfig{
			Concurrency: positiveInt(v, "WORKER_CONCURRENCY"),
		},
		Extraction: ExtractionConfig{
			PrefixChars:   positiveInt(v, "EXTRACTION_PREFIX_CHARS"),
			MinTextLength: positiveInt(v, "MIN_CV_TEXT_LENGTH"),
		},
		Scraper: ScraperConfig{
			Mode:      strings.ToLower(strings.TrimSpace(v.GetString("SCRAPER_MODE"))),
			ReaderURL: strings.TrimSpace(v.GetString("SCRAPER_READER_URL")),
			APIKey:    strings.TrimSpace(v.GetString("SCRAPER_API_KEY")),
			Timeout:   duration(v, "SCRAPER_TIMEOUT"),
		},
		Log: LogConfig{
			JSON:         v.GetBool("LOG_JSON"),
			Debug:        v.GetBool("LOG_DEBUG"),
			PreviewChars: positiveInt(v, "LOG_PREVIEW_CHARS"),
		},
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = defaults["PORT"].(string)
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaults["GEMINI_MODEL"].(string)
	}
	if cfg.Scraper.Mode != "reader" && cfg.Scraper.Mode != "direct" {
		cfg.Scraper.Mode = defaults["SCRAPER_MODE"].(string)
	}

	return cfg
}

// Validate reports settings the API server cannot start without.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func positiveInt(v *viper.Viper, key string) int {
	if value := v.GetInt(key); value > 0 {
		return value
	}
	return defaults[key].(int)
}

func positiveInt64(v *viper.Viper, key string) int64 {
	if value := v.GetInt64(key); value > 0 {
		return value
	}
	return defaults[key].(int64)
}

func duration(v *viper.Viper, key string) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(defaults[key].(string))
	return d
}
