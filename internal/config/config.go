package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Diarization DiarizationConfig `yaml:"diarization"`
	LLM         LLMConfig         `yaml:"llm"`
	Workers     WorkersConfig     `yaml:"workers"`
	Storage     StorageConfig     `yaml:"storage"`
	Cleanup     CleanupConfig     `yaml:"cleanup"`
	GoogleDrive GoogleDriveConfig `yaml:"google_drive"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Watch       WatchConfig       `yaml:"watch"`
	Limits      LimitsConfig      `yaml:"limits"`
}

type ServerConfig struct {
	Port int    `yaml:"port" env:"SERVER_PORT"`
	Host string `yaml:"host" env:"SERVER_HOST"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// WhisperConfig selects and tunes the speech-to-text backend
type WhisperConfig struct {
	Backend        string `yaml:"backend" env:"WHISPER_BACKEND"` // "whisper" (CLI) or "http"
	Binary         string `yaml:"binary"`
	Model          string `yaml:"model" env:"WHISPER_MODEL"`
	Device         string `yaml:"device"`
	Language       string `yaml:"language"`
	BeamSize       int    `yaml:"beam_size"`
	Threads        int    `yaml:"threads"`
	URL            string `yaml:"url" env:"WHISPER_URL"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

type DiarizationConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Speakers       int     `yaml:"speakers"`
	Rate           float64 `yaml:"rate"`
	MinCoverage    float64 `yaml:"min_coverage"`
	Linkage        string  `yaml:"linkage"`
	MaxPoints      int     `yaml:"max_points"`
	Encoder        string  `yaml:"encoder"` // "features" or "http"
	EncoderURL     string  `yaml:"encoder_url" env:"EMBEDDING_URL"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// LLMConfig points at the chat-completion endpoint used for summaries and chat
type LLMConfig struct {
	Provider       string        `yaml:"provider" env:"LLM_PROVIDER"`    // "openai" or "gemini"
	APIURL         string        `yaml:"api_url" env:"LLM_API_URL"`      // openai provider only
	BaseURL        string        `yaml:"base_url" env:"GEMINI_BASE_URL"` // gemini provider only, empty for the public endpoint
	APIKey         string        `yaml:"api_key" env:"LLM_API_KEY"`
	Model          string        `yaml:"model" env:"LLM_MODEL"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Summary        SummaryConfig `yaml:"summary"`
	Chat           ChatConfig    `yaml:"chat"`
}

// Temperatures are pointers so an explicit 0 survives defaulting
type SummaryConfig struct {
	MaxWords    int      `yaml:"max_words"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

type ChatConfig struct {
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Window      int      `yaml:"window"`
}

type WorkersConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

type StorageConfig struct {
	TempDir   string `yaml:"temp_dir"`
	OutputDir string `yaml:"output_dir"`
	Database  string `yaml:"database" env:"DATABASE_PATH"`
}

type CleanupConfig struct {
	IntervalMinutes    int `yaml:"interval_minutes"`
	MaxAgeHours        int `yaml:"max_age_hours"`
	SessionIdleMinutes int `yaml:"session_idle_minutes"`
}

type GoogleDriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderName      string `yaml:"folder_name"`
}

type YouTubeConfig struct {
	Enabled       bool   `yaml:"enabled"`
	YtDlpBinary   string `yaml:"yt_dlp_binary"`
	LookupTitle   bool   `yaml:"lookup_title"`
	TimeoutMinute int    `yaml:"timeout_minutes"`
}

type WatchConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

type LimitsConfig struct {
	MaxFileSizeMB      int `yaml:"max_file_size_mb"`
	MaxDurationMinutes int `yaml:"max_duration_minutes"`
}

// Load reads the YAML file at path, applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and fills defaults for the rest
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIURL == "" {
			return fmt.Errorf("llm.api_url is required")
		}
	case "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for the gemini provider")
		}
		if strings.Contains(c.LLM.BaseURL, "/chat/completions") {
			return fmt.Errorf("llm.base_url %q is a chat-completions endpoint, not a gemini base url", c.LLM.BaseURL)
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	if c.Whisper.Backend == "" {
		c.Whisper.Backend = "whisper"
	}
	switch c.Whisper.Backend {
	case "whisper":
	case "http":
		if c.Whisper.URL == "" {
			return fmt.Errorf("whisper.url is required for the http backend")
		}
	default:
		return fmt.Errorf("whisper.backend %q is not supported", c.Whisper.Backend)
	}

	if c.Diarization.Encoder == "" {
		c.Diarization.Encoder = "features"
	}
	if c.Diarization.Encoder == "http" && c.Diarization.EncoderURL == "" {
		return fmt.Errorf("diarization.encoder_url is required for the http encoder")
	}
	if c.Diarization.Encoder != "http" && c.Diarization.Encoder != "features" {
		return fmt.Errorf("diarization.encoder %q is not supported", c.Diarization.Encoder)
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Whisper.Binary == "" {
		c.Whisper.Binary = "python"
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Whisper.BeamSize == 0 {
		c.Whisper.BeamSize = 5
	}
	if c.Whisper.Device == "" {
		c.Whisper.Device = "cpu"
	}
	if c.Whisper.TimeoutMinutes == 0 {
		c.Whisper.TimeoutMinutes = 60
	}

	if c.Diarization.Speakers == 0 {
		c.Diarization.Speakers = 2
	}
	if c.Diarization.Rate == 0 {
		c.Diarization.Rate = 16
	}
	if c.Diarization.MinCoverage == 0 {
		c.Diarization.MinCoverage = 0.75
	}
	if c.Diarization.Linkage == "" {
		c.Diarization.Linkage = "ward"
	}
	if c.Diarization.MaxPoints == 0 {
		c.Diarization.MaxPoints = 2000
	}
	if c.Diarization.TimeoutSeconds == 0 {
		c.Diarization.TimeoutSeconds = 300
	}

	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 120
	}
	if c.LLM.Summary.MaxWords == 0 {
		c.LLM.Summary.MaxWords = 800
	}
	if c.LLM.Summary.Temperature == nil {
		c.LLM.Summary.Temperature = float64Ptr(0.3)
	}
	if c.LLM.Summary.MaxTokens == 0 {
		c.LLM.Summary.MaxTokens = 512
	}
	if c.LLM.Chat.Temperature == nil {
		c.LLM.Chat.Temperature = float64Ptr(0.5)
	}
	if c.LLM.Chat.MaxTokens == 0 {
		c.LLM.Chat.MaxTokens = 512
	}
	if c.LLM.Chat.Window == 0 {
		c.LLM.Chat.Window = 6
	}

	if c.Workers.Count == 0 {
		c.Workers.Count = 2
	}
	if c.Workers.QueueSize == 0 {
		c.Workers.QueueSize = 100
	}

	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "outputs"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = ":memory:"
	}

	if c.Cleanup.IntervalMinutes == 0 {
		c.Cleanup.IntervalMinutes = 30
	}
	if c.Cleanup.MaxAgeHours == 0 {
		c.Cleanup.MaxAgeHours = 24
	}
	if c.Cleanup.SessionIdleMinutes == 0 {
		c.Cleanup.SessionIdleMinutes = 120
	}

	if c.GoogleDrive.FolderName == "" {
		c.GoogleDrive.FolderName = "Meeting Summaries"
	}

	if c.YouTube.YtDlpBinary == "" {
		c.YouTube.YtDlpBinary = "yt-dlp"
	}
	if c.YouTube.TimeoutMinute == 0 {
		c.YouTube.TimeoutMinute = 30
	}

	if c.Watch.Enabled && c.Watch.Dir == "" {
		return fmt.Errorf("watch.dir is required when watch.enabled is set")
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = 2
	}

	if c.Limits.MaxFileSizeMB == 0 {
		c.Limits.MaxFileSizeMB = 500
	}

	return nil
}

func float64Ptr(v float64) *float64 { return &v }

// LLMTimeout is the per-request deadline for summary and chat calls
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// WhisperTimeout bounds one transcription run
func (c *Config) WhisperTimeout() time.Duration {
	return time.Duration(c.Whisper.TimeoutMinutes) * time.Minute
}

// DiarizationTimeout bounds calls to the voice-embedding service
func (c *Config) DiarizationTimeout() time.Duration {
	return time.Duration(c.Diarization.TimeoutSeconds) * time.Second
}
