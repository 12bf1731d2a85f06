package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"voice-assistant/internal/application"
)

const (
	ModeBrowser  = "browser"
	ModeTerminal = "terminal"

	SourceMicrophone = "microphone"
	SourceFile       = "file"
)

type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Credential CredentialConfig `yaml:"credential"`
	Shell      ShellConfig      `yaml:"shell"`
	Audio      AudioConfig      `yaml:"audio"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Log        LogConfig        `yaml:"log"`
}

type AgentConfig struct {
	Language        string  `yaml:"language"`
	Rate            float64 `yaml:"rate"`
	Pitch           float64 `yaml:"pitch"`
	Volume          float64 `yaml:"volume"`
	AutoListen      bool    `yaml:"auto_listen"`
	MaxSpeechLength string  `yaml:"max_speech_length"`
	SilenceTimeout  string  `yaml:"silence_timeout"`
	Model           string  `yaml:"model"`
	SystemPrompt    string  `yaml:"system_prompt"`
	VoiceVendor     string  `yaml:"preferred_voice_vendor"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float32 `yaml:"temperature"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	SpeechModel        string `yaml:"speech_model"`
}

type CredentialConfig struct {
	Path string `yaml:"path"`
}

type ShellConfig struct {
	Mode           string   `yaml:"mode"`
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path. Variables from a .env file in the working
// directory, when there is one, are visible to ${VAR} references.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Agent.Language == "" {
		c.Agent.Language = application.DefaultLanguage
	}
	if c.Agent.Rate == 0 {
		c.Agent.Rate = 1
	}
	if c.Agent.Pitch == 0 {
		c.Agent.Pitch = 1
	}
	if c.Agent.Volume == 0 {
		c.Agent.Volume = 1
	}
	if c.Agent.MaxSpeechLength == "" {
		c.Agent.MaxSpeechLength = "30s"
	}
	if c.Agent.SilenceTimeout == "" {
		c.Agent.SilenceTimeout = "3s"
	}
	if c.Agent.Model == "" {
		c.Agent.Model = application.DefaultModel
	}
	if c.Agent.SystemPrompt == "" {
		c.Agent.SystemPrompt = application.DefaultSystemPrompt
	}
	if c.Agent.VoiceVendor == "" {
		c.Agent.VoiceVendor = application.DefaultVoiceVendor
	}
	if c.Agent.MaxTokens == 0 {
		c.Agent.MaxTokens = application.DefaultMaxTokens
	}
	if c.Agent.Temperature == 0 {
		c.Agent.Temperature = application.DefaultTemperature
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.SpeechModel == "" {
		c.OpenAI.SpeechModel = "tts-1"
	}
	if c.Shell.Mode == "" {
		c.Shell.Mode = ModeBrowser
	}
	if c.Shell.HTTPAddr == "" {
		c.Shell.HTTPAddr = ":8080"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = SourceMicrophone
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Shell.Mode {
	case ModeBrowser, ModeTerminal:
	default:
		return fmt.Errorf("unknown shell mode %q", c.Shell.Mode)
	}
	switch c.Audio.Source {
	case SourceMicrophone, SourceFile:
	default:
		return fmt.Errorf("unknown audio source %q", c.Audio.Source)
	}
	if _, err := c.Agent.durations(); err != nil {
		return err
	}
	return nil
}

type agentDurations struct {
	maxSpeech time.Duration
	silence   time.Duration
}

func (a AgentConfig) durations() (agentDurations, error) {
	maxSpeech, err := time.ParseDuration(a.MaxSpeechLength)
	if err != nil {
		return agentDurations{}, fmt.Errorf("parsing max_speech_length: %w", err)
	}
	silence, err := time.ParseDuration(a.SilenceTimeout)
	if err != nil {
		return agentDurations{}, fmt.Errorf("parsing silence_timeout: %w", err)
	}
	return agentDurations{maxSpeech: maxSpeech, silence: silence}, nil
}

// Options converts the agent section into widget options. Load has already validated
// the durations.
func (a AgentConfig) Options() application.Options {
	d, _ := a.durations()
	return application.Options{
		Language:        a.Language,
		Rate:            a.Rate,
		Pitch:           a.Pitch,
		Volume:          a.Volume,
		AutoListen:      a.AutoListen,
		MaxSpeechLength: d.maxSpeech,
		SilenceTimeout:  d.silence,
		Model:           a.Model,
		SystemPrompt:    a.SystemPrompt,
		MaxTokens:       a.MaxTokens,
		Temperature:     a.Temperature,
		VoiceVendor:     a.VoiceVendor,
	}
}
