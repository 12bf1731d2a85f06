package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice-assistant/config"
	"voice-assistant/internal/application"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("level: got %q", cfg.Log.Level)
	}
	if cfg.Shell.Mode != config.ModeBrowser {
		t.Errorf("mode: got %q", cfg.Shell.Mode)
	}
	if cfg.Shell.HTTPAddr != ":8080" {
		t.Errorf("addr: got %q", cfg.Shell.HTTPAddr)
	}

	opts := cfg.Agent.Options()
	if opts.Language != "en-US" || opts.Model != "gpt-3.5-turbo" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.MaxSpeechLength != 30*time.Second || opts.SilenceTimeout != 3*time.Second {
		t.Errorf("durations: %v %v", opts.MaxSpeechLength, opts.SilenceTimeout)
	}
	if opts.MaxTokens != 150 || opts.Temperature != 0.7 {
		t.Errorf("completion params: %d %v", opts.MaxTokens, opts.Temperature)
	}
	if opts.Rate != 1 || opts.Pitch != 1 || opts.Volume != 1 {
		t.Errorf("voice params: %v %v %v", opts.Rate, opts.Pitch, opts.Volume)
	}
	if opts.SystemPrompt != application.DefaultSystemPrompt {
		t.Errorf("prompt: got %q", opts.SystemPrompt)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("ASSISTANT_TEST_KEY", "sk-from-env")

	cfg, err := config.Load(writeConfig(t, "openai:\n  api_key: ${ASSISTANT_TEST_KEY}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-from-env" {
		t.Errorf("api key: got %q", cfg.OpenAI.APIKey)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	path := writeConfig(t, "pushover:\n  token: ${ASSISTANT_DOTENV_TOKEN}\n")
	if err := os.WriteFile(".env", []byte("ASSISTANT_DOTENV_TOKEN=tok\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ASSISTANT_DOTENV_TOKEN") })

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pushover.Token != "tok" {
		t.Errorf("token: got %q", cfg.Pushover.Token)
	}
}

func TestLoad_AgentSection(t *testing.T) {
	body := `
agent:
  language: es-ES
  rate: 1.5
  auto_listen: true
  silence_timeout: 5s
shell:
  mode: terminal
  allowed_origins: ["https://zekitales.com"]
`
	cfg, err := config.Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	opts := cfg.Agent.Options()
	if opts.Language != "es-ES" || opts.Rate != 1.5 || !opts.AutoListen {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.SilenceTimeout != 5*time.Second {
		t.Errorf("silence: got %v", opts.SilenceTimeout)
	}
	if cfg.Shell.Mode != config.ModeTerminal || len(cfg.Shell.AllowedOrigins) != 1 {
		t.Errorf("unexpected shell %+v", cfg.Shell)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"mode", "shell:\n  mode: gui\n", "shell mode"},
		{"source", "audio:\n  source: radio\n", "audio source"},
		{"duration", "agent:\n  silence_timeout: soon\n", "silence_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := config.Load("missing.yaml"); err == nil {
		t.Error("expected error")
	}
}
