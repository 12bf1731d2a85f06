package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"voice-assistant/config"
	"voice-assistant/internal/application"
	"voice-assistant/internal/infra/audio"
	"voice-assistant/internal/infra/browser"
	"voice-assistant/internal/infra/credential"
	"voice-assistant/internal/infra/openai"
	"voice-assistant/internal/infra/pushover"
	"voice-assistant/internal/infra/terminal"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	credentials, err := loadCredentials(cfg)
	if err != nil {
		logger.Error("loading credentials", "error", err)
		os.Exit(1)
	}

	logger.Info("starting voice assistant",
		"mode", cfg.Shell.Mode,
		"model", cfg.Agent.Model,
		"api_key_configured", credentials.Configured(),
	)

	switch cfg.Shell.Mode {
	case config.ModeTerminal:
		err = runTerminal(ctx, cfg, credentials, logger)
	default:
		err = runBrowser(ctx, cfg, credentials, logger)
	}
	if err != nil {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func loadCredentials(cfg *config.Config) (*application.Credentials, error) {
	path := cfg.Credential.Path
	if path == "" {
		var err error
		if path, err = credential.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return application.LoadCredentials(credential.NewFileStore(path), cfg.OpenAI.APIKey)
}

func newWidget(
	cfg *config.Config,
	credentials *application.Credentials,
	recognizer application.RecognitionEngine,
	synthesizer application.SynthesisEngine,
	logger *slog.Logger,
) *application.Widget {
	settings := application.NewSettings(cfg.Agent.Options())
	history := application.NewHistory(application.HistoryLimit)
	chat := openai.NewChatClientWithURL(cfg.OpenAI.BaseURL)

	resolver := application.NewResolver(chat, credentials, settings, history, logger)
	capture := application.NewCaptureAdapter(recognizer, settings, logger)
	playback := application.NewPlaybackAdapter(synthesizer, settings, logger)
	coordinator := application.NewCoordinator(capture, playback, resolver, settings, logger)
	widget := application.NewWidget(coordinator, credentials, settings, history, logger)

	notifier := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	if cfg.Pushover.Enabled && notifier.Enabled() {
		widget.Subscribe(pushover.NewErrorPresenter(notifier, logger))
	}
	return widget
}

func runBrowser(ctx context.Context, cfg *config.Config, credentials *application.Credentials, logger *slog.Logger) error {
	bridge := browser.NewBridge(cfg.Shell.HTTPAddr, cfg.Shell.AllowedOrigins, logger)

	widget := newWidget(cfg, credentials, bridge.Recognizer(), bridge.Synthesizer(), logger)
	widget.Subscribe(bridge.Presenter())
	bridge.Attach(widget)
	defer widget.Coordinator().Close()

	if err := bridge.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return bridge.Stop()
}

func runTerminal(ctx context.Context, cfg *config.Config, credentials *application.Credentials, logger *slog.Logger) error {
	whisper := openai.NewWhisperClientWithURL(credentials.APIKey, cfg.OpenAI.TranscriptionModel, cfg.OpenAI.BaseURL)
	recognizer := audio.NewRecognizer(createRecorder(cfg.Audio, logger), whisper, logger)

	speech := openai.NewSpeechClientWithURL(credentials.APIKey, cfg.OpenAI.SpeechModel, cfg.OpenAI.BaseURL)
	speaker := audio.NewSpeaker(openai.SpeechSampleRate, logger)
	synthesizer := audio.NewSynthesizer(speech, speaker, openai.Voices, logger)

	widget := newWidget(cfg, credentials, recognizer, synthesizer, logger)
	defer widget.Coordinator().Close()
	widget.VoicesChanged(synthesizer.Voices())
	widget.TogglePanel()

	program := tea.NewProgram(terminal.NewModel(widget), tea.WithAltScreen(), tea.WithContext(ctx))
	widget.Subscribe(terminal.NewPresenter(program.Send))

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func createRecorder(cfg config.AudioConfig, logger *slog.Logger) audio.Recorder {
	switch cfg.Source {
	case config.SourceFile:
		return audio.NewFileRecorder(cfg.FileDir)
	default:
		return audio.NewMicrophoneRecorder(cfg.SampleRate, logger)
	}
}

func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
