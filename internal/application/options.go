package application

import (
	"sync"
	"time"

	"voice-assistant/internal/domain"
)

const (
	DefaultLanguage        = "en-US"
	DefaultModel           = "gpt-3.5-turbo"
	DefaultMaxTokens       = 150
	DefaultTemperature     = 0.7
	DefaultMaxSpeechLength = 30 * time.Second
	DefaultSilenceTimeout  = 3 * time.Second
	DefaultVoiceVendor     = "Google"
	DefaultSystemPrompt    = "You are a helpful AI assistant for Zekitales digital agency. Provide brief, friendly responses about web development, design, and digital services."
)

// Options is the constructor-time configuration of a widget. Zero values take defaults.
type Options struct {
	Language        string
	Rate            float64
	Pitch           float64
	Volume          float64
	AutoListen      bool
	MaxSpeechLength time.Duration
	SilenceTimeout  time.Duration
	Model           string
	SystemPrompt    string
	MaxTokens       int
	Temperature     float32
	VoiceVendor     string
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.Rate <= 0 {
		o.Rate = 1
	}
	if o.Pitch <= 0 {
		o.Pitch = 1
	}
	if o.Volume <= 0 {
		o.Volume = 1
	}
	if o.MaxSpeechLength <= 0 {
		o.MaxSpeechLength = DefaultMaxSpeechLength
	}
	if o.SilenceTimeout <= 0 {
		o.SilenceTimeout = DefaultSilenceTimeout
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.VoiceVendor == "" {
		o.VoiceVendor = DefaultVoiceVendor
	}
	return o
}

// Settings holds the live configuration. Rate, pitch, volume and voice change through
// setters; everything else is fixed at construction.
type Settings struct {
	mu          sync.RWMutex
	opts        Options
	voice       domain.Voice
	voicePinned bool
}

func NewSettings(opts Options) *Settings {
	return &Settings{opts: opts.withDefaults()}
}

// Snapshot returns a copy of the current options.
func (s *Settings) Snapshot() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

func (s *Settings) Voice() domain.Voice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

func (s *Settings) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Rate = clamp(rate, 0.1, 10)
}

func (s *Settings) SetPitch(pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Pitch = clamp(pitch, 0, 2)
}

func (s *Settings) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Volume = clamp(volume, 0, 1)
}

// SelectVoice pins a user-chosen voice; later default selection will not replace it.
func (s *Settings) SelectVoice(v domain.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = v
	s.voicePinned = true
}

// offerDefaultVoice sets v unless the user already picked one.
func (s *Settings) offerDefaultVoice(v domain.Voice) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voicePinned {
		return false
	}
	s.voice = v
	return true
}

func (s *Settings) recognitionOptions() domain.RecognitionOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.RecognitionOptions{
		Language:        s.opts.Language,
		Continuous:      false,
		InterimResults:  true,
		MaxAlternatives: 1,
		MaxSpeechLength: s.opts.MaxSpeechLength,
		SilenceTimeout:  s.opts.SilenceTimeout,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
