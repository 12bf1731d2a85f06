//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

var errNoPortaudio = errors.New("audio device not available: rebuild with -tags portaudio")

// MicrophoneRecorder stub when portaudio is not available
type MicrophoneRecorder struct {
	logger *slog.Logger
}

func NewMicrophoneRecorder(_ int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{logger: logger}
}

func (m *MicrophoneRecorder) Record(_ context.Context, _ <-chan struct{}, _ Limits) ([]byte, error) {
	return nil, errNoPortaudio
}

// Speaker stub when portaudio is not available
type Speaker struct {
	logger *slog.Logger
}

func NewSpeaker(_ int, logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Play(_ context.Context, _ io.Reader, _ float64) error {
	return errNoPortaudio
}
