//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// MicrophoneRecorder records from the default input device.
type MicrophoneRecorder struct {
	sampleRate int
	threshold  int16
	logger     *slog.Logger
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{
		sampleRate: sampleRate,
		threshold:  500,
		logger:     logger,
	}
}

func (m *MicrophoneRecorder) Record(ctx context.Context, stop <-chan struct{}, limits Limits) ([]byte, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buffer), buffer)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Debug("microphone recording", "sample_rate", m.sampleRate)

	maxSamples := samplesFor(limits.MaxLength, m.sampleRate)
	silenceSamples := samplesFor(limits.SilenceTimeout, m.sampleRate)
	gate := silenceGate{threshold: m.threshold}
	samples := make([]int16, 0, m.sampleRate*5)

loop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			break loop
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buffer...)

		silent := gate.feed(buffer)
		if silent > silenceSamples {
			break
		}
		if maxSamples > 0 && len(samples) >= maxSamples {
			break
		}
	}

	if !gate.heard {
		return nil, ErrNoAudio
	}
	return samplesToWav(samples, m.sampleRate), nil
}

func samplesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}
