//go:build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// Speaker plays 16-bit mono PCM on the default output device.
type Speaker struct {
	sampleRate int
	logger     *slog.Logger
}

func NewSpeaker(sampleRate int, logger *slog.Logger) *Speaker {
	return &Speaker{sampleRate: sampleRate, logger: logger}
}

func (s *Speaker) Play(ctx context.Context, pcm io.Reader, volume float64) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(s.sampleRate), len(buffer), buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	chunk := make([]byte, len(buffer)*2)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(pcm, chunk)
		if n > 0 {
			got := scaleVolume(chunk[:n], buffer, volume)
			clear(buffer[got:])
			if werr := stream.Write(); werr != nil {
				return fmt.Errorf("writing to stream: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading speech: %w", err)
		}
	}
}
