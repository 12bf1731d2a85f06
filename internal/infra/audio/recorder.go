package audio

import (
	"context"
	"errors"
	"time"
)

// ErrNoAudio is returned by a Recorder that captured nothing worth transcribing.
var ErrNoAudio = errors.New("no speech captured")

// Limits bound one recording.
type Limits struct {
	MaxLength      time.Duration
	SilenceTimeout time.Duration
}

// Recorder captures one utterance and returns it as a WAV file. Closing stop ends the
// recording early and keeps what was captured so far; cancelling ctx discards it.
type Recorder interface {
	Record(ctx context.Context, stop <-chan struct{}, limits Limits) ([]byte, error)
}
