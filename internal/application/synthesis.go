package application

import "voice-assistant/internal/domain"

// SynthesisEngine speaks one utterance at a time. Events for an utterance go to the
// SynthesisEvents passed to Speak, possibly from another goroutine.
type SynthesisEngine interface {
	Speak(u domain.Utterance, events SynthesisEvents) error
	Cancel()
	Voices() []domain.Voice
}

type SynthesisEvents interface {
	OnStart()
	OnEnd()
	OnError(reason string)
}

// PlaybackListener receives the playback adapter's output. id is the utterance ID.
type PlaybackListener interface {
	SpeechStarted(id string)
	SpeechEnded(id string)
	SpeechFailed(id string, reason string)
}
