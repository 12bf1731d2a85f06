package application

import "voice-assistant/internal/domain"

// RecognitionEngine is a single-utterance speech recognizer. Events for a session are
// delivered to the RecognitionEvents passed to Start, possibly from another goroutine.
type RecognitionEngine interface {
	Start(opts domain.RecognitionOptions, events RecognitionEvents) error
	Stop() error
	Abort() error
}

type RecognitionEvents interface {
	OnStart()
	OnResult(ev domain.RecognitionEvent)
	OnError(code string)
	OnEnd()
}

// CaptureListener receives the capture adapter's output.
type CaptureListener interface {
	ListeningStarted()
	InterimTranscript(text string)
	FinalTranscript(text string)
	CaptureFailed(err domain.CaptureError)
	ListeningEnded()
}
