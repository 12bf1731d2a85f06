package domain

import "time"

type RecognitionOptions struct {
	Language        string
	Continuous      bool
	InterimResults  bool
	MaxAlternatives int
	MaxSpeechLength time.Duration
	SilenceTimeout  time.Duration
}

// RecognitionResult is the top alternative of one recognition segment.
type RecognitionResult struct {
	Transcript string
	Final      bool
}

// RecognitionEvent carries every segment of the current recognition session. Segments
// before ResultIndex were already delivered in earlier events.
type RecognitionEvent struct {
	ResultIndex int
	Results     []RecognitionResult
}

type CaptureErrorKind string

const (
	CaptureErrorNoSpeech              CaptureErrorKind = "no-speech"
	CaptureErrorMicrophoneUnavailable CaptureErrorKind = "microphone-unavailable"
	CaptureErrorPermissionDenied      CaptureErrorKind = "permission-denied"
	CaptureErrorOther                 CaptureErrorKind = "other"
)

// Engine error codes as reported by Web Speech compatible recognizers.
const (
	RecognitionCodeNoSpeech          = "no-speech"
	RecognitionCodeAudioCapture      = "audio-capture"
	RecognitionCodeNotAllowed        = "not-allowed"
	RecognitionCodeServiceNotAllowed = "service-not-allowed"
	RecognitionCodeAborted           = "aborted"
	RecognitionCodeNetwork           = "network"
)

type CaptureError struct {
	Kind CaptureErrorKind
	Code string
}

func (e CaptureError) Error() string {
	return "speech recognition error: " + e.Code
}

// Message is the user-facing notification text for the error.
func (e CaptureError) Message() string {
	msg := "Speech recognition error: "
	switch e.Kind {
	case CaptureErrorNoSpeech:
		return msg + "No speech detected. Please try again."
	case CaptureErrorMicrophoneUnavailable:
		return msg + "Microphone not accessible. Please check permissions."
	case CaptureErrorPermissionDenied:
		return msg + "Microphone access denied. Please allow microphone access."
	default:
		return msg + e.Code
	}
}

// ClassifyRecognitionError maps an engine error code onto a capture error.
func ClassifyRecognitionError(code string) CaptureError {
	switch code {
	case RecognitionCodeNoSpeech:
		return CaptureError{Kind: CaptureErrorNoSpeech, Code: code}
	case RecognitionCodeAudioCapture:
		return CaptureError{Kind: CaptureErrorMicrophoneUnavailable, Code: code}
	case RecognitionCodeNotAllowed, RecognitionCodeServiceNotAllowed:
		return CaptureError{Kind: CaptureErrorPermissionDenied, Code: code}
	default:
		return CaptureError{Kind: CaptureErrorOther, Code: code}
	}
}
