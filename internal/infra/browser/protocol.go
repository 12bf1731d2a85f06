package browser

import (
	"github.com/bytedance/sonic"

	"voice-assistant/internal/domain"
)

// Messages from the page.
const (
	TypeRecognitionStarted = "recognition.started"
	TypeRecognitionResult  = "recognition.result"
	TypeRecognitionError   = "recognition.error"
	TypeRecognitionEnded   = "recognition.ended"
	TypeSynthesisStarted   = "synthesis.started"
	TypeSynthesisEnded     = "synthesis.ended"
	TypeSynthesisError     = "synthesis.error"
	TypeVoices             = "voices"
	TypeListenToggle       = "listen.toggle"
	TypeSpeechStop         = "speech.stop"
	TypeCancel             = "cancel"
	TypeVoiceSelect        = "voice.select"
	TypeRateSet            = "rate.set"
	TypePitchSet           = "pitch.set"
	TypeVolumeSet          = "volume.set"
	TypeCredentialSet      = "credential.set"
	TypeConversationClear  = "conversation.clear"
	TypePanelToggle        = "panel.toggle"
	TypeTextSubmit         = "text.submit"
)

// Messages to the page.
const (
	TypeRecognitionStart = "recognition.start"
	TypeRecognitionStop  = "recognition.stop"
	TypeRecognitionAbort = "recognition.abort"
	TypeSynthesisSpeak   = "synthesis.speak"
	TypeSynthesisCancel  = "synthesis.cancel"
	TypeState            = "state"
	TypeTranscript       = "transcript"
	TypeReply            = "reply"
	TypeStatus           = "status"
	TypeError            = "error"
	TypePanel            = "panel"
	TypeCleared          = "conversation.cleared"
	TypeCredential       = "credential"
	TypeSettings         = "settings"
)

// Message is the single frame shape in both directions. Only the fields relevant to
// Type are set.
type Message struct {
	Type string `json:"type"`

	// recognition
	Session         uint64   `json:"session,omitempty"`
	Lang            string   `json:"lang,omitempty"`
	Continuous      bool     `json:"continuous,omitempty"`
	InterimResults  bool     `json:"interimResults,omitempty"`
	MaxAlternatives int      `json:"maxAlternatives,omitempty"`
	ResultIndex     int      `json:"resultIndex,omitempty"`
	Results         []Result `json:"results,omitempty"`
	Code            string   `json:"code,omitempty"`

	// synthesis
	ID     string   `json:"id,omitempty"`
	Voice  string   `json:"voice,omitempty"`
	Rate   *float64 `json:"rate,omitempty"`
	Pitch  *float64 `json:"pitch,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
	Voices []Voice  `json:"voices,omitempty"`

	// shell
	Text       string  `json:"text,omitempty"`
	State      string  `json:"state,omitempty"`
	Visible    *bool   `json:"visible,omitempty"`
	Configured *bool   `json:"configured,omitempty"`
	Value      float64 `json:"value,omitempty"`
	Key        string  `json:"key,omitempty"`
}

type Result struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"isFinal"`
}

type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

func encode(m Message) ([]byte, error) {
	return sonic.Marshal(m)
}

func decode(data []byte) (Message, error) {
	var m Message
	err := sonic.Unmarshal(data, &m)
	return m, err
}

func recognitionEvent(m Message) domain.RecognitionEvent {
	results := make([]domain.RecognitionResult, len(m.Results))
	for i, r := range m.Results {
		results[i] = domain.RecognitionResult{Transcript: r.Transcript, Final: r.IsFinal}
	}
	return domain.RecognitionEvent{ResultIndex: m.ResultIndex, Results: results}
}

func toDomainVoices(voices []Voice) []domain.Voice {
	out := make([]domain.Voice, len(voices))
	for i, v := range voices {
		out[i] = domain.Voice{Name: v.Name, Lang: v.Lang}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

// floatPtr keeps zero values on the wire.
func floatPtr(f float64) *float64 {
	return &f
}
