package application

import (
	"fmt"
	"log/slog"
	"sync"

	"voice-assistant/internal/domain"
)

// Widget is the instance an embedding application owns. It exposes the page-facing
// operations (panel, credential, conversation) and the settings gestures, and delegates
// the session lifecycle to the Coordinator.
type Widget struct {
	coordinator *Coordinator
	credentials *Credentials
	settings    *Settings
	history     *History
	logger      *slog.Logger

	mu           sync.Mutex
	panelVisible bool
	voices       []domain.Voice
}

func NewWidget(
	coordinator *Coordinator,
	credentials *Credentials,
	settings *Settings,
	history *History,
	logger *slog.Logger,
) *Widget {
	return &Widget{
		coordinator: coordinator,
		credentials: credentials,
		settings:    settings,
		history:     history,
		logger:      logger,
	}
}

func (w *Widget) Coordinator() *Coordinator {
	return w.coordinator
}

func (w *Widget) Subscribe(p Presenter) {
	w.coordinator.Subscribe(p)
}

func (w *Widget) State() domain.State {
	return w.coordinator.State()
}

func (w *Widget) TogglePanel() bool {
	w.mu.Lock()
	w.panelVisible = !w.panelVisible
	visible := w.panelVisible
	w.mu.Unlock()

	w.coordinator.listeners().panel(visible)
	return visible
}

func (w *Widget) HidePanel() {
	w.mu.Lock()
	changed := w.panelVisible
	w.panelVisible = false
	w.mu.Unlock()

	if changed {
		w.coordinator.listeners().panel(false)
	}
}

func (w *Widget) PanelVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.panelVisible
}

// SetAPIKey stores a new credential. Blank keys are ignored.
func (w *Widget) SetAPIKey(key string) error {
	if err := w.credentials.Set(key); err != nil {
		return fmt.Errorf("setting api key: %w", err)
	}
	if w.credentials.Configured() {
		w.coordinator.listeners().status("API key saved successfully")
	}
	return nil
}

func (w *Widget) HasAPIKey() bool {
	return w.credentials.Configured()
}

func (w *Widget) ClearConversation() {
	w.history.Clear()
	w.coordinator.listeners().cleared()
}

// Submit resolves typed text as if it had been heard. It blocks until the reply is
// handed to playback.
func (w *Widget) Submit(text string) {
	w.coordinator.ProcessInput(w.coordinator.ctx, text)
}

func (w *Widget) ToggleListening() {
	w.coordinator.ToggleListening()
}

func (w *Widget) StopSpeaking() {
	w.coordinator.StopSpeaking()
}

func (w *Widget) Cancel() {
	w.coordinator.Cancel()
}

// VoicesChanged records the engine's voice list and picks a default voice unless the
// user already chose one.
func (w *Widget) VoicesChanged(voices []domain.Voice) {
	w.mu.Lock()
	w.voices = append([]domain.Voice(nil), voices...)
	w.mu.Unlock()

	opts := w.settings.Snapshot()
	v, ok := SelectVoice(voices, opts.Language, opts.VoiceVendor)
	if !ok {
		return
	}
	if w.settings.offerDefaultVoice(v) {
		w.logger.Info("voice selected", "name", v.Name, "lang", v.Lang)
	}
}

func (w *Widget) Voices() []domain.Voice {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Voice(nil), w.voices...)
}

// SelectVoice pins the named voice. Unknown names are ignored.
func (w *Widget) SelectVoice(name string) bool {
	v, ok := FindVoice(w.Voices(), name)
	if !ok {
		return false
	}
	w.settings.SelectVoice(v)
	return true
}

// NextVoice pins the voice after the current one, wrapping around.
func (w *Widget) NextVoice() (domain.Voice, bool) {
	voices := w.Voices()
	if len(voices) == 0 {
		return domain.Voice{}, false
	}
	current := w.settings.Voice()
	next := voices[0]
	for i, v := range voices {
		if v.Name == current.Name {
			next = voices[(i+1)%len(voices)]
			break
		}
	}
	w.settings.SelectVoice(next)
	return next, true
}

func (w *Widget) SetRate(rate float64) {
	w.settings.SetRate(rate)
}

func (w *Widget) SetPitch(pitch float64) {
	w.settings.SetPitch(pitch)
}

func (w *Widget) SetVolume(volume float64) {
	w.settings.SetVolume(volume)
}

func (w *Widget) Settings() (Options, domain.Voice) {
	return w.settings.Snapshot(), w.settings.Voice()
}
