package browser_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/browser"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockController struct {
	mu        sync.Mutex
	toggles   int
	panel     bool
	key       string
	voices    []domain.Voice
	rate      float64
	volume    float64
	submitted chan string
}

func newMockController() *mockController {
	return &mockController{volume: 1, submitted: make(chan string, 1)}
}

func (m *mockController) State() domain.State { return domain.StateIdle }
func (m *mockController) PanelVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panel
}
func (m *mockController) TogglePanel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panel = !m.panel
	return m.panel
}
func (m *mockController) HasAPIKey() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key != ""
}
func (m *mockController) SetAPIKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	return nil
}
func (m *mockController) ClearConversation() {}
func (m *mockController) ToggleListening() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
}
func (m *mockController) StopSpeaking()           {}
func (m *mockController) Cancel()                 {}
func (m *mockController) Submit(text string)      { m.submitted <- text }
func (m *mockController) SelectVoice(string) bool { return true }
func (m *mockController) SetPitch(float64)        {}
func (m *mockController) VoicesChanged(voices []domain.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = voices
}
func (m *mockController) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
}
func (m *mockController) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}
func (m *mockController) Settings() (application.Options, domain.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return application.Options{Language: "en-US", Rate: m.rate, Pitch: 1, Volume: m.volume}, domain.Voice{}
}

type recognitionLog struct {
	got chan string
}

func newRecognitionLog() *recognitionLog {
	return &recognitionLog{got: make(chan string, 16)}
}

func (l *recognitionLog) OnStart() { l.got <- "start" }
func (l *recognitionLog) OnResult(ev domain.RecognitionEvent) {
	var parts []string
	for _, r := range ev.Results {
		parts = append(parts, r.Transcript)
	}
	l.got <- "result:" + strings.Join(parts, "|")
}
func (l *recognitionLog) OnError(code string) { l.got <- "error:" + code }
func (l *recognitionLog) OnEnd()              { l.got <- "end" }

func (l *recognitionLog) next(t *testing.T) string {
	t.Helper()
	select {
	case e := <-l.got:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for recognition event")
		return ""
	}
}

type page struct {
	t    *testing.T
	conn *websocket.Conn
}

func connect(t *testing.T, bridge *browser.Bridge) *page {
	t.Helper()
	server := httptest.NewServer(bridge.Handler())
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dialing bridge: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	p := &page{t: t, conn: conn}
	for _, want := range []string{browser.TypeState, browser.TypePanel, browser.TypeCredential, browser.TypeSettings} {
		if got := p.read(); got.Type != want {
			t.Fatalf("snapshot: got %q, want %q", got.Type, want)
		}
	}
	return p
}

func (p *page) read() browser.Message {
	p.t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m browser.Message
	if err := p.conn.ReadJSON(&m); err != nil {
		p.t.Fatalf("reading from bridge: %v", err)
	}
	return m
}

func (p *page) write(m map[string]any) {
	p.t.Helper()
	if err := p.conn.WriteJSON(m); err != nil {
		p.t.Fatalf("writing to bridge: %v", err)
	}
}

func newBridge(c browser.Controller) *browser.Bridge {
	b := browser.NewBridge(":0", nil, discardLogger())
	b.Attach(c)
	return b
}

func TestBridge_Health(t *testing.T) {
	bridge := newBridge(newMockController())

	rec := httptest.NewRecorder()
	bridge.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" || body["connected"] != false {
		t.Errorf("body: got %v", body)
	}
}

func TestBridge_ServesPage(t *testing.T) {
	bridge := newBridge(newMockController())

	for _, path := range []string{"/", "/widget.js"} {
		rec := httptest.NewRecorder()
		bridge.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got status %d", path, rec.Code)
		}
	}
}

func TestBridge_EnginesFailWithoutPage(t *testing.T) {
	bridge := newBridge(newMockController())

	err := bridge.Recognizer().Start(domain.RecognitionOptions{}, newRecognitionLog())
	if !errors.Is(err, browser.ErrNotConnected) {
		t.Errorf("recognition start: got %v, want not connected", err)
	}
	if err := bridge.Synthesizer().Speak(domain.Utterance{ID: "u1"}, nil); err == nil {
		t.Error("speak: expected error")
	}
}

func TestBridge_RecognitionRoundTrip(t *testing.T) {
	bridge := newBridge(newMockController())
	p := connect(t, bridge)
	events := newRecognitionLog()

	err := bridge.Recognizer().Start(domain.RecognitionOptions{Language: "en-GB", InterimResults: true}, events)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	start := p.read()
	if start.Type != browser.TypeRecognitionStart || start.Lang != "en-GB" || !start.InterimResults {
		t.Fatalf("start message: got %+v", start)
	}

	p.write(map[string]any{"type": "recognition.started", "session": start.Session})
	p.write(map[string]any{
		"type":        "recognition.result",
		"session":     start.Session,
		"resultIndex": 0,
		"results":     []map[string]any{{"transcript": "hello", "isFinal": true}},
	})
	p.write(map[string]any{"type": "recognition.ended", "session": start.Session})

	for _, want := range []string{"start", "result:hello", "end"} {
		if got := events.next(t); got != want {
			t.Errorf("event: got %q, want %q", got, want)
		}
	}
}

func TestBridge_DropsStaleRecognitionSession(t *testing.T) {
	bridge := newBridge(newMockController())
	p := connect(t, bridge)

	stale := newRecognitionLog()
	bridge.Recognizer().Start(domain.RecognitionOptions{}, stale)
	first := p.read()

	current := newRecognitionLog()
	bridge.Recognizer().Start(domain.RecognitionOptions{}, current)
	second := p.read()

	p.write(map[string]any{"type": "recognition.error", "session": first.Session, "code": "aborted"})
	p.write(map[string]any{"type": "recognition.error", "session": second.Session, "code": "no-speech"})

	if got := current.next(t); got != "error:no-speech" {
		t.Errorf("current session: got %q", got)
	}
	select {
	case e := <-stale.got:
		t.Errorf("stale session received %q", e)
	default:
	}
}

func TestBridge_DisconnectFailsRecognition(t *testing.T) {
	bridge := newBridge(newMockController())
	p := connect(t, bridge)
	events := newRecognitionLog()

	bridge.Recognizer().Start(domain.RecognitionOptions{}, events)
	p.read()
	p.conn.Close()

	if got := events.next(t); got != "error:network" {
		t.Errorf("event: got %q, want error:network", got)
	}
	if got := events.next(t); got != "end" {
		t.Errorf("event: got %q, want end", got)
	}
}

func TestBridge_Gestures(t *testing.T) {
	controller := newMockController()
	bridge := newBridge(controller)
	p := connect(t, bridge)

	p.write(map[string]any{"type": "listen.toggle"})
	p.write(map[string]any{"type": "rate.set", "value": 1.5})
	if got := p.read(); got.Type != browser.TypeSettings || got.Rate == nil || *got.Rate != 1.5 {
		t.Errorf("settings echo: got %+v", got)
	}

	p.write(map[string]any{"type": "credential.set", "key": "sk-test"})
	if got := p.read(); got.Type != browser.TypeCredential || got.Configured == nil || !*got.Configured {
		t.Errorf("credential echo: got %+v", got)
	}

	p.write(map[string]any{"type": "text.submit", "text": "hello"})
	select {
	case text := <-controller.submitted:
		if text != "hello" {
			t.Errorf("submitted: got %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for submit")
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.toggles != 1 {
		t.Errorf("toggles: got %d, want 1", controller.toggles)
	}
}

func TestBridge_SynthesisRoundTrip(t *testing.T) {
	bridge := newBridge(newMockController())
	p := connect(t, bridge)

	p.write(map[string]any{"type": "voices", "voices": []map[string]string{{"name": "Google US English", "lang": "en-US"}}})
	if got := p.read(); got.Type != browser.TypeSettings {
		t.Fatalf("after voices: got %+v", got)
	}
	if voices := bridge.Synthesizer().Voices(); len(voices) != 1 || voices[0].Name != "Google US English" {
		t.Errorf("voices: got %v", voices)
	}

	done := make(chan string, 2)
	events := &speechLog{done: done}
	err := bridge.Synthesizer().Speak(domain.Utterance{ID: "u1", Text: "hi", Rate: 1, Pitch: 1, Volume: 1}, events)
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	speak := p.read()
	if speak.Type != browser.TypeSynthesisSpeak || speak.ID != "u1" || speak.Text != "hi" {
		t.Fatalf("speak message: got %+v", speak)
	}

	p.write(map[string]any{"type": "synthesis.ended", "id": "u1"})
	p.write(map[string]any{"type": "synthesis.ended", "id": "u1"})

	select {
	case got := <-done:
		if got != "end" {
			t.Errorf("event: got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for synthesis end")
	}
	time.Sleep(50 * time.Millisecond)
	if len(done) != 0 {
		t.Error("duplicate end delivered")
	}
}

func TestBridge_ZeroVolumeAndPitchReachThePage(t *testing.T) {
	bridge := newBridge(newMockController())
	p := connect(t, bridge)

	p.write(map[string]any{"type": "volume.set", "value": 0})
	settings := p.read()
	if settings.Type != browser.TypeSettings || settings.Volume == nil || *settings.Volume != 0 {
		t.Fatalf("settings echo: got %+v", settings)
	}

	err := bridge.Synthesizer().Speak(domain.Utterance{ID: "u1", Text: "hi", Rate: 1, Pitch: 0, Volume: 0}, &speechLog{done: make(chan string, 1)})
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	speak := p.read()
	if speak.Volume == nil || *speak.Volume != 0 {
		t.Errorf("volume: got %v, want 0", speak.Volume)
	}
	if speak.Pitch == nil || *speak.Pitch != 0 {
		t.Errorf("pitch: got %v, want 0", speak.Pitch)
	}
}

type speechLog struct {
	done chan string
}

func (s *speechLog) OnStart()              {}
func (s *speechLog) OnEnd()                { s.done <- "end" }
func (s *speechLog) OnError(reason string) { s.done <- "error:" + reason }
