package application

import (
	"sync"

	"voice-assistant/internal/domain"
)

// HistoryLimit is the number of turns kept for the chat endpoint.
const HistoryLimit = 10

// History is a sliding window of conversation turns, oldest evicted first.
type History struct {
	mu    sync.Mutex
	limit int
	turns []domain.Turn
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Append(turns ...domain.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, turns...)
	if over := len(h.turns) - h.limit; over > 0 {
		kept := make([]domain.Turn, h.limit)
		copy(kept, h.turns[over:])
		h.turns = kept
	}
}

// Turns returns a copy in insertion order.
func (h *History) Turns() []domain.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]domain.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
