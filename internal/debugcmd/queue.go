package debugcmd

import (
	"strings"
	"sync"
)

// Queue is an in-process mailbox with the same delivery contract as
// Channel. Producers on other goroutines Push text; the frame loop drains
// everything pushed since the previous Poll.
type Queue struct {
	mu      sync.Mutex
	pending []string
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends text for the next Poll. Blank text is ignored.
func (q *Queue) Push(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, text)
	q.mu.Unlock()
}

// Poll implements Source.
func (q *Queue) Poll() (string, bool) {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	if len(pending) == 0 {
		return "", false
	}
	for i, p := range pending {
		pending[i] = strings.TrimRight(p, "\n")
	}
	return strings.Join(pending, "\n"), true
}

// Len returns the number of pushes waiting to be polled.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
