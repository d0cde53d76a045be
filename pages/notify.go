// ABOUTME: Transient notifications raised by page controllers
// ABOUTME: A queue the presentation layer drains and expires on its own schedule
package pages

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Toast struct {
	ID      string
	Level   Level
	Text    string
	Created time.Time
}

// Notifier queues toasts until the UI drains them.
type Notifier struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

func (n *Notifier) Success(text string) { n.push(LevelSuccess, text) }
func (n *Notifier) Error(text string)   { n.push(LevelError, text) }
func (n *Notifier) Info(text string)    { n.push(LevelInfo, text) }

func (n *Notifier) push(level Level, text string) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, Toast{
		ID:      ulid.Make().String(),
		Level:   level,
		Text:    text,
		Created: n.now(),
	})
}

// Drain returns queued toasts oldest first and empties the queue.
func (n *Notifier) Drain() []Toast {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.toasts
	n.toasts = nil
	return out
}
