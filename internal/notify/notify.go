// Package notify holds the one-slot user notification banner with its
// auto-dismiss timer.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type Notice struct {
	Kind Kind
	Text string
}

// Notifier shows at most one notice at a time. Success and warning notices
// dismiss themselves after a fixed duration; errors stay until replaced or
// dismissed by the user.
type Notifier struct {
	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	ttl     time.Duration
}

const defaultTTL = 4 * time.Second

func New() *Notifier {
	return &Notifier{ttl: defaultTTL}
}

// NewWithTTL exists for tests that cannot wait out the real dismiss delay.
func NewWithTTL(ttl time.Duration) *Notifier {
	return &Notifier{ttl: ttl}
}

// Show replaces the current notice.
func (n *Notifier) Show(kind Kind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	notice := &Notice{Kind: kind, Text: text}
	n.current = notice

	if kind != KindError {
		n.timer = time.AfterFunc(n.ttl, func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if n.current == notice {
				n.current = nil
			}
		})
	}
}

// Current returns the visible notice, or nil.
func (n *Notifier) Current() *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Dismiss clears the notice immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}
