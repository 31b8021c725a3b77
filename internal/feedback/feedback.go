// Package feedback holds the single transient status message shown above
// the form ("Student added successfully!", "Student removed!", ...).
//
// A message is cleared automatically after a delay that depends on its
// kind. Showing a new message stops the pending clear of the previous one
// before arming its own, so a newer message is never erased early.
package feedback

import (
	"sync"
	"time"
)

// Kind selects how long a message stays visible.
type Kind string

const (
	Success Kind = "success"
	Info    Kind = "info"
	Error   Kind = "error"
)

// Message is what the status area currently shows.
type Message struct {
	Kind Kind   `json:"kind,omitempty"`
	Text string `json:"text"`
}

// Durations maps each kind to its display time. A zero duration keeps the
// message until it is replaced.
type Durations map[Kind]time.Duration

// DefaultDurations are used for kinds missing from the configured set.
var DefaultDurations = Durations{
	Success: 2 * time.Second,
	Info:    4 * time.Second,
	Error:   3 * time.Second,
}

// Notifier owns the status message and its clear timer.
type Notifier struct {
	mu        sync.Mutex
	current   Message
	timer     *time.Timer
	gen       uint64
	durations Durations
}

// New returns a notifier with the given durations.
func New(durations Durations) *Notifier {
	d := make(Durations, len(DefaultDurations))
	for k, v := range DefaultDurations {
		d[k] = v
	}
	for k, v := range durations {
		d[k] = v
	}
	return &Notifier{durations: d}
}

// Show replaces the current message and restarts the clear timer.
func (n *Notifier) Show(kind Kind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	n.gen++
	n.current = Message{Kind: kind, Text: text}

	after := n.durations[kind]
	if after <= 0 {
		return
	}

	// Stop does not cancel a callback that has already fired and is
	// waiting on the lock, so the callback also checks the generation.
	gen := n.gen
	n.timer = time.AfterFunc(after, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen != gen {
			return
		}
		n.current = Message{}
		n.timer = nil
	})
}

// Current returns the visible message; Text is empty when nothing is shown.
func (n *Notifier) Current() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Clear removes the message immediately.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.current = Message{}
}
