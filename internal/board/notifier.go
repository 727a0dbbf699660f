package board

import (
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// StatusDisplayDuration is how long a status message stays visible.
const StatusDisplayDuration = 5 * time.Second

// Notifier is the board's single status message slot. Every Show schedules
// a hide after StatusDisplayDuration; a hide only applies if no newer Show
// happened in the meantime.
type Notifier struct {
	mu      sync.Mutex
	status  model.Status
	visible bool
	gen     uint64
	expires time.Time

	delay time.Duration
	after func(d time.Duration, f func())
	now   func() time.Time
}

// NewNotifier returns an empty notifier backed by real timers.
func NewNotifier() *Notifier {
	return &Notifier{
		delay: StatusDisplayDuration,
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:   time.Now,
	}
}

// Show replaces the current message and makes it visible.
func (n *Notifier) Show(text string, kind model.StatusKind) {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.status = model.Status{Text: text, Kind: kind}
	n.visible = true
	n.expires = n.now().Add(n.delay)
	n.mu.Unlock()

	n.after(n.delay, func() { n.hide(gen) })
}

// Current returns the visible message, if any.
func (n *Notifier) Current() (model.Status, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status, n.visible
}

// Remaining returns how much longer the current message stays visible, or
// zero when nothing is shown.
func (n *Notifier) Remaining() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.visible {
		return 0
	}
	return max(n.expires.Sub(n.now()), 0)
}

func (n *Notifier) hide(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen == n.gen {
		n.visible = false
	}
}
