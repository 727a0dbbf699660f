package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// manualTimers collects scheduled hides so tests can fire them at will.
type manualTimers struct {
	delays []time.Duration
	funcs  []func()
}

func (m *manualTimers) after(d time.Duration, f func()) {
	m.delays = append(m.delays, d)
	m.funcs = append(m.funcs, f)
}

func newManualNotifier() (*Notifier, *manualTimers) {
	timers := &manualTimers{}
	n := NewNotifier()
	n.after = timers.after
	return n, timers
}

func TestNotifier_HidesAfterDelay(t *testing.T) {
	n, timers := newManualNotifier()

	_, visible := n.Current()
	assert.False(t, visible)

	n.Show("Signed up", model.StatusSuccess)

	status, visible := n.Current()
	assert.True(t, visible)
	assert.Equal(t, model.Status{Text: "Signed up", Kind: model.StatusSuccess}, status)
	require.Len(t, timers.funcs, 1)
	assert.Equal(t, StatusDisplayDuration, timers.delays[0])

	timers.funcs[0]()

	_, visible = n.Current()
	assert.False(t, visible)
}

func TestNotifier_OlderHideDoesNotCutNewerMessage(t *testing.T) {
	n, timers := newManualNotifier()

	n.Show("first", model.StatusError)
	n.Show("second", model.StatusSuccess)
	require.Len(t, timers.funcs, 2)

	timers.funcs[0]()

	status, visible := n.Current()
	assert.True(t, visible)
	assert.Equal(t, "second", status.Text)
	assert.Equal(t, model.StatusSuccess, status.Kind)

	timers.funcs[1]()

	_, visible = n.Current()
	assert.False(t, visible)
}

func TestNotifier_Remaining(t *testing.T) {
	n, timers := newManualNotifier()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	assert.Zero(t, n.Remaining(), "nothing shown")

	n.Show("first", model.StatusSuccess)
	assert.Equal(t, StatusDisplayDuration, n.Remaining())

	now = now.Add(3 * time.Second)
	assert.Equal(t, 2*time.Second, n.Remaining(), "re-renders count down from the first display")

	n.Show("second", model.StatusError)
	assert.Equal(t, StatusDisplayDuration, n.Remaining(), "a new message starts a fresh window")

	now = now.Add(StatusDisplayDuration + time.Second)
	assert.Zero(t, n.Remaining(), "never negative while the hide is pending")

	timers.funcs[1]()
	assert.Zero(t, n.Remaining())
}

func TestNotifier_RealTimer(t *testing.T) {
	n := NewNotifier()
	n.delay = 10 * time.Millisecond

	n.Show("bye", model.StatusSuccess)

	assert.Eventually(t, func() bool {
		_, visible := n.Current()
		return !visible
	}, time.Second, 5*time.Millisecond)
}
