// Package tray provides a system tray menu to pause pointer control, show
// the current intent and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

// maxPendingTicks is how long a toggle waits for the loop to confirm it
// before the menu falls back to the loop's state.
const maxPendingTicks = 30

// Tray is the system tray menu. It also implements app.Observer to keep the
// intent display and the pause toggle in sync with the loop.
type Tray struct {
	onToggle func(paused bool)
	onQuit   func()
	paused   bool
	intent   gesture.Intent
	mu       sync.RWMutex

	// pending is set from a click until a tick shows the requested state.
	pending      bool
	pendingTicks int

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuIntent *systray.MenuItem
}

// New creates a tray in the running state.
func New() *Tray {
	return &Tray{intent: gesture.IntentIdle}
}

// OnToggle sets the callback called with the new state when Pause/Resume is clicked.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback called when Quit is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit and must be called from
// the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture pointer")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.paused), "Pause or resume pointer control")
	systray.AddSeparator()
	t.menuIntent = systray.AddMenuItem(intentTitle(t.intent), "Current intent")
	t.menuIntent.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	t.pending = true
	t.pendingTicks = 0
	paused := t.paused
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(paused))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// Quit closes the tray, unblocking Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// Observe mirrors the tick's intent and pause state into the menu. While a
// click is still queued the toggle keeps showing the requested state.
func (t *Tray) Observe(tick app.Tick) app.Command {
	intent := tick.Result.Intent
	paused := intent == gesture.IntentPaused

	t.mu.Lock()
	defer t.mu.Unlock()

	if intent != t.intent {
		t.intent = intent
		if t.menuIntent != nil {
			t.menuIntent.SetTitle(intentTitle(intent))
		}
	}

	if t.pending {
		t.pendingTicks++
		if paused == t.paused || t.pendingTicks > maxPendingTicks {
			t.pending = false
		}
	}
	if !t.pending && paused != t.paused {
		t.paused = paused
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(paused))
		}
	}
	return app.CommandNone
}

// Paused returns the state shown by the toggle.
func (t *Tray) Paused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Intent returns the intent shown in the menu.
func (t *Tray) Intent() gesture.Intent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.intent
}

func toggleTitle(paused bool) string {
	if paused {
		return "○ Paused (click to resume)"
	}
	return "● Active (click to pause)"
}

func intentTitle(intent gesture.Intent) string {
	return "Intent: " + intent.String()
}
