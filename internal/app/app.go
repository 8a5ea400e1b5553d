// Package app runs the tick loop: it pulls landmark frames from a source,
// steps the gesture engine and dispatches the resulting pointer actions.
package app

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

// maxSourceErrors ends the run after this many consecutive source failures.
const maxSourceErrors = 30

// Recorder stores each tick for later replay.
type Recorder interface {
	Record(rec store.TickRecord) error
	// RecordActions appends actions dispatched after a tick was recorded.
	RecordActions(tick int64, actions []gesture.Action) error
}

// PauseScript is implemented by sources that carry the pause state of each
// recorded tick. PauseState describes the frame last returned by Next.
type PauseScript interface {
	PauseState() (during, after bool)
}

// Command is an observer's reaction to a tick.
type Command int

const (
	CommandNone Command = iota
	CommandTogglePause
	CommandStop
)

// Tick describes one processed tick.
type Tick struct {
	Index  int64
	At     time.Time
	Frame  *gesture.LandmarkFrame // nil when no hand was detected
	Result gesture.Result
}

// Observer is called synchronously after every tick.
type Observer interface {
	Observe(t Tick) Command
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Tick) Command

func (f ObserverFunc) Observe(t Tick) Command { return f(t) }

// Config holds the collaborators of a Runner.
type Config struct {
	Engine *gesture.Engine
	Source LandmarkSource
	Sink   pointer.Sink
	Logger zerolog.Logger

	// SessionID tags every log line; a new UUID is used when empty.
	SessionID string
	// Recorder is optional.
	Recorder  Recorder
	Observers []Observer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Runner owns the engine and drives it from a single goroutine. Pause
// requests from other goroutines are queued and applied between ticks.
type Runner struct {
	engine    *gesture.Engine
	source    LandmarkSource
	sink      pointer.Sink
	log       zerolog.Logger
	sessionID string
	recorder  Recorder
	observers []Observer
	now       func() time.Time
	metrics   *metrics

	// unrecorded collects the actions dispatched since the last recorded tick.
	unrecorded []gesture.Action
	lastTick   int64

	requests chan bool
	paused   atomic.Bool
	intent   atomic.Int32
	running  atomic.Bool
}

// NewRunner validates the configuration and creates a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Engine == nil || cfg.Source == nil || cfg.Sink == nil {
		return nil, errors.New("runner needs an engine, a source and a sink")
	}

	m, err := newMetrics(meter())
	if err != nil {
		return nil, err
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	r := &Runner{
		engine:    cfg.Engine,
		source:    cfg.Source,
		sink:      cfg.Sink,
		log:       cfg.Logger.With().Str("session", sessionID).Logger(),
		sessionID: sessionID,
		recorder:  cfg.Recorder,
		observers: cfg.Observers,
		now:       now,
		metrics:   m,
		lastTick:  -1,
		requests:  make(chan bool, 8),
	}
	r.intent.Store(int32(gesture.IntentIdle))
	return r, nil
}

// AddObserver registers an observer. It must be called before Run.
func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// SessionID returns the ID carried on every log line of this run.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// SetPaused queues a pause or resume. It is safe to call from any goroutine.
func (r *Runner) SetPaused(paused bool) {
	select {
	case r.requests <- paused:
	default:
		r.log.Warn().Bool("paused", paused).Msg("pause request dropped")
	}
}

// Paused reports the paused state as of the last applied request.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Intent returns the intent reported by the most recent tick.
func (r *Runner) Intent() gesture.Intent {
	return gesture.Intent(r.intent.Load())
}

// Running reports whether Run is in progress.
func (r *Runner) Running() bool {
	return r.running.Load()
}
