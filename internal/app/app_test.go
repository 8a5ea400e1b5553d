package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

var (
	camera   = gesture.Size{Width: 1280, Height: 720}
	screen   = gesture.Size{Width: 1920, Height: 1080}
	centre   = gesture.Point{X: 960, Y: 540}
	baseTime = time.Unix(1_700_000_000, 0)
)

// scriptedSource replays a fixed list of frames and errors, then io.EOF.
type scriptedSource struct {
	steps  []sourceStep
	next   int
	onRead func(i int)
}

type sourceStep struct {
	hand *detector.HandLandmarks
	err  error
}

func (s *scriptedSource) Next(ctx context.Context) (*gesture.LandmarkFrame, error) {
	if s.next >= len(s.steps) {
		return nil, io.EOF
	}
	i := s.next
	s.next++
	if s.onRead != nil {
		s.onRead(i)
	}
	st := s.steps[i]
	if st.err != nil {
		return nil, st.err
	}
	return st.hand.Frame(baseTime.Add(time.Duration(i)*time.Second/30), camera), nil
}

func hands(n int, build func(i int) detector.HandLandmarks) []sourceStep {
	steps := make([]sourceStep, n)
	for i := range steps {
		h := build(i)
		steps[i] = sourceStep{hand: &h}
	}
	return steps
}

func absent(n int) []sourceStep {
	return make([]sourceStep, n)
}

func newRunner(t *testing.T, src LandmarkSource, sink pointer.Sink, opts ...func(*Config)) *Runner {
	t.Helper()
	cfg := Config{
		Engine: gesture.NewEngine(gesture.DefaultConfig(), screen),
		Source: src,
		Sink:   sink,
		Logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	r, err := NewRunner(cfg)
	require.NoError(t, err)
	return r
}

func TestNewRunner_RequiresCollaborators(t *testing.T) {
	_, err := NewRunner(Config{})
	assert.Error(t, err)
}

func TestRunner_PointingMovesCursor(t *testing.T) {
	src := &scriptedSource{steps: hands(600, func(int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.3, 0.3)
	})}
	sink := pointer.NewRecordingSink(screen, centre)
	r := newRunner(t, src, sink)

	require.NoError(t, r.Run(context.Background()))

	assert.Positive(t, sink.Count(gesture.ActionMove))
	assert.Zero(t, sink.Count(gesture.ActionPress))
	assert.Zero(t, sink.Count(gesture.ActionClick))

	// The 0.12 control margin maps 0.3 to (0.3-0.12)/0.76 of each axis.
	pos := sink.Position()
	assert.InDelta(t, 0.18/0.76*1920, pos.X, 10)
	assert.InDelta(t, 0.18/0.76*1080, pos.Y, 10)
	assert.Equal(t, gesture.IntentMove, r.Intent())
	assert.False(t, r.Running())
}

func TestRunner_ReleasesDragWhenSourceEnds(t *testing.T) {
	src := &scriptedSource{steps: hands(15, func(int) detector.HandLandmarks {
		return detector.PinchLandmarks(0.5, 0.5)
	})}
	sink := pointer.NewRecordingSink(screen, centre)
	var logs bytes.Buffer
	r := newRunner(t, src, sink, func(c *Config) { c.Logger = zerolog.New(&logs) })

	require.NoError(t, r.Run(context.Background()))

	actions := sink.Actions()
	require.NotEmpty(t, actions)
	assert.Equal(t, 1, sink.Count(gesture.ActionPress))
	assert.Equal(t, 1, sink.Count(gesture.ActionRelease))
	assert.Equal(t, gesture.ActionRelease, actions[len(actions)-1].Kind)
	assert.False(t, sink.Pressed())
	assert.Contains(t, logs.String(), "released drag on shutdown")
	assert.Contains(t, logs.String(), r.SessionID())
}

func TestRunner_ShortPinchClicks(t *testing.T) {
	steps := hands(3, func(int) detector.HandLandmarks { return detector.PinchLandmarks(0.5, 0.5) })
	steps = append(steps, hands(3, func(int) detector.HandLandmarks { return detector.FistLandmarks() })...)
	sink := pointer.NewRecordingSink(screen, centre)

	require.NoError(t, newRunner(t, &scriptedSource{steps: steps}, sink).Run(context.Background()))

	if diff := cmp.Diff([]gesture.Action{{Kind: gesture.ActionClick}}, sink.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_ObserverPausesDuringDrag(t *testing.T) {
	steps := hands(12, func(int) detector.HandLandmarks { return detector.PinchLandmarks(0.5, 0.5) })
	steps = append(steps, hands(30, func(i int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.2+float64(i)/100, 0.4)
	})...)
	sink := pointer.NewRecordingSink(screen, centre)

	var pausedAt int64 = -1
	toggle := ObserverFunc(func(tk Tick) Command {
		if len(tk.Result.Actions) > 0 && tk.Result.Actions[0].Kind == gesture.ActionPress {
			pausedAt = tk.Index
			return CommandTogglePause
		}
		return CommandNone
	})

	var intents []gesture.Intent
	watch := ObserverFunc(func(tk Tick) Command {
		if pausedAt >= 0 && tk.Index > pausedAt {
			intents = append(intents, tk.Result.Intent)
		}
		return CommandNone
	})

	r := newRunner(t, &scriptedSource{steps: steps}, sink, func(c *Config) {
		c.Observers = []Observer{toggle, watch}
	})
	require.NoError(t, r.Run(context.Background()))

	require.GreaterOrEqual(t, pausedAt, int64(0), "drag never started")
	actions := sink.Actions()
	require.Len(t, actions, 2, "only the press and the pause release expected")
	assert.Equal(t, gesture.ActionPress, actions[0].Kind)
	assert.Equal(t, gesture.ActionRelease, actions[1].Kind)
	assert.True(t, r.Paused())
	require.NotEmpty(t, intents)
	for _, in := range intents {
		assert.Equal(t, gesture.IntentPaused, in)
	}
}

func TestRunner_SetPausedFromOutside(t *testing.T) {
	sink := pointer.NewRecordingSink(screen, gesture.Point{X: 200, Y: 200})
	r := newRunner(t, &scriptedSource{steps: hands(60, func(int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.8, 0.8)
	})}, sink)

	r.SetPaused(true)
	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, sink.Actions())
	assert.True(t, r.Paused())
	assert.Equal(t, gesture.IntentPaused, r.Intent())
}

func TestRunner_QueuedPauseRequestsApplyInOrder(t *testing.T) {
	sink := pointer.NewRecordingSink(screen, centre)
	src := &scriptedSource{steps: hands(60, func(int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.8, 0.8)
	})}
	r := newRunner(t, src, sink)

	var pausedTicks []int64
	r.AddObserver(ObserverFunc(func(tk Tick) Command {
		if tk.Result.Intent == gesture.IntentPaused {
			pausedTicks = append(pausedTicks, tk.Index)
		}
		return CommandNone
	}))

	// Two clicks land between ticks 9 and 10: pause, then resume.
	src.onRead = func(i int) {
		if i == 9 {
			r.SetPaused(true)
			r.SetPaused(false)
		}
	}
	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, pausedTicks)
	assert.False(t, r.Paused())
	assert.Positive(t, sink.Count(gesture.ActionMove))
}

func TestRunner_ObserverStops(t *testing.T) {
	src := &scriptedSource{steps: absent(100)}
	seen := 0
	stop := ObserverFunc(func(tk Tick) Command {
		seen++
		if tk.Index == 9 {
			return CommandStop
		}
		return CommandNone
	})

	r := newRunner(t, src, pointer.NewRecordingSink(screen, centre), func(c *Config) {
		c.Observers = []Observer{stop}
	})
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 10, seen)
	assert.Equal(t, 10, src.next)
}

func TestRunner_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{steps: absent(100)}
	src.onRead = func(i int) {
		if i == 4 {
			cancel()
		}
	}

	r := newRunner(t, src, pointer.NewRecordingSink(screen, centre))
	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 5, src.next)
}

func TestRunner_SourceErrors(t *testing.T) {
	boom := errors.New("camera unplugged")

	t.Run("intermittent failures are skipped", func(t *testing.T) {
		steps := append(absent(3), sourceStep{err: boom}, sourceStep{err: boom})
		steps = append(steps, absent(3)...)
		ticks := 0
		count := ObserverFunc(func(Tick) Command { ticks++; return CommandNone })

		r := newRunner(t, &scriptedSource{steps: steps}, pointer.NewRecordingSink(screen, centre), func(c *Config) {
			c.Observers = []Observer{count}
		})
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, 6, ticks)
	})

	t.Run("persistent failure ends the run", func(t *testing.T) {
		steps := make([]sourceStep, maxSourceErrors+5)
		for i := range steps {
			steps[i].err = boom
		}

		r := newRunner(t, &scriptedSource{steps: steps}, pointer.NewRecordingSink(screen, centre))
		err := r.Run(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

// recordAndReplay runs steps live with a recorder, then replays the stored
// session through a fresh runner.
func recordAndReplay(t *testing.T, steps []sourceStep, live func(*Runner, *scriptedSource), opts ...func(*Config)) (s *store.Store, id string, liveSink, replaySink *pointer.RecordingSink) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rec, err := s.NewRecorder(screen, baseTime)
	require.NoError(t, err)

	src := &scriptedSource{steps: steps}
	liveSink = pointer.NewRecordingSink(screen, centre)
	opts = append(opts, func(c *Config) {
		c.Recorder = rec
		c.SessionID = rec.SessionID()
	})
	r := newRunner(t, src, liveSink, opts...)
	if live != nil {
		live(r, src)
	}
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, rec.SessionID(), r.SessionID())

	replay, err := s.OpenReplay(rec.SessionID())
	require.NoError(t, err)
	require.Equal(t, len(steps), replay.Len())

	replaySink = pointer.NewRecordingSink(screen, centre)
	require.NoError(t, newRunner(t, replay, replaySink).Run(context.Background()))

	return s, rec.SessionID(), liveSink, replaySink
}

func tracedActions(t *testing.T, s *store.Store, id string) []gesture.Action {
	t.Helper()
	traced, err := s.Actions(id)
	require.NoError(t, err)
	out := make([]gesture.Action, len(traced))
	for i, ta := range traced {
		out[i] = ta.Action
	}
	return out
}

func TestRunner_RecordAndReplay(t *testing.T) {
	steps := hands(40, func(i int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.3+float64(i)/200, 0.5)
	})
	steps = append(steps, absent(5)...)
	steps = append(steps, hands(12, func(int) detector.HandLandmarks { return detector.PinchLandmarks(0.4, 0.5) })...)
	steps = append(steps, hands(20, func(i int) detector.HandLandmarks { return detector.TwoFingerLandmarks(0.7 - float64(i)/100) })...)

	s, id, live, again := recordAndReplay(t, steps, nil)

	require.NotEmpty(t, live.Actions())
	assert.Positive(t, live.Count(gesture.ActionScroll))
	if diff := cmp.Diff(live.Actions(), again.Actions()); diff != "" {
		t.Errorf("replay diverged (-live +replay):\n%s", diff)
	}
	if diff := cmp.Diff(live.Actions(), tracedActions(t, s, id)); diff != "" {
		t.Errorf("trace differs from live (-live +trace):\n%s", diff)
	}
}

func TestRunner_RecordAndReplayWithPauses(t *testing.T) {
	pinch := func(int) detector.HandLandmarks { return detector.PinchLandmarks(0.5, 0.5) }
	fist := func(int) detector.HandLandmarks { return detector.FistLandmarks() }

	steps := hands(12, pinch) // press at tick 8
	steps = append(steps, hands(15, func(i int) detector.HandLandmarks {
		return detector.PointingLandmarks(0.3+float64(i)/100, 0.4)
	})...)
	steps = append(steps, hands(18, pinch)...) // press at tick 35
	steps = append(steps, hands(2, fist)...)
	steps = append(steps, hands(12, pinch)...) // press at tick 55, held to the end

	// The overlay key pauses on the first press and resumes at tick 16.
	toggle := ObserverFunc(func(tk Tick) Command {
		if tk.Index == 8 || tk.Index == 16 {
			return CommandTogglePause
		}
		return CommandNone
	})
	// The tray pauses while the second drag is held and resumes with the pinch
	// still closed. Requests apply on the following tick.
	tray := func(r *Runner, src *scriptedSource) {
		src.onRead = func(i int) {
			switch i {
			case 36:
				r.SetPaused(true)
			case 40:
				r.SetPaused(false)
			}
		}
	}

	s, id, live, again := recordAndReplay(t, steps, tray, func(c *Config) {
		c.Observers = []Observer{toggle}
	})

	assert.Equal(t, 3, live.Count(gesture.ActionPress))
	assert.Equal(t, 3, live.Count(gesture.ActionRelease))
	assert.False(t, live.Pressed())

	if diff := cmp.Diff(live.Actions(), again.Actions()); diff != "" {
		t.Errorf("replay diverged (-live +replay):\n%s", diff)
	}
	if diff := cmp.Diff(live.Actions(), tracedActions(t, s, id)); diff != "" {
		t.Errorf("trace differs from live (-live +trace):\n%s", diff)
	}
	assert.False(t, again.Pressed())

	frames, err := s.Frames(id)
	require.NoError(t, err)
	assert.False(t, frames[8].Paused)
	assert.True(t, frames[8].PausedAfter)
	assert.True(t, frames[16].Paused)
	assert.False(t, frames[16].PausedAfter)
	assert.False(t, frames[36].Paused)
	assert.True(t, frames[37].Paused)
	assert.False(t, frames[41].Paused)

	// The pause releases and the shutdown release are filed under their ticks.
	traced, err := s.Actions(id)
	require.NoError(t, err)
	var releases []int64
	for _, ta := range traced {
		if ta.Action.Kind == gesture.ActionRelease {
			releases = append(releases, ta.Tick)
		}
	}
	assert.Equal(t, []int64{8, 37, int64(len(steps) - 1)}, releases)
}

func TestRunner_RunTwiceConcurrently(t *testing.T) {
	block := make(chan struct{})
	src := &blockingSource{release: block}
	r := newRunner(t, src, pointer.NewRecordingSink(screen, centre))

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	require.Eventually(t, r.Running, time.Second, time.Millisecond)
	assert.Error(t, r.Run(context.Background()))

	close(block)
	assert.NoError(t, <-done)
}

// blockingSource waits for release, then reports EOF.
type blockingSource struct {
	release chan struct{}
}

func (s *blockingSource) Next(ctx context.Context) (*gesture.LandmarkFrame, error) {
	select {
	case <-s.release:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
