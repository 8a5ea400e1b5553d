package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

// Run processes ticks until the context is cancelled, the source ends, an
// observer asks to stop, or the source keeps failing. A drag in progress is
// released before Run returns.
//
// Each tick:
// 1. Apply queued pause/resume requests
// 2. Read the next landmark frame (nil when no hand)
// 3. Step the engine with the real cursor position
// 4. Dispatch the actions, notify observers and record the tick
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("runner already running")
	}
	defer r.running.Store(false)
	r.lastTick = -1
	defer r.shutdown()

	r.log.Info().Msg("tick loop started")

	failures := 0
	for tick := int64(0); ; {
		if ctx.Err() != nil {
			return nil
		}
		r.applyRequests()

		frame, err := r.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.log.Info().Int64("ticks", tick).Msg("source exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}

			failures++
			r.metrics.sourceError(ctx)
			r.log.Warn().Err(err).Int("consecutive", failures).Msg("source read failed")
			if failures >= maxSourceErrors {
				return fmt.Errorf("landmark source: %w", err)
			}
			continue
		}
		failures = 0

		if cmd := r.step(ctx, tick, frame); cmd == CommandStop {
			r.log.Info().Msg("stop requested")
			return nil
		}
		tick++
	}
}

// step runs one tick and returns the strongest observer command.
func (r *Runner) step(ctx context.Context, tick int64, frame *gesture.LandmarkFrame) Command {
	at := r.now()
	if frame != nil {
		at = frame.Timestamp
	}

	script, replaying := r.source.(PauseScript)
	var pausedAfter bool
	if replaying {
		var during bool
		during, pausedAfter = script.PauseState()
		r.setPaused(during)
	}
	paused := r.engine.Paused()

	res := r.engine.Step(frame, r.sink.Position())
	r.dispatch(ctx, res.Actions)
	r.metrics.tick(ctx, frame == nil)

	if prev := gesture.Intent(r.intent.Swap(int32(res.Intent))); prev != res.Intent {
		r.log.Debug().
			Stringer("from", prev).
			Stringer("to", res.Intent).
			Float64("confidence", res.Confidence).
			Msg("intent changed")
	}

	cmd := CommandNone
	t := Tick{Index: tick, At: at, Frame: frame, Result: res}
	for _, o := range r.observers {
		switch o.Observe(t) {
		case CommandStop:
			cmd = CommandStop
		case CommandTogglePause:
			if cmd != CommandStop {
				r.setPaused(!r.engine.Paused())
			}
		}
	}
	if replaying {
		r.setPaused(pausedAfter)
	}

	r.record(store.TickRecord{
		Tick:        tick,
		At:          at,
		Frame:       frame,
		Paused:      paused,
		PausedAfter: r.engine.Paused(),
	})
	return cmd
}

// record stores the tick with every action dispatched since the previous one.
func (r *Runner) record(rec store.TickRecord) {
	rec.Actions = r.unrecorded
	r.unrecorded = nil
	r.lastTick = rec.Tick

	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(rec); err != nil {
		r.log.Error().Err(err).Msg("trace recording failed, disabling")
		r.recorder = nil
	}
}

// applyRequests drains queued pause requests.
func (r *Runner) applyRequests() {
	for {
		select {
		case paused := <-r.requests:
			r.setPaused(paused)
		default:
			return
		}
	}
}

func (r *Runner) setPaused(paused bool) {
	if r.engine.Paused() == paused {
		return
	}
	actions := r.engine.SetPaused(paused)
	r.paused.Store(paused)
	pointer.Dispatch(r.sink, actions)
	r.unrecorded = append(r.unrecorded, actions...)

	if paused {
		r.log.Info().Bool("released_drag", len(actions) > 0).Msg("paused")
	} else {
		r.log.Info().Msg("resumed")
	}
}

func (r *Runner) dispatch(ctx context.Context, actions []gesture.Action) {
	if len(actions) == 0 {
		return
	}
	pointer.Dispatch(r.sink, actions)
	r.unrecorded = append(r.unrecorded, actions...)
	r.metrics.dispatched(ctx, actions)
}

// shutdown releases a held drag and files it, with any pause release not
// yet recorded, under the last recorded tick.
func (r *Runner) shutdown() {
	actions := r.engine.Shutdown()
	if len(actions) > 0 {
		pointer.Dispatch(r.sink, actions)
		r.unrecorded = append(r.unrecorded, actions...)
		r.log.Info().Msg("released drag on shutdown")
	}

	if r.recorder != nil && r.lastTick >= 0 && len(r.unrecorded) > 0 {
		if err := r.recorder.RecordActions(r.lastTick, r.unrecorded); err != nil {
			r.log.Error().Err(err).Msg("trace recording failed")
		}
	}
	r.unrecorded = nil
	r.log.Info().Msg("tick loop stopped")
}
