package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/mudra/internal/gesture"
)

var (
	screen = gesture.Size{Width: 1920, Height: 1080}
	camera = gesture.Size{Width: 1280, Height: 720}
	start  = time.Unix(1_700_000_000, 0)
)

func testFrame(tick int, x, y float64) *gesture.LandmarkFrame {
	f := &gesture.LandmarkFrame{
		Timestamp: start.Add(time.Duration(tick) * time.Second / 30),
		Frame:     camera,
	}
	for i := range f.Points {
		f.Points[i] = gesture.Point{X: x + float64(i)/100, Y: y}
	}
	return f
}

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	first, err := repo.Create(screen, start)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := repo.Create(gesture.Size{Width: 2560, Height: 1440}, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", first.ID, second.ID)
	}

	got, err := repo.GetByID(first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Screen != screen {
		t.Errorf("Screen = %v, want %v", got.Screen, screen)
	}
	if !got.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, start)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("List() should return 2 sessions newest first, got %v", list)
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest() = %s, want %s", latest.ID, second.ID)
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetByID() after delete error = %v, want %v", err, ErrSessionNotFound)
	}
	if err := repo.Delete(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestSessionRepository_LatestEmpty(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Sessions().Latest(); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Latest() error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestRecorder_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.NewRecorder(screen, start)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	f0 := testFrame(0, 0.4, 0.5)
	f2 := testFrame(2, 0.45, 0.5)
	ticks := []TickRecord{
		{Tick: 0, At: f0.Timestamp, Frame: f0, Actions: []gesture.Action{gesture.MoveTo(965.5, 540.25)}},
		{Tick: 1, At: start.Add(time.Second / 15), PausedAfter: true},
		{Tick: 2, At: f2.Timestamp, Frame: f2, Paused: true, PausedAfter: true,
			Actions: []gesture.Action{{Kind: gesture.ActionPress}, gesture.ScrollBy(-12)}},
	}

	for _, tk := range ticks {
		if err := rec.Record(tk); err != nil {
			t.Fatalf("Record(%d) error = %v", tk.Tick, err)
		}
	}

	frames, err := s.Frames(rec.SessionID())
	if err != nil {
		t.Fatalf("Frames() error = %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[1].Frame != nil {
		t.Error("tick without a hand should replay as nil")
	}
	if !frames[1].At.Equal(ticks[1].At) {
		t.Errorf("absent tick time = %v, want %v", frames[1].At, ticks[1].At)
	}
	for i, f := range frames {
		if f.Paused != ticks[i].Paused || f.PausedAfter != ticks[i].PausedAfter {
			t.Errorf("tick %d pause state = (%v, %v), want (%v, %v)",
				i, f.Paused, f.PausedAfter, ticks[i].Paused, ticks[i].PausedAfter)
		}
	}
	if diff := cmp.Diff(f2.Points, frames[2].Frame.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if frames[2].Frame.Frame != camera {
		t.Errorf("frame size = %v, want %v", frames[2].Frame.Frame, camera)
	}
	if !frames[2].Frame.Timestamp.Equal(f2.Timestamp) {
		t.Errorf("timestamp = %v, want %v", frames[2].Frame.Timestamp, f2.Timestamp)
	}

	actions, err := s.Actions(rec.SessionID())
	if err != nil {
		t.Fatalf("Actions() error = %v", err)
	}
	want := []TracedAction{
		{Tick: 0, Action: gesture.MoveTo(965.5, 540.25)},
		{Tick: 2, Action: gesture.Action{Kind: gesture.ActionPress}},
		{Tick: 2, Action: gesture.ScrollBy(-12)},
	}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	sess, err := s.Sessions().GetByID(rec.SessionID())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sess.Frames != 3 {
		t.Errorf("Frames = %d, want 3", sess.Frames)
	}
}

func TestRecorder_DuplicateTick(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.NewRecorder(screen, start)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	if err := rec.Record(TickRecord{Tick: 0, At: start}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := rec.Record(TickRecord{Tick: 0, At: start, Actions: []gesture.Action{{Kind: gesture.ActionClick}}}); err == nil {
		t.Fatal("recording the same tick twice should fail")
	}

	// The failed tick must not leave its actions behind.
	actions, err := s.Actions(rec.SessionID())
	if err != nil {
		t.Fatalf("Actions() error = %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("expected no actions, got %v", actions)
	}
}

func TestRecorder_RecordActions(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.NewRecorder(screen, start)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	if err := rec.RecordActions(0, []gesture.Action{{Kind: gesture.ActionRelease}}); err == nil {
		t.Error("appending to an unrecorded tick should fail")
	}

	press := TickRecord{Tick: 0, At: start, Actions: []gesture.Action{{Kind: gesture.ActionPress}}}
	if err := rec.Record(press); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := rec.RecordActions(0, nil); err != nil {
		t.Errorf("RecordActions() with no actions error = %v", err)
	}
	if err := rec.RecordActions(0, []gesture.Action{{Kind: gesture.ActionRelease}}); err != nil {
		t.Fatalf("RecordActions() error = %v", err)
	}

	actions, err := s.Actions(rec.SessionID())
	if err != nil {
		t.Fatalf("Actions() error = %v", err)
	}
	want := []TracedAction{
		{Tick: 0, Action: gesture.Action{Kind: gesture.ActionPress}},
		{Tick: 0, Action: gesture.Action{Kind: gesture.ActionRelease}},
	}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaySource(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.NewRecorder(screen, start)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	rec.Record(TickRecord{Tick: 0, At: start, Frame: testFrame(0, 0.5, 0.5), PausedAfter: true})
	rec.Record(TickRecord{Tick: 1, At: start.Add(time.Second / 30), Paused: true})

	src, err := s.OpenReplay(rec.SessionID())
	if err != nil {
		t.Fatalf("OpenReplay() error = %v", err)
	}
	defer src.Close()

	if src.Len() != 2 {
		t.Errorf("Len() = %d, want 2", src.Len())
	}
	if src.Session().Screen != screen {
		t.Errorf("Session().Screen = %v, want %v", src.Session().Screen, screen)
	}

	ctx := context.Background()
	f, err := src.Next(ctx)
	if err != nil || f == nil {
		t.Fatalf("first Next() = %v, %v; want frame", f, err)
	}
	if during, after := src.PauseState(); during || !after {
		t.Errorf("first PauseState() = (%v, %v), want (false, true)", during, after)
	}
	f, err = src.Next(ctx)
	if err != nil || f != nil {
		t.Fatalf("second Next() = %v, %v; want nil, nil", f, err)
	}
	if during, after := src.PauseState(); !during || after {
		t.Errorf("second PauseState() = (%v, %v), want (true, false)", during, after)
	}
	if _, err := src.Next(ctx); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestReplaySource_Errors(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.OpenReplay("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("OpenReplay() error = %v, want %v", err, ErrSessionNotFound)
	}

	rec, _ := s.NewRecorder(screen, start)
	rec.Record(TickRecord{Tick: 0, At: start, Frame: testFrame(0, 0.5, 0.5)})
	src, err := s.OpenReplay(rec.SessionID())
	if err != nil {
		t.Fatalf("OpenReplay() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() with cancelled context error = %v, want %v", err, context.Canceled)
	}
}

func TestParseActionKind(t *testing.T) {
	for _, name := range []string{"move", "press", "release", "click", "scroll"} {
		k, err := parseActionKind(name)
		if err != nil {
			t.Errorf("parseActionKind(%q) error = %v", name, err)
		}
		if k.String() != name {
			t.Errorf("parseActionKind(%q) = %v", name, k)
		}
	}
	if _, err := parseActionKind("hover"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
