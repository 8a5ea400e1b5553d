// Command mudra turns hand gestures seen by a webcam into mouse input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

type options struct {
	configPath   string
	replay       string
	listSessions bool
	dryRun       bool
	jsonLog      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (yaml, json or toml)")
	flag.StringVar(&opts.replay, "replay", "", "replay a recorded session by ID, or \"latest\"")
	flag.BoolVar(&opts.listSessions, "list-sessions", false, "list recorded sessions and exit")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "log pointer actions instead of moving the mouse")
	flag.BoolVar(&opts.jsonLog, "json-log", false, "write logs as JSON")
	flag.Parse()

	settings, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(os.Stderr, settings.Log.Level)
	if opts.jsonLog {
		log = logging.NewJSON(os.Stderr, settings.Log.Level)
	}

	if err := run(opts, settings, log); err != nil {
		log.Fatal().Err(err).Msg("mudra failed")
	}
}

func run(opts options, settings *config.Settings, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if settings.Trace.Path != "" {
		var err error
		if st, err = openStore(settings.Trace.Path); err != nil {
			return err
		}
		defer st.Close()
	}

	switch {
	case opts.listSessions:
		if st == nil {
			return errors.New("--list-sessions needs trace.path")
		}
		return listSessions(st)
	case opts.replay != "":
		if st == nil {
			return errors.New("--replay needs trace.path")
		}
		return replay(ctx, st, opts.replay, settings, log)
	}
	return live(ctx, stop, opts, settings, st, log)
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	return store.New(path)
}

func listSessions(st *store.Store) error {
	sessions, err := st.Sessions().List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSCREEN\tFRAMES")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\n", s.ID, s.StartedAt.Format(time.DateTime), s.Screen.Width, s.Screen.Height, s.Frames)
	}
	return w.Flush()
}

// replay feeds a recorded session through a fresh engine and logs the
// resulting actions.
func replay(ctx context.Context, st *store.Store, id string, settings *config.Settings, log zerolog.Logger) error {
	if id == "latest" {
		sess, err := st.Sessions().Latest()
		if err != nil {
			return err
		}
		id = sess.ID
	}

	src, err := st.OpenReplay(id)
	if err != nil {
		return err
	}
	defer src.Close()

	screen := src.Session().Screen
	sink := pointer.NewLogSink(log, screen)
	runner, err := app.NewRunner(app.Config{
		Engine: gesture.NewEngine(settings.Gesture, screen),
		Source: src,
		Sink:   sink,
		Logger: log.With().Str("replay", id).Logger(),
	})
	if err != nil {
		return err
	}

	log.Info().Str("replay", id).Int("frames", src.Len()).Msg("replaying session")
	return runner.Run(ctx)
}

func live(ctx context.Context, stop context.CancelFunc, opts options, settings *config.Settings, st *store.Store, log zerolog.Logger) error {
	var sink pointer.Sink = pointer.NewRobotSink(log)
	screen := sink.ScreenSize()
	if opts.dryRun {
		sink = pointer.NewLogSink(log, screen)
	}

	det, err := detector.NewMediaPipeDetector(settings.Detector, log)
	if err != nil {
		return err
	}
	src := app.NewCameraSource(capture.NewCamera(settings.Camera), det, log)
	if err := src.Open(); err != nil {
		det.Close()
		return fmt.Errorf("open camera: %w", err)
	}
	defer src.Close()

	cfg := app.Config{
		Engine: gesture.NewEngine(settings.Gesture, screen),
		Source: src,
		Sink:   sink,
		Logger: log,
	}
	if st != nil {
		rec, err := st.NewRecorder(screen, time.Now())
		if err != nil {
			return err
		}
		cfg.Recorder = rec
		cfg.SessionID = rec.SessionID()
		log.Info().Str("path", st.Path()).Str("session", rec.SessionID()).Msg("recording trace")
	}

	var t *tray.Tray
	if settings.Tray.Enabled {
		t = tray.New()
		cfg.Observers = append(cfg.Observers, t)
	}

	runner, err := app.NewRunner(cfg)
	if err != nil {
		return err
	}
	log.Info().
		Int("screen_w", screen.Width).
		Int("screen_h", screen.Height).
		Bool("dry_run", opts.dryRun).
		Msg("mudra started")

	loop := func() error {
		// The overlay window and its key polling stay on one OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if settings.Overlay.Enabled {
			w := overlay.New("Mudra", src.Image)
			defer w.Close()
			runner.AddObserver(w)
		}
		return runner.Run(ctx)
	}

	if t == nil {
		return loop()
	}

	// The tray owns the main goroutine; the loop runs beside it.
	t.OnToggle(runner.SetPaused)
	t.OnQuit(stop)

	done := make(chan error, 1)
	go func() {
		done <- loop()
		t.Quit()
	}()
	t.Run()
	stop()
	return <-done
}
