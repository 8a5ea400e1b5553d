// Package overlay shows the camera feed with the tracked fingertips and the
// current intent in a gocv window. It also turns key presses into loop
// commands.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

const (
	keyEscape = 27
	keySpace  = 32
)

var (
	markerColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	intentColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	fpsColor    = color.RGBA{R: 220, G: 220, B: 220, A: 0}
)

// ImageFunc returns the frame the current tick was computed from, or nil.
type ImageFunc func() *gocv.Mat

// Window is an app.Observer that draws each tick. It must be driven from the
// goroutine that created it.
type Window struct {
	window *gocv.Window
	image  ImageFunc
	fps    fpsMeter
}

// New opens a window with the given title.
func New(title string, image ImageFunc) *Window {
	return &Window{
		window: gocv.NewWindow(title),
		image:  image,
		fps:    fpsMeter{now: time.Now},
	}
}

// Observe draws the tick and polls the keyboard.
func (w *Window) Observe(t app.Tick) app.Command {
	fps := w.fps.tick()

	if img := w.image(); img != nil && !img.Empty() {
		draw(img, t, fps)
		w.window.IMShow(*img)
	}
	return keyCommand(w.window.WaitKey(1))
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}

func draw(img *gocv.Mat, t app.Tick, fps float64) {
	if t.Frame != nil {
		size := gesture.Size{Width: img.Cols(), Height: img.Rows()}
		index := toPixel(t.Frame.Points[gesture.IndexTip], size)
		thumb := toPixel(t.Frame.Points[gesture.ThumbTip], size)

		gocv.Circle(img, index, 7, markerColor, -1)
		gocv.Circle(img, thumb, 7, markerColor, -1)
		gocv.Line(img, index, thumb, markerColor, 2)
	}

	gocv.PutText(img, intentLabel(t.Result), image.Pt(12, 32), gocv.FontHersheySimplex, 0.9, intentColor, 2)
	gocv.PutText(img, fpsLabel(fps), image.Pt(12, 64), gocv.FontHersheySimplex, 0.7, fpsColor, 2)
}

// keyCommand maps a WaitKey result to a loop command.
func keyCommand(key int) app.Command {
	if key < 0 {
		return app.CommandNone
	}
	switch key & 0xFF {
	case keyEscape:
		return app.CommandStop
	case keySpace:
		return app.CommandTogglePause
	}
	return app.CommandNone
}

func intentLabel(res gesture.Result) string {
	return "Intent: " + res.Intent.String()
}

func fpsLabel(fps float64) string {
	return fmt.Sprintf("FPS: %.1f", fps)
}

func toPixel(p gesture.Point, size gesture.Size) image.Point {
	return image.Pt(
		int(math.Round(p.X*float64(size.Width))),
		int(math.Round(p.Y*float64(size.Height))),
	)
}

// fpsMeter measures the rate from wall time between consecutive ticks.
type fpsMeter struct {
	now  func() time.Time
	last time.Time
}

func (m *fpsMeter) tick() float64 {
	now := m.now()
	defer func() { m.last = now }()

	if m.last.IsZero() {
		return 0
	}
	return 1 / math.Max(1e-6, now.Sub(m.last).Seconds())
}
