package gesture

import "math"

// ExtractFeatures derives the pose features of a frame.
// Returns nil when no hand was detected.
func ExtractFeatures(frame *LandmarkFrame, pinchThresholdPx float64) *PoseFeatures {
	if frame == nil {
		return nil
	}

	lm := &frame.Points
	index := toPixels(lm[IndexTip], frame.Frame)
	thumb := toPixels(lm[ThumbTip], frame.Frame)
	pinch := math.Hypot(index.X-thumb.X, index.Y-thumb.Y)

	return &PoseFeatures{
		IndexUp:         fingerUp(lm, IndexTip, IndexPIP),
		MiddleUp:        fingerUp(lm, MiddleTip, MiddlePIP),
		PinchDistancePx: pinch,
		PinchActive:     pinch < pinchThresholdPx,
		Fingertip:       lm[IndexTip],
	}
}

// fingerUp compares a fingertip with its PIP joint. Image y grows downwards,
// so an extended finger has the smaller y.
func fingerUp(lm *[NumLandmarks]Point, tip, pip int) bool {
	return lm[tip].Y < lm[pip].Y
}

// toPixels scales a normalized landmark to whole frame pixels.
func toPixels(p Point, frame Size) Point {
	return Point{
		X: math.Trunc(p.X * float64(frame.Width)),
		Y: math.Trunc(p.Y * float64(frame.Height)),
	}
}

// palmY is the vertical palm reference used for scrolling.
func palmY(frame *LandmarkFrame) float64 {
	return (frame.Points[Wrist].Y + frame.Points[MiddleMCP].Y) / 2
}
