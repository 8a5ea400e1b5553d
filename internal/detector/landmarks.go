// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Hand landmark indices following MediaPipe convention, shared with the
// gesture package.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = gesture.Wrist
	ThumbCMC     = gesture.ThumbCMC
	ThumbMCP     = gesture.ThumbMCP
	ThumbIP      = gesture.ThumbIP
	ThumbTip     = gesture.ThumbTip
	IndexMCP     = gesture.IndexMCP
	IndexPIP     = gesture.IndexPIP
	IndexDIP     = gesture.IndexDIP
	IndexTip     = gesture.IndexTip
	MiddleMCP    = gesture.MiddleMCP
	MiddlePIP    = gesture.MiddlePIP
	MiddleDIP    = gesture.MiddleDIP
	MiddleTip    = gesture.MiddleTip
	RingMCP      = gesture.RingMCP
	RingPIP      = gesture.RingPIP
	RingDIP      = gesture.RingDIP
	RingTip      = gesture.RingTip
	PinkyMCP     = gesture.PinkyMCP
	PinkyPIP     = gesture.PinkyPIP
	PinkyDIP     = gesture.PinkyDIP
	PinkyTip     = gesture.PinkyTip
	NumLandmarks = gesture.NumLandmarks
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Frame converts the landmarks into an interpreter frame, dropping depth.
// frame is the size of the camera image the landmarks were detected in.
func (h *HandLandmarks) Frame(ts time.Time, frame gesture.Size) *gesture.LandmarkFrame {
	if h == nil {
		return nil
	}

	lf := &gesture.LandmarkFrame{Timestamp: ts, Frame: frame}
	for i := 0; i < NumLandmarks; i++ {
		lf.Points[i] = gesture.Point{X: h.Points[i].X, Y: h.Points[i].Y}
	}
	return lf
}

// Primary picks the hand to track: the highest scoring one, or nil if
// hands is empty. Ties keep the earlier hand.
func Primary(hands []HandLandmarks) *HandLandmarks {
	var best *HandLandmarks
	for i := range hands {
		if best == nil || hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best
}
