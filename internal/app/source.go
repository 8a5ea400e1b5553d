package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// LandmarkSource yields one landmark frame per tick.
//
// Next returns (nil, nil) when no hand is visible, io.EOF when the source is
// exhausted and blocks until the next frame otherwise.
type LandmarkSource interface {
	Next(ctx context.Context) (*gesture.LandmarkFrame, error)
}

// CameraSource reads frames from a camera and runs hand detection on them.
// It is not safe for concurrent use.
type CameraSource struct {
	camera   capture.Camera
	detector detector.Detector
	log      zerolog.Logger
	now      func() time.Time

	image *gocv.Mat
}

// NewCameraSource combines a camera and a detector. The camera is opened
// by Open.
func NewCameraSource(cam capture.Camera, det detector.Detector, log zerolog.Logger) *CameraSource {
	return &CameraSource{
		camera:   cam,
		detector: det,
		log:      log.With().Str("component", "source").Logger(),
		now:      time.Now,
	}
}

// Open opens the camera.
func (s *CameraSource) Open() error {
	return s.camera.Open()
}

// Next captures a frame and returns the landmarks of the best-scoring hand.
// A detector failure counts as a frame without a hand.
func (s *CameraSource) Next(ctx context.Context) (*gesture.LandmarkFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := s.camera.ReadFrame()
	if err != nil {
		return nil, err
	}
	s.setImage(mat)
	at := s.now()

	hands, err := s.detector.Detect(mat)
	if err != nil {
		s.log.Debug().Err(err).Msg("detection failed")
		return nil, nil
	}

	hand := detector.Primary(hands)
	if hand == nil {
		return nil, nil
	}
	return hand.Frame(at, gesture.Size{Width: mat.Cols(), Height: mat.Rows()}), nil
}

// Image returns the most recent camera frame, or nil before the first read.
// It stays valid until the next call to Next or Close.
func (s *CameraSource) Image() *gocv.Mat {
	return s.image
}

func (s *CameraSource) setImage(mat *gocv.Mat) {
	if s.image != nil {
		s.image.Close()
	}
	s.image = mat
}

// Close releases the last frame, the camera and the detector.
func (s *CameraSource) Close() error {
	s.setImage(nil)

	camErr := s.camera.Close()
	detErr := s.detector.Close()
	if camErr != nil {
		return camErr
	}
	return detErr
}
