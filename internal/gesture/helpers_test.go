package gesture

import "time"

var (
	testCamera = Size{Width: 1280, Height: 720}
	testScreen = Size{Width: 1920, Height: 1080}
	baseTime   = time.Unix(1_700_000_000, 0)
)

// handPose describes a synthetic hand for building frames.
type handPose struct {
	indexUp  bool
	middleUp bool
	pinch    bool
	tip      Point   // index fingertip, normalized
	palm     float64 // wrist / middle MCP height
}

func pointing(x, y float64) handPose {
	return handPose{indexUp: true, tip: Point{X: x, Y: y}, palm: 0.8}
}

func scrolling(palm float64) handPose {
	return handPose{indexUp: true, middleUp: true, tip: Point{X: 0.5, Y: 0.3}, palm: palm}
}

func pinching(x, y float64) handPose {
	return handPose{pinch: true, tip: Point{X: x, Y: y}, palm: 0.8}
}

func fist() handPose {
	return handPose{tip: Point{X: 0.5, Y: 0.6}, palm: 0.8}
}

// frame builds a landmark frame at base time plus offset.
func (p handPose) frame(offset time.Duration) *LandmarkFrame {
	f := &LandmarkFrame{Timestamp: baseTime.Add(offset), Frame: testCamera}
	for i := range f.Points {
		f.Points[i] = Point{X: 0.5, Y: p.palm}
	}

	f.Points[IndexTip] = p.tip
	f.Points[IndexPIP] = Point{X: p.tip.X, Y: p.tip.Y + fingerOffset(p.indexUp)}

	middleTip := Point{X: p.tip.X + 0.05, Y: p.tip.Y}
	f.Points[MiddleTip] = middleTip
	f.Points[MiddlePIP] = Point{X: middleTip.X, Y: middleTip.Y + fingerOffset(p.middleUp)}

	if p.pinch {
		f.Points[ThumbTip] = p.tip
	} else {
		f.Points[ThumbTip] = Point{X: p.tip.X - 0.2, Y: p.tip.Y + 0.1}
	}

	f.Points[Wrist] = Point{X: 0.5, Y: p.palm}
	f.Points[MiddleMCP] = Point{X: 0.5, Y: p.palm}
	return f
}

func fingerOffset(up bool) float64 {
	if up {
		return 0.05
	}
	return -0.05
}

func tick(n int) time.Duration {
	return time.Duration(n) * time.Second / 30
}

func countKind(actions []Action, kind ActionKind) int {
	n := 0
	for _, a := range actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
