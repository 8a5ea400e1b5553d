// Package config loads application settings from defaults, an optional
// config file and MUDRA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// EnvPrefix prefixes every environment override, e.g. MUDRA_CAMERA_FPS.
const EnvPrefix = "MUDRA"

// ErrInvalid is returned when settings fail validation.
var ErrInvalid = errors.New("invalid settings")

// Settings is the full application configuration. It is read once at
// startup and never changes afterwards.
type Settings struct {
	Gesture  gesture.Config  `mapstructure:"gesture"`
	Camera   capture.Config  `mapstructure:"camera"`
	Detector detector.Config `mapstructure:"detector"`
	Log      LogSettings     `mapstructure:"log"`
	Overlay  OverlaySettings `mapstructure:"overlay"`
	Tray     TraySettings    `mapstructure:"tray"`
	Trace    TraceSettings   `mapstructure:"trace"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type OverlaySettings struct {
	Enabled bool `mapstructure:"enabled"`
}

type TraySettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// TraceSettings controls session recording. An empty path disables it.
type TraceSettings struct {
	Path string `mapstructure:"path"`
}

// Load reads settings. path may be empty to use defaults and environment only;
// the file format follows its extension.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the settings used when nothing is overridden.
func Default() Settings {
	return Settings{
		Gesture:  gesture.DefaultConfig(),
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Log:      LogSettings{Level: "info"},
		Overlay:  OverlaySettings{Enabled: true},
		Tray:     TraySettings{Enabled: false},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	g := d.Gesture

	v.SetDefault("gesture.controlMargin", g.ControlMargin)
	v.SetDefault("gesture.smoothing", g.Smoothing)
	v.SetDefault("gesture.deadzonePx", g.DeadzonePx)
	v.SetDefault("gesture.maxStepPx", g.MaxStepPx)
	v.SetDefault("gesture.pinchThresholdPx", g.PinchThresholdPx)
	v.SetDefault("gesture.dragHoldTime", g.DragHoldTime)
	v.SetDefault("gesture.clickCooldown", g.ClickCooldown)
	v.SetDefault("gesture.scrollSensitivity", g.ScrollSensitivity)
	v.SetDefault("gesture.scrollDeadzone", g.ScrollDeadzone)
	v.SetDefault("gesture.scrollClamp", g.ScrollClamp)
	v.SetDefault("gesture.gainMin", g.GainMin)
	v.SetDefault("gesture.gainMax", g.GainMax)
	v.SetDefault("gesture.velLow", g.VelLow)
	v.SetDefault("gesture.velHigh", g.VelHigh)
	v.SetDefault("gesture.gainFloor", g.GainFloor)
	v.SetDefault("gesture.gainCeil", g.GainCeil)
	v.SetDefault("gesture.velocityDecay", g.VelocityDecay)
	v.SetDefault("gesture.edgeSlowZonePx", g.EdgeSlowZonePx)
	v.SetDefault("gesture.edgeSlowGain", g.EdgeSlowGain)
	v.SetDefault("gesture.steadyVelThresh", g.SteadyVelThresh)
	v.SetDefault("gesture.steadyGain", g.SteadyGain)
	v.SetDefault("gesture.actionConfThresh", g.ActionConfThresh)
	v.SetDefault("gesture.resyncOnResume", g.ResyncOnResume)

	v.SetDefault("camera.device", d.Camera.DeviceID)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.fps", d.Camera.FPS)
	v.SetDefault("camera.mirror", d.Camera.Mirror)

	v.SetDefault("detector.maxHands", d.Detector.MaxHands)
	v.SetDefault("detector.minConfidence", d.Detector.MinConfidence)
	v.SetDefault("detector.minTrackingConf", d.Detector.MinTrackingConf)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("overlay.enabled", d.Overlay.Enabled)
	v.SetDefault("tray.enabled", d.Tray.Enabled)
	v.SetDefault("trace.path", d.Trace.Path)
}

// Validate rejects settings that leave the gesture arithmetic undefined.
// A control margin of 0.45 or more is accepted: it degrades to plain clamping.
func (s *Settings) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	g := s.Gesture
	check(g.Smoothing >= 0 && g.Smoothing < 1, "gesture.smoothing must be in [0,1)")
	check(g.VelHigh > g.VelLow, "gesture.velHigh must exceed gesture.velLow")
	check(g.GainFloor <= g.GainCeil, "gesture.gainFloor must not exceed gesture.gainCeil")
	check(g.VelocityDecay >= 0 && g.VelocityDecay <= 1, "gesture.velocityDecay must be in [0,1]")
	check(g.DeadzonePx >= 0, "gesture.deadzonePx must not be negative")
	check(g.MaxStepPx > 0, "gesture.maxStepPx must be positive")
	check(g.PinchThresholdPx >= 0, "gesture.pinchThresholdPx must not be negative")
	check(g.DragHoldTime >= 0, "gesture.dragHoldTime must not be negative")
	check(g.ClickCooldown >= 0, "gesture.clickCooldown must not be negative")
	check(g.ScrollDeadzone >= 0, "gesture.scrollDeadzone must not be negative")
	check(g.ScrollClamp >= 0, "gesture.scrollClamp must not be negative")
	check(g.EdgeSlowZonePx >= 0, "gesture.edgeSlowZonePx must not be negative")

	check(s.Camera.Width > 0 && s.Camera.Height > 0, "camera.width and camera.height must be positive")
	check(s.Camera.FPS > 0, "camera.fps must be positive")
	check(s.Detector.MaxHands > 0, "detector.maxHands must be positive")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
