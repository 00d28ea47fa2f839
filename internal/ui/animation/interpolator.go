// Package animation advances line offsets and opacities toward their
// targets at a fixed nominal frame rate.
package animation

import (
	"lyrica/internal/core/layout"
)

// Config contains interpolation speed values.
type Config struct {
	// ScrollSpeed is the vertical movement rate in pixels per millisecond
	// at full speed.
	ScrollSpeed float32
	// EaseDistance is the remaining distance below which movement slows
	// proportionally (distance-based ease-out).
	EaseDistance float32
	// SnapEpsilon is the distance within which the offset snaps to target.
	SnapEpsilon float32

	// OpacitySpeed is the fade rate in opacity units per millisecond.
	OpacitySpeed float32
	// OpacityEpsilon is the gap within which opacity snaps to target.
	OpacityEpsilon float32
}

// Interpolator eases lines toward their target offset and opacity.
type Interpolator struct {
	config Config
}

// New creates an Interpolator with the provided configuration.
func New(config Config) *Interpolator {
	return &Interpolator{config: config}
}

// Step advances every line by deltaMs of frame time and reports whether
// any line is still animating, so the caller knows to keep scheduling
// frames even after playback itself has gone quiet.
func (interp *Interpolator) Step(deltaMs float64, lines []*layout.Line) bool {
	animating := false
	for _, line := range lines {
		if interp.stepOffset(deltaMs, line) {
			animating = true
		}
		if interp.stepOpacity(deltaMs, line) {
			animating = true
		}
	}
	return animating
}

func (interp *Interpolator) stepOffset(deltaMs float64, line *layout.Line) bool {
	distance := line.TargetOffset - line.CurrentOffset
	if distance == 0 {
		return false
	}
	magnitude := distance
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude <= interp.config.SnapEpsilon {
		line.CurrentOffset = line.TargetOffset
		return false
	}

	factor := float32(1)
	if interp.config.EaseDistance > 0 && magnitude < interp.config.EaseDistance {
		factor = magnitude / interp.config.EaseDistance
	}
	move := interp.config.ScrollSpeed * float32(deltaMs) * factor
	if move >= magnitude {
		line.CurrentOffset = line.TargetOffset
		return false
	}
	if distance > 0 {
		line.CurrentOffset += move
	} else {
		line.CurrentOffset -= move
	}
	return true
}

func (interp *Interpolator) stepOpacity(deltaMs float64, line *layout.Line) bool {
	target := clampOpacity(line.TargetOpacity)
	line.TargetOpacity = target
	gap := target - line.CurrentOpacity
	if gap == 0 {
		return false
	}
	magnitude := gap
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude <= interp.config.OpacityEpsilon {
		line.CurrentOpacity = target
		return false
	}

	move := interp.config.OpacitySpeed * float32(deltaMs)
	if move >= magnitude {
		line.CurrentOpacity = target
		return false
	}
	if gap > 0 {
		line.CurrentOpacity += move
	} else {
		line.CurrentOpacity -= move
	}
	line.CurrentOpacity = clampOpacity(line.CurrentOpacity)
	return true
}

func clampOpacity(value float32) float32 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
