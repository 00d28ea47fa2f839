// Package layout packs timed tokens into wrapped lines and decides when
// the visible window should scroll. It is framework-free: text measurement
// is injected through the Measurer interface.
package layout

import "lyrica/internal/core/model"

// Size is a measured text extent in pixels.
type Size struct {
	Width  float32
	Height float32
}

// Measurer measures rendered text. Implementations are expected to trim
// nothing; callers pass exactly the text to measure.
type Measurer interface {
	MeasureText(text string) Size
}

// TokenBox is one laid-out token: its global index and its box within the
// owning line.
type TokenBox struct {
	Index  int
	Token  model.TimedToken
	X      float32
	Width  float32
	Height float32
}

// Line is a window row of consecutive tokens that fit the available width.
// Target offset/opacity is where the line should end up; the current
// values are animated toward the targets by the interpolator.
type Line struct {
	FirstTokenIndex int
	LastTokenIndex  int
	Tokens          []TokenBox
	Width           float32
	Height          float32

	TargetOffset   float32
	CurrentOffset  float32
	TargetOpacity  float32
	CurrentOpacity float32
}

// Contains reports whether the global token index falls inside the line.
func (line *Line) Contains(index int) bool {
	return len(line.Tokens) > 0 && index >= line.FirstTokenIndex && index <= line.LastTokenIndex
}
