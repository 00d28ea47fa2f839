package layout

import "lyrica/internal/core/model"

const (
	// fallbackTokensPerLine estimates line capacity before any text has
	// been measured.
	fallbackTokensPerLine = 10
	// assumedTokenChars approximates token length for capacity estimates.
	assumedTokenChars = 6
	// scrollDivisor implements the one-third rule for long second lines.
	scrollDivisor = 3
)

// Window is the visible set of wrapped lines over a token sequence. It
// owns line continuity across rebuilds and the scroll-trigger decision.
type Window struct {
	builder *Builder
	tokens  []model.TimedToken
	lines   []*Line
	start   int
}

// NewWindow creates an empty window over the builder's viewport.
func NewWindow(builder *Builder) *Window {
	return &Window{builder: builder}
}

// Lines returns the current line window in top-to-bottom order.
func (window *Window) Lines() []*Line {
	return window.lines
}

// FirstBuildIndex returns the token index the window is built from.
func (window *Window) FirstBuildIndex() int {
	return window.start
}

// SetTokens installs a new token sequence and rebuilds from the top with
// no carried-over animation state.
func (window *Window) SetTokens(tokens []model.TimedToken) {
	window.tokens = tokens
	window.lines = nil
	window.Rebuild(0)
}

// Rebuild lays the window out again from the given start index. Lines
// that existed before the rebuild (matched by their first token index)
// keep their current offset and opacity so animations never pop; lines
// new to the window start at their target offset and fade in.
func (window *Window) Rebuild(startIndex int) {
	previous := make(map[int]*Line, len(window.lines))
	for _, line := range window.lines {
		previous[line.FirstTokenIndex] = line
	}

	fresh := window.builder.Build(window.tokens, startIndex)
	for _, line := range fresh {
		if old, ok := previous[line.FirstTokenIndex]; ok {
			line.CurrentOffset = old.CurrentOffset
			line.CurrentOpacity = old.CurrentOpacity
		} else if len(previous) > 0 {
			line.CurrentOffset = line.TargetOffset
			line.CurrentOpacity = 0
		}
	}
	window.lines = fresh
	window.start = startIndex
}

// ShouldScrollToNextLine reports whether the first line should be dropped
// given the engine cursor. The second line triggers immediately when it
// is short; longer lines wait until the cursor is a third of the way in.
func (window *Window) ShouldScrollToNextLine(currentIndex int) bool {
	if len(window.lines) < 2 {
		return false
	}
	first := window.lines[0]
	second := window.lines[1]

	if second.Contains(currentIndex) {
		count := len(second.Tokens)
		if count < 4 {
			return true
		}
		threshold := count / scrollDivisor
		if threshold < 1 {
			threshold = 1
		}
		return currentIndex-second.FirstTokenIndex >= threshold
	}
	if len(second.Tokens) > 0 && currentIndex > second.LastTokenIndex {
		// Cursor ran past the second line entirely; catch up.
		return true
	}
	return currentIndex > first.LastTokenIndex
}

// ScrollToNextLine drops the first line and rebuilds the window from the
// second line's first token. Surviving lines animate up by the dropped
// height; the newly revealed last line fades in.
func (window *Window) ScrollToNextLine() bool {
	if len(window.lines) < 2 {
		return false
	}
	window.Rebuild(window.lines[1].FirstTokenIndex)
	return true
}

// RebuildAroundToken rebuilds the window so the target token lands
// roughly one third into the first line, for seek repositioning.
func (window *Window) RebuildAroundToken(targetIndex int) {
	if targetIndex < 0 {
		targetIndex = 0
	}
	perLine := window.estimateTokensPerLine()
	startIndex := targetIndex - perLine/3
	if startIndex > len(window.tokens)-1 {
		startIndex = len(window.tokens) - 1
	}
	if startIndex < 0 {
		startIndex = 0
	}
	window.Rebuild(startIndex)
}

// Animating reports whether any line is still moving toward its targets.
func (window *Window) Animating() bool {
	for _, line := range window.lines {
		if line.CurrentOffset != line.TargetOffset || line.CurrentOpacity != line.TargetOpacity {
			return true
		}
	}
	return false
}

func (window *Window) estimateTokensPerLine() int {
	charWidth := window.builder.averageCharWidth()
	if charWidth <= 0 {
		return fallbackTokensPerLine
	}
	tokenWidth := charWidth * assumedTokenChars
	if tokenWidth <= 0 {
		return fallbackTokensPerLine
	}
	perLine := int(window.builder.availableWidth / tokenWidth)
	if perLine < 1 {
		return 1
	}
	return perLine
}
