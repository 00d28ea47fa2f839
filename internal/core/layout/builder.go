package layout

import (
	"strings"
	"unicode"

	"lyrica/internal/core/model"
)

const (
	// spaceWidthFraction is the width of one surrounding space character
	// as a fraction of the font size. Whitespace runs are costed at this
	// fixed width instead of being re-measured.
	spaceWidthFraction = 0.33
	// lineHeightSample is measured once per build to obtain the default
	// row height for lines with no tokens.
	lineHeightSample = "Ag"
)

// Builder greedily packs tokens into wrapped lines.
type Builder struct {
	measurer       Measurer
	availableWidth float32
	visibleLines   int
	fontSize       float32

	measuredChars int
	measuredWidth float32
}

// NewBuilder creates a Builder for the given viewport.
func NewBuilder(measurer Measurer, availableWidth float32, visibleLines int, fontSize float32) *Builder {
	if visibleLines < 1 {
		visibleLines = 1
	}
	return &Builder{
		measurer:       measurer,
		availableWidth: availableWidth,
		visibleLines:   visibleLines,
		fontSize:       fontSize,
	}
}

// SetAvailableWidth updates the wrap width for subsequent builds.
func (builder *Builder) SetAvailableWidth(width float32) {
	builder.availableWidth = width
}

// SetVisibleLines updates the window height in rows.
func (builder *Builder) SetVisibleLines(count int) {
	if count < 1 {
		count = 1
	}
	builder.visibleLines = count
}

// VisibleLines returns the configured window height in rows.
func (builder *Builder) VisibleLines() int {
	return builder.visibleLines
}

// Build packs tokens starting at startIndex into at most visibleLines
// lines. A break marker ends the current line immediately and is never
// placed in a box; a token that does not fit starts the next line. Target
// offsets stack the lines top to bottom; current values mirror the
// targets (continuity across rebuilds is the Window's concern).
func (builder *Builder) Build(tokens []model.TimedToken, startIndex int) []*Line {
	if startIndex < 0 {
		startIndex = 0
	}
	defaultHeight := builder.measure(lineHeightSample).Height

	var lines []*Line
	var offset float32
	index := startIndex
	for len(lines) < builder.visibleLines && index < len(tokens) {
		line, next := builder.buildLine(tokens, index, defaultHeight)
		line.TargetOffset = offset
		line.CurrentOffset = offset
		line.TargetOpacity = 1
		line.CurrentOpacity = 1
		offset += line.Height
		lines = append(lines, line)
		index = next
	}
	return lines
}

func (builder *Builder) buildLine(tokens []model.TimedToken, startIndex int, defaultHeight float32) (*Line, int) {
	line := &Line{
		FirstTokenIndex: startIndex,
		LastTokenIndex:  startIndex - 1,
		Height:          defaultHeight,
	}

	index := startIndex
	var runningWidth float32
	for index < len(tokens) {
		token := tokens[index]
		if token.IsBreak() {
			// The break terminates this line; the next line starts
			// after the marker.
			index++
			break
		}

		box := builder.measureToken(token)
		if len(line.Tokens) > 0 && runningWidth+box.Width > builder.availableWidth {
			break
		}

		box.Index = index
		box.X = runningWidth
		runningWidth += box.Width
		line.Tokens = append(line.Tokens, box)
		line.LastTokenIndex = index
		if box.Height > line.Height {
			line.Height = box.Height
		}
		index++
	}

	line.Width = runningWidth
	if len(line.Tokens) == 0 {
		line.FirstTokenIndex = startIndex
		line.LastTokenIndex = startIndex - 1
	}
	return line, index
}

// measureToken costs a token as its trimmed text plus fixed-width slots
// for the surrounding spaces, preserving inter-word spacing without
// measuring whitespace runs.
func (builder *Builder) measureToken(token model.TimedToken) TokenBox {
	trimmed := strings.TrimSpace(token.Text)
	leading, trailing := surroundingSpaces(token.Text)

	size := builder.measure(trimmed)
	width := size.Width + float32(leading+trailing)*builder.spaceWidth()
	return TokenBox{
		Token:  token,
		Width:  width,
		Height: size.Height,
	}
}

func (builder *Builder) measure(text string) Size {
	size := builder.measurer.MeasureText(text)
	if count := len([]rune(text)); count > 0 && size.Width > 0 {
		builder.measuredChars += count
		builder.measuredWidth += size.Width
	}
	return size
}

func (builder *Builder) spaceWidth() float32 {
	return builder.fontSize * spaceWidthFraction
}

// averageCharWidth reports the mean measured glyph width, or zero when
// nothing has been measured yet.
func (builder *Builder) averageCharWidth() float32 {
	if builder.measuredChars == 0 {
		return 0
	}
	return builder.measuredWidth / float32(builder.measuredChars)
}

func surroundingSpaces(text string) (leading, trailing int) {
	runes := []rune(text)
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			break
		}
		leading++
	}
	if leading == len(runes) {
		return leading, 0
	}
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsSpace(runes[i]) {
			break
		}
		trailing++
	}
	return leading, trailing
}
