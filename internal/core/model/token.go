package model

// BreakMarker is the reserved token text that forces a line break.
// It has zero visual width and is never rendered.
const BreakMarker = "._."

// TimedToken is a single timed unit of lyric text (a syllable or word).
// Sequences handed to the playback engine are ordered ascending by
// StartTimeMs.
type TimedToken struct {
	Text        string
	StartTimeMs float64
}

// IsBreak reports whether the token is the line-break sentinel.
func (token TimedToken) IsBreak() bool {
	return token.Text == BreakMarker
}
