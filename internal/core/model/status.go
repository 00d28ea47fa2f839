package model

// Status represents the current playback engine mode.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

const (
	// MinTempo and MaxTempo bound the signed playback speed adjustment.
	MinTempo = -2.0
	MaxTempo = 2.0

	// MinMultiplier is the floor of the derived speed multiplier.
	MinMultiplier = 0.1
)

// ClampTempo forces a tempo value into the allowed domain.
func ClampTempo(tempo float64) float64 {
	if tempo < MinTempo {
		return MinTempo
	}
	if tempo > MaxTempo {
		return MaxTempo
	}
	return tempo
}

// Multiplier converts a tempo into the playback speed multiplier.
func Multiplier(tempo float64) float64 {
	multiplier := 1.0 + ClampTempo(tempo)
	if multiplier < MinMultiplier {
		return MinMultiplier
	}
	return multiplier
}
