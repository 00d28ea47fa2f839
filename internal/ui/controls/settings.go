package controls

import "lyrica/internal/core/model"

// Settings defines editable user preferences.
type Settings struct {
	VisibleLines int
	FontSize     float64
	Tempo        float64
	LastFile     string
}

// DefaultSettings returns default settings for Lyrica.
func DefaultSettings() Settings {
	return Settings{
		VisibleLines: 4,
		FontSize:     24,
		Tempo:        0,
	}
}

// Normalize clamps settings into their allowed domains.
func (settings Settings) Normalize() Settings {
	if settings.VisibleLines < 1 {
		settings.VisibleLines = 1
	}
	if settings.VisibleLines > 12 {
		settings.VisibleLines = 12
	}
	if settings.FontSize < 8 || settings.FontSize > 96 {
		settings.FontSize = DefaultSettings().FontSize
	}
	settings.Tempo = model.ClampTempo(settings.Tempo)
	return settings
}
