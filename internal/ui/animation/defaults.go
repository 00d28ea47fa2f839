package animation

// DefaultConfig returns interpolation speeds tuned for a 60Hz frame loop.
func DefaultConfig() Config {
	return Config{
		ScrollSpeed:    0.35,
		EaseDistance:   20,
		SnapEpsilon:    0.5,
		OpacitySpeed:   0.004,
		OpacityEpsilon: 0.01,
	}
}
