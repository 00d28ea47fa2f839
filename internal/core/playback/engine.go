package playback

import (
	"sort"
	"sync"
	"time"

	"lyrica/internal/core/model"
)

const (
	// tokenDurationFraction is the share of the gap to the next token
	// during which the current token is actively highlighted.
	tokenDurationFraction = 0.75
	// maxTokenDurationMs caps the active highlight interval.
	maxTokenDurationMs = 1000.0
	// minLastTokenDurationMs / maxLastTokenDurationMs bound the synthetic
	// duration of the final token when computing total duration.
	minLastTokenDurationMs     = 1000.0
	maxLastTokenDurationMs     = 3000.0
	defaultLastTokenDurationMs = 2000.0
)

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
}

// Engine is the playback state machine: it owns the authoritative playback
// position, the tempo transform and the syllable-advance cursor. All state
// lives in one struct and is mutated only through its methods.
type Engine struct {
	mu      sync.Mutex
	options Config

	tokens       []model.TimedToken
	status       model.Status
	currentIndex int

	tempo      float64
	multiplier float64

	// Original time axis: wall-clock milliseconds since the last seek or
	// start, unaffected by tempo.
	lastSeekPositionMs  float64
	timeSinceLastSeekMs float64
	// Adjusted time axis: the song position in token-timeline milliseconds.
	// Accumulated as elapsed*multiplier per tick and compared directly
	// against token start times and durations; re-derived from the original
	// axis on seek and tempo change so both paths agree.
	adjustedElapsedMs float64

	events   []chan Event
	stopCh   chan struct{}
	running  bool
	lastTick time.Time
	closed   bool
}

// New creates an Engine with the provided options.
func New(options Config) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = 16 * time.Millisecond
	}
	return &Engine{
		options:    options,
		status:     model.StatusIdle,
		multiplier: model.Multiplier(0),
	}
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// SetTokens replaces the token sequence wholesale and resets all playback
// state to position zero. Tokens are sorted by start time on ingest so the
// ascending-order contract always holds. Playback continues from zero if
// the engine was already playing.
func (engine *Engine) SetTokens(tokens []model.TimedToken) {
	engine.mu.Lock()
	sorted := append([]model.TimedToken(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTimeMs < sorted[j].StartTimeMs
	})
	engine.tokens = sorted

	wasPlaying := engine.status == model.StatusPlaying
	engine.resetClockLocked(0)
	engine.currentIndex = 0
	if len(sorted) == 0 {
		engine.status = model.StatusIdle
	} else if wasPlaying {
		engine.status = model.StatusPlaying
	} else {
		engine.status = model.StatusIdle
	}
	status := engine.status
	engine.emitLocked(Event{Type: EventTokensReplaced, Status: status, At: time.Now()})
	engine.mu.Unlock()
}

// Start begins playback from the current position, launching the internal
// tick loop. Starting with no tokens installed is a no-op.
func (engine *Engine) Start() {
	engine.mu.Lock()
	if len(engine.tokens) == 0 || engine.status == model.StatusPlaying || engine.closed {
		engine.mu.Unlock()
		return
	}
	if engine.status == model.StatusFinished {
		engine.resetClockLocked(0)
		engine.currentIndex = 0
	}
	engine.status = model.StatusPlaying
	engine.lastTick = time.Now()
	engine.startLoopLocked()
	engine.emitStateLocked()
	engine.mu.Unlock()
}

// Stop halts playback and resets the position to zero. The tick loop is
// torn down even when the status is already Idle, since replacing tokens
// with an empty sequence can leave the loop running in Idle.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	engine.stopLoopLocked()
	if engine.status == model.StatusIdle {
		engine.mu.Unlock()
		return
	}
	engine.status = model.StatusIdle
	engine.resetClockLocked(0)
	engine.currentIndex = 0
	engine.emitStateLocked()
	engine.mu.Unlock()
}

// Pause freezes the playback clock, retaining all state.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	if engine.status != model.StatusPlaying {
		engine.mu.Unlock()
		return
	}
	engine.status = model.StatusPaused
	engine.emitStateLocked()
	engine.mu.Unlock()
}

// Resume unfreezes a paused clock.
func (engine *Engine) Resume() {
	engine.mu.Lock()
	if engine.status != model.StatusPaused {
		engine.mu.Unlock()
		return
	}
	engine.status = model.StatusPlaying
	engine.lastTick = time.Now()
	engine.emitStateLocked()
	engine.mu.Unlock()
}

// Seek relocates the cursor to the given original-time position in
// milliseconds, clamped to [0, originalDuration]. Playing status survives
// a seek; seeking onto the final token finishes playback.
func (engine *Engine) Seek(positionMs float64) {
	engine.mu.Lock()
	if len(engine.tokens) == 0 {
		engine.mu.Unlock()
		return
	}
	if positionMs < 0 {
		positionMs = 0
	}
	if limit := engine.originalDurationLocked(); positionMs > limit {
		positionMs = limit
	}

	index := sort.Search(len(engine.tokens), func(i int) bool {
		return engine.tokens[i].StartTimeMs > positionMs
	}) - 1
	if index < 0 {
		index = 0
	}

	engine.resetClockLocked(positionMs)
	engine.currentIndex = index
	if engine.status != model.StatusIdle {
		if index == len(engine.tokens)-1 {
			engine.status = model.StatusFinished
		} else if engine.status == model.StatusFinished {
			engine.status = model.StatusPaused
		}
	}
	engine.lastTick = time.Now()
	engine.emitLocked(Event{
		Type:               EventSeek,
		Status:             engine.status,
		TokenIndex:         index,
		PositionMs:         engine.positionLocked(),
		DurationMs:         engine.durationLocked(),
		OriginalPositionMs: engine.originalElapsedLocked(),
		OriginalDurationMs: engine.originalDurationLocked(),
		At:                 time.Now(),
	})
	engine.mu.Unlock()
}

// SetTempo changes playback speed. The adjusted time axis is re-derived
// from the original-time decomposition (seek point plus wall time since,
// scaled by the new multiplier) rather than rescaled from its stale
// value, so repeated tempo changes never drift from the original timeline.
func (engine *Engine) SetTempo(tempo float64) {
	engine.mu.Lock()
	engine.tempo = model.ClampTempo(tempo)
	engine.multiplier = model.Multiplier(engine.tempo)
	engine.adjustedElapsedMs = engine.lastSeekPositionMs + engine.timeSinceLastSeekMs*engine.multiplier
	advanced := engine.scanBoundariesLocked()
	engine.finishIfExhaustedLocked()
	engine.emitProgressLocked(time.Now())
	if advanced {
		engine.emitAdvanceLocked()
	}
	engine.mu.Unlock()
}

// Close terminates the tick loop and closes all observer channels.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.closed = true
	engine.stopLoopLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Status returns the current playback status.
func (engine *Engine) Status() model.Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.status
}

// Tempo returns the current tempo value.
func (engine *Engine) Tempo() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.tempo
}

// PositionMs returns the tempo-scaled playback position.
func (engine *Engine) PositionMs() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.positionLocked()
}

// OriginalPositionMs returns the tempo-independent playback position.
func (engine *Engine) OriginalPositionMs() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.originalElapsedLocked()
}

// DurationMs returns the tempo-scaled total duration.
func (engine *Engine) DurationMs() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.durationLocked()
}

// OriginalDurationMs returns the tempo-independent total duration.
func (engine *Engine) OriginalDurationMs() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.originalDurationLocked()
}

// CurrentIndex returns the current token cursor. A value equal to the
// token count means playback finished.
func (engine *Engine) CurrentIndex() int {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.currentIndex
}

// Tokens returns a snapshot of the installed token sequence.
func (engine *Engine) Tokens() []model.TimedToken {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return append([]model.TimedToken(nil), engine.tokens...)
}

// HighlightRatio returns the 0..1 highlight progress of the given token:
// 1 for tokens already passed, 0 for tokens not yet started.
func (engine *Engine) HighlightRatio(index int) float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if index < 0 || index >= len(engine.tokens) {
		return 0
	}
	if index < engine.currentIndex {
		return 1
	}
	if index > engine.currentIndex {
		return 0
	}
	start := engine.tokens[index].StartTimeMs
	if engine.adjustedElapsedMs < start {
		return 0
	}
	duration := engine.tokenDurationLocked(index)
	if duration <= 0 {
		return 1
	}
	ratio := (engine.adjustedElapsedMs - start) / duration
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func (engine *Engine) startLoopLocked() {
	if engine.running {
		return
	}
	engine.running = true
	engine.stopCh = make(chan struct{})
	go engine.run(engine.stopCh)
}

func (engine *Engine) stopLoopLocked() {
	if !engine.running {
		return
	}
	close(engine.stopCh)
	engine.running = false
}

func (engine *Engine) run(stopCh chan struct{}) {
	ticker := time.NewTicker(engine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case tickTime := <-ticker.C:
			engine.tick(tickTime)
		}
	}
}

func (engine *Engine) tick(now time.Time) {
	engine.mu.Lock()
	delta := now.Sub(engine.lastTick)
	engine.lastTick = now
	if engine.status != model.StatusPlaying || delta <= 0 {
		engine.mu.Unlock()
		return
	}

	advanced := engine.advanceLocked(float64(delta) / float64(time.Millisecond))
	engine.emitProgressLocked(now)
	if advanced {
		engine.emitAdvanceLocked()
	}
	engine.mu.Unlock()
}

// advanceLocked moves both time axes forward by deltaMs of wall-clock time
// and walks the cursor across any token boundaries that were crossed.
// A skipped frame simply arrives as a larger delta.
func (engine *Engine) advanceLocked(deltaMs float64) bool {
	engine.timeSinceLastSeekMs += deltaMs
	engine.adjustedElapsedMs += deltaMs * engine.multiplier

	advanced := engine.scanBoundariesLocked()
	engine.finishIfExhaustedLocked()
	return advanced
}

// scanBoundariesLocked advances the cursor while the adjusted clock has
// passed the active interval of the current token. Several tokens may be
// crossed by one large delta. The cursor never moves backward.
func (engine *Engine) scanBoundariesLocked() bool {
	advanced := false
	for engine.currentIndex < len(engine.tokens) {
		start := engine.tokens[engine.currentIndex].StartTimeMs
		if engine.adjustedElapsedMs < start {
			break
		}
		duration := engine.tokenDurationLocked(engine.currentIndex)
		if engine.adjustedElapsedMs-start < duration {
			break
		}
		engine.currentIndex++
		advanced = true
	}
	return advanced
}

func (engine *Engine) finishIfExhaustedLocked() {
	if len(engine.tokens) == 0 || engine.currentIndex < len(engine.tokens) {
		return
	}
	if engine.status == model.StatusPlaying {
		engine.status = model.StatusFinished
		engine.emitStateLocked()
	}
}

// tokenDurationLocked returns the active highlight interval of a token in
// original-time milliseconds: three quarters of the gap to the next token,
// capped at one second. The final token gets the full cap.
func (engine *Engine) tokenDurationLocked(index int) float64 {
	if index+1 >= len(engine.tokens) {
		return maxTokenDurationMs
	}
	gap := engine.tokens[index+1].StartTimeMs - engine.tokens[index].StartTimeMs
	duration := gap * tokenDurationFraction
	if duration > maxTokenDurationMs {
		return maxTokenDurationMs
	}
	if duration < 0 {
		return 0
	}
	return duration
}

func (engine *Engine) resetClockLocked(positionMs float64) {
	engine.lastSeekPositionMs = positionMs
	engine.timeSinceLastSeekMs = 0
	engine.adjustedElapsedMs = positionMs
}

func (engine *Engine) originalElapsedLocked() float64 {
	return engine.lastSeekPositionMs + engine.timeSinceLastSeekMs
}

func (engine *Engine) positionLocked() float64 {
	if engine.status == model.StatusFinished {
		return engine.durationLocked()
	}
	return engine.originalElapsedLocked() / engine.multiplier
}

func (engine *Engine) originalDurationLocked() float64 {
	count := len(engine.tokens)
	if count == 0 {
		return 0
	}
	last := engine.tokens[count-1].StartTimeMs
	if count < 2 {
		return last + defaultLastTokenDurationMs
	}
	gap := last - engine.tokens[count-2].StartTimeMs
	if gap < minLastTokenDurationMs {
		gap = minLastTokenDurationMs
	}
	if gap > maxLastTokenDurationMs {
		gap = maxLastTokenDurationMs
	}
	return last + gap
}

func (engine *Engine) durationLocked() float64 {
	return engine.originalDurationLocked() / engine.multiplier
}

func (engine *Engine) emitStateLocked() {
	engine.emitLocked(Event{
		Type:               EventStateChange,
		Status:             engine.status,
		PositionMs:         engine.positionLocked(),
		DurationMs:         engine.durationLocked(),
		OriginalPositionMs: engine.originalElapsedLocked(),
		OriginalDurationMs: engine.originalDurationLocked(),
		TokenIndex:         engine.currentIndex,
		At:                 time.Now(),
	})
}

func (engine *Engine) emitProgressLocked(now time.Time) {
	engine.emitLocked(Event{
		Type:               EventProgress,
		Status:             engine.status,
		PositionMs:         engine.positionLocked(),
		DurationMs:         engine.durationLocked(),
		OriginalPositionMs: engine.originalElapsedLocked(),
		OriginalDurationMs: engine.originalDurationLocked(),
		TokenIndex:         engine.currentIndex,
		At:                 now,
	})
}

func (engine *Engine) emitAdvanceLocked() {
	engine.emitLocked(Event{
		Type:       EventTokenAdvance,
		Status:     engine.status,
		TokenIndex: engine.currentIndex,
		At:         time.Now(),
	})
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}
