package playback

import (
	"math"
	"testing"
	"time"

	"lyrica/internal/core/model"
)

// scenarioTokens is the token set used across boundary tests: two words,
// a line break, and a word on the next line.
func scenarioTokens() []model.TimedToken {
	return []model.TimedToken{
		{Text: "Hello ", StartTimeMs: 0},
		{Text: "world ", StartTimeMs: 1000},
		{Text: model.BreakMarker, StartTimeMs: 2000},
		{Text: "Foo ", StartTimeMs: 2000},
	}
}

// advance drives the engine clock deterministically, bypassing the
// internal ticker goroutine.
func advance(engine *Engine, deltaMs float64) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.status != model.StatusPlaying {
		return false
	}
	return engine.advanceLocked(deltaMs)
}

// startPlaying flips status without launching the tick loop.
func startPlaying(engine *Engine) {
	engine.mu.Lock()
	engine.status = model.StatusPlaying
	engine.mu.Unlock()
}

func TestMultiplierDomain(t *testing.T) {
	cases := []struct {
		tempo float64
		want  float64
	}{
		{-2.0, 0.1},
		{-1.0, 0.1},
		{-0.95, 0.1},
		{-0.5, 0.5},
		{0, 1.0},
		{0.5, 1.5},
		{1.0, 2.0},
		{2.0, 3.0},
		{99, 3.0},
		{-99, 0.1},
	}
	for _, testCase := range cases {
		got := model.Multiplier(testCase.tempo)
		if math.Abs(got-testCase.want) > 1e-9 {
			t.Fatalf("multiplier(%v) = %v, want %v", testCase.tempo, got, testCase.want)
		}
		if got <= 0 {
			t.Fatalf("multiplier(%v) must be positive", testCase.tempo)
		}
	}
}

func TestTickAdvancesTokensAtNormalTempo(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)

	advance(engine, 500)
	if index := engine.CurrentIndex(); index != 0 {
		t.Fatalf("at 500ms expected index 0, got %d", index)
	}
	ratio := engine.HighlightRatio(0)
	if ratio <= 0 || ratio >= 1 {
		t.Fatalf("at 500ms highlight ratio must be in (0,1), got %v", ratio)
	}

	advance(engine, 500)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("at 1000ms expected index 1, got %d", index)
	}
}

func TestTickAdvancesEarlyAtDoubleSpeed(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	engine.SetTempo(1.0)
	startPlaying(engine)

	advance(engine, 500)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("at original 500ms with multiplier 2 expected index 1, got %d", index)
	}
}

func TestLargeDeltaCrossesMultipleTokens(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)

	advance(engine, 2100)
	if index := engine.CurrentIndex(); index != 3 {
		t.Fatalf("one large tick should cross words and break, got index %d", index)
	}
}

func TestHighlightRatioMonotonicWithinToken(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)

	previous := -1.0
	for step := 0; step < 80; step++ {
		advance(engine, 16)
		if engine.CurrentIndex() != 0 {
			break
		}
		ratio := engine.HighlightRatio(0)
		if ratio < previous {
			t.Fatalf("ratio decreased from %v to %v while token active", previous, ratio)
		}
		previous = ratio
	}
	// Completed tokens stay fully highlighted; the next one starts at 0.
	if engine.HighlightRatio(0) != 1 {
		t.Fatalf("past token must report ratio 1")
	}
	if index := engine.CurrentIndex(); index == 1 && engine.adjustedElapsedMs < 1000 {
		if ratio := engine.HighlightRatio(1); ratio != 0 {
			t.Fatalf("upcoming token must report 0 before its start, got %v", ratio)
		}
	}
}

func TestEmptyTokenSequence(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(nil)

	if status := engine.Status(); status != model.StatusIdle {
		t.Fatalf("expected idle, got %v", status)
	}
	if duration := engine.DurationMs(); duration != 0 {
		t.Fatalf("expected duration 0, got %v", duration)
	}
	engine.Start()
	if status := engine.Status(); status != model.StatusIdle {
		t.Fatalf("start with no tokens must stay idle, got %v", status)
	}
}

func TestSetTempoPreservesOriginalPosition(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)
	advance(engine, 800)

	originalBefore := engine.OriginalPositionMs()
	indexBefore := engine.CurrentIndex()

	engine.SetTempo(-0.5)

	if original := engine.OriginalPositionMs(); original != originalBefore {
		t.Fatalf("tempo change moved original position from %v to %v", originalBefore, original)
	}
	wantPosition := originalBefore / model.Multiplier(-0.5)
	if position := engine.PositionMs(); math.Abs(position-wantPosition) > 1e-9 {
		t.Fatalf("position = %v, want %v", position, wantPosition)
	}
	// The adjusted axis is re-derived from the original axis under the new
	// multiplier, not rescaled from its stale value.
	if engine.adjustedElapsedMs != originalBefore*model.Multiplier(-0.5) {
		t.Fatalf("adjusted axis not re-derived from original position, got %v", engine.adjustedElapsedMs)
	}
	if index := engine.CurrentIndex(); index < indexBefore {
		t.Fatalf("cursor jumped backward from %d to %d on tempo change", indexBefore, index)
	}
}

func TestSetTempoRescansBoundariesImmediately(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)
	advance(engine, 900)

	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("precondition: expected index 1 at 900ms, got %d", index)
	}
	if ratio := engine.HighlightRatio(1); ratio != 0 {
		t.Fatalf("precondition: token 1 not yet started, ratio %v", ratio)
	}

	// Doubling the speed pushes the song position past token 1's active
	// interval; the cursor must advance without waiting for a tick.
	engine.SetTempo(1.0)
	if index := engine.CurrentIndex(); index != 2 {
		t.Fatalf("after speed-up expected index 2, got %d", index)
	}
	if original := engine.OriginalPositionMs(); original != 900 {
		t.Fatalf("original position changed to %v", original)
	}
}

func TestSetTempoSlowdownKeepsCursor(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens([]model.TimedToken{
		{Text: "a ", StartTimeMs: 0},
		{Text: "b ", StartTimeMs: 1000},
		{Text: "c ", StartTimeMs: 2000},
		{Text: "d ", StartTimeMs: 3000},
	})
	startPlaying(engine)
	advance(engine, 1000)

	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("precondition: expected index 1 at 1000ms, got %d", index)
	}

	// Slowing down must never fling the cursor forward or mark upcoming
	// tokens as already sung.
	engine.SetTempo(-0.9)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("slowdown moved cursor to %d", index)
	}
	if ratio := engine.HighlightRatio(2); ratio != 0 {
		t.Fatalf("upcoming token highlighted after slowdown, ratio %v", ratio)
	}
	if ratio := engine.HighlightRatio(1); ratio >= 1 {
		t.Fatalf("current token fully highlighted after slowdown, ratio %v", ratio)
	}
	if original := engine.OriginalPositionMs(); original != 1000 {
		t.Fatalf("original position changed to %v", original)
	}
}

func TestSeekAtSlowTempoLandsOnTarget(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	engine.SetTempo(-0.9)
	startPlaying(engine)

	engine.Seek(1000)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("seek(1000) expected index 1, got %d", index)
	}

	// One ordinary frame later the cursor must still sit on the sought
	// token, barely into its highlight.
	advance(engine, 16)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("cursor drifted to %d one tick after seek", index)
	}
	if ratio := engine.HighlightRatio(1); ratio <= 0 || ratio > 0.05 {
		t.Fatalf("highlight ratio %v just after seek, want barely started", ratio)
	}
}

func TestSeekReportsClampedPosition(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())

	engine.Seek(1500)
	if position := engine.OriginalPositionMs(); position != 1500 {
		t.Fatalf("seek(1500) reported %v", position)
	}

	engine.Seek(-50)
	if position := engine.OriginalPositionMs(); position != 0 {
		t.Fatalf("negative seek must clamp to 0, got %v", position)
	}

	engine.Seek(1e9)
	if position := engine.OriginalPositionMs(); position != engine.OriginalDurationMs() {
		t.Fatalf("overlong seek must clamp to duration, got %v", position)
	}
}

func TestSeekSelectsLatestTokenAtOrBefore(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())

	engine.Seek(1500)
	if index := engine.CurrentIndex(); index != 1 {
		t.Fatalf("seek(1500) expected index 1, got %d", index)
	}

	// Two tokens share start 2000; the latest such index wins.
	engine.Seek(2000)
	if index := engine.CurrentIndex(); index != 3 {
		t.Fatalf("seek(2000) expected index 3, got %d", index)
	}
}

func TestSeekPreservesPlayingAndFinishesOnLastToken(t *testing.T) {
	engine := New(Config{TickInterval: time.Hour})
	engine.SetTokens(scenarioTokens())
	engine.Start()
	defer engine.Close()

	engine.Seek(1200)
	if status := engine.Status(); status != model.StatusPlaying {
		t.Fatalf("seek must preserve playing, got %v", status)
	}

	engine.Seek(2500)
	if status := engine.Status(); status != model.StatusFinished {
		t.Fatalf("seek onto last token must finish, got %v", status)
	}

	engine.Seek(500)
	if status := engine.Status(); status == model.StatusFinished {
		t.Fatalf("seeking back out of the end must leave finished state")
	}
}

func TestFinishAtEndOfTokens(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)

	advance(engine, 60000)
	if status := engine.Status(); status != model.StatusFinished {
		t.Fatalf("expected finished, got %v", status)
	}
	if index := engine.CurrentIndex(); index != 4 {
		t.Fatalf("finished cursor must equal token count, got %d", index)
	}
	if position := engine.PositionMs(); position != engine.DurationMs() {
		t.Fatalf("finished position %v must equal duration %v", position, engine.DurationMs())
	}
}

func TestOriginalDuration(t *testing.T) {
	cases := []struct {
		name   string
		tokens []model.TimedToken
		want   float64
	}{
		{
			name:   "no tokens",
			tokens: nil,
			want:   0,
		},
		{
			name:   "single token",
			tokens: []model.TimedToken{{Text: "a ", StartTimeMs: 1000}},
			want:   3000,
		},
		{
			name: "short final gap clamps up",
			tokens: []model.TimedToken{
				{Text: "a ", StartTimeMs: 0},
				{Text: "b ", StartTimeMs: 500},
			},
			want: 1500,
		},
		{
			name: "long final gap clamps down",
			tokens: []model.TimedToken{
				{Text: "a ", StartTimeMs: 0},
				{Text: "b ", StartTimeMs: 5000},
			},
			want: 8000,
		},
	}
	for _, testCase := range cases {
		engine := New(Config{})
		engine.SetTokens(testCase.tokens)
		if got := engine.OriginalDurationMs(); got != testCase.want {
			t.Fatalf("%s: duration %v, want %v", testCase.name, got, testCase.want)
		}
	}
}

func TestDurationScalesWithTempo(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())

	original := engine.OriginalDurationMs()
	engine.SetTempo(1.0)
	if got := engine.DurationMs(); math.Abs(got-original/2) > 1e-9 {
		t.Fatalf("duration at multiplier 2 = %v, want %v", got, original/2)
	}
	if got := engine.OriginalDurationMs(); got != original {
		t.Fatalf("original duration changed with tempo: %v", got)
	}
}

func TestSetTokensSortsMisorderedInput(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens([]model.TimedToken{
		{Text: "late ", StartTimeMs: 2000},
		{Text: "early ", StartTimeMs: 0},
		{Text: "mid ", StartTimeMs: 1000},
	})

	tokens := engine.Tokens()
	for i := 1; i < len(tokens); i++ {
		if tokens[i].StartTimeMs < tokens[i-1].StartTimeMs {
			t.Fatalf("tokens not sorted on ingest: %v after %v", tokens[i].StartTimeMs, tokens[i-1].StartTimeMs)
		}
	}
}

func TestSetTokensResetsStateAndKeepsPlaying(t *testing.T) {
	engine := New(Config{TickInterval: time.Hour})
	engine.SetTokens(scenarioTokens())
	engine.Start()
	defer engine.Close()
	engine.Seek(1500)

	engine.SetTokens(scenarioTokens())
	if position := engine.OriginalPositionMs(); position != 0 {
		t.Fatalf("replacing tokens must reset position, got %v", position)
	}
	if index := engine.CurrentIndex(); index != 0 {
		t.Fatalf("replacing tokens must reset cursor, got %d", index)
	}
	if status := engine.Status(); status != model.StatusPlaying {
		t.Fatalf("replacement during playback must stay playing, got %v", status)
	}
}

func TestPauseIsIdempotent(t *testing.T) {
	engine := New(Config{TickInterval: time.Hour})
	engine.SetTokens(scenarioTokens())
	engine.Start()
	defer engine.Close()

	engine.Pause()
	statusAfterFirst := engine.Status()
	positionAfterFirst := engine.OriginalPositionMs()

	engine.Pause()
	if status := engine.Status(); status != statusAfterFirst {
		t.Fatalf("double pause changed status: %v vs %v", status, statusAfterFirst)
	}
	if position := engine.OriginalPositionMs(); position != positionAfterFirst {
		t.Fatalf("double pause changed position: %v vs %v", position, positionAfterFirst)
	}
	if statusAfterFirst != model.StatusPaused {
		t.Fatalf("expected paused, got %v", statusAfterFirst)
	}
}

func TestResumeOnIdleIsNoOp(t *testing.T) {
	engine := New(Config{})
	engine.SetTokens(scenarioTokens())

	engine.Resume()
	if status := engine.Status(); status != model.StatusIdle {
		t.Fatalf("resume while idle must be ignored, got %v", status)
	}
}

func TestStopResetsToIdle(t *testing.T) {
	engine := New(Config{TickInterval: time.Hour})
	engine.SetTokens(scenarioTokens())
	engine.Start()
	engine.Seek(1500)

	engine.Stop()
	if status := engine.Status(); status != model.StatusIdle {
		t.Fatalf("expected idle after stop, got %v", status)
	}
	if position := engine.OriginalPositionMs(); position != 0 {
		t.Fatalf("stop must reset position, got %v", position)
	}
	engine.Close()
}

func TestStopHaltsLoopAfterTokensCleared(t *testing.T) {
	engine := New(Config{TickInterval: time.Hour})
	engine.SetTokens(scenarioTokens())
	engine.Start()
	defer engine.Close()

	// Clearing the tokens mid-playback drops the engine to Idle but the
	// tick loop keeps running until Stop tears it down.
	engine.SetTokens(nil)
	if status := engine.Status(); status != model.StatusIdle {
		t.Fatalf("expected idle after clearing tokens, got %v", status)
	}

	engine.Stop()
	engine.mu.Lock()
	running := engine.running
	engine.mu.Unlock()
	if running {
		t.Fatalf("stop must halt the tick loop even when already idle")
	}
}

func TestTokenAdvanceEventsEmitted(t *testing.T) {
	engine := New(Config{})
	events := engine.Subscribe(16)
	engine.SetTokens(scenarioTokens())
	startPlaying(engine)

	engine.mu.Lock()
	advanced := engine.advanceLocked(1200)
	if advanced {
		engine.emitAdvanceLocked()
	}
	engine.mu.Unlock()

	if !advanced {
		t.Fatalf("expected an advance at 1200ms")
	}
	sawAdvance := false
	for len(events) > 0 {
		event := <-events
		if event.Type == EventTokenAdvance {
			sawAdvance = true
			if event.TokenIndex != engine.CurrentIndex() {
				t.Fatalf("advance event index %d, engine %d", event.TokenIndex, engine.CurrentIndex())
			}
		}
	}
	if !sawAdvance {
		t.Fatalf("no token advance event observed")
	}
}
