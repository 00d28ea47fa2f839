package lyrics

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyrica/internal/core/model"
)

func TestParseInlineTimedWords(t *testing.T) {
	text := "[00:01.00]<00:01.00>Hello <00:02.50>world"

	tokens, err := Parse(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 2 words + break, got %d tokens", len(tokens))
	}
	if tokens[0].Text != "Hello " || tokens[0].StartTimeMs != 1000 {
		t.Fatalf("unexpected first token %+v", tokens[0])
	}
	if tokens[1].Text != "world " || tokens[1].StartTimeMs != 2500 {
		t.Fatalf("unexpected second token %+v", tokens[1])
	}
	if !tokens[2].IsBreak() {
		t.Fatalf("expected trailing break marker, got %+v", tokens[2])
	}
	if tokens[2].StartTimeMs != 2700 {
		t.Fatalf("break marker should follow last word by 200ms, got %v", tokens[2].StartTimeMs)
	}
}

func TestParseSyntheticWordTiming(t *testing.T) {
	tokens, err := Parse("[00:10.00]one two three")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 3 words + break, got %d tokens", len(tokens))
	}
	for i, wantMs := range []float64{10000, 10500, 11000} {
		if tokens[i].StartTimeMs != wantMs {
			t.Fatalf("word %d: expected %vms, got %vms", i, wantMs, tokens[i].StartTimeMs)
		}
	}
	if tokens[3].StartTimeMs != 11200 {
		t.Fatalf("break marker at %vms, expected 11200", tokens[3].StartTimeMs)
	}
}

func TestParseTimeTagConversion(t *testing.T) {
	tokens, err := Parse("[01:23.45]word")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := float64(1*60000 + 23*1000 + 45*10)
	if tokens[0].StartTimeMs != want {
		t.Fatalf("expected %vms, got %vms", want, tokens[0].StartTimeMs)
	}
}

func TestParseSingleDigitFractionIsTenths(t *testing.T) {
	// .5 reads as half a second, not five hundredths.
	tokens, err := Parse("[00:01.5]word")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tokens[0].StartTimeMs != 1500 {
		t.Fatalf("expected 1500ms, got %vms", tokens[0].StartTimeMs)
	}

	tokens, err = Parse("[00:01.00]<00:02.5>word")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tokens[0].StartTimeMs != 2500 {
		t.Fatalf("inline tag expected 2500ms, got %vms", tokens[0].StartTimeMs)
	}
}

func TestParseRejectsTextWithoutTimingLine(t *testing.T) {
	_, err := Parse("just some prose\nwith no timing tags")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestParseOutputIsSorted(t *testing.T) {
	text := "[00:10.00]late line\n[00:02.00]early line"
	tokens, err := Parse(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for i := 1; i < len(tokens); i++ {
		if tokens[i].StartTimeMs < tokens[i-1].StartTimeMs {
			t.Fatalf("tokens out of order at %d: %v after %v", i, tokens[i].StartTimeMs, tokens[i-1].StartTimeMs)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	words := []struct {
		text string
		ms   float64
	}{
		{"Daisy", 1000}, {"Daisy", 1800}, {"give", 2600}, {"answer", 3400},
	}

	var source strings.Builder
	source.WriteString("[00:01.00]")
	for _, word := range words {
		centis := int(word.ms) / 10
		source.WriteString(fmt.Sprintf("<%02d:%02d.%02d>%s ", centis/6000, (centis/100)%60, centis%100, word.text))
	}

	tokens, err := Parse(source.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var got []model.TimedToken
	for _, token := range tokens {
		if !token.IsBreak() {
			got = append(got, token)
		}
	}
	if len(got) != len(words) {
		t.Fatalf("expected %d words, got %d", len(words), len(got))
	}
	for i, word := range words {
		if got[i].Text != word.text+" " {
			t.Fatalf("word %d: expected %q, got %q", i, word.text+" ", got[i].Text)
		}
		if math.Abs(got[i].StartTimeMs-word.ms) > 0.001 {
			t.Fatalf("word %d: expected %vms, got %vms", i, word.ms, got[i].StartTimeMs)
		}
	}
}

func TestExtractMetadata(t *testing.T) {
	text := "[ti:Daisy Bell]\n[ar:Harry Dacre]\n[length:02:30]\n[00:01.00]Daisy"

	metadata := ExtractMetadata(text)
	if metadata["ti"] != "Daisy Bell" {
		t.Fatalf("title: got %q", metadata["ti"])
	}
	if metadata["ar"] != "Harry Dacre" {
		t.Fatalf("artist: got %q", metadata["ar"])
	}
	if metadata["length"] != "02:30" {
		t.Fatalf("length: got %q", metadata["length"])
	}
	if _, ok := metadata["00"]; ok {
		t.Fatalf("timing line must not appear as metadata")
	}
}

func TestIsValid(t *testing.T) {
	if IsValid("[ar:someone]\nno timing here") {
		t.Fatalf("metadata alone must not validate")
	}
	if !IsValid("[00:01.00]word") {
		t.Fatalf("timing line must validate")
	}
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.lrc"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestParseFileInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lrc")
	if err := os.WriteFile(path, []byte("no timing"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := ParseFile(path)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
