package lyrics

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lyrica/internal/core/model"
)

// ErrInvalidFormat indicates the text contains no valid timing line or is
// structurally malformed.
var ErrInvalidFormat = errors.New("invalid lyric format")

const (
	// syntheticWordStepMs spaces out words on lines without inline timing.
	syntheticWordStepMs = 500.0
	// breakDelayMs separates a line's last token from its break marker.
	breakDelayMs = 200.0
)

var (
	lineTimePattern   = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})\.(\d{1,2})\]`)
	inlineTimePattern = regexp.MustCompile(`<(\d{1,2}):(\d{2})\.(\d{1,2})>([^<]*)`)
	metadataPattern   = regexp.MustCompile(`^\[(ar|ti|al|au|by|re|ve|length):(.*)\]\s*$`)
)

// ParseFile reads and parses a lyric timing file.
// A missing file surfaces as an error wrapping os.ErrNotExist.
func ParseFile(path string) ([]model.TimedToken, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lyric file: %w", err)
	}
	tokens, err := Parse(string(rawData))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tokens, nil
}

// Parse converts lyric timing text into an ordered token sequence.
// Each timed word becomes one token with a trailing space; every source
// line is terminated by a break-marker token shortly after its last word.
func Parse(text string) ([]model.TimedToken, error) {
	if !IsValid(text) {
		return nil, fmt.Errorf("%w: no timing line found", ErrInvalidFormat)
	}

	var tokens []model.TimedToken
	for _, line := range splitLines(text) {
		lineTokens := parseLine(line)
		if len(lineTokens) == 0 {
			continue
		}
		lastTime := lineTokens[len(lineTokens)-1].StartTimeMs
		lineTokens = append(lineTokens, model.TimedToken{
			Text:        model.BreakMarker,
			StartTimeMs: lastTime + breakDelayMs,
		})
		tokens = append(tokens, lineTokens...)
	}

	// The engine assumes ascending start times; normalize here so hosts
	// never see the undefined misordered case.
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].StartTimeMs < tokens[j].StartTimeMs
	})
	return tokens, nil
}

// IsValid reports whether the text contains at least one timing line.
func IsValid(text string) bool {
	for _, line := range splitLines(text) {
		if lineTimePattern.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// ExtractMetadata collects [key:value] header tags from lyric text.
func ExtractMetadata(text string) map[string]string {
	metadata := make(map[string]string)
	for _, line := range splitLines(text) {
		match := metadataPattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		metadata[match[1]] = strings.TrimSpace(match[2])
	}
	return metadata
}

func parseLine(line string) []model.TimedToken {
	trimmed := strings.TrimSpace(line)
	timeMatch := lineTimePattern.FindStringSubmatch(trimmed)
	if timeMatch == nil {
		return nil
	}
	lineTime := timeTagToMs(timeMatch[1], timeMatch[2], timeMatch[3])
	rest := trimmed[len(timeMatch[0]):]

	inlineMatches := inlineTimePattern.FindAllStringSubmatch(rest, -1)
	if len(inlineMatches) > 0 {
		tokens := make([]model.TimedToken, 0, len(inlineMatches))
		for _, match := range inlineMatches {
			word := strings.TrimSpace(match[4])
			if word == "" {
				continue
			}
			tokens = append(tokens, model.TimedToken{
				Text:        word + " ",
				StartTimeMs: timeTagToMs(match[1], match[2], match[3]),
			})
		}
		return tokens
	}

	words := strings.Fields(rest)
	tokens := make([]model.TimedToken, 0, len(words))
	for i, word := range words {
		tokens = append(tokens, model.TimedToken{
			Text:        word + " ",
			StartTimeMs: lineTime + float64(i)*syntheticWordStepMs,
		})
	}
	return tokens
}

// timeTagToMs converts an mm:ss.f[f] tag to milliseconds. The fraction is
// positional: one digit means tenths of a second, two digits hundredths.
func timeTagToMs(minutes, seconds, fraction string) float64 {
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	f, _ := strconv.Atoi(fraction)
	fractionMs := float64(f) * 10
	if len(fraction) == 1 {
		fractionMs = float64(f) * 100
	}
	return float64(m)*60000 + float64(s)*1000 + fractionMs
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
