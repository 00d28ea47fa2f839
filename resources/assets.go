package resources

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

const lyricDir = "lyrics/"

//go:embed lyrics/*.lrc
var lyricFS embed.FS

var lyricCache sync.Map

// Lyric returns the embedded lyric text for the given demo file.
func Lyric(fileName string) (string, error) {
	path := lyricDir + fileName
	if cached, ok := lyricCache.Load(path); ok {
		return cached.(string), nil
	}

	data, err := lyricFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load lyric %s: %w", path, err)
	}

	text := string(data)
	lyricCache.Store(path, text)
	return text, nil
}

// MustLyric returns embedded lyric text or panics on error.
func MustLyric(fileName string) string {
	text, err := Lyric(fileName)
	if err != nil {
		panic(err)
	}
	return text
}

// LyricNames lists the embedded demo lyric files.
func LyricNames() []string {
	entries, err := fs.ReadDir(lyricFS, strings.TrimSuffix(lyricDir, "/"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
