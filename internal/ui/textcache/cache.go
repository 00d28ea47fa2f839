// Package textcache memoizes text measurements behind a bounded LRU so
// layout rebuilds do not re-measure the same glyph runs every frame.
package textcache

import (
	"fyne.io/fyne/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"lyrica/internal/core/layout"
)

const defaultBound = 512

type key struct {
	text   string
	size   float32
	bold   bool
	italic bool
}

// Cache measures text through Fyne and memoizes the results. It
// implements layout.Measurer.
type Cache struct {
	entries  *lru.Cache[key, layout.Size]
	textSize float32
	style    fyne.TextStyle
}

// New creates a Cache for the given font attributes. A non-positive bound
// falls back to the default.
func New(textSize float32, style fyne.TextStyle, bound int) *Cache {
	if bound <= 0 {
		bound = defaultBound
	}
	entries, _ := lru.New[key, layout.Size](bound)
	return &Cache{
		entries:  entries,
		textSize: textSize,
		style:    style,
	}
}

// MeasureText returns the rendered extent of text at the cache's font
// attributes.
func (cache *Cache) MeasureText(text string) layout.Size {
	k := key{text: text, size: cache.textSize, bold: cache.style.Bold, italic: cache.style.Italic}
	if size, ok := cache.entries.Get(k); ok {
		return size
	}
	measured := fyne.MeasureText(text, cache.textSize, cache.style)
	size := layout.Size{Width: measured.Width, Height: measured.Height}
	cache.entries.Add(k, size)
	return size
}

// TextSize returns the font size the cache measures at.
func (cache *Cache) TextSize() float32 {
	return cache.textSize
}

// Style returns the text style the cache measures with.
func (cache *Cache) Style() fyne.TextStyle {
	return cache.style
}
