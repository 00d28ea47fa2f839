// Package lyricview renders the scrolling lyric window as a Fyne widget.
// The widget is a thin consumer: the playback engine owns timing, the
// layout window owns line packing, the interpolator owns easing; the view
// only drives frames and paints the result.
package lyricview

import (
	"image/color"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"lyrica/internal/core/layout"
	"lyrica/internal/core/model"
	"lyrica/internal/core/playback"
	"lyrica/internal/ui/animation"
	"lyrica/internal/ui/textcache"
)

const frameInterval = 16 * time.Millisecond

// Config defines the view's visual parameters.
type Config struct {
	FontSize       float32
	VisibleLines   int
	TextColor      color.NRGBA
	HighlightColor color.NRGBA
	Background     color.NRGBA
}

// DefaultConfig returns the stock look of the lyric view.
func DefaultConfig() Config {
	return Config{
		FontSize:       24,
		VisibleLines:   4,
		TextColor:      color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		HighlightColor: color.NRGBA{R: 232, G: 190, B: 66, A: 255},
		Background:     color.NRGBA{R: 12, G: 12, B: 16, A: 255},
	}
}

// View is the lyric display widget.
type View struct {
	widget.BaseWidget

	engine  *playback.Engine
	cache   *textcache.Cache
	builder *layout.Builder
	window  *layout.Window
	interp  *animation.Interpolator
	config  Config

	lastIndex int
	stopCh    chan struct{}
	running   bool
}

// New creates a lyric view bound to the given engine.
func New(engine *playback.Engine, config Config) *View {
	if config.VisibleLines < 1 {
		config.VisibleLines = 1
	}
	cache := textcache.New(config.FontSize, fyne.TextStyle{Bold: true}, 0)
	builder := layout.NewBuilder(cache, 0, config.VisibleLines, config.FontSize)

	view := &View{
		engine:  engine,
		cache:   cache,
		builder: builder,
		window:  layout.NewWindow(builder),
		interp:  animation.New(animation.DefaultConfig()),
		config:  config,
	}
	view.ExtendBaseWidget(view)
	return view
}

// Start launches the frame loop and engine observation.
func (view *View) Start() {
	if view.running {
		return
	}
	view.running = true
	view.stopCh = make(chan struct{})
	go view.runFrames(view.stopCh)
	go view.watchEngine(view.engine.Subscribe(8))
}

// Stop halts the frame loop.
func (view *View) Stop() {
	if !view.running {
		return
	}
	close(view.stopCh)
	view.running = false
}

// SetVisibleLines changes the window height in rows.
func (view *View) SetVisibleLines(count int) {
	if count < 1 {
		count = 1
	}
	view.config.VisibleLines = count
	view.builder.SetVisibleLines(count)
	view.window.Rebuild(view.window.FirstBuildIndex())
	view.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (view *View) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(view.config.Background)
	return &viewRenderer{view: view, background: background}
}

func (view *View) runFrames(stopCh chan struct{}) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			deltaMs := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			fyne.Do(func() {
				view.frame(deltaMs)
			})
		}
	}
}

// frame is the per-tick UI update: consume cursor advances, run the
// scroll decision, ease lines, repaint. All window mutation happens here
// or in other fyne.Do callbacks, never concurrently.
func (view *View) frame(deltaMs float64) {
	index := view.engine.CurrentIndex()
	playing := view.engine.Status() == model.StatusPlaying
	if index != view.lastIndex {
		view.lastIndex = index
		for view.window.ShouldScrollToNextLine(index) {
			if !view.window.ScrollToNextLine() {
				break
			}
		}
	}

	animating := view.interp.Step(deltaMs, view.window.Lines())
	if playing || animating {
		view.Refresh()
	}
}

func (view *View) watchEngine(events <-chan playback.Event) {
	for event := range events {
		switch event.Type {
		case playback.EventTokensReplaced:
			fyne.Do(func() {
				view.window.SetTokens(view.engine.Tokens())
				view.lastIndex = view.engine.CurrentIndex()
				view.Refresh()
			})
		case playback.EventSeek:
			index := event.TokenIndex
			fyne.Do(func() {
				view.window.RebuildAroundToken(index)
				view.lastIndex = index
				view.Refresh()
			})
		}
	}
}

type viewRenderer struct {
	view       *View
	background *canvas.Rectangle
	texts      []*canvas.Text
	size       fyne.Size
}

func (renderer *viewRenderer) Layout(size fyne.Size) {
	renderer.size = size
	renderer.background.Resize(size)
	renderer.view.builder.SetAvailableWidth(size.Width)
	renderer.view.window.Rebuild(renderer.view.window.FirstBuildIndex())
	renderer.Refresh()
}

func (renderer *viewRenderer) MinSize() fyne.Size {
	lineHeight := renderer.view.cache.MeasureText("Ag").Height
	return fyne.NewSize(
		renderer.view.config.FontSize*8,
		lineHeight*float32(renderer.view.config.VisibleLines),
	)
}

func (renderer *viewRenderer) Refresh() {
	renderer.rebuildTexts()
	canvas.Refresh(renderer.view)
}

func (renderer *viewRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(renderer.texts)+1)
	objects = append(objects, renderer.background)
	for _, text := range renderer.texts {
		objects = append(objects, text)
	}
	return objects
}

func (renderer *viewRenderer) Destroy() {}

// rebuildTexts repaints one canvas.Text per visible token, mutating a
// persistent pool of text objects rather than allocating per frame. The
// highlight is a color lerp from base to highlight driven by the engine's
// ratio; line opacity scales the alpha channel during fade-in.
func (renderer *viewRenderer) rebuildTexts() {
	view := renderer.view
	config := view.config

	used := 0
	for _, line := range view.window.Lines() {
		if line.CurrentOffset+line.Height < 0 || line.CurrentOffset > renderer.size.Height {
			continue
		}
		for _, box := range line.Tokens {
			ratio := view.engine.HighlightRatio(box.Index)
			tokenColor := lerpColor(config.TextColor, config.HighlightColor, float32(ratio))
			tokenColor.A = uint8(float32(tokenColor.A) * line.CurrentOpacity)

			text := renderer.textAt(used)
			text.Text = strings.TrimSpace(box.Token.Text)
			text.Color = tokenColor
			text.TextSize = config.FontSize
			text.TextStyle = view.cache.Style()
			text.Move(fyne.NewPos(box.X, line.CurrentOffset))
			text.Resize(fyne.NewSize(box.Width, line.Height))
			text.Show()
			used++
		}
	}
	for _, text := range renderer.texts[used:] {
		text.Hide()
	}
}

// textAt returns the pooled text object at index, growing the pool on
// first use of a slot.
func (renderer *viewRenderer) textAt(index int) *canvas.Text {
	if index < len(renderer.texts) {
		return renderer.texts[index]
	}
	text := canvas.NewText("", color.NRGBA{})
	renderer.texts = append(renderer.texts, text)
	return text
}

func lerpColor(from, to color.NRGBA, ratio float32) color.NRGBA {
	if ratio <= 0 {
		return from
	}
	if ratio >= 1 {
		return to
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float32(a) + (float32(b)-float32(a))*ratio)
	}
	return color.NRGBA{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		A: lerp(from.A, to.A),
	}
}
