package controls

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"lyrica/internal/core/model"
	"lyrica/internal/core/playback"
)

// Callbacks defines host actions the window can trigger.
type Callbacks struct {
	OnOpenFile        func(path string)
	OnOpenDemo        func(name string)
	OnSettingsChanged func(Settings)
}

// Window handles the playback control UI.
type Window struct {
	window    fyne.Window
	engine    *playback.Engine
	settings  Settings
	callbacks Callbacks

	fileEntry    *widget.Entry
	demoSelect   *widget.Select
	playButton   *widget.Button
	pauseButton  *widget.Button
	stopButton   *widget.Button
	seekSlider   *widget.Slider
	positionText *widget.Label
	statusText   *widget.Label
	tempoSlider  *widget.Slider
	tempoText    *widget.Label
	linesEntry   *widget.Entry
}

// New creates a playback control window bound to the engine.
func New(app fyne.App, engine *playback.Engine, settings Settings, demos []string, callbacks Callbacks) *Window {
	window := app.NewWindow("Lyrica")

	fileEntry := widget.NewEntry()
	fileEntry.SetPlaceHolder("path to .lrc file")
	fileEntry.SetText(settings.LastFile)

	controls := &Window{
		window:    window,
		engine:    engine,
		settings:  settings,
		callbacks: callbacks,
		fileEntry: fileEntry,
	}

	openButton := widget.NewButton("Open", func() {
		if controls.callbacks.OnOpenFile != nil {
			controls.callbacks.OnOpenFile(controls.fileEntry.Text)
		}
	})

	controls.demoSelect = widget.NewSelect(demos, func(name string) {
		if controls.callbacks.OnOpenDemo != nil {
			controls.callbacks.OnOpenDemo(name)
		}
	})
	controls.demoSelect.PlaceHolder = "demo lyrics..."

	controls.playButton = widget.NewButton("Play", func() {
		if engine.Status() == model.StatusPaused {
			engine.Resume()
			return
		}
		engine.Start()
	})
	controls.pauseButton = widget.NewButton("Pause", engine.Pause)
	controls.stopButton = widget.NewButton("Stop", engine.Stop)

	controls.seekSlider = widget.NewSlider(0, 1)
	controls.seekSlider.Step = 100
	controls.seekSlider.OnChangeEnded = func(value float64) {
		engine.Seek(value)
	}

	controls.positionText = widget.NewLabel("00:00 / 00:00")
	controls.statusText = widget.NewLabel("idle")

	controls.tempoSlider = widget.NewSlider(model.MinTempo, model.MaxTempo)
	controls.tempoSlider.Step = 0.1
	controls.tempoSlider.Value = settings.Tempo
	controls.tempoText = widget.NewLabel(formatTempo(settings.Tempo))
	controls.tempoSlider.OnChanged = func(value float64) {
		engine.SetTempo(value)
		controls.tempoText.SetText(formatTempo(engine.Tempo()))
		controls.settings.Tempo = engine.Tempo()
		controls.notifySettings()
	}

	controls.linesEntry = widget.NewEntry()
	controls.linesEntry.SetText(strconv.Itoa(settings.VisibleLines))
	applyLines := widget.NewButton("Apply", controls.handleLinesApply)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Source", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, openButton, fileEntry),
		controls.demoSelect,
		widget.NewLabelWithStyle("Playback", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(controls.playButton, controls.pauseButton, controls.stopButton, layout.NewSpacer(), controls.statusText),
		controls.seekSlider,
		controls.positionText,
		widget.NewLabelWithStyle("Tempo", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		controls.tempoSlider,
		controls.tempoText,
		widget.NewLabelWithStyle("Display", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Visible lines"), controls.linesEntry, applyLines),
	)

	window.SetContent(form)
	window.Resize(fyne.NewSize(420, 440))

	go controls.watchEngine(engine.Subscribe(4))
	return controls
}

// Show displays the control window.
func (controls *Window) Show() {
	controls.window.Show()
	controls.window.RequestFocus()
}

// Win exposes the underlying window for lifecycle wiring.
func (controls *Window) Win() fyne.Window {
	return controls.window
}

// SetFile updates the file entry after the host opens a file.
func (controls *Window) SetFile(path string) {
	controls.settings.LastFile = path
	fyne.Do(func() {
		controls.fileEntry.SetText(path)
	})
	controls.notifySettings()
}

func (controls *Window) handleLinesApply() {
	count, err := strconv.Atoi(controls.linesEntry.Text)
	if err != nil {
		controls.linesEntry.SetText(strconv.Itoa(controls.settings.VisibleLines))
		return
	}
	controls.settings.VisibleLines = count
	controls.settings = controls.settings.Normalize()
	controls.linesEntry.SetText(strconv.Itoa(controls.settings.VisibleLines))
	controls.notifySettings()
}

func (controls *Window) notifySettings() {
	if controls.callbacks.OnSettingsChanged != nil {
		controls.callbacks.OnSettingsChanged(controls.settings)
	}
}

func (controls *Window) watchEngine(events <-chan playback.Event) {
	for event := range events {
		controls.applyEvent(event)
	}
}

func (controls *Window) applyEvent(event playback.Event) {
	fyne.Do(func() {
		controls.statusText.SetText(string(event.Status))
		if event.Type == playback.EventProgress || event.Type == playback.EventSeek || event.Type == playback.EventStateChange {
			controls.positionText.SetText(fmt.Sprintf("%s / %s",
				formatMs(event.OriginalPositionMs), formatMs(event.OriginalDurationMs)))
			if controls.seekSlider.Max != event.OriginalDurationMs && event.OriginalDurationMs > 0 {
				controls.seekSlider.Max = event.OriginalDurationMs
			}
			controls.seekSlider.Value = event.OriginalPositionMs
			controls.seekSlider.Refresh()
		}
	})
}

func formatMs(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := int(ms / 1000)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatTempo(tempo float64) string {
	return fmt.Sprintf("tempo %+.1f (x%.1f speed)", tempo, model.Multiplier(tempo))
}
