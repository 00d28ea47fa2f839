package main

import (
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"lyrica/internal/core/lyrics"
	"lyrica/internal/core/model"
	"lyrica/internal/core/playback"
	"lyrica/internal/storage"
	"lyrica/internal/ui/controls"
	"lyrica/internal/ui/lyricview"
	"lyrica/internal/ui/tray"
	"lyrica/resources"
)

const appName = "Lyrica"

func main() {
	fyneApp := app.NewWithID("com.lyrica.app")

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	engine := playback.New(playback.Config{})
	engine.SetTempo(settings.Tempo)

	viewConfig := lyricview.DefaultConfig()
	viewConfig.FontSize = float32(settings.FontSize)
	viewConfig.VisibleLines = settings.VisibleLines
	view := lyricview.New(engine, viewConfig)

	stageWindow := fyneApp.NewWindow("Lyrica")
	stageWindow.SetContent(view)
	stageWindow.Resize(fyne.NewSize(720, 320))
	stageWindow.SetCloseIntercept(stageWindow.Hide)

	var controlsWindow *controls.Window
	var trayManager *tray.Manager

	installText := func(text, source string) {
		tokens, parseErr := lyrics.Parse(text)
		if parseErr != nil {
			log.Printf("parse lyrics %s: %v", source, parseErr)
			return
		}
		engine.SetTokens(tokens)
		title := lyrics.ExtractMetadata(text)["ti"]
		if title == "" {
			title = source
		}
		stageWindow.SetTitle("Lyrica - " + title)
		if trayManager != nil {
			trayManager.SetTrack(title)
		}
	}

	openFile := func(path string) {
		rawData, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("open lyric file: %v", readErr)
			return
		}
		installText(string(rawData), path)
		settings.LastFile = path
		if controlsWindow != nil {
			controlsWindow.SetFile(path)
		}
	}

	openDemo := func(name string) {
		text, demoErr := resources.Lyric(name)
		if demoErr != nil {
			log.Printf("open demo: %v", demoErr)
			return
		}
		installText(text, name)
	}

	controlsWindow = controls.New(fyneApp, engine, settings, resources.LyricNames(), controls.Callbacks{
		OnOpenFile: openFile,
		OnOpenDemo: openDemo,
		OnSettingsChanged: func(updated controls.Settings) {
			if updated.VisibleLines != settings.VisibleLines {
				view.SetVisibleLines(updated.VisibleLines)
			}
			settings = updated
			if saveErr := storage.SaveSettings(appName, settings); saveErr != nil {
				log.Printf("save settings: %v", saveErr)
			}
		},
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShowControls: controlsWindow.Show,
			OnTogglePlay: func() {
				switch engine.Status() {
				case model.StatusPlaying:
					engine.Pause()
				case model.StatusPaused:
					engine.Resume()
				default:
					engine.Start()
				}
			},
			OnStop: engine.Stop,
			OnRestart: func() {
				engine.Seek(0)
				engine.Start()
			},
			OnQuit: func() {
				engine.Close()
				fyneApp.Quit()
			},
		})

		events := engine.Subscribe(4)
		go func() {
			for event := range events {
				event := event
				fyne.Do(func() {
					trayManager.SetStatus(formatPosition(event.OriginalPositionMs))
					if event.Type == playback.EventStateChange {
						trayManager.SetPlaying(event.Status == model.StatusPlaying)
					}
				})
			}
		}()
	}

	if settings.LastFile != "" {
		openFile(settings.LastFile)
	}
	if len(engine.Tokens()) == 0 {
		if demos := resources.LyricNames(); len(demos) > 0 {
			openDemo(demos[0])
		}
	}

	view.Start()
	controlsWindow.Show()
	stageWindow.Show()
	fyneApp.Run()

	view.Stop()
	engine.Close()
}

func formatPosition(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := int(ms / 1000)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
