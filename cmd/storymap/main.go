// StoryMap - Interactive Story Mapper
//
// A cross-platform desktop application for laying out the passages of a
// branching story on a canvas and exporting the map.
//
// Build:
//   go build -o storymap ./cmd/storymap
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o storymap.exe ./cmd/storymap
//   GOOS=darwin  GOARCH=amd64 go build -o storymap-darwin ./cmd/storymap
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/StoryMap/internal/project"
	"github.com/piwi3910/StoryMap/internal/ui"
)

func main() {
	configPath := flag.String("config", project.DefaultConfigPath(), "app config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "storymap",
	})

	application := app.NewWithID("com.piwi3910.storymap")
	window := application.NewWindow("StoryMap")

	appUI := ui.NewApp(application, window, *configPath, logger)
	application.Settings().SetTheme(appUI.Theme())
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	if path := flag.Arg(0); path != "" {
		appUI.Open(path)
	}

	window.ShowAndRun()
}
