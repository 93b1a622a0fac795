package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/project"
)

// floatEntry creates an entry bound to a float pointer.
func floatEntry(val *float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
	e.OnChanged = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			*val = v
		}
	}
	return e
}

// showSettingsDialog displays the application settings editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	snapCheck := widget.NewCheck("", func(b bool) { cfg.DefaultSnapToGrid = b })
	snapCheck.Checked = cfg.DefaultSnapToGrid

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Passage Width (px)", floatEntry(&cfg.DefaultPassageWidth)),
		widget.NewFormItem("Passage Height (px)", floatEntry(&cfg.DefaultPassageHeight)),
		widget.NewFormItem("Passage Gap (px)", floatEntry(&cfg.DefaultGap)),
		widget.NewFormItem("Grid Size (px)", floatEntry(&cfg.DefaultGridSize)),
		widget.NewFormItem("Snap New Stories to Grid", snapCheck),
	}

	d := dialog.NewForm("Settings", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			settings := cfg.PlacementSettings()
			if err := engine.New(settings).Validate(); err != nil {
				a.showError(err)
				return
			}
			a.config = cfg
			a.placer = engine.New(settings)
			a.canvas.SetSpacing(settings.Gap)
			a.app.Settings().SetTheme(NewThemeFromConfig(cfg.Theme))
			if err := a.saveConfig(); err != nil {
				a.showError(fmt.Errorf("failed to save settings: %w", err))
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(450, 400))
	d.Show()
}

// showGridDialog edits the current story's grid size.
func (a *App) showGridDialog() {
	size := a.story.GridSize
	d := dialog.NewForm("Grid", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Grid Size (px)", floatEntry(&size))},
		func(ok bool) {
			if !ok {
				return
			}
			grid := a.story.Grid()
			grid.Size = size
			grid.SnapToGrid = true
			if err := grid.Validate(); err != nil {
				a.showError(err)
				return
			}
			a.story.GridSize = size
			a.commit("Change Grid")
		},
		a.window,
	)
	d.Show()
}

// showEditPassageDialog edits the name, tags and text of the single
// selected passage.
func (a *App) showEditPassageDialog() {
	ids := a.story.SelectedIDs()
	if len(ids) != 1 {
		dialog.ShowInformation("Edit Passage", "Select exactly one passage to edit.", a.window)
		return
	}
	p, _ := a.story.PassageByID(ids[0])

	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)
	tagsEntry := widget.NewEntry()
	tagsEntry.SetText(strings.Join(p.Tags, ", "))
	tagsEntry.SetPlaceHolder("comma separated")
	textEntry := widget.NewMultiLineEntry()
	textEntry.SetText(p.Text)
	textEntry.SetMinRowsVisible(6)

	d := dialog.NewForm("Edit Passage", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("Tags", tagsEntry),
			widget.NewFormItem("Text", textEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				a.showError(fmt.Errorf("passage name must not be empty"))
				return
			}
			if err := a.story.RenamePassage(p.ID, name); err != nil {
				a.showError(err)
				return
			}
			for i := range a.story.Passages {
				if a.story.Passages[i].ID == p.ID {
					a.story.Passages[i].Tags = splitNames(tagsEntry.Text)
					a.story.Passages[i].Text = textEntry.Text
				}
			}
			a.commit("Edit Passage")
		},
		a.window,
	)
	d.Resize(fyne.NewSize(450, 350))
	d.Show()
}

// showLinkDialog asks for link targets of the selected passage and creates
// the missing ones in a row under it.
func (a *App) showLinkDialog() {
	ids := a.story.SelectedIDs()
	if len(ids) != 1 {
		dialog.ShowInformation("Add Links", "Select exactly one passage to link from.", a.window)
		return
	}
	source, _ := a.story.PassageByID(ids[0])

	linksEntry := widget.NewEntry()
	linksEntry.SetPlaceHolder("Cave, Forest, River")

	d := dialog.NewForm("Add Links from "+source.Name, "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Targets", linksEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			names := splitNames(linksEntry.Text)
			created, err := a.placer.CreateLinkedPassages(a.story, source.ID, names)
			if err != nil {
				a.showError(err)
				return
			}
			if err := a.story.AddPassages(created...); err != nil {
				a.showError(err)
				return
			}
			a.story.AddLinks(source.ID, names)
			a.logger.Debug("linked passages", "source", source.Name, "targets", len(names), "created", len(created))
			a.commit("Add Links")
		},
		a.window,
	)
	d.Resize(fyne.NewSize(400, 150))
	d.Show()
}

// splitNames splits a comma separated list, dropping blanks.
func splitNames(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(a.configPath, a.config)
}
