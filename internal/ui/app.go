package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/export"
	"github.com/piwi3910/StoryMap/internal/importer"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/piwi3910/StoryMap/internal/project"
	"github.com/piwi3910/StoryMap/internal/ui/widgets"
)

// Zoom limits and step for the canvas.
const (
	minZoom  = 0.25
	maxZoom  = 4.0
	zoomStep = 1.25
)

// App holds all application state and UI references.
type App struct {
	app        fyne.App
	window     fyne.Window
	logger     *log.Logger
	config     model.AppConfig
	configPath string

	story     model.Story
	storyPath string
	dirty     bool
	placer    *engine.Placer
	history   *History
	committed Snapshot

	// UI references for dynamic updates
	canvas    *widgets.StoryCanvas
	scroll    *container.Scroll
	status    *widget.Label
	snapCheck *widget.Check
}

// NewApp loads the app config from configPath and starts with an empty story.
// A config that cannot be read is logged and replaced by defaults.
func NewApp(application fyne.App, window fyne.Window, configPath string, logger *log.Logger) *App {
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		logger.Warn("using default settings", "err", err)
		cfg = model.DefaultAppConfig()
	}

	a := &App{
		app:        application,
		window:     window,
		logger:     logger,
		config:     cfg,
		configPath: configPath,
		placer:     engine.New(cfg.PlacementSettings()),
		history:    NewHistory(),
	}
	a.story = a.blankStory()
	a.committed = MakeSnapshot(a.story, "New Story")
	return a
}

// Theme returns the theme described by the loaded config.
func (a *App) Theme() fyne.Theme {
	return NewThemeFromConfig(a.config.Theme)
}

func (a *App) blankStory() model.Story {
	s := model.NewStory("Untitled Story")
	a.config.ApplyToStory(&s)
	return s
}

func shortcut(key fyne.KeyName, mod fyne.KeyModifier) fyne.Shortcut {
	return &desktop.CustomShortcut{KeyName: key, Modifier: mod}
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	primary := fyne.KeyModifierShortcutDefault

	newItem := fyne.NewMenuItem("New Story", a.newStory)
	newItem.Shortcut = shortcut(fyne.KeyN, primary)
	openItem := fyne.NewMenuItem("Open Story...", a.openStory)
	openItem.Shortcut = shortcut(fyne.KeyO, primary)
	saveItem := fyne.NewMenuItem("Save", a.saveStory)
	saveItem.Shortcut = shortcut(fyne.KeyS, primary)

	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		newItem,
		openItem,
		recentItem,
		saveItem,
		fyne.NewMenuItem("Save As...", a.saveStoryAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Passages from CSV...", func() { a.importFile(importCSV) }),
		fyne.NewMenuItem("Import Passages from Excel...", func() { a.importFile(importExcel) }),
		fyne.NewMenuItem("Import Passages from DXF...", func() { a.importFile(importDXF) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Map PDF...", func() { a.exportFile(exportPDF) }),
		fyne.NewMenuItem("Export Passage Cards...", func() { a.exportFile(exportCards) }),
		fyne.NewMenuItem("Export DXF...", func() { a.exportFile(exportDXF) }),
		fyne.NewMenuItem("Export Excel...", func() { a.exportFile(exportXLSX) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", a.showSettingsDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	undoItem := fyne.NewMenuItem("Undo", a.undo)
	undoItem.Shortcut = shortcut(fyne.KeyZ, primary)
	redoItem := fyne.NewMenuItem("Redo", a.redo)
	redoItem.Shortcut = shortcut(fyne.KeyZ, primary|fyne.KeyModifierShift)
	newPassageItem := fyne.NewMenuItem("New Passage", a.newPassage)
	newPassageItem.Shortcut = shortcut(fyne.KeyP, primary)
	selectAllItem := fyne.NewMenuItem("Select All", a.selectAll)
	selectAllItem.Shortcut = shortcut(fyne.KeyA, primary)

	editMenu := fyne.NewMenu("Edit",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		newPassageItem,
		fyne.NewMenuItem("Edit Passage...", a.showEditPassageDialog),
		fyne.NewMenuItem("Add Links...", a.showLinkDialog),
		fyne.NewMenuItem("Delete Selected", a.deleteSelected),
		fyne.NewMenuItemSeparator(),
		selectAllItem,
		fyne.NewMenuItem("Select None", a.selectNone),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { a.setZoom(a.story.Zoom * zoomStep) }),
		fyne.NewMenuItem("Zoom Out", func() { a.setZoom(a.story.Zoom / zoomStep) }),
		fyne.NewMenuItem("Actual Size", func() { a.setZoom(1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Snap to Grid", func() { a.setSnap(!a.story.SnapToGrid) }),
		fyne.NewMenuItem("Grid Size...", a.showGridDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			a.showAboutDialog()
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// recentMenu lists the recently opened stories, newest first.
func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range a.config.RecentStories {
		p := path
		items = append(items, fyne.NewMenuItem(filepath.Base(p), func() { a.confirmDiscard(func() { a.openPath(p) }) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("No recent stories", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About StoryMap",
		"StoryMap - Interactive Story Mapper\n\n"+
			"Lay out passages of a branching story on a canvas,\n"+
			"link them and export the map to PDF, DXF or Excel.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.canvas = widgets.NewStoryCanvas(&a.story, a.placer.Settings.Gap)
	a.canvas.OnChanged = func() { a.commit("Select / Move") }
	a.canvas.OnError = a.showError
	a.scroll = container.NewScroll(a.canvas)

	a.status = widget.NewLabel("")
	a.snapCheck = widget.NewCheck("Snap to grid", a.setSnap)
	a.snapCheck.Checked = a.story.SnapToGrid

	toolbar := container.NewHBox(
		newIconButtonWithTooltip(theme.ContentAddIcon(), "New passage", a.newPassage),
		newIconButtonWithTooltip(theme.MailForwardIcon(), "Add links from selected passage", a.showLinkDialog),
		newIconButtonWithTooltip(theme.DocumentCreateIcon(), "Edit selected passage", a.showEditPassageDialog),
		newIconButtonWithTooltip(theme.DeleteIcon(), "Delete selected passages", a.deleteSelected),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.undo),
		newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.redo),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ZoomInIcon(), "Zoom in", func() { a.setZoom(a.story.Zoom * zoomStep) }),
		newIconButtonWithTooltip(theme.ZoomOutIcon(), "Zoom out", func() { a.setZoom(a.story.Zoom / zoomStep) }),
		newIconButtonWithTooltip(theme.ZoomFitIcon(), "Actual size", func() { a.setZoom(1) }),
		layout.NewSpacer(),
		a.snapCheck,
	)

	a.window.SetCloseIntercept(func() {
		a.confirmDiscard(a.window.Close)
	})

	a.refresh()
	content := container.NewBorder(toolbar, a.status, nil, nil, a.scroll)
	return withTooltipLayer(content, a.window)
}

// ─── State ─────────────────────────────────────────────────

// commit records the current story as a new undo step.
func (a *App) commit(label string) {
	a.history.Push(a.committed)
	a.committed = MakeSnapshot(a.story, label)
	a.dirty = true
	a.refresh()
}

// restore replaces the story with a snapshot without touching history.
func (a *App) restore(s Snapshot) {
	a.committed = s
	a.story = MakeSnapshot(s.Story, s.Label).Story
	a.dirty = true
	a.refresh()
}

func (a *App) undo() {
	if s, ok := a.history.Undo(a.committed); ok {
		a.logger.Debug("undo", "step", a.committed.Label)
		a.restore(s)
	}
}

func (a *App) redo() {
	if s, ok := a.history.Redo(a.committed); ok {
		a.logger.Debug("redo", "step", s.Label)
		a.restore(s)
	}
}

// replaceStory loads a different story and forgets the old history.
func (a *App) replaceStory(s model.Story, path string) {
	a.story = s
	a.storyPath = path
	a.dirty = false
	a.history.Clear()
	a.committed = MakeSnapshot(a.story, "Open")
	a.refresh()
}

func (a *App) refresh() {
	if a.canvas == nil {
		return
	}
	a.canvas.SetStory(&a.story)
	a.snapCheck.Checked = a.story.SnapToGrid
	a.snapCheck.Refresh()

	snap := "off"
	if a.story.SnapToGrid {
		snap = fmt.Sprintf("%g px", a.story.GridSize)
	}
	a.status.SetText(fmt.Sprintf("%d passages, %d selected | zoom %.0f%% | grid %s",
		len(a.story.Passages), len(a.story.SelectedIDs()), a.story.Zoom*100, snap))

	title := "StoryMap - " + a.story.Name
	if a.dirty {
		title += " *"
	}
	a.window.SetTitle(title)
}

func (a *App) showError(err error) {
	a.logger.Error("operation failed", "err", err)
	dialog.ShowError(err, a.window)
}

// confirmDiscard runs next right away, or after confirmation when there are
// unsaved changes.
func (a *App) confirmDiscard(next func()) {
	if !a.dirty {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes", "Discard unsaved changes to "+a.story.Name+"?", func(ok bool) {
		if ok {
			next()
		}
	}, a.window)
}

// ─── Edit actions ──────────────────────────────────────────

// newPassage places an untitled passage at the centre of the visible area.
func (a *App) newPassage() {
	anchor := a.canvas.ViewportCenter(a.scroll.Offset, a.scroll.Size())
	p, err := a.placer.CreateUntitledPassage(a.story, anchor)
	if err != nil {
		a.showError(err)
		return
	}
	if err := a.story.AddPassages(p); err != nil {
		a.showError(err)
		return
	}
	a.logger.Debug("created passage", "name", p.Name, "left", p.Left, "top", p.Top)
	a.commit("New Passage")
}

func (a *App) selectAll() {
	var ids []string
	for _, p := range a.story.Passages {
		ids = append(ids, p.ID)
	}
	a.story.ApplySelection(model.SelectionChange{Selected: ids})
	a.commit("Select All")
}

func (a *App) selectNone() {
	a.story.ApplySelection(model.SelectionChange{Deselected: a.story.SelectedIDs()})
	a.commit("Select None")
}

func (a *App) deleteSelected() {
	ids := a.story.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	a.story.RemovePassages(ids)
	a.commit("Delete Passages")
}

func (a *App) setSnap(on bool) {
	if on == a.story.SnapToGrid {
		return
	}
	a.story.SnapToGrid = on
	if err := a.story.Grid().Validate(); err != nil {
		a.story.SnapToGrid = false
		a.showError(err)
		a.refresh()
		return
	}
	a.commit("Toggle Snap to Grid")
}

// setZoom changes the canvas zoom. Zoom is a view setting, so it is saved
// with the story but not recorded as an undo step.
func (a *App) setZoom(z float64) {
	a.story.Zoom = min(max(z, minZoom), maxZoom)
	a.committed.Story.Zoom = a.story.Zoom
	a.refresh()
}

// ─── Story files ───────────────────────────────────────────

func (a *App) newStory() {
	a.confirmDiscard(func() {
		a.replaceStory(a.blankStory(), "")
	})
}

func (a *App) openStory() {
	a.confirmDiscard(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			defer reader.Close()
			a.openPath(reader.URI().Path())
		}, a.window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{project.FileExtension}))
		d.Show()
	})
}

// Open loads the story at path. Build must have been called first.
func (a *App) Open(path string) {
	a.openPath(project.EnsureExtension(path))
}

func (a *App) openPath(path string) {
	s, err := project.LoadStory(path)
	if err != nil {
		a.showError(err)
		return
	}
	a.replaceStory(s, path)
	a.remember(path)
	a.logger.Info("opened story", "path", path, "passages", len(s.Passages))
}

func (a *App) saveStory() {
	if a.storyPath == "" {
		a.saveStoryAs()
		return
	}
	a.writeStory(a.storyPath)
}

func (a *App) saveStoryAs() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := project.EnsureExtension(writer.URI().Path())
		writer.Close()
		if a.story.Name == "Untitled Story" {
			a.story.Name = project.StoryNameFromPath(path)
		}
		a.writeStory(path)
	}, a.window)
	d.SetFileName(a.story.Name + project.FileExtension)
	d.Show()
}

func (a *App) writeStory(path string) {
	if err := project.SaveStory(path, a.story); err != nil {
		a.showError(err)
		return
	}
	a.storyPath = path
	a.dirty = false
	a.remember(path)
	a.refresh()
	a.logger.Info("saved story", "path", path)
}

// remember adds path to the recent list and rebuilds the menu.
func (a *App) remember(path string) {
	if err := project.RememberStory(a.configPath, &a.config, path); err != nil {
		a.logger.Warn("failed to update recent stories", "err", err)
	}
	a.SetupMenus()
}

// ─── Import / Export ───────────────────────────────────────

type importKind int

const (
	importCSV importKind = iota
	importExcel
	importDXF
)

func (a *App) importFile(kind importKind) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		path := reader.URI().Path()

		var result importer.ImportResult
		switch kind {
		case importExcel:
			result = importer.ImportExcel(path)
		case importDXF:
			result = importer.ImportDXF(path)
		default:
			result = importer.ImportCSV(path)
		}
		a.handleImportResult(result)
	}, a.window)
	switch kind {
	case importExcel:
		d.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx"}))
	case importDXF:
		d.SetFilter(storage.NewExtensionFileFilter([]string{".dxf"}))
	default:
		d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".txt"}))
	}
	d.Show()
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		a.showError(errors.New(errorMsg))
	}

	// Warnings are informational only
	for _, w := range result.Warnings {
		a.logger.Warn("import", "warning", w)
	}

	if len(result.Passages) == 0 {
		return
	}

	merged, err := importer.Merge(&a.story, result, a.placer)
	if err != nil {
		a.showError(err)
		return
	}
	a.commit("Import Passages")

	msg := fmt.Sprintf("Successfully imported %d passages.", merged.Added)
	if merged.Placed > 0 {
		msg += fmt.Sprintf("\n%d had no position and were placed automatically.", merged.Placed)
	}
	if len(merged.Renamed) > 0 {
		msg += "\n\nRenamed to avoid duplicates:\n" + strings.Join(merged.Renamed, "\n")
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

type exportKind int

const (
	exportPDF exportKind = iota
	exportCards
	exportDXF
	exportXLSX
)

// exporters maps each export kind to its file suffix and writer.
var exporters = map[exportKind]struct {
	suffix string
	write  func(path string, story model.Story) error
}{
	exportPDF:   {"-map.pdf", export.ExportPDF},
	exportCards: {"-cards.pdf", export.ExportCards},
	exportDXF:   {".dxf", export.ExportDXF},
	exportXLSX:  {".xlsx", export.ExportXLSX},
}

func (a *App) exportFile(kind exportKind) {
	if len(a.story.Passages) == 0 {
		dialog.ShowInformation("Nothing to export", "Add at least one passage first.", a.window)
		return
	}
	exp := exporters[kind]

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := exp.write(path, a.story); err != nil {
			a.showError(err)
			return
		}
		a.logger.Info("exported story", "path", path)
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Story exported to %s", path), a.window)
	}, a.window)
	d.SetFileName(a.story.Name + exp.suffix)
	d.Show()
}
