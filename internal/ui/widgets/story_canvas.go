package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/export"
	"github.com/piwi3910/StoryMap/internal/model"
)

// Tag colors, in the same order as the export palette so a passage keeps its
// color between the canvas and the PDF.
var passageColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 200},  // green
	{R: 33, G: 150, B: 243, A: 200}, // blue
	{R: 255, G: 152, B: 0, A: 200},  // orange
	{R: 156, G: 39, B: 176, A: 200}, // purple
	{R: 0, G: 188, B: 212, A: 200},  // cyan
	{R: 244, G: 67, B: 54, A: 200},  // red
	{R: 255, G: 235, B: 59, A: 200}, // yellow
	{R: 121, G: 85, B: 72, A: 200},  // brown
}

var (
	untaggedColor  = color.NRGBA{R: 236, G: 239, B: 241, A: 230}
	borderColor    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	selectedColor  = color.NRGBA{R: 25, G: 118, B: 210, A: 255}
	previewColor   = color.NRGBA{R: 255, G: 193, B: 7, A: 255}
	connectorColor = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	marqueeFill    = color.NRGBA{R: 33, G: 150, B: 243, A: 40}
	gridColor      = color.NRGBA{R: 0, G: 0, B: 0, A: 18}
)

// canvasPadding is the empty border, in logical pixels, kept around the map.
const canvasPadding = 50.0

// dragKind records what the current pointer gesture is doing.
type dragKind int

const (
	dragNone dragKind = iota
	dragMarquee
	dragMove
)

// StoryCanvas draws a story map and handles marquee selection and passage
// dragging. The story is owned by the caller; the canvas mutates it in place
// and reports every committed change through OnChanged.
type StoryCanvas struct {
	widget.BaseWidget

	story   *model.Story
	spacing float64

	// OnChanged is called after a selection or move has been committed.
	OnChanged func()
	// OnError receives errors from the engine during a gesture.
	OnError func(error)

	kind    dragKind
	press   fyne.Position
	current fyne.Position
	mode    model.SelectionMode
	marquee *engine.Marquee
	preview map[string]bool
}

// NewStoryCanvas creates a canvas over story. spacing is the gap kept between
// passages when a drag is dropped onto another passage.
func NewStoryCanvas(story *model.Story, spacing float64) *StoryCanvas {
	sc := &StoryCanvas{story: story, spacing: spacing}
	sc.ExtendBaseWidget(sc)
	return sc
}

// SetStory replaces the displayed story and drops any gesture in progress.
func (sc *StoryCanvas) SetStory(story *model.Story) {
	sc.story = story
	sc.reset()
	sc.Refresh()
}

// SetSpacing sets the gap used by drop repositioning.
func (sc *StoryCanvas) SetSpacing(spacing float64) {
	sc.spacing = spacing
}

func (sc *StoryCanvas) zoom() float32 {
	if sc.story == nil || sc.story.Zoom <= 0 {
		return 1
	}
	return float32(sc.story.Zoom)
}

// origin returns the logical point drawn at the widget's top-left corner.
// Passages may sit at negative coordinates after a row placement or import,
// so the origin follows the map bounds.
func (sc *StoryCanvas) origin() model.Point {
	o := model.Point{Left: -canvasPadding, Top: -canvasPadding}
	if sc.story == nil || len(sc.story.Passages) == 0 {
		return o
	}
	b := model.Bounds(sc.story.Obstacles())
	o.Left = min(o.Left, b.Left-canvasPadding)
	o.Top = min(o.Top, b.Top-canvasPadding)
	return o
}

// ToLogical converts a widget position to story coordinates.
func (sc *StoryCanvas) ToLogical(pos fyne.Position) model.Point {
	o := sc.origin()
	z := float64(sc.zoom())
	return model.Point{Left: float64(pos.X)/z + o.Left, Top: float64(pos.Y)/z + o.Top}
}

// ToScreen converts a story point to a widget position.
func (sc *StoryCanvas) ToScreen(p model.Point) fyne.Position {
	o := sc.origin()
	z := sc.zoom()
	return fyne.NewPos(float32(p.Left-o.Left)*z, float32(p.Top-o.Top)*z)
}

// screenRect converts two widget positions to a rect in zoomed pixels measured
// from the story origin, which is what a Marquee expects.
func (sc *StoryCanvas) screenRect(a, b fyne.Position) model.Rect {
	o := sc.origin()
	z := float64(sc.zoom())
	shift := func(p fyne.Position) model.Point {
		return model.Point{Left: float64(p.X) + o.Left*z, Top: float64(p.Y) + o.Top*z}
	}
	return engine.DragRect(shift(a), shift(b))
}

// passageAt returns the topmost passage under pos.
func (sc *StoryCanvas) passageAt(pos fyne.Position) (model.Passage, bool) {
	if sc.story == nil {
		return model.Passage{}, false
	}
	p := sc.ToLogical(pos)
	hits := engine.HitPassages(sc.story.Passages, model.Rect{Left: p.Left, Top: p.Top})
	if len(hits) == 0 {
		return model.Passage{}, false
	}
	return sc.story.PassageByID(hits[len(hits)-1])
}

func (sc *StoryCanvas) reset() {
	sc.kind = dragNone
	sc.marquee = nil
	sc.preview = nil
}

func (sc *StoryCanvas) changed() {
	sc.Refresh()
	if sc.OnChanged != nil {
		sc.OnChanged()
	}
}

func (sc *StoryCanvas) fail(err error) {
	if sc.OnError != nil {
		sc.OnError(err)
	}
}

// MouseDown records where a gesture starts and whether shift is held.
func (sc *StoryCanvas) MouseDown(ev *desktop.MouseEvent) {
	sc.press = ev.Position
	sc.current = ev.Position
	sc.mode = model.SelectExclusive
	if ev.Modifier&fyne.KeyModifierShift != 0 {
		sc.mode = model.SelectAdditive
	}
	sc.kind = dragNone
}

// MouseUp is required by desktop.Mouseable.
func (sc *StoryCanvas) MouseUp(*desktop.MouseEvent) {}

// Tapped selects the passage under the pointer. Tapping empty canvas clears
// the selection unless shift is held.
func (sc *StoryCanvas) Tapped(ev *fyne.PointEvent) {
	if sc.story == nil {
		return
	}
	hit, ok := sc.passageAt(ev.Position)
	if !ok {
		if sc.mode == model.SelectExclusive {
			change := engine.BeginMarquee(*sc.story, model.SelectExclusive, float64(sc.zoom())).End()
			sc.story.ApplySelection(change)
			sc.changed()
		}
		return
	}
	sc.selectPassage(hit)
	sc.changed()
}

func (sc *StoryCanvas) selectPassage(hit model.Passage) {
	if sc.mode == model.SelectAdditive {
		if hit.Selected {
			sc.story.ApplySelection(model.SelectionChange{Deselected: []string{hit.ID}})
		} else {
			sc.story.ApplySelection(model.SelectionChange{Selected: []string{hit.ID}})
		}
		return
	}
	change := model.SelectionChange{Selected: []string{hit.ID}}
	for _, id := range sc.story.SelectedIDs() {
		if id != hit.ID {
			change.Deselected = append(change.Deselected, id)
		}
	}
	sc.story.ApplySelection(change)
}

// Dragged starts a move when the gesture began on a passage and a marquee
// otherwise, then updates it with the pointer position.
func (sc *StoryCanvas) Dragged(ev *fyne.DragEvent) {
	if sc.story == nil {
		return
	}
	if sc.kind == dragNone {
		if hit, ok := sc.passageAt(sc.press); ok {
			if !hit.Selected {
				sc.selectPassage(hit)
			}
			sc.kind = dragMove
		} else {
			sc.kind = dragMarquee
			sc.marquee = engine.BeginMarquee(*sc.story, sc.mode, float64(sc.zoom()))
			sc.marquee.OnPreview = func(ids []string) {
				sc.preview = make(map[string]bool, len(ids))
				for _, id := range ids {
					sc.preview[id] = true
				}
			}
		}
	}

	sc.current = ev.Position
	if sc.kind == dragMarquee {
		sc.marquee.Update(sc.screenRect(sc.press, sc.current))
	}
	sc.Refresh()
}

// DragEnd commits the marquee selection or the move.
func (sc *StoryCanvas) DragEnd() {
	if sc.story == nil {
		sc.reset()
		return
	}
	switch sc.kind {
	case dragMarquee:
		sc.story.ApplySelection(sc.marquee.End())
	case dragMove:
		z := float64(sc.zoom())
		dx := float64(sc.current.X-sc.press.X) / z
		dy := float64(sc.current.Y-sc.press.Y) / z
		rects, err := engine.MoveSelected(*sc.story, dx, dy, sc.spacing)
		if err != nil {
			sc.fail(err)
		} else {
			sc.story.SetRects(rects)
		}
	}
	sc.reset()
	sc.changed()
}

// moveOffset is the on-screen displacement of selected passages mid-drag.
func (sc *StoryCanvas) moveOffset() fyne.Position {
	if sc.kind != dragMove {
		return fyne.Position{}
	}
	return fyne.NewPos(sc.current.X-sc.press.X, sc.current.Y-sc.press.Y)
}

// ViewportCenter returns the story point at the centre of a scrolled viewport.
func (sc *StoryCanvas) ViewportCenter(offset fyne.Position, size fyne.Size) model.Point {
	return sc.ToLogical(fyne.NewPos(offset.X+size.Width/2, offset.Y+size.Height/2))
}

func (sc *StoryCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newStoryCanvasRenderer(sc)
}

type storyCanvasRenderer struct {
	sc      *StoryCanvas
	objects []fyne.CanvasObject
}

func newStoryCanvasRenderer(sc *StoryCanvas) *storyCanvasRenderer {
	r := &storyCanvasRenderer{sc: sc}
	r.rebuild()
	return r
}

func (r *storyCanvasRenderer) rebuild() {
	r.objects = nil
	sc := r.sc

	bg := canvas.NewRectangle(color.White)
	bg.Resize(r.MinSize().Max(sc.Size()))
	r.objects = append(r.objects, bg)

	if sc.story == nil {
		return
	}
	z := sc.zoom()

	if sc.story.SnapToGrid && sc.story.GridSize > 0 {
		r.drawGrid(bg.Size(), z)
	}

	shift := sc.moveOffset()
	screenOf := func(p model.Passage) (fyne.Position, fyne.Size) {
		pos := sc.ToScreen(model.Point{Left: p.Left, Top: p.Top})
		if p.Selected {
			pos = pos.Add(shift)
		}
		return pos, fyne.NewSize(float32(p.Width)*z, float32(p.Height)*z)
	}

	for _, link := range engine.StoryConnectors(*sc.story) {
		from, _ := sc.story.PassageByID(link.FromID)
		to, _ := sc.story.PassageByID(link.ToID)
		start := sc.ToScreen(link.Start)
		end := sc.ToScreen(link.End)
		if from.Selected {
			start = start.Add(shift)
		}
		if to.Selected {
			end = end.Add(shift)
		}
		line := canvas.NewLine(connectorColor)
		line.StrokeWidth = 1.5
		line.Position1 = start
		line.Position2 = end
		r.objects = append(r.objects, line)

		tip := canvas.NewCircle(connectorColor)
		tip.Resize(fyne.NewSize(6, 6))
		tip.Move(end.Subtract(fyne.NewPos(3, 3)))
		r.objects = append(r.objects, tip)
	}

	for _, p := range sc.story.Passages {
		pos, size := screenOf(p)

		fill := untaggedColor
		if i := export.ColorIndex(p); i >= 0 {
			fill = passageColors[i]
		}
		body := canvas.NewRectangle(fill)
		body.Resize(size)
		body.Move(pos)
		r.objects = append(r.objects, body)

		border := canvas.NewRectangle(color.Transparent)
		border.StrokeColor = borderColor
		border.StrokeWidth = 1
		switch {
		case sc.preview[p.ID]:
			border.StrokeColor = previewColor
			border.StrokeWidth = 3
		case p.Selected:
			border.StrokeColor = selectedColor
			border.StrokeWidth = 3
		}
		border.Resize(size)
		border.Move(pos)
		r.objects = append(r.objects, border)

		if size.Width > 30 && size.Height > 16 {
			label := canvas.NewText(p.Name, color.Black)
			label.TextSize = 11 * z
			label.TextStyle = fyne.TextStyle{Bold: p.Selected}
			label.Move(pos.Add(fyne.NewPos(4, 3)))
			r.objects = append(r.objects, label)
		}
	}

	if sc.kind == dragMarquee {
		band := canvas.NewRectangle(marqueeFill)
		band.StrokeColor = selectedColor
		band.StrokeWidth = 1
		x0, y0 := min(sc.press.X, sc.current.X), min(sc.press.Y, sc.current.Y)
		band.Move(fyne.NewPos(x0, y0))
		band.Resize(fyne.NewSize(max(sc.press.X, sc.current.X)-x0, max(sc.press.Y, sc.current.Y)-y0))
		r.objects = append(r.objects, band)
	}
}

// drawGrid adds faint grid lines aligned with the story's snap grid.
func (r *storyCanvasRenderer) drawGrid(size fyne.Size, z float32) {
	step := float32(r.sc.story.GridSize) * z
	if step < 4 {
		return
	}
	o := r.sc.origin()
	// Grid lines pass through logical multiples of the grid size.
	first := r.sc.ToScreen(model.Point{
		Left: engine.SnapValue(o.Left, r.sc.story.GridSize),
		Top:  engine.SnapValue(o.Top, r.sc.story.GridSize),
	})
	for x := first.X; x < size.Width; x += step {
		l := canvas.NewLine(gridColor)
		l.Position1 = fyne.NewPos(x, 0)
		l.Position2 = fyne.NewPos(x, size.Height)
		r.objects = append(r.objects, l)
	}
	for y := first.Y; y < size.Height; y += step {
		l := canvas.NewLine(gridColor)
		l.Position1 = fyne.NewPos(0, y)
		l.Position2 = fyne.NewPos(size.Width, y)
		r.objects = append(r.objects, l)
	}
}

func (r *storyCanvasRenderer) Layout(size fyne.Size) {
	r.rebuild()
}

func (r *storyCanvasRenderer) MinSize() fyne.Size {
	sc := r.sc
	if sc.story == nil || len(sc.story.Passages) == 0 {
		return fyne.NewSize(400, 300)
	}
	b := model.Bounds(sc.story.Obstacles())
	far := sc.ToScreen(model.Point{Left: b.Right() + canvasPadding, Top: b.Bottom() + canvasPadding})
	return fyne.NewSize(max(far.X, 400), max(far.Y, 300))
}

func (r *storyCanvasRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.sc)
}

func (r *storyCanvasRenderer) Destroy() {}

func (r *storyCanvasRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}
