package design

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type Tool string

const (
	ToolText   Tool = "text"
	ToolDraw   Tool = "draw"
	ToolEraser Tool = "eraser"
	ToolMove   Tool = "move"
	ToolCircle Tool = "shape-circle"
	ToolSquare Tool = "shape-square"
	ToolLine   Tool = "shape-line"
	ToolColor  Tool = "color"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolText, ToolDraw, ToolEraser, ToolMove, ToolCircle, ToolSquare, ToolLine, ToolColor:
		return true
	}
	return false
}

// ShapeKind returns the shape a shape tool creates.
func (t Tool) ShapeKind() (ShapeKind, bool) {
	kind, ok := strings.CutPrefix(string(t), "shape-")
	return ShapeKind(kind), ok
}

func (t Tool) drawsStrokes() bool { return t == ToolDraw || t == ToolEraser }

// State is the gesture state of the editor.
type State int

const (
	Idle State = iota
	DrawingStroke
	ErasingStroke
	DraggingText
	DraggingShape
	SizingNewShape
)

func (s State) String() string {
	switch s {
	case DrawingStroke:
		return "drawing-stroke"
	case ErasingStroke:
		return "erasing-stroke"
	case DraggingText:
		return "dragging-text"
	case DraggingShape:
		return "dragging-shape"
	case SizingNewShape:
		return "sizing-new-shape"
	}
	return "idle"
}

// DragSession is the transient state of one pointer gesture.
type DragSession struct {
	State   State
	Start   Point
	Last    Point
	Points  []Point // stroke or eraser path
	Origin  Point   // text position when the drag started
	Shape   int     // index of the dragged shape
	Draft   Shape   // shape being sized
	Changed bool
}

type HistoryMode string

const (
	// HistoryDual keeps one history for text and shapes and one for drawings;
	// undo picks by the active tool.
	HistoryDual HistoryMode = "dual"
	// HistoryUnified keeps one history of every edit; undo reverts the latest.
	HistoryUnified HistoryMode = "unified"
)

type EditKind string

const (
	EditTextShape EditKind = "text-shape"
	EditDrawing   EditKind = "drawing"
)

// ToolProps are the drawing tool settings.
type ToolProps struct {
	Color string  `json:"drawingColor"`
	Size  float64 `json:"drawingSize"`
	Cap   Cap     `json:"brushType"`
}

type textShapeSnapshot struct {
	Text       TextLayer
	Shapes     []Shape
	Background string
}

type taggedEdit struct {
	Kind EditKind
	Doc  Document
}

type Options struct {
	Width, Height int
	Mode          HistoryMode
	Limit         int // history entries kept, 0 for unbounded
	Measurer      TextMeasurer
	NewID         func() string
}

// Editor owns one design document and its gesture state machine.
type Editor struct {
	mu sync.Mutex

	doc      Document
	tool     Tool
	props    ToolProps
	drag     *DragSession
	selected int
	width    float64
	height   float64
	mode     HistoryMode
	limit    int
	measurer TextMeasurer
	newID    func() string

	textShapes *History[textShapeSnapshot]
	drawings   *History[[]Drawing]
	unified    *History[taggedEdit]
}

func NewEditor(opts Options) *Editor {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Mode != HistoryUnified {
		opts.Mode = HistoryDual
	}
	if opts.Measurer == nil {
		opts.Measurer = approxMeasurer{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	e := &Editor{
		doc:      DefaultDocument(),
		tool:     ToolText,
		props:    ToolProps{Color: "#000000", Size: 5, Cap: CapRound},
		selected: -1,
		width:    float64(opts.Width),
		height:   float64(opts.Height),
		mode:     opts.Mode,
		limit:    opts.Limit,
		measurer: opts.Measurer,
		newID:    opts.NewID,
	}
	e.resetHistoriesLocked()
	return e
}

func (e *Editor) resetHistoriesLocked() {
	e.textShapes = NewHistory(e.textShapeSnapshotLocked(), e.limit)
	e.drawings = NewHistory(e.doc.Drawings, e.limit)
	e.unified = NewHistory(taggedEdit{Kind: EditTextShape, Doc: e.doc}, e.limit)
}

func (e *Editor) textShapeSnapshotLocked() textShapeSnapshot {
	return textShapeSnapshot{Text: e.doc.Text, Shapes: e.doc.Shapes, Background: e.doc.Background}
}

// SetMeasurer replaces the text measurer used for the text hit box.
func (e *Editor) SetMeasurer(m TextMeasurer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m != nil {
		e.measurer = m
	}
}

// ─────────────────────────────────────────────────────────────
// Pointer gestures
// ─────────────────────────────────────────────────────────────

func (e *Editor) inBounds(p Point) bool {
	return p.X >= 0 && p.X <= e.width && p.Y >= 0 && p.Y <= e.height
}

// PointerDown starts a gesture for the active tool. Points outside the
// canvas are ignored.
func (e *Editor) PointerDown(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerUpLocked()
	if !e.inBounds(p) {
		return
	}

	switch e.tool {
	case ToolDraw:
		e.drag = &DragSession{State: DrawingStroke, Start: p, Last: p, Points: []Point{p}}
	case ToolEraser:
		e.drag = &DragSession{State: ErasingStroke, Start: p, Last: p, Points: []Point{p}}
		e.eraseLocked(p)
	case ToolText:
		if textHit(e.doc.Text, e.measurer, p) {
			e.drag = &DragSession{State: DraggingText, Start: p, Last: p, Origin: e.doc.Text.Position}
		}
	case ToolMove:
		if i := HitShape(e.doc.Shapes, p); i >= 0 {
			e.selected = i
			e.drag = &DragSession{State: DraggingShape, Start: p, Last: p, Shape: i}
		}
	case ToolCircle, ToolSquare, ToolLine:
		kind, _ := e.tool.ShapeKind()
		e.drag = &DragSession{State: SizingNewShape, Start: p, Last: p, Draft: NewShape(kind, p, e.props.Color)}
	}
}

// PointerMove updates the active gesture. Leaving the canvas ends it as PointerUp would.
func (e *Editor) PointerMove(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return
	}
	if !e.inBounds(p) {
		e.pointerUpLocked()
		return
	}

	d := e.drag
	switch d.State {
	case DrawingStroke:
		d.Points = append(d.Points, p)
	case ErasingStroke:
		d.Points = append(d.Points, p)
		e.eraseLocked(p)
	case DraggingText:
		to := d.Origin.Add(p.Sub(d.Start))
		if to != e.doc.Text.Position {
			e.doc = Reduce(e.doc, MoveText{To: to})
			d.Changed = true
		}
	case DraggingShape:
		if by := p.Sub(d.Last); by != (Point{}) {
			e.doc = Reduce(e.doc, MoveShape{Index: d.Shape, By: by})
			d.Changed = true
		}
	case SizingNewShape:
		d.Draft = d.Draft.SizeTo(p)
	}
	d.Last = p
}

func (e *Editor) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerUpLocked()
}

// PointerLeave is treated as PointerUp.
func (e *Editor) PointerLeave() { e.PointerUp() }

func (e *Editor) pointerUpLocked() {
	d := e.drag
	if d == nil {
		return
	}
	e.drag = nil

	switch d.State {
	case DrawingStroke:
		if len(d.Points) > 1 {
			e.doc = Reduce(e.doc, AddDrawing{Drawing: Drawing{
				ID:     e.newID(),
				Points: slices.Clone(d.Points),
				Color:  e.props.Color,
				Width:  e.props.Size,
				Cap:    e.props.Cap,
			}})
			e.commitLocked(EditDrawing)
		}
	case ErasingStroke:
		if d.Changed {
			e.commitLocked(EditDrawing)
		}
	case DraggingText, DraggingShape:
		if d.Changed {
			e.commitLocked(EditTextShape)
		}
	case SizingNewShape:
		if d.Draft.Valid() {
			shape := d.Draft
			shape.ID = e.newID()
			e.doc = Reduce(e.doc, AddShape{Shape: shape})
			e.selected = len(e.doc.Shapes) - 1
			e.commitLocked(EditTextShape)
		}
	}
}

func (e *Editor) eraseLocked(p Point) {
	before := len(e.doc.Drawings)
	e.doc = Reduce(e.doc, EraseAt{At: p, Radius: e.props.Size * 2})
	if len(e.doc.Drawings) != before {
		e.drag.Changed = true
	}
}

// Gesture replays a whole pointer gesture with tool, then restores the
// previous tool. The first point is the pointer-down position.
func (e *Editor) Gesture(tool Tool, points ...Point) error {
	if !tool.Valid() {
		return domain.NewValidationError("tool", fmt.Sprintf("unknown tool %q", tool))
	}
	if len(points) == 0 {
		return domain.NewValidationError("points", "a gesture needs at least one point")
	}
	prev := e.Tool()
	e.SetTool(tool)
	defer e.SetTool(prev)

	e.PointerDown(points[0])
	for _, p := range points[1:] {
		e.PointerMove(p)
	}
	e.PointerUp()
	return nil
}

// ─────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────

func (e *Editor) commitLocked(kind EditKind) {
	if e.mode == HistoryUnified {
		e.unified.Push(taggedEdit{Kind: kind, Doc: e.doc})
		return
	}
	if kind == EditDrawing {
		e.drawings.Push(e.doc.Drawings)
		return
	}
	e.textShapes.Push(e.textShapeSnapshotLocked())
}

// Undo reverts one committed edit. In dual mode the drawing history is used
// while the draw or eraser tool is active, the text+shape history otherwise.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerUpLocked()
	return e.stepLocked(true)
}

func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerUpLocked()
	return e.stepLocked(false)
}

func (e *Editor) stepLocked(back bool) bool {
	switch {
	case e.mode == HistoryUnified:
		entry, ok := step(e.unified, back)
		if !ok {
			return false
		}
		e.doc = entry.Doc
	case e.tool.drawsStrokes():
		drawings, ok := step(e.drawings, back)
		if !ok {
			return false
		}
		e.doc = Reduce(e.doc, SetDrawings{Drawings: drawings})
	default:
		snap, ok := step(e.textShapes, back)
		if !ok {
			return false
		}
		e.doc = Reduce(e.doc, Restore{Text: snap.Text, Shapes: snap.Shapes, Background: snap.Background})
	}
	if e.selected >= len(e.doc.Shapes) {
		e.selected = -1
	}
	return true
}

func step[T any](h *History[T], back bool) (T, bool) {
	if back {
		return h.Undo()
	}
	return h.Redo()
}

func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.mode == HistoryUnified:
		return e.unified.CanUndo()
	case e.tool.drawsStrokes():
		return e.drawings.CanUndo()
	}
	return e.textShapes.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.mode == HistoryUnified:
		return e.unified.CanRedo()
	case e.tool.drawsStrokes():
		return e.drawings.CanRedo()
	}
	return e.textShapes.CanRedo()
}

// ClearAll resets the document to the default and makes it the new root of
// every history.
func (e *Editor) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = nil
	e.selected = -1
	e.doc = Reduce(e.doc, Clear{})
	e.resetHistoriesLocked()
}

// ─────────────────────────────────────────────────────────────
// Properties
// ─────────────────────────────────────────────────────────────

// SetTool switches tools, finishing any gesture in progress.
func (e *Editor) SetTool(t Tool) error {
	if !t.Valid() {
		return domain.NewValidationError("tool", fmt.Sprintf("unknown tool %q", t))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerUpLocked()
	e.tool = t
	return nil
}

func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

func (e *Editor) SetDrawingColor(c string) error {
	if !validColor(c) {
		return domain.NewValidationError("drawingColor", fmt.Sprintf("invalid color %q", c))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props.Color = c
	return nil
}

func (e *Editor) SetDrawingSize(size float64) error {
	if size <= 0 || size > 100 {
		return domain.NewValidationError("drawingSize", "size must be between 0 and 100")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props.Size = size
	return nil
}

func (e *Editor) SetBrushCap(c Cap) error {
	if c != CapRound && c != CapSquare {
		return domain.NewValidationError("brushType", fmt.Sprintf("unknown brush %q", c))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props.Cap = c
	return nil
}

func (e *Editor) Props() ToolProps {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props
}

// UpdateText applies patch to the text layer and commits it.
func (e *Editor) UpdateText(patch TextPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := patch.apply(e.doc.Text)
	if err := validateText(t); err != nil {
		return err
	}
	e.pointerUpLocked()
	e.doc = Reduce(e.doc, SetText{Text: t})
	e.commitLocked(EditTextShape)
	return nil
}

// ApplyGradientPreset enables the named gradient on the text.
func (e *Editor) ApplyGradientPreset(name string) error {
	preset, ok := findPreset(name)
	if !ok {
		return fmt.Errorf("gradient preset %q: %w", name, domain.ErrNotFound)
	}
	return e.UpdateText(TextPatch{Gradient: &Gradient{Enabled: true, Colors: preset.Colors, Angle: 90}})
}

// SetBackground changes the editor-only background.
func (e *Editor) SetBackground(c string) error {
	if !validColor(c) {
		return domain.NewValidationError("backgroundColor", fmt.Sprintf("invalid color %q", c))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = Reduce(e.doc, SetBackground{Color: c})
	e.commitLocked(EditTextShape)
	return nil
}

// DeleteSelected removes the selected shape.
func (e *Editor) DeleteSelected() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected < 0 || e.selected >= len(e.doc.Shapes) {
		return fmt.Errorf("no shape selected: %w", domain.ErrNotFound)
	}
	e.doc = Reduce(e.doc, DeleteShape{Index: e.selected})
	e.selected = -1
	e.commitLocked(EditTextShape)
	return nil
}

// Resize sets the canvas size and recenters text that fell outside it.
func (e *Editor) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return domain.NewValidationError("size", "canvas size must be positive")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width, e.height = float64(w), float64(h)
	pos := e.doc.Text.Position
	if pos.X > e.width {
		pos.X = e.width / 2
	}
	if pos.Y > e.height {
		pos.Y = e.height / 2
	}
	if pos != e.doc.Text.Position {
		e.doc = Reduce(e.doc, MoveText{To: pos})
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// Read side
// ─────────────────────────────────────────────────────────────

func (e *Editor) Document() Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

func (e *Editor) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.width), int(e.height)
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return Idle
	}
	return e.drag.State
}

// Selected returns the index of the selected shape.
func (e *Editor) Selected() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected >= 0
}

// View is everything the UI needs to draw the editor.
type View struct {
	Document Document    `json:"document"`
	Tool     Tool        `json:"tool"`
	Props    ToolProps   `json:"props"`
	State    string      `json:"state"`
	Selected int         `json:"selected"`
	CanUndo  bool        `json:"canUndo"`
	CanRedo  bool        `json:"canRedo"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Mode     HistoryMode `json:"historyMode"`
	Stroke   []Point     `json:"stroke,omitempty"`
	Draft    *Shape      `json:"draft,omitempty"`
}

func (e *Editor) View() View {
	canUndo, canRedo := e.CanUndo(), e.CanRedo()
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{
		Document: e.doc,
		Tool:     e.tool,
		Props:    e.props,
		State:    Idle.String(),
		Selected: e.selected,
		CanUndo:  canUndo,
		CanRedo:  canRedo,
		Width:    int(e.width),
		Height:   int(e.height),
		Mode:     e.mode,
	}
	if d := e.drag; d != nil {
		v.State = d.State.String()
		switch d.State {
		case DrawingStroke, ErasingStroke:
			v.Stroke = slices.Clone(d.Points)
		case SizingNewShape:
			draft := d.Draft
			v.Draft = &draft
		}
	}
	return v
}
