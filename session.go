package main

import "image"

// ScreenPoint is a pointer position in screen units.
type ScreenPoint struct {
	X, Y float64
}

// Session is the editor context every interaction works on: the raster
// pair, history, polygon in progress, viewport and tool settings. It is
// owned by the front end and only ever touched from its event loop.
type Session struct {
	buffers  BufferPair
	history  *History
	polygon  PolygonPath
	viewport Viewport

	tool      Tool
	state     InteractionState
	brushSize float64
	tolerance float64

	lastPoint Point
	hover     Point
	hasHover  bool

	panStartScreen ScreenPoint
	panStartX      float64
	panStartY      float64

	panHold       bool
	toolBeforePan Tool
}

func NewSession(maxUndo int, brushSize, tolerance float64) *Session {
	s := &Session{
		history:  NewHistory(maxUndo),
		viewport: NewViewport(),
		tool:     ToolBrushErase,
	}
	s.SetBrushSize(brushSize)
	s.SetTolerance(tolerance)
	return s
}

// Load installs a new result. History, polygon and pointer state start over.
func (s *Session) Load(img image.Image) error {
	if err := s.buffers.LoadResult(img); err != nil {
		return err
	}
	s.history.Clear()
	s.polygon.Clear()
	s.hasHover = false
	s.state = StateIdle
	w, h := s.buffers.Size()
	logger().Info("result loaded", "width", w, "height", h)
	return nil
}

func (s *Session) Loaded() bool            { return s.buffers.Loaded() }
func (s *Session) Buffers() *BufferPair    { return &s.buffers }
func (s *Session) History() *History       { return s.history }
func (s *Session) Polygon() *PolygonPath   { return &s.polygon }
func (s *Session) Viewport() *Viewport     { return &s.viewport }
func (s *Session) Tool() Tool              { return s.tool }
func (s *Session) State() InteractionState { return s.state }
func (s *Session) BrushSize() float64      { return s.brushSize }
func (s *Session) Tolerance() float64      { return s.tolerance }

// BrushRadius is half the brush size, which is a diameter.
func (s *Session) BrushRadius() float64 { return s.brushSize / 2 }

// Hover returns the last pointer position over the raster, if any.
func (s *Session) Hover() (Point, bool) { return s.hover, s.hasHover }

func (s *Session) SetBrushSize(size float64) {
	if size < minBrushSize {
		size = minBrushSize
	}
	if size > maxBrushSize {
		size = maxBrushSize
	}
	s.brushSize = size
}

func (s *Session) SetTolerance(t float64) {
	if t < 0 {
		t = 0
	}
	if t > maxTolerance {
		t = maxTolerance
	}
	s.tolerance = t
}

// SetTool switches the active tool. An in-progress polygon is kept so the
// user can flip between erase and restore before closing it.
func (s *Session) SetTool(t Tool) {
	if s.state == StateDrawing || s.state == StatePanning {
		s.endDrag()
	}
	s.tool = t
	s.panHold = false
}

// TogglePanHold temporarily selects the pan tool and, on the second call,
// returns to the tool that was active before.
func (s *Session) TogglePanHold() {
	if s.panHold {
		prev := s.toolBeforePan
		s.SetTool(prev)
		return
	}
	prev := s.tool
	s.SetTool(ToolPan)
	s.panHold = true
	s.toolBeforePan = prev
}

func (s *Session) PanHeld() bool { return s.panHold }

// snapshot records the working raster before a mutation.
func (s *Session) snapshot() {
	s.history.Push(s.buffers.working)
}

// PointerDown starts the action of the active tool at raster point p.
func (s *Session) PointerDown(p Point, screen ScreenPoint) {
	if !s.Loaded() {
		return
	}
	s.hover, s.hasHover = p, true

	switch {
	case s.tool == ToolPan:
		s.state = StatePanning
		s.panStartScreen = screen
		s.panStartX, s.panStartY = s.viewport.PanX, s.viewport.PanY

	case s.tool.isBrush():
		s.snapshot()
		StampCircle(&s.buffers, p, s.BrushRadius(), s.tool.EditMode())
		s.state = StateDrawing
		s.lastPoint = p

	case s.tool.isWand():
		if _, ok := s.buffers.Pixel(floorInt(p.X), floorInt(p.Y)); !ok {
			return
		}
		s.snapshot()
		FloodApply(&s.buffers, p, s.tool.EditMode(), s.tolerance)

	case s.tool.isPolygon():
		s.polygon.Add(p)
		s.state = StatePolygonCollecting
	}
}

// PointerMove tracks the hover position and continues drags.
func (s *Session) PointerMove(p Point, screen ScreenPoint) {
	if !s.Loaded() {
		return
	}
	s.hover, s.hasHover = p, true

	switch s.state {
	case StatePanning:
		s.viewport.PanX = s.panStartX + (screen.X - s.panStartScreen.X)
		s.viewport.PanY = s.panStartY + (screen.Y - s.panStartScreen.Y)
	case StateDrawing:
		Stroke(&s.buffers, s.lastPoint, p, s.BrushRadius(), s.tool.EditMode())
		s.lastPoint = p
	}
}

// PointerUp ends a stroke or pan.
func (s *Session) PointerUp() {
	s.endDrag()
}

// PointerLeave drops the hover preview unless a stroke is in progress.
func (s *Session) PointerLeave() {
	if s.state != StateDrawing {
		s.hasHover = false
	}
}

// DoubleClick closes the polygon when a polygon tool is active.
func (s *Session) DoubleClick() bool {
	return s.CommitPolygon()
}

func (s *Session) endDrag() {
	switch s.state {
	case StateDrawing, StatePanning:
		s.state = StateIdle
		s.lastPoint = Point{}
	}
	if s.polygon.Len() > 0 {
		s.state = StatePolygonCollecting
	}
}

// CommitPolygon fills the current polygon with the active polygon tool.
// It reports whether anything was committed.
func (s *Session) CommitPolygon() bool {
	if !s.Loaded() || !s.tool.isPolygon() || !s.polygon.CanCommit() {
		return false
	}
	s.snapshot()
	CommitPolygon(&s.buffers, &s.polygon, s.tool.EditMode())
	s.state = StateIdle
	return true
}

// ClearPolygon discards in-progress points without committing.
func (s *Session) ClearPolygon() {
	s.polygon.Clear()
	if s.state == StatePolygonCollecting {
		s.state = StateIdle
	}
}

func (s *Session) Undo() bool {
	if !s.Loaded() {
		return false
	}
	prev, ok := s.history.Undo(s.buffers.working)
	if !ok {
		return false
	}
	s.buffers.replaceWorking(prev)
	return true
}

func (s *Session) Redo() bool {
	if !s.Loaded() {
		return false
	}
	next, ok := s.history.Redo(s.buffers.working)
	if !ok {
		return false
	}
	s.buffers.replaceWorking(next)
	return true
}

// ResetEdits brings the working raster back to the original, undoably.
func (s *Session) ResetEdits() bool {
	if !s.Loaded() {
		return false
	}
	s.snapshot()
	s.buffers.resetWorking()
	s.ClearPolygon()
	return true
}
