package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// Rows below the canvas: the tool line and the status line.
	statusRows = 2

	maxEdgeSteps = 4096
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	vertexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	edgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	ringStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	welcomeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 3)

	checkerLight = colorful.Color{R: 0.80, G: 0.80, B: 0.80}
	checkerDark  = colorful.Color{R: 0.60, G: 0.60, B: 0.60}
)

// Each terminal cell shows two raster samples stacked vertically, so screen
// units are one column wide and half a row tall.
func cellToScreen(col, row int) ScreenPoint {
	return ScreenPoint{X: float64(col) + 0.5, Y: float64(row)*2 + 1}
}

func screenToCell(x, y float64) (int, int) {
	return floorInt(x), floorInt(y / 2)
}

func (m model) canvasRows() int {
	rows := m.height - statusRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m model) canvasArea() Box {
	return Box{W: float64(m.width), H: float64(m.canvasRows() * 2)}
}

// rasterBox is where the working raster is drawn right now.
func (m model) rasterBox() Box {
	w, h := m.session.Buffers().Size()
	return m.session.Viewport().Layout(m.canvasArea(), w, h)
}

func (m model) View() string {
	if m.help && m.mode != ModeStartup {
		return m.helpView()
	}
	if m.mode == ModeStartup {
		return m.startupView()
	}

	var result strings.Builder
	for _, line := range m.renderCanvas() {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.fitLine(infoStyle, m.infoLine()))
	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) startupView() string {
	text := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render("cutout"),
		"",
		"'o' Open a cut-out image",
		"'s' Submit a photo for background removal",
		"'B' Submit a batch of photos",
		"'n' Start without an image",
		"'q' Quit",
		"",
		hintStyle.Render("Job service: " + m.client.BaseURL()),
	}, "\n")
	box := welcomeStyle.Render(text)
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// cellKey addresses one terminal cell of the canvas.
type cellKey struct{ col, row int }

func (m model) renderCanvas() []string {
	width, rows := m.width, m.canvasRows()
	if width < 1 {
		width = 1
	}
	lines := make([]string, rows)

	if !m.session.Loaded() {
		blank := strings.Repeat(" ", width)
		for i := range lines {
			lines[i] = blank
		}
		hint := "No result loaded: 'o' opens an image, 's' submits one to the job service"
		lines[rows/2] = lipgloss.PlaceHorizontal(width, lipgloss.Center, hintStyle.Render(hint))
		return lines
	}

	box := m.rasterBox()
	rw, rh := m.session.Buffers().Size()
	backdrop := m.previewBackdrop(rw, rh)
	overlay := m.overlayCells(box, rw, rh, width, rows)

	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col := 0; col < width; col++ {
			if glyph, ok := overlay[cellKey{col, row}]; ok {
				line.WriteString(glyph)
				continue
			}
			top, topOK := m.sampleAt(float64(col)+0.5, float64(row*2)+0.5, box, rw, rh, backdrop)
			bottom, bottomOK := m.sampleAt(float64(col)+0.5, float64(row*2)+1.5, box, rw, rh, backdrop)
			line.WriteString(halfBlock(top, topOK, bottom, bottomOK))
		}
		lines[row] = line.String()
	}
	return lines
}

// sampleAt returns the displayed colour of the raster under screen point
// (sx, sy), or false when the point is outside the raster.
func (m model) sampleAt(sx, sy float64, box Box, rw, rh int, backdrop func(x, y int, sx, sy float64) colorful.Color) (colorful.Color, bool) {
	if sx < box.X || sy < box.Y || sx >= box.X+box.W || sy >= box.Y+box.H {
		return colorful.Color{}, false
	}
	p := MapPointer(sx, sy, box, rw, rh)
	x, y := floorInt(p.X), floorInt(p.Y)
	px, ok := m.session.Buffers().Pixel(x, y)
	if !ok {
		return colorful.Color{}, false
	}
	under := backdrop(x, y, sx, sy)
	if px.A == 0 {
		return under, true
	}
	c := toColorful(px)
	if px.A == 255 {
		return c, true
	}
	return under.BlendRgb(c, float64(px.A)/255), true
}

// previewBackdrop is what shows through transparent pixels: the chosen
// background colour or gradient, a checkerboard otherwise.
func (m model) previewBackdrop(rw, rh int) func(x, y int, sx, sy float64) colorful.Color {
	checker := func(_, _ int, sx, sy float64) colorful.Color {
		if (floorInt(sx/2)+floorInt(sy/2))%2 == 0 {
			return checkerLight
		}
		return checkerDark
	}
	mode, _ := parseBackgroundMode(m.settings.BgMode)
	switch mode {
	case BackgroundColor:
		c, err := colorful.Hex(m.settings.BgColor)
		if err != nil {
			return checker
		}
		return func(int, int, float64, float64) colorful.Color { return c }
	case BackgroundGradient:
		a, errA := colorful.Hex(m.settings.GradientA)
		b, errB := colorful.Hex(m.settings.GradientB)
		if errA != nil || errB != nil {
			return checker
		}
		// Projection onto the top-left to bottom-right diagonal, as in export.
		den := float64(rw*rw + rh*rh)
		return func(x, y int, _, _ float64) colorful.Color {
			t := (float64(x)*float64(rw) + float64(y)*float64(rh)) / den
			return a.BlendRgb(b, clampFloat(t, 0, 1))
		}
	}
	return checker
}

func halfBlock(top colorful.Color, topOK bool, bottom colorful.Color, bottomOK bool) string {
	switch {
	case topOK && bottomOK:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(top.Clamped().Hex())).
			Background(lipgloss.Color(bottom.Clamped().Hex())).
			Render("▀")
	case topOK:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(top.Clamped().Hex())).Render("▀")
	case bottomOK:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(bottom.Clamped().Hex())).Render("▄")
	}
	return " "
}

// overlayCells marks the polygon in progress and the brush outline.
func (m model) overlayCells(box Box, rw, rh, width, rows int) map[cellKey]string {
	cells := make(map[cellKey]string)
	put := func(col, row int, glyph string) {
		if col >= 0 && col < width && row >= 0 && row < rows {
			cells[cellKey{col, row}] = glyph
		}
	}

	s := m.session
	if hover, ok := s.Hover(); ok && s.Tool().isBrush() {
		cx, cy := ScreenFromRaster(hover, box, rw, rh)
		radius := s.BrushRadius() * box.W / float64(rw)
		if radius < 1 {
			col, row := screenToCell(cx, cy)
			put(col, row, ringStyle.Render("+"))
		} else {
			c0, r0 := screenToCell(cx-radius-1, cy-radius-1)
			c1, r1 := screenToCell(cx+radius+1, cy+radius+1)
			c0, r0 = max(c0, 0), max(r0, 0)
			c1, r1 = min(c1, width-1), min(r1, rows-1)
			for row := r0; row <= r1; row++ {
				for col := c0; col <= c1; col++ {
					p := cellToScreen(col, row)
					if math.Abs(math.Hypot(p.X-cx, p.Y-cy)-radius) <= 1 {
						put(col, row, ringStyle.Render("·"))
					}
				}
			}
		}
	}

	points := s.Polygon().Points()
	for i := 1; i < len(points); i++ {
		ax, ay := ScreenFromRaster(points[i-1], box, rw, rh)
		bx, by := ScreenFromRaster(points[i], box, rw, rh)
		steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay)/2)))
		steps = min(steps, maxEdgeSteps)
		for j := 1; j < steps; j++ {
			t := float64(j) / float64(steps)
			col, row := screenToCell(ax+(bx-ax)*t, ay+(by-ay)*t)
			put(col, row, edgeStyle.Render("·"))
		}
	}
	for _, p := range points {
		col, row := screenToCell(ScreenFromRaster(p, box, rw, rh))
		put(col, row, vertexStyle.Render("◆"))
	}
	return cells
}

func (m model) infoLine() string {
	s := m.session
	tool := s.Tool().String()
	if s.PanHeld() {
		tool += " (hold)"
	}
	parts := []string{
		"Tool: " + tool,
		fmt.Sprintf("Brush: %.0f", s.BrushSize()),
		fmt.Sprintf("Tol: %.0f", s.Tolerance()),
		fmt.Sprintf("Zoom: %.0f%%", s.Viewport().Scale*100),
		fmt.Sprintf("Undo: %d/%d", s.History().UndoDepth(), s.History().RedoDepth()),
		"Bg: " + m.settings.BgMode,
		fmt.Sprintf("Compare: %.0f%%", m.settings.ComparePercent),
		fmt.Sprintf("Feather: %.1f Boost: %.1f", m.settings.Feather, m.settings.AlphaBoost),
	}
	if s.Loaded() {
		w, h := s.Buffers().Size()
		name := m.resultName
		if name == "" {
			name = "result"
		}
		parts = append([]string{fmt.Sprintf("%s %dx%d", name, w, h)}, parts...)
	}
	if n := s.Polygon().Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("Points: %d", n))
	}
	if m.singleBusy || m.batchBusy {
		parts = append(parts, m.jobLine())
	}
	return strings.Join(parts, " | ")
}

func (m model) jobLine() string {
	st := m.jobStatus
	if st.Status == "" {
		return "Job: submitting"
	}
	line := fmt.Sprintf("Job: %s %.0f%%", st.Status, st.ClampedProgress())
	if st.Stage != "" {
		line += " " + st.Stage
	}
	return line
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeFileInput:
		prompt := map[FileOperation]string{
			FileOpOpen:       "Open image",
			FileOpSubmit:     "Remove background from",
			FileOpBatch:      "Batch files (space or comma separated)",
			FileOpBackground: "Background image",
		}[m.fileOp]
		line := fmt.Sprintf("%s: %s█ | Enter=confirm, Ctrl+V=paste, Esc=cancel", prompt, m.filename)
		if m.errorMessage != "" {
			return m.fitLine(errorStyle, "ERROR: "+m.errorMessage+" | "+line)
		}
		return m.fitLine(statusStyle, line)
	case ModeConfirm:
		message := "Quit cutout? (y/n)"
		if m.confirmAction == ConfirmResetEdits {
			message = "Reset all edits to the loaded result? (y/n)"
		}
		return m.fitLine(statusStyle, message)
	}

	switch {
	case m.errorMessage != "":
		return m.fitLine(errorStyle, "ERROR: "+m.errorMessage)
	case m.successMessage != "":
		return m.fitLine(successStyle, m.successMessage)
	}
	hint := "? for help | q to quit"
	if !m.session.Loaded() {
		hint = "o open | s submit | " + hint
	} else if s := m.session.State(); s != StateIdle {
		hint = s.String() + " | " + hint
	}
	return m.fitLine(statusStyle, hint)
}

// fitLine renders text on a single line exactly as wide as the terminal.
func (m model) fitLine(style lipgloss.Style, text string) string {
	if m.width <= 0 {
		return style.Render(text)
	}
	return style.Copy().Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(text)
}

var helpLines = []string{
	"cutout help",
	"===========",
	"",
	"Tools:",
	"------",
	"  b / e            Brush erase / brush restore",
	"  w / W            Magic wand erase / restore",
	"  p / P            Polygon erase / restore",
	"  space            Toggle temporary pan tool",
	"  [ / ]            Brush size -2 / +2",
	"  { / }            Wand tolerance -5 / +5",
	"",
	"Mouse:",
	"------",
	"  drag             Paint with the brush, or pan",
	"  click            Wand fill, or add a polygon point",
	"  double click     Close the polygon",
	"  wheel            Zoom in / out",
	"",
	"Polygon:",
	"--------",
	"  Enter            Apply the polygon (3 points or more)",
	"  Esc              Discard the polygon points",
	"",
	"View:",
	"-----",
	"  + / -            Zoom in / out",
	"  0                Reset zoom and pan",
	"",
	"Edits:",
	"------",
	"  z / u            Undo",
	"  y / U            Redo",
	"  r                Reset all edits",
	"",
	"Files and jobs:",
	"---------------",
	"  o                Open an image as the result to edit",
	"  s                Submit a photo to the background removal service",
	"  B                Submit several photos as a batch (saved as a zip)",
	"  f / F            Feather radius -0.5 / +0.5 for new jobs",
	"  a / A            Alpha boost -0.1 / +0.1 for new jobs",
	"",
	"Export:",
	"-------",
	"  g                Cycle background: none, color, gradient, image",
	"  i                Choose a background image",
	"  S                Export result.png",
	"  J                Export result.jpg",
	"  c                Export compare.png (original left of the split)",
	"  < / >            Compare split -10% / +10%",
	"",
	"General:",
	"--------",
	"  ?                Toggle this help screen",
	"  q / Ctrl+C       Quit",
	"",
	"In the file prompt Ctrl+V pastes a path from the clipboard.",
}

func (m model) helpView() string {
	visibleHeight := m.height - 1
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	startLine := m.helpScroll
	if startLine > len(helpLines)-visibleHeight {
		startLine = len(helpLines) - visibleHeight
	}
	if startLine < 0 {
		startLine = 0
	}
	endLine := startLine + visibleHeight
	if endLine > len(helpLines) {
		endLine = len(helpLines)
	}

	result := strings.Join(helpLines[startLine:endLine], "\n")
	result += "\n" + hintStyle.Render(fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines)))
	return result
}

// toColorful converts an 8-bit colour for blending.
func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
