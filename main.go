package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the rc file")
	server := flag.String("server", "", "job service base URL")
	flag.Parse()

	config := loadConfig(*configPath)
	if *server != "" {
		config.ServerURL = strings.TrimRight(*server, "/")
	}
	if config.LogFile != "" {
		closer, err := openLogFile(config.LogFile, logLevelFromEnv())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			defer closer.Close()
		}
	}

	p := tea.NewProgram(
		initialModel(config, flag.Arg(0)),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func initialModel(config *Config, startPath string) model {
	if config == nil {
		config = defaultConfig()
	}
	store := NewSettingsStore(config.SettingsFile)
	settings := store.Load()

	m := model{
		mode:      ModeStartup,
		config:    config,
		store:     store,
		settings:  settings,
		session:   NewSession(config.MaxUndo, settings.BrushSize, settings.WandTolerance),
		client:    NewJobClient(config.ServerURL, nil),
		ctx:       context.Background(),
		startPath: startPath,
		now:       time.Now,
	}
	if startPath != "" {
		m.mode = ModeNormal
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.startPath != "" {
		return openResultCmd(expandHome(m.startPath))
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case resultLoadedMsg:
		if msg.job {
			m.singleBusy = false
			m.singleJobID = ""
		}
		if err := m.session.Load(msg.img); err != nil {
			m.setError(err)
			return m, nil
		}
		m.session.Viewport().Reset()
		m.mode = ModeNormal
		m.fromStartup = false
		m.resultName = msg.source
		w, h := m.session.Buffers().Size()
		m.errorMessage = ""
		m.successMessage = fmt.Sprintf("Loaded %s (%dx%d)", msg.source, w, h)
		return m, nil

	case jobSubmittedMsg:
		if msg.kind == jobBatch {
			m.batchJobID = msg.id
		} else {
			m.singleJobID = msg.id
		}
		m.jobStatus = JobStatus{Status: JobQueued}
		m.successMessage = fmt.Sprintf("Job %s queued", shortID(msg.id))
		return m, m.pollCmd(msg.kind, msg.id)

	case jobStatusMsg:
		if msg.id != m.jobID(msg.kind) {
			return m, nil
		}
		m.jobStatus = msg.status
		if !msg.status.Terminal() {
			return m, m.pollCmd(msg.kind, msg.id)
		}
		if err := CheckTerminal(msg.status); err != nil {
			m.finishJob(msg.kind)
			m.setError(err)
			return m, nil
		}
		m.successMessage = "Downloading result"
		return m, m.downloadCmd(msg.kind, msg.id, msg.status)

	case jobErrMsg:
		m.finishJob(msg.kind)
		m.setError(msg.err)
		return m, nil

	case batchSavedMsg:
		m.finishJob(jobBatch)
		m.errorMessage = ""
		m.successMessage = fmt.Sprintf("Saved %s (%s)%s", msg.path, humanize.Bytes(uint64(msg.size)), copiedSuffix(msg.copied))
		return m, nil

	case bgLoadedMsg:
		m.bgImage = msg.img
		m.bgPath = msg.path
		m.settings.BgMode = BackgroundImage.String()
		m.errorMessage = ""
		m.successMessage = fmt.Sprintf("Background %s", filepath.Base(msg.path))
		return m, m.saveSettingsCmd()

	case exportedMsg:
		m.errorMessage = ""
		m.successMessage = fmt.Sprintf("Exported %s to %s (%s)%s", msg.what, msg.path, humanize.Bytes(uint64(msg.size)), copiedSuffix(msg.copied))
		return m, nil

	case errMsg:
		m.setError(msg.err)
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help && m.mode != ModeStartup {
		switch msg.String() {
		case "esc", "q", "?":
			m.help = false
			m.helpScroll = 0
		case "j", "down":
			if m.helpScroll < len(helpLines)-1 {
				m.helpScroll++
			}
		case "k", "up":
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		}
		return m, nil
	}

	switch m.mode {
	case ModeStartup:
		return m.handleStartupKey(msg)
	case ModeFileInput:
		return m.handleFileInputKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "o":
		m.promptFile(FileOpOpen)
		m.fromStartup = true
	case "s":
		m.promptFile(FileOpSubmit)
		m.fromStartup = true
	case "B":
		m.promptFile(FileOpBatch)
		m.fromStartup = true
	case "n", "enter":
		m.mode = ModeNormal
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	if msg.Type == tea.KeyEscape {
		s.ClearPolygon()
		m.errorMessage = ""
		m.successMessage = ""
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
	case "?":
		m.help = true
		m.helpScroll = 0

	case "b":
		s.SetTool(ToolBrushErase)
	case "e":
		s.SetTool(ToolBrushRestore)
	case "w":
		s.SetTool(ToolWandErase)
	case "W":
		s.SetTool(ToolWandRestore)
	case "p":
		s.SetTool(ToolPolygonErase)
	case "P":
		s.SetTool(ToolPolygonRestore)
	case " ", "space":
		s.TogglePanHold()

	case "z", "u":
		if s.Undo() {
			m.successMessage = "Undo"
		}
	case "y", "U":
		if s.Redo() {
			m.successMessage = "Redo"
		}
	case "enter":
		if s.CommitPolygon() {
			m.successMessage = "Polygon applied"
		}

	case "[", "]":
		delta := 2.0
		if msg.String() == "[" {
			delta = -2
		}
		s.SetBrushSize(s.BrushSize() + delta)
		m.settings.BrushSize = s.BrushSize()
		return m, m.saveSettingsCmd()
	case "{", "}":
		delta := 5.0
		if msg.String() == "{" {
			delta = -5
		}
		s.SetTolerance(s.Tolerance() + delta)
		m.settings.WandTolerance = s.Tolerance()
		return m, m.saveSettingsCmd()
	case "f", "F":
		delta := 0.5
		if msg.String() == "f" {
			delta = -0.5
		}
		m.settings.Feather = clampFloat(m.settings.Feather+delta, 0, maxFeather)
		return m, m.saveSettingsCmd()
	case "a", "A":
		delta := 0.1
		if msg.String() == "a" {
			delta = -0.1
		}
		m.settings.AlphaBoost = clampFloat(m.settings.AlphaBoost+delta, minAlphaBoost, maxAlphaBoost)
		return m, m.saveSettingsCmd()

	case "+", "=":
		s.Viewport().ZoomBy(keyZoomStep)
	case "-", "_":
		s.Viewport().ZoomBy(1 / keyZoomStep)
	case "0":
		s.Viewport().Reset()

	case "r":
		if s.Loaded() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmResetEdits
		}

	case "o":
		m.promptFile(FileOpOpen)
	case "s":
		if m.singleBusy {
			m.errorMessage = "A job is already running"
			return m, nil
		}
		m.promptFile(FileOpSubmit)
	case "B":
		if m.batchBusy {
			m.errorMessage = "A batch job is already running"
			return m, nil
		}
		m.promptFile(FileOpBatch)
	case "i":
		m.promptFile(FileOpBackground)
	case "g":
		mode, _ := parseBackgroundMode(m.settings.BgMode)
		m.settings.BgMode = mode.next().String()
		m.successMessage = "Background: " + m.settings.BgMode
		return m, m.saveSettingsCmd()

	case "S":
		return m, m.exportCmd(FormatPNG)
	case "J":
		return m, m.exportCmd(FormatJPEG)
	case "c":
		return m, m.compareCmd()
	case "<", ">":
		delta := 10.0
		if msg.String() == "<" {
			delta = -10
		}
		m.settings.ComparePercent = clampFloat(m.settings.ComparePercent+delta, 0, 100)
		return m, m.saveSettingsCmd()
	}
	return m, nil
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEscape:
		if m.fromStartup {
			m.mode = ModeStartup
			m.fromStartup = false
		} else {
			m.mode = ModeNormal
		}
		m.filename = ""
		m.errorMessage = ""
		return m, nil
	case msg.Type == tea.KeyEnter:
		return m.confirmFileInput()
	case msg.Type == tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case msg.String() == "ctrl+u":
		m.filename = ""
	case msg.String() == "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			logger().Warn("read clipboard", "err", err)
			m.errorMessage = "Clipboard unavailable"
			return m, nil
		}
		if m.fileOp == FileOpBatch {
			m.filename = strings.TrimSpace(m.filename + " " + strings.Join(splitPaths(text), " "))
		} else {
			m.filename += cleanClipboardPath(text)
		}
	case msg.Type == tea.KeySpace:
		m.filename += " "
	case msg.Type == tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func (m model) confirmFileInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.filename)
	if input == "" {
		m.errorMessage = "No file given"
		return m, nil
	}

	var cmd tea.Cmd
	switch m.fileOp {
	case FileOpOpen:
		path := expandHome(cleanClipboardPath(input))
		m.successMessage = "Opening " + filepath.Base(path)
		cmd = openResultCmd(path)
	case FileOpSubmit:
		path := expandHome(cleanClipboardPath(input))
		m.singleBusy = true
		m.jobStatus = JobStatus{}
		m.successMessage = "Submitting " + filepath.Base(path)
		cmd = m.submitCmd(jobSingle, []string{path})
	case FileOpBatch:
		paths := splitPaths(input)
		for i := range paths {
			paths[i] = expandHome(paths[i])
		}
		m.batchBusy = true
		m.jobStatus = JobStatus{}
		m.successMessage = fmt.Sprintf("Submitting %d files", len(paths))
		cmd = m.submitCmd(jobBatch, paths)
	case FileOpBackground:
		path := expandHome(cleanClipboardPath(input))
		m.successMessage = "Loading background " + filepath.Base(path)
		cmd = loadBackgroundCmd(path)
	}

	m.mode = ModeNormal
	m.fromStartup = false
	m.filename = ""
	m.errorMessage = ""
	return m, cmd
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmResetEdits:
			if m.session.ResetEdits() {
				m.successMessage = "Edits reset"
			}
		}
		m.mode = ModeNormal
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal || m.help || !m.session.Loaded() {
		return m, nil
	}
	s := m.session
	sp := cellToScreen(msg.X, msg.Y)
	inCanvas := msg.Y >= 0 && msg.Y < m.canvasRows() && msg.X >= 0 && msg.X < m.width
	w, h := s.Buffers().Size()
	p := MapPointer(sp.X, sp.Y, m.rasterBox(), w, h)

	switch msg.Type {
	case tea.MouseWheelUp:
		s.Viewport().ZoomBy(wheelZoomStep)
	case tea.MouseWheelDown:
		s.Viewport().ZoomBy(1 / wheelZoomStep)

	case tea.MouseLeft:
		// Drags arrive as repeated left events while the button is held.
		if m.pointerDown {
			s.PointerMove(p, sp)
			return m, nil
		}
		if !inCanvas {
			return m, nil
		}
		m.pointerDown = true
		now := m.now()
		double := !m.lastClick.IsZero() && now.Sub(m.lastClick) <= doubleClickWindow &&
			msg.X == m.lastClickX && msg.Y == m.lastClickY
		if double && s.Tool().isPolygon() {
			m.lastClick = time.Time{}
			if s.DoubleClick() {
				m.successMessage = "Polygon applied"
			}
			return m, nil
		}
		m.lastClick, m.lastClickX, m.lastClickY = now, msg.X, msg.Y
		s.PointerDown(p, sp)

	case tea.MouseMotion:
		if !inCanvas {
			s.PointerLeave()
			return m, nil
		}
		s.PointerMove(p, sp)

	case tea.MouseRelease:
		m.pointerDown = false
		s.PointerUp()
	}
	return m, nil
}

func (m *model) promptFile(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.filename = ""
	m.errorMessage = ""
}

func (m *model) jobID(kind jobKind) string {
	if kind == jobBatch {
		return m.batchJobID
	}
	return m.singleJobID
}

func (m *model) finishJob(kind jobKind) {
	if kind == jobBatch {
		m.batchBusy = false
		m.batchJobID = ""
	} else {
		m.singleBusy = false
		m.singleJobID = ""
	}
}

func (m *model) setError(err error) {
	m.successMessage = ""
	m.errorMessage = userMessage(err)
	logger().Warn("operation failed", "err", err)
}

// userMessage shortens err to what the status bar should say.
func userMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrJobFailed), errors.Is(err, ErrMissingDownload):
		return err.Error()
	case errors.Is(err, ErrImageTooLarge):
		return "Image too large"
	case errors.Is(err, ErrEmptyFile):
		return "File is empty"
	case errors.Is(err, ErrDecode):
		return ErrDecode.Error()
	case errors.Is(err, os.ErrNotExist):
		return "File not found"
	}
	return err.Error()
}

func (m model) jobOptions() JobOptions {
	return JobOptions{FeatherRadius: m.settings.Feather, AlphaBoost: m.settings.AlphaBoost}
}

func (m model) submitCmd(kind jobKind, paths []string) tea.Cmd {
	client, ctx, opts, maxPixels := m.client, m.ctx, m.jobOptions(), m.config.MaxPixels
	return func() tea.Msg {
		if len(paths) == 0 {
			return jobErrMsg{kind: kind, err: errors.New("no files to submit")}
		}
		for _, p := range paths {
			if err := ValidateImageFile(p, maxPixels); err != nil {
				return jobErrMsg{kind: kind, err: err}
			}
		}
		var (
			id  string
			err error
		)
		if kind == jobBatch {
			id, err = client.SubmitBatch(ctx, paths, opts)
		} else {
			id, err = client.SubmitSingle(ctx, paths[0], opts)
		}
		if err != nil {
			return jobErrMsg{kind: kind, err: err}
		}
		return jobSubmittedMsg{kind: kind, id: id}
	}
}

func (m model) pollCmd(kind jobKind, id string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		status, err := client.Status(ctx, id)
		if err != nil {
			return jobErrMsg{kind: kind, err: err}
		}
		return jobStatusMsg{kind: kind, id: id, status: status}
	})
}

func (m model) downloadCmd(kind jobKind, id string, status JobStatus) tea.Cmd {
	client, ctx, config := m.client, m.ctx, m.config
	return func() tea.Msg {
		data, err := client.Download(ctx, id)
		if err != nil {
			return jobErrMsg{kind: kind, err: err}
		}
		if kind == jobBatch {
			name := filepath.Base(status.Filename)
			if status.Filename == "" {
				name = batchArchiveName
			}
			path, err := writeSaveFile(config, name, data)
			if err != nil {
				return jobErrMsg{kind: kind, err: err}
			}
			return batchSavedMsg{path: path, size: int64(len(data)), copied: copyPath(path)}
		}
		img, err := DecodeImageBytes(data)
		if err != nil {
			return jobErrMsg{kind: kind, err: err}
		}
		source := status.Filename
		if source == "" {
			source = "job " + shortID(id)
		}
		return resultLoadedMsg{img: img, source: source, job: true}
	}
}

func openResultCmd(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := LoadImageFile(path)
		if err != nil {
			return errMsg{err: err}
		}
		return resultLoadedMsg{img: img, source: filepath.Base(path)}
	}
}

func loadBackgroundCmd(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := LoadImageFile(path)
		if err != nil {
			return errMsg{err: err}
		}
		return bgLoadedMsg{img: img, path: path}
	}
}

// exportCmd composes on the event loop, so the raster is never read while
// a tool writes it, and encodes in the background.
func (m model) exportCmd(format ExportFormat) tea.Cmd {
	if !m.session.Loaded() {
		return nil
	}
	img := Compose(m.session.Buffers().Working(), m.settings.Background(m.bgImage), format)
	dir := m.config.SaveDirectory
	return func() tea.Msg {
		path, size, err := ExportFile(dir, format.FileName(), img, format)
		if err != nil {
			return errMsg{err: err}
		}
		path = absPath(path)
		return exportedMsg{path: path, size: size, what: format.FileName(), copied: copyPath(path)}
	}
}

func (m model) compareCmd() tea.Cmd {
	if !m.session.Loaded() {
		return nil
	}
	b := m.session.Buffers()
	img, err := ComposeCompare(b.Original(), b.Working(), m.settings.ComparePercent)
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}
	dir := m.config.SaveDirectory
	return func() tea.Msg {
		path, size, err := ExportFile(dir, compareResultName, img, FormatPNG)
		if err != nil {
			return errMsg{err: err}
		}
		path = absPath(path)
		return exportedMsg{path: path, size: size, what: compareResultName, copied: copyPath(path)}
	}
}

func (m model) saveSettingsCmd() tea.Cmd {
	store, settings := m.store, m.settings
	return func() tea.Msg {
		if err := store.Save(settings); err != nil {
			logger().Warn("settings not saved", "err", err)
		}
		return nil
	}
}

func writeSaveFile(config *Config, name string, data []byte) (string, error) {
	path := config.GetSavePath(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("save %s: %w", name, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	logger().Info("saved download", "path", path, "bytes", len(data))
	return absPath(path), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// copyPath puts path on the clipboard, best effort.
func copyPath(path string) bool {
	if err := writeClipboardText(path); err != nil {
		logger().Warn("copy to clipboard", "err", err)
		return false
	}
	return true
}

func copiedSuffix(copied bool) string {
	if copied {
		return ", path copied"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
