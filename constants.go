package main

import "time"

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpOpen FileOperation = iota
	FileOpSubmit
	FileOpBatch
	FileOpBackground
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmResetEdits
)

// Tool is the active editing tool. Exactly one is active at a time.
type Tool int

const (
	ToolBrushErase Tool = iota
	ToolBrushRestore
	ToolWandErase
	ToolWandRestore
	ToolPolygonErase
	ToolPolygonRestore
	ToolPan
)

var toolNames = [...]string{
	ToolBrushErase:     "brush-erase",
	ToolBrushRestore:   "brush-restore",
	ToolWandErase:      "wand-erase",
	ToolWandRestore:    "wand-restore",
	ToolPolygonErase:   "polygon-erase",
	ToolPolygonRestore: "polygon-restore",
	ToolPan:            "pan",
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

func (t Tool) isBrush() bool   { return t == ToolBrushErase || t == ToolBrushRestore }
func (t Tool) isWand() bool    { return t == ToolWandErase || t == ToolWandRestore }
func (t Tool) isPolygon() bool { return t == ToolPolygonErase || t == ToolPolygonRestore }

// EditMode returns whether the tool removes or brings back pixels.
func (t Tool) EditMode() EditMode {
	switch t {
	case ToolBrushRestore, ToolWandRestore, ToolPolygonRestore:
		return EditRestore
	default:
		return EditErase
	}
}

// EditMode selects between clearing alpha and copying pixels back from the
// original raster.
type EditMode int

const (
	EditErase EditMode = iota
	EditRestore
)

func (m EditMode) String() string {
	if m == EditRestore {
		return "restore"
	}
	return "erase"
}

// InteractionState is the pointer state of the editor session.
type InteractionState int

const (
	StateIdle InteractionState = iota
	StateDrawing
	StatePanning
	StatePolygonCollecting
)

func (s InteractionState) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StatePanning:
		return "panning"
	case StatePolygonCollecting:
		return "polygon-collecting"
	default:
		return "idle"
	}
}

const (
	minScale      = 0.2
	maxScale      = 5.0
	keyZoomStep   = 1.2
	wheelZoomStep = 1.1

	defaultMaxUndo   = 25
	defaultMaxPixels = 40_000_000

	minBrushSize = 2
	maxBrushSize = 400
	maxTolerance = 100

	maxFeather    = 20
	minAlphaBoost = 0.1
	maxAlphaBoost = 3

	defaultPollInterval = 1100 * time.Millisecond
	doubleClickWindow   = 400 * time.Millisecond

	jpegQuality = 92

	pngResultName     = "result.png"
	jpegResultName    = "result.jpg"
	compareResultName = "compare.png"
	batchArchiveName  = "removed-backgrounds.zip"
)
