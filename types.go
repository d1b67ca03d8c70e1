package main

import (
	"context"
	"image"
	"time"
)

type model struct {
	width      int
	height     int
	mode       Mode
	help       bool
	helpScroll int

	config   *Config
	store    *SettingsStore
	settings Settings
	session  *Session
	client   *JobClient
	ctx      context.Context

	// bgImage is the decoded background layer, nil until loaded.
	bgImage image.Image
	bgPath  string

	fileOp        FileOperation
	filename      string
	fromStartup   bool
	confirmAction ConfirmAction

	// resultName labels the loaded result in the status bar.
	resultName string

	errorMessage   string
	successMessage string

	// One in-flight job per surface.
	singleBusy  bool
	batchBusy   bool
	singleJobID string
	batchJobID  string
	jobStatus   JobStatus

	startPath string

	pointerDown bool
	lastClick   time.Time
	lastClickX  int
	lastClickY  int
	now         func() time.Time
}

// jobKind tells the single-image surface from the batch one.
type jobKind int

const (
	jobSingle jobKind = iota
	jobBatch
)

func (k jobKind) String() string {
	if k == jobBatch {
		return "batch"
	}
	return "single"
}

type jobSubmittedMsg struct {
	kind jobKind
	id   string
}

type jobStatusMsg struct {
	kind   jobKind
	id     string
	status JobStatus
}

type jobErrMsg struct {
	kind jobKind
	err  error
}

// resultLoadedMsg carries a decoded result from a job download or a local
// file. Decoding happens off the event loop; installing it does not.
type resultLoadedMsg struct {
	img    image.Image
	source string
	job    bool
}

type batchSavedMsg struct {
	path   string
	size   int64
	copied bool
}

type bgLoadedMsg struct {
	img  image.Image
	path string
}

type exportedMsg struct {
	path   string
	size   int64
	what   string
	copied bool
}

type errMsg struct {
	err error
}
