package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CUTOUT_LOG", "")
	config := loadConfig(filepath.Join(t.TempDir(), "missing"))
	if *config != *defaultConfig() {
		t.Fatalf("config = %+v", config)
	}
	if config.GetSavePath("result.png") != "result.png" {
		t.Fatal("save path without a save directory")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("CUTOUT_LOG", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), ".cutoutrc")
	content := `# cutout settings
server = http://jobs.internal:9000/
SaveDirectory = ~/cutouts
max_undo = 40
max_pixels = 1000
poll_interval = 250ms
not a pair
unknown = 1
max_undo_typo = 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := loadConfig(path)
	if config.ServerURL != "http://jobs.internal:9000" {
		t.Errorf("server = %q", config.ServerURL)
	}
	if want := filepath.Join(home, "cutouts"); config.SaveDirectory != want {
		t.Errorf("save directory = %q, want %q", config.SaveDirectory, want)
	}
	if config.MaxUndo != 40 || config.MaxPixels != 1000 {
		t.Errorf("limits = %d %d", config.MaxUndo, config.MaxPixels)
	}
	if config.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %v", config.PollInterval)
	}
	if got := config.GetSavePath("result.png"); got != filepath.Join(home, "cutouts", "result.png") {
		t.Errorf("save path = %q", got)
	}
}

func TestLoadConfigIgnoresBadValues(t *testing.T) {
	t.Setenv("CUTOUT_LOG", "")
	path := filepath.Join(t.TempDir(), ".cutoutrc")
	content := "max_undo = -3\nmax_pixels = lots\npoll_interval = soon\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := loadConfig(path)
	if config.MaxUndo != defaultMaxUndo || config.MaxPixels != defaultMaxPixels || config.PollInterval != defaultPollInterval {
		t.Fatalf("config = %+v", config)
	}
}

func TestLoadConfigLogFromEnv(t *testing.T) {
	t.Setenv("CUTOUT_LOG", "/tmp/cutout.log")
	if got := loadConfig("").LogFile; got != "/tmp/cutout.log" {
		t.Fatalf("log file = %q", got)
	}
}
