package main

import (
	"math"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Point is a position in raster pixel coordinates.
type Point struct {
	X, Y float64
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// segmentDistSq is the squared distance from p to the segment ab.
func segmentDistSq(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cx := a.X + t*dx - p.X
	cy := a.Y + t*dy - p.Y
	return cx*cx + cy*cy
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	return maxFloat(lo, minFloat(v, hi))
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// cleanClipboardPath turns pasted text into a file path: first non-empty
// line, surrounding quotes removed, file:// URLs decoded. File managers put
// any of these on the clipboard when copying a file.
func cleanClipboardPath(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var line string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.Trim(line, `"'`)
	if strings.HasPrefix(line, "file://") {
		if u, err := url.Parse(line); err == nil {
			line = u.Path
		}
	}
	var result strings.Builder
	result.Grow(len(line))
	for _, r := range line {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// splitPaths splits a batch prompt into file paths. Commas and whitespace
// both separate entries.
func splitPaths(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ' ' || r == '\t'
	})
	paths := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, `"'`); f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
