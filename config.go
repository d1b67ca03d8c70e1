package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultServerURL = "http://localhost:8000"

type Config struct {
	ServerURL     string
	SaveDirectory string
	MaxUndo       int
	MaxPixels     int
	PollInterval  time.Duration
	LogFile       string
	SettingsFile  string
}

func defaultConfig() *Config {
	return &Config{
		ServerURL:    defaultServerURL,
		MaxUndo:      defaultMaxUndo,
		MaxPixels:    defaultMaxPixels,
		PollInterval: defaultPollInterval,
	}
}

// defaultConfigPath is ~/.cutoutrc, or "" when the home directory is unknown.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cutoutrc")
}

// loadConfig reads key = value lines from path. Unknown keys and bad values
// are skipped; a missing file leaves the defaults.
func loadConfig(path string) *Config {
	config := defaultConfig()
	if env := os.Getenv("CUTOUT_LOG"); env != "" {
		config.LogFile = env
	}
	if path == "" {
		return config
	}

	file, err := os.Open(path)
	if err != nil {
		return config
	}
	defer file.Close()

	expand := func(value string) string {
		value = expandHome(value)
		if !filepath.IsAbs(value) {
			if absPath, err := filepath.Abs(value); err == nil {
				value = absPath
			}
		}
		return value
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "server", "server_url", "serverurl":
			config.ServerURL = strings.TrimRight(value, "/")
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expand(value)
		case "max_undo", "maxundo":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.MaxUndo = n
			}
		case "max_pixels", "maxpixels":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				config.MaxPixels = n
			}
		case "poll_interval", "pollinterval":
			if d, err := time.ParseDuration(value); err == nil && d > 0 {
				config.PollInterval = d
			}
		case "log_file", "logfile":
			config.LogFile = expand(value)
		case "settings_file", "settingsfile":
			config.SettingsFile = expand(value)
		}
	}

	return config
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	return filepath.Join(c.SaveDirectory, filename)
}
