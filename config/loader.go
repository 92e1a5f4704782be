package config

// loader.go - configuration loading from the options file and
// environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables
//   3. Options file (the same key=value format SAVE writes)
//   4. Defaults   (defaults.go)

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile overlays the flat key=value options file at path onto o.
// Blank lines and lines starting with '#' are skipped; unknown keys
// are ignored for forward compatibility.  A malformed value for a
// known key is an error.
func LoadFile(o *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read options file: %w", err)
	}
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: expected key=value, got %q", path, i+1, line)
		}
		if err := o.apply(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the FREEDV_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto o.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(o *Options) {
	if v := os.Getenv("FREEDV_MODE"); v != "" {
		o.SetMode(v)
	}
	if v := os.Getenv("FREEDV_OUTPUT_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			o.SetOutputVolume(f)
		}
	}
	if envBool("FREEDV_FOLLOW") {
		o.SetFollow(true)
	}
	if v := os.Getenv("FREEDV_INPUT_DEVICE"); v != "" {
		o.SetInputDevice(v)
	}
	if v := os.Getenv("FREEDV_OUTPUT_DEVICE"); v != "" {
		o.SetOutputDevice(v)
	}
	if v := os.Getenv("FREEDV_PTT_PORT"); v != "" {
		o.SetPTTPort(v)
	}
	if v := os.Getenv("FREEDV_PTT_LINE"); v != "" {
		o.SetPTTLine(v)
	}
	if v := os.Getenv("FREEDV_LISTEN_ADDRESS"); v != "" {
		o.SetListenAddress(v)
	}
	if v := envInt("FREEDV_LISTEN_PORT"); v > 0 {
		o.SetListenPort(v)
	}
	if v := envInt("FREEDV_VERBOSE"); v > 0 {
		o.SetVerbose(v)
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	return parseBool(os.Getenv(key))
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
