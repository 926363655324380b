package logger

import (
	"io"
	"log"
	"strings"
)

// Level represents logging level
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	enabled bool
	level   Level = LevelError
)

// Init configures the logger from the LOG and LOG_LEVEL settings.
//
//	LOG=1            -> enable at info level
//	LOG_LEVEL=debug  -> enable at debug level (info/warn/error also supported)
//	LOG_LEVEL=off    -> disable
func Init(logFlag, logLevel string) {
	enabled = false
	level = LevelError
	if strings.TrimSpace(logFlag) == "1" {
		enabled = true
		level = LevelInfo
	}
	if lv := strings.ToLower(strings.TrimSpace(logLevel)); lv != "" {
		enabled = true
		switch lv {
		case "debug":
			level = LevelDebug
		case "info":
			level = LevelInfo
		case "warn", "warning":
			level = LevelWarn
		case "error":
			level = LevelError
		case "off", "none", "0":
			enabled = false
		default:
			// unknown -> keep enabled but at error level
			level = LevelError
		}
	}
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) { log.SetOutput(w) }

func Enabled() bool { return enabled }

func Debugf(format string, v ...any) {
	if !enabled || level < LevelDebug {
		return
	}
	log.Printf("[DEBUG] "+format, v...)
}

func Infof(format string, v ...any) {
	if !enabled || level < LevelInfo {
		return
	}
	log.Printf("[INFO] "+format, v...)
}

func Warnf(format string, v ...any) {
	if !enabled || level < LevelWarn {
		return
	}
	log.Printf("[WARN] "+format, v...)
}

func Errorf(format string, v ...any) {
	if !enabled || level < LevelError {
		return
	}
	log.Printf("[ERROR] "+format, v...)
}
