// Package logging is the process logger, backed by pterm.
package logging

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

func init() {
	pterm.DefaultLogger.ShowTime = true
	pterm.DefaultLogger.TimeFormat = "02 Jan 15:04:05"
	pterm.DefaultLogger.MaxWidth = 1000
}

// Leveled logging functions backed by pterm's default logger.
// All output goes to stderr unless SetOutput is called.

func Debugf(format string, args ...interface{}) {
	pterm.DefaultLogger.Debug(fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	pterm.DefaultLogger.Info(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	pterm.DefaultLogger.Warn(fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	pterm.DefaultLogger.Error(fmt.Sprintf(format, args...))
}

// Info logs msg with key/value pairs rendered by pterm
func Info(msg string, kv ...any) {
	pterm.DefaultLogger.Info(msg, pterm.DefaultLogger.Args(kv...))
}

// Warn logs msg with key/value pairs rendered by pterm
func Warn(msg string, kv ...any) {
	pterm.DefaultLogger.Warn(msg, pterm.DefaultLogger.Args(kv...))
}

// EnableDebug configures the logger to show debug messages.
func EnableDebug() {
	pterm.DefaultLogger.Level = pterm.LogLevelDebug
}

// DebugEnabled reports whether debug messages are shown
func DebugEnabled() bool {
	level := pterm.DefaultLogger.Level
	return level != pterm.LogLevelDisabled && level <= pterm.LogLevelDebug
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	pterm.DefaultLogger.Writer = w
}
