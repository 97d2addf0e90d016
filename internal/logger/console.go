// Package logger provides the leveled console logger shared by gather
// commands and the sync engine. Output is timestamped, mutex-guarded, and
// colored when the destination is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level ordering for filtering.
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines to a writer.
// Safe for concurrent use. A nil writer silently discards output, which
// keeps tests quiet without conditionals at call sites.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// New creates a ConsoleLogger. level is one of trace, debug, info, warn,
// error (case-insensitive); empty or unknown values default to "info".
func New(writer io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLevel(level),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a TTY that should get color.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// color.NoColor already folds in NO_COLOR and TTY detection.
		return !color.NoColor
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func normalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func levelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	}
	return levelInfo
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return levelToInt(messageLevel) >= levelToInt(cl.logLevel)
}

// Tracef logs at trace level.
func (cl *ConsoleLogger) Tracef(format string, args ...interface{}) {
	cl.logf("TRACE", "trace", format, args...)
}

// Debugf logs at debug level.
func (cl *ConsoleLogger) Debugf(format string, args ...interface{}) {
	cl.logf("DEBUG", "debug", format, args...)
}

// Infof logs at info level.
func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.logf("INFO", "info", format, args...)
}

// Warnf logs at warn level.
func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.logf("WARN", "warn", format, args...)
}

// Errorf logs at error level.
func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.logf("ERROR", "error", format, args...)
}

func (cl *ConsoleLogger) logf(tag, level, format string, args ...interface{}) {
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] %s %s\n", timestamp, colorizeTag(tag), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp, tag, message)
}

func colorizeTag(tag string) string {
	switch tag {
	case "ERROR":
		return color.RedString("[%s]", tag)
	case "WARN":
		return color.YellowString("[%s]", tag)
	case "INFO":
		return color.CyanString("[%s]", tag)
	default:
		return fmt.Sprintf("[%s]", tag)
	}
}
