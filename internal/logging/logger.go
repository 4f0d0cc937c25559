// Package logging provides the colored, leveled logger shared by orderpaced,
// the batch engine and orderpacectl.
//
// OUTPUT ROUTING:
//   - INFO and SUCCESS go to stdout, WARN/ERROR/DEBUG go to stderr
//   - With --log-file every level goes to the one file
//   - The CLI raises the level to ERROR so that tables and JSON stay clean
//
// Third-party libraries that only accept an io.Writer (gin) or a small logger
// interface (resty) are bridged through LevelWriter and RestyLogger so a batch
// run reads as one stream, record by record.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Level colors. SUCCESS is rendered at INFO level with its own label.
var levelColors = map[log.Level]struct {
	label string
	color string
}{
	log.DebugLevel: {"DEBUG", "#7F6DFF"},
	log.InfoLevel:  {"INFO", "#42E7FF"},
	log.WarnLevel:  {"WARN", "#FFE763"},
	log.ErrorLevel: {"ERROR", "#FF4473"},
}

const successColor = "#60F281"

var (
	stdoutLogger  *log.Logger
	stderrLogger  *log.Logger
	successLogger *log.Logger

	// Set once a CLI entry point has chosen its own output policy; the API
	// server leaves gin's writers alone in that case.
	cliConfigured = false
)

func init() {
	route(os.Stdout, os.Stderr)
}

func buildStyles(success bool) *log.Styles {
	styles := log.DefaultStyles()
	for level, c := range levelColors {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(c.label).
			Foreground(lipgloss.Color(c.color))
	}
	if success {
		styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
			SetString("SUCCESS").
			Foreground(lipgloss.Color(successColor))
	}
	return styles
}

func newLogger(w io.Writer, success bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(buildStyles(success))
	return l
}

// route rebuilds the loggers for new destinations, keeping the current level.
func route(out, errOut io.Writer) {
	level := log.InfoLevel
	if stderrLogger != nil {
		level = stderrLogger.GetLevel()
	}
	stdoutLogger = newLogger(out, false)
	stderrLogger = newLogger(errOut, false)
	successLogger = newLogger(out, true)
	setLevel(level)
}

func setLevel(level log.Level) {
	stdoutLogger.SetLevel(level)
	stderrLogger.SetLevel(level)
	successLogger.SetLevel(level)
}

// Info logs batch progress and status updates.
func Info(format string, v ...any) {
	stdoutLogger.Info(fmt.Sprintf(format, v...))
}

// Warn logs records and requests that need attention but did not stop work.
func Warn(format string, v ...any) {
	stderrLogger.Warn(fmt.Sprintf(format, v...))
}

func Error(format string, v ...any) {
	stderrLogger.Error(fmt.Sprintf(format, v...))
}

// Success logs a completed operation in green. It is filtered like INFO.
func Success(format string, v ...any) {
	successLogger.Info(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...any) {
	stderrLogger.Debug(fmt.Sprintf(format, v...))
}

// SetLevel configures the minimum logging level. Accepts DEBUG, INFO, WARN and
// ERROR in any case; anything else falls back to INFO.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		setLevel(log.DebugLevel)
	case "WARN":
		setLevel(log.WarnLevel)
	case "ERROR":
		setLevel(log.ErrorLevel)
	default:
		setLevel(log.InfoLevel)
	}
}

// SetOutput sends every level to w. A nil w silences all output.
func SetOutput(w *os.File) {
	if w == nil {
		setLevel(log.FatalLevel + 1)
		return
	}
	route(w, w)
}

// SuppressOutput keeps only ERROR logs visible. Used by the CLI so that log
// lines do not interleave with table output.
func SuppressOutput() {
	setLevel(log.ErrorLevel)
	cliConfigured = true
}

// RestoreOutput returns to stdout/stderr routing at INFO level.
func RestoreOutput() {
	route(os.Stdout, os.Stderr)
	setLevel(log.InfoLevel)
	cliConfigured = true
}

// IsConfiguredByCLI reports whether a CLI entry point has set the output policy.
func IsConfiguredByCLI() bool {
	return cliConfigured
}

// LevelWriter forwards each written line to one log level, with an optional
// prefix naming the library it came from.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at level (DEBUG, INFO,
// WARN or ERROR) with prefix.
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write splits p into lines, skipping blank ones.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if w.prefix != "" {
			line = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", line)
		case "WARN":
			Warn("%s", line)
		case "ERROR":
			Error("%s", line)
		default:
			Info("%s", line)
		}
	}
	return len(p), nil
}
