// Package logger provides namespace-scoped debug loggers controlled by the
// DEBUG environment variable, following the conventions of the npm debug
// package:
//
//	DEBUG=*                  - enables all loggers
//	DEBUG=validator:*        - enables all loggers in a namespace
//	DEBUG=ns1,ns2            - enables specific namespaces
//	DEBUG=ns:*,-ns:skip      - enables a namespace but excludes patterns
//
// Output goes to stderr. Each namespace gets a stable color (when stderr is
// a TTY and DEBUG_COLORS != "0") and every line carries the time elapsed
// since the namespace last logged.
package logger

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Logger is a debug logger bound to one namespace.
type Logger struct {
	namespace string
	enabled   bool
	color     string

	mu      sync.Mutex
	lastLog time.Time
}

var (
	debugEnv    = os.Getenv("DEBUG")
	debugColors = os.Getenv("DEBUG_COLORS") != "0"
	stderrIsTTY = isatty.IsTerminal(os.Stderr.Fd())

	// ANSI 256-color codes readable on both light and dark backgrounds.
	colorPalette = []string{
		"\033[38;5;33m",  // blue
		"\033[38;5;35m",  // green
		"\033[38;5;166m", // orange
		"\033[38;5;125m", // purple
		"\033[38;5;37m",  // cyan
		"\033[38;5;161m", // magenta
		"\033[38;5;136m", // yellow
		"\033[38;5;124m", // red
	}

	colorReset = "\033[0m"
)

// New creates a Logger for the given namespace. The enabled state is
// computed once at construction from the DEBUG environment variable.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   computeEnabled(namespace),
		color:     selectColor(namespace),
		lastLog:   time.Now(),
	}
}

// Enabled reports whether this logger will emit output.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf prints a formatted message if the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

// Print prints a message if the logger is enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprint(args...))
}

func (l *Logger) emit(message string) {
	l.mu.Lock()
	now := time.Now()
	diff := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	if l.color != "" {
		fmt.Fprintf(os.Stderr, "%s%s%s %s +%s\n", l.color, l.namespace, colorReset, message, formatDuration(diff))
	} else {
		fmt.Fprintf(os.Stderr, "%s %s +%s\n", l.namespace, message, formatDuration(diff))
	}
}

// formatDuration renders a duration compactly, millisecond resolution below
// a second.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func selectColor(namespace string) string {
	if !debugColors || !stderrIsTTY {
		return ""
	}
	h := fnv.New32a()
	if _, err := h.Write([]byte(namespace)); err != nil {
		return ""
	}
	return colorPalette[h.Sum32()%uint32(len(colorPalette))]
}

// computeEnabled checks the namespace against the DEBUG patterns.
// Exclusion patterns (leading -) take precedence over matches.
func computeEnabled(namespace string) bool {
	enabled := false
	for _, pattern := range strings.Split(debugEnv, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if exclude, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchPattern(namespace, exclude) {
				return false
			}
			continue
		}
		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}
	return enabled
}

// matchPattern supports a single * wildcard at either end or in the middle.
func matchPattern(namespace, pattern string) bool {
	if pattern == "*" || pattern == namespace {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.Contains(prefix, "*") {
		return strings.HasPrefix(namespace, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && !strings.Contains(suffix, "*") {
		return strings.HasSuffix(namespace, suffix)
	}
	parts := strings.SplitN(pattern, "*", 2)
	return strings.HasPrefix(namespace, parts[0]) && strings.HasSuffix(namespace, parts[1])
}
