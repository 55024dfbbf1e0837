// Package logger provides a small ring-buffered log that the rest of the
// module writes diagnostic lines to. Unlike a conventional logger it never
// writes to a destination of its own accord -- the caller decides when and
// where the accumulated entries are flushed, via Write or Tail.
package logger

import (
	"fmt"
	"io"
)

// Permission is consulted before an entry is appended to the log. It exists
// so that noisy sources (e.g. per-cycle bus activity) can be silenced
// without every call site having to test a flag itself.
type Permission interface {
	AllowLogging() bool
}

// allowAll is a Permission that always allows logging.
type allowAll struct{}

func (allowAll) AllowLogging() bool {
	return true
}

// Allow is the permission to use when there is no reason to ever suppress
// the entry.
var Allow Permission = allowAll{}

// entry is a single logged line, already formatted as "tag: detail".
type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s\n", e.tag, e.detail)
}

// Logger is a capped, in-memory log. Once full, the oldest entry is
// discarded to make room for the newest.
type Logger struct {
	entries []entry
	cap     int
	next    int
	full    bool
}

// NewLogger creates a Logger able to hold up to capacity entries.
func NewLogger(capacity int) *Logger {
	return &Logger{
		entries: make([]entry, capacity),
		cap:     capacity,
	}
}

// Clear empties the log.
func (l *Logger) Clear() {
	l.next = 0
	l.full = false
}

func (l *Logger) append(tag, detail string) {
	if l.cap == 0 {
		return
	}
	l.entries[l.next] = entry{tag: tag, detail: detail}
	l.next++
	if l.next == l.cap {
		l.next = 0
		l.full = true
	}
}

// detailString renders detail the same way regardless of which of Log or
// Logf produced it: errors use Error(), fmt.Stringer uses String(), anything
// else falls back to the %v verb.
func detailString(detail interface{}) string {
	switch d := detail.(type) {
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log appends a new entry if perm allows it.
func (l *Logger) Log(perm Permission, tag string, detail interface{}) {
	if perm == nil || !perm.AllowLogging() {
		return
	}
	l.append(tag, detailString(detail))
}

// Logf is like Log but formats detail with fmt.Sprintf first.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	if perm == nil || !perm.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

// ordered returns the log entries in the order they were written, oldest
// first.
func (l *Logger) ordered() []entry {
	if !l.full {
		return l.entries[:l.next]
	}
	out := make([]entry, 0, l.cap)
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// Write writes every entry currently held by the log, oldest first.
func (l *Logger) Write(w io.Writer) {
	for _, e := range l.ordered() {
		io.WriteString(w, e.String())
	}
}

// Tail writes at most the last n entries. Asking for more entries than are
// held, or zero, is not an error.
func (l *Logger) Tail(w io.Writer, n int) {
	all := l.ordered()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	for _, e := range all {
		io.WriteString(w, e.String())
	}
}

// defaultLogger is the package-level log that CPU and bus implementations write to
// when they don't have (or need) a Logger of their own.
var defaultLogger = NewLogger(1000)

// Log appends an entry to the default logger.
func Log(tag string, detail interface{}) {
	defaultLogger.Log(Allow, tag, detail)
}

// Logf appends a formatted entry to the default logger.
func Logf(tag string, format string, args ...interface{}) {
	defaultLogger.Logf(Allow, tag, format, args...)
}

// Write writes the default logger's entries.
func Write(w io.Writer) {
	defaultLogger.Write(w)
}

// Tail writes the default logger's last n entries.
func Tail(w io.Writer, n int) {
	defaultLogger.Tail(w, n)
}

// Clear empties the default logger.
func Clear() {
	defaultLogger.Clear()
}
