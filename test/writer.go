package test

import "strings"

// Writer is a minimal io.Writer used to capture output from the logger
// package in tests, with a convenience Compare method so tests read as a
// single assertion rather than a String() followed by a comparison.
type Writer struct {
	b strings.Builder
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

// String returns the content written so far.
func (w *Writer) String() string {
	return w.b.String()
}

// Compare returns true if s equals everything written so far.
func (w *Writer) Compare(s string) bool {
	return w.b.String() == s
}

// Clear empties the writer.
func (w *Writer) Clear() {
	w.b.Reset()
}

// CappedWriter is an io.Writer that silently discards anything written past
// its capacity, keeping only the earliest bytes.
type CappedWriter struct {
	buf   []byte
	limit int
}

// NewCappedWriter creates a CappedWriter with the given capacity in bytes.
func NewCappedWriter(limit int) (*CappedWriter, error) {
	return &CappedWriter{
		buf:   make([]byte, 0, limit),
		limit: limit,
	}, nil
}

// Write implements io.Writer. Bytes beyond the writer's limit are dropped
// without error, matching the behaviour of a capped log buffer.
func (c *CappedWriter) Write(p []byte) (int, error) {
	room := c.limit - len(c.buf)
	if room <= 0 {
		return len(p), nil
	}
	if room > len(p) {
		room = len(p)
	}
	c.buf = append(c.buf, p[:room]...)
	return len(p), nil
}

// String returns the content written so far.
func (c *CappedWriter) String() string {
	return string(c.buf)
}

// Reset empties the writer.
func (c *CappedWriter) Reset() {
	c.buf = c.buf[:0]
}

// RingWriter is an io.Writer that keeps only the most recently written bytes,
// up to its capacity, discarding the oldest bytes first.
type RingWriter struct {
	buf   []byte
	limit int
}

// NewRingWriter creates a RingWriter with the given capacity in bytes.
func NewRingWriter(limit int) (*RingWriter, error) {
	return &RingWriter{
		buf:   make([]byte, 0, limit),
		limit: limit,
	}, nil
}

// Write implements io.Writer, keeping only the trailing c.limit bytes of
// everything written across the writer's lifetime.
func (r *RingWriter) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	if len(r.buf) > r.limit {
		r.buf = r.buf[len(r.buf)-r.limit:]
	}
	return len(p), nil
}

// String returns the content currently held by the writer.
func (r *RingWriter) String() string {
	return string(r.buf)
}

// Reset empties the writer.
func (r *RingWriter) Reset() {
	r.buf = r.buf[:0]
}
