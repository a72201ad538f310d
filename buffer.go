package clitest

import (
	"bytes"
	"strings"
	"sync"
)

// outputBuffer accumulates one output stream of a child process. It has
// exactly one writer (the drain goroutine) and any number of readers.
// Content is append-only; nothing is removed for the lifetime of the
// owning Process.
//
// The cursor tracks how far Expect calls have already searched, so
// consecutive expectations against the same stream never re-match text an
// earlier call consumed.
type outputBuffer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	cursor int
}

func (b *outputBuffer) append(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(chunk)
}

// snapshot returns the full content accumulated so far, non-destructively.
func (b *outputBuffer) snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *outputBuffer) length() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// consume searches for a literal substring starting at the cursor. On a
// match the cursor advances past the end of the match.
func (b *outputBuffer) consume(pattern string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := strings.Index(b.buf.String()[b.cursor:], pattern)
	if i < 0 {
		return false
	}
	b.cursor += i + len(pattern)
	return true
}
