package runner

import (
	"bufio"
	"context"
	"io"
)

// lineReader reads lines from r in a goroutine so a prompt can be abandoned
// when its context is cancelled.
type lineReader struct {
	lines chan string
	done  chan struct{}
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan string, 16),
		done:  make(chan struct{}),
	}
	go lr.readLoop(r)
	return lr
}

func (lr *lineReader) readLoop(r io.Reader) {
	defer close(lr.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lr.lines <- scanner.Text():
		case <-lr.done:
			return
		}
	}
}

// ReadLine blocks for the next line. It returns io.EOF once input is
// exhausted and ctx.Err() when ctx is done first.
func (lr *lineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// Stop signals the reader goroutine to exit. It may stay blocked in Scan
// until input arrives or is closed.
func (lr *lineReader) Stop() {
	select {
	case <-lr.done:
	default:
		close(lr.done)
	}
}
