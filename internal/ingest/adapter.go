// Package ingest defines the boundary between platform-specific message
// sources and the portable confirmation engine. Only adapters know where
// raw text comes from; the engine sees DeliverEvent calls and nothing else.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/paywatch/paywatch/internal/model"
)

// Sink is the engine-side entry point adapters feed raw text into.
type Sink interface {
	DeliverEvent(ctx context.Context, rawText string, channel model.SourceChannel, observedAt time.Time)
}

// Adapter surfaces raw notification or SMS text to the engine. Run blocks
// until the source is exhausted or ctx is cancelled.
type Adapter interface {
	Run(ctx context.Context, sink Sink) error
}

// ReaderAdapter feeds newline-delimited messages from an io.Reader, one
// message per line, stamped with the wall clock at read time. It backs the
// stdin feed of the watch command and is handy in tests.
type ReaderAdapter struct {
	reader  io.Reader
	channel model.SourceChannel
	now     func() time.Time
}

// NewReaderAdapter creates an adapter reading from r on the given channel.
func NewReaderAdapter(r io.Reader, channel model.SourceChannel) *ReaderAdapter {
	return &ReaderAdapter{
		reader:  r,
		channel: channel,
		now:     time.Now,
	}
}

// Run delivers each non-empty line as one raw message.
func (a *ReaderAdapter) Run(ctx context.Context, sink Sink) error {
	scanner := bufio.NewScanner(a.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		sink.DeliverEvent(ctx, line, a.channel, a.now())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read message stream: %w", err)
	}
	return nil
}
