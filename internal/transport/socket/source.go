// Package socket delivers newline-delimited batch payloads from a stream.
package socket

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// DefaultMaxLineBytes bounds a single delivery.
const DefaultMaxLineBytes = 16 << 20

// LineSource yields one payload per line of the underlying stream.
// It is used by a single consumer goroutine.
type LineSource struct {
	r       *bufio.Reader
	maxLine int
	closer  io.Closer
	stop    func() bool
	done    bool
}

// NewLineSource reads deliveries from r. maxLine <= 0 selects DefaultMaxLineBytes.
func NewLineSource(r io.Reader, maxLine int) *LineSource {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	return &LineSource{r: bufio.NewReaderSize(r, 64<<10), maxLine: maxLine}
}

// Dial connects to a producer at addr. The connection is closed when ctx is
// cancelled, which unblocks a pending Next.
func Dial(ctx context.Context, addr string, timeout time.Duration, maxLine int) (*LineSource, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w: %w", addr, domain.ErrTransportClosed, err)
	}
	s := NewLineSource(conn, maxLine)
	s.closer = conn
	s.stop = context.AfterFunc(ctx, func() { _ = conn.Close() })
	return s, nil
}

// Next blocks until the next delivery. A blank line is an empty delivery.
// Lines longer than the limit are discarded and reported as ErrMalformedBatch;
// the source stays usable. End of stream is ErrTransportClosed.
func (s *LineSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error is self-describing
	}
	if s.done {
		return nil, fmt.Errorf("end of stream: %w", domain.ErrTransportClosed)
	}

	var line []byte
	oversized := false
	for {
		chunk, err := s.r.ReadSlice('\n')
		if !oversized {
			if len(line)+len(chunk) > s.maxLine+1 {
				oversized = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr //nolint:wrapcheck // context error is self-describing
		}
		if errors.Is(err, io.EOF) && (len(line) > 0 || oversized) {
			s.done = true
			break
		}
		return nil, fmt.Errorf("read: %w: %w", domain.ErrTransportClosed, err)
	}

	if oversized {
		return nil, fmt.Errorf("delivery exceeds %d bytes: %w", s.maxLine, domain.ErrMalformedBatch)
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Close releases the underlying connection, if any.
func (s *LineSource) Close() error {
	if s.stop != nil {
		s.stop()
	}
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
