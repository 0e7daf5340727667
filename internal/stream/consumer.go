// Package stream consumes token streams produced by the model
// collaborator. A Consumer assembles arriving fragments into the full
// response text while exposing each fragment to a progress callback, and
// preserves whatever arrived when a stream drops mid-response.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TokenStream is one model response delivered incrementally. Recv returns
// the next text fragment, io.EOF when the response is complete, or any
// other error if the producer fails. A stream is finite and not
// restartable; a new request must open a new stream.
type TokenStream interface {
	Recv() (string, error)
}

// InterruptedError reports a stream that dropped mid-response. Partial
// holds everything assembled before the failure; it is never silently
// discarded.
type InterruptedError struct {
	Partial string
	Err     error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("stream interrupted after %d bytes: %v", len(e.Partial), e.Err)
}

func (e *InterruptedError) Unwrap() error { return e.Err }

// ProgressFunc observes one fragment as it arrives. assembled is the full
// text accumulated so far, including the fragment.
type ProgressFunc func(fragment, assembled string)

// Consumer drains one TokenStream. It is single-use: a second Consume
// call returns an error.
type Consumer struct {
	mu       sync.Mutex
	source   TokenStream
	consumed bool
	text     strings.Builder
}

// NewConsumer creates a Consumer over the given stream.
func NewConsumer(source TokenStream) *Consumer {
	return &Consumer{source: source}
}

// Consume reads fragments until the stream ends, invoking onFragment
// after each one. The producer is never blocked for longer than one
// callback invocation. Returns the assembled text.
//
// On producer failure or context cancellation the returned error is an
// *InterruptedError carrying the partial text.
func (c *Consumer) Consume(ctx context.Context, onFragment ProgressFunc) (string, error) {
	c.mu.Lock()
	if c.consumed {
		c.mu.Unlock()
		return "", errors.New("stream already consumed; open a new request for a new stream")
	}
	c.consumed = true
	c.mu.Unlock()

	type recv struct {
		fragment string
		err      error
	}
	recvCh := make(chan recv)

	// The reader goroutine owns Recv so a canceled context can unblock
	// the consuming flow even while the producer is stalled.
	go func() {
		defer close(recvCh)
		for {
			fragment, err := c.source.Recv()
			select {
			case recvCh <- recv{fragment, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return c.Text(), &InterruptedError{Partial: c.Text(), Err: ctx.Err()}
		case r, ok := <-recvCh:
			if !ok {
				return c.Text(), nil
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return c.Text(), nil
				}
				return c.Text(), &InterruptedError{Partial: c.Text(), Err: r.err}
			}
			if r.fragment != "" {
				c.mu.Lock()
				c.text.WriteString(r.fragment)
				assembled := c.text.String()
				c.mu.Unlock()
				if onFragment != nil {
					onFragment(r.fragment, assembled)
				}
			}
		}
	}
}

// Text returns the text assembled so far. Safe to call concurrently with
// Consume and after it returns.
func (c *Consumer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// SliceStream is a TokenStream over a fixed fragment list, optionally
// failing after the fragments are exhausted. Used by tests and the mock
// translator.
type SliceStream struct {
	Fragments []string
	FailWith  error // returned instead of io.EOF when set

	next int
}

// Recv returns the next fragment, then io.EOF or FailWith.
func (s *SliceStream) Recv() (string, error) {
	if s.next < len(s.Fragments) {
		f := s.Fragments[s.next]
		s.next++
		return f, nil
	}
	if s.FailWith != nil {
		return "", s.FailWith
	}
	return "", io.EOF
}
