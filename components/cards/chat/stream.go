// Package chat implements the streaming client for dashboard chat. Responses
// arrive as Server-Sent Events carrying JSON frames; the reader turns them
// into token, done, and error callbacks.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

const dataPrefix = "data: "

// Source is a document citation attached to a completed answer.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Frame is one decoded stream event.
type Frame struct {
	Type    string   `json:"type"`
	Data    string   `json:"data,omitempty"`
	Sources []Source `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Frame types emitted by the chat backend.
const (
	FrameToken = "token"
	FrameDone  = "done"
	FrameError = "error"
)

// Handlers receive decoded stream events. Nil handlers are skipped.
type Handlers struct {
	OnToken func(token string)
	OnDone  func(sources []Source)
	OnError func(message string)
}

// ReadStream consumes an SSE body until a done or error frame, the stream
// ends, or the context is canceled. Frames that do not decode are dropped.
// Cancellation is silent: no error callback fires and ReadStream returns nil.
func ReadStream(ctx context.Context, r io.Reader, h Handlers) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var payload strings.Builder
	dispatch := func() bool {
		if payload.Len() == 0 {
			return false
		}
		frame, ok := decodeFrame(payload.String())
		payload.Reset()
		if !ok {
			return false
		}
		return h.handle(frame)
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		if line == "" {
			if done := dispatch(); done {
				return nil
			}
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		if payload.Len() > 0 {
			payload.WriteByte('\n')
		}
		payload.WriteString(strings.TrimPrefix(line, dataPrefix))
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	// The final frame may arrive without its terminating blank line.
	dispatch()
	return nil
}

// handle dispatches one frame and reports whether the stream is finished.
func (h Handlers) handle(frame Frame) bool {
	switch frame.Type {
	case FrameToken:
		if h.OnToken != nil {
			h.OnToken(frame.Data)
		}
		return false
	case FrameDone:
		if h.OnDone != nil {
			sources := frame.Sources
			if sources == nil {
				sources = []Source{}
			}
			h.OnDone(sources)
		}
		return true
	case FrameError:
		if h.OnError != nil {
			h.OnError(frame.Error)
		}
		return true
	default:
		return false
	}
}

func decodeFrame(payload string) (Frame, bool) {
	var frame Frame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return Frame{}, false
	}
	if frame.Type == "" {
		return Frame{}, false
	}
	return frame, true
}
