package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TextStreamEvent is a single decoded server-sent event frame
type TextStreamEvent struct {
	Event string `json:"event,omitempty"`
	Data  string `json:"data,omitempty"`
}

// TextStream decodes server-sent event frames and dispatches them to
// a callback
type TextStream struct{}

// TextScanner incrementally decodes server-sent event frames from a
// reader, one frame per call to Next. Frames are only emitted once their
// blank-line terminator has arrived, so the scanner is insensitive to
// how the underlying stream is chunked.
type TextScanner struct {
	scanner *bufio.Scanner
	event   TextStreamEvent
	data    []string
	done    bool
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	fieldEvent   = "event:"
	fieldData    = "data:"
	fieldComment = ":"
)

// Scanner buffer sizes. Frames carry JSON payloads which can run long
// when a data line contains a full metadata object.
const (
	textScannerBuffer    = 64 * 1024
	textScannerMaxBuffer = 1024 * 1024
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTextStream returns a new server-sent event decoder
func NewTextStream() *TextStream {
	return new(TextStream)
}

// NewTextScanner returns a scanner decoding server-sent event frames
// from the reader
func NewTextScanner(r io.Reader) *TextScanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, textScannerBuffer), textScannerMaxBuffer)
	return &TextScanner{
		scanner: scanner,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Decode reads server-sent event frames from the reader until the stream
// ends, calling fn for each frame. Returning io.EOF from the callback ends
// decoding without error.
func (t *TextStream) Decode(r io.Reader, fn func(TextStreamEvent) error) error {
	scanner := NewTextScanner(r)
	for {
		event, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if err := fn(*event); errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// Next returns the next complete frame, or io.EOF when the stream has
// ended. A partial frame terminated by the end of the stream is returned
// as a final frame.
func (s *TextScanner) Next() (*TextStreamEvent, error) {
	if s.done {
		return nil, io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")
		switch {
		case line == "":
			if event, ok := s.flush(); ok {
				return event, nil
			}
		case strings.HasPrefix(line, fieldEvent):
			s.event.Event = strings.TrimSpace(strings.TrimPrefix(line, fieldEvent))
		case strings.HasPrefix(line, fieldData):
			s.data = append(s.data, trimFieldValue(strings.TrimPrefix(line, fieldData)))
		case strings.HasPrefix(line, fieldComment):
			// Comment, ignored
		default:
			// Unknown field, ignored
		}
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	// The stream ended mid-frame: emit what has been buffered
	if event, ok := s.flush(); ok {
		return event, nil
	}
	return nil, io.EOF
}

// Json decodes the data payload of the event into the given value
func (e TextStreamEvent) Json(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// flush returns the buffered frame and resets the assembly state. Frames
// with neither an event name nor data are dropped.
func (s *TextScanner) flush() (*TextStreamEvent, bool) {
	if s.event.Event == "" && len(s.data) == 0 {
		return nil, false
	}
	event := s.event
	event.Data = strings.Join(s.data, "\n")
	s.event = TextStreamEvent{}
	s.data = nil
	return &event, true
}

// trimFieldValue removes the single optional space after the field colon
func trimFieldValue(value string) string {
	return strings.TrimPrefix(value, " ")
}
