package client_test

import (
	"io"
	"strings"
	"testing"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// chunkReader yields at most size bytes per read, to exercise frame
// assembly across arbitrary read boundaries
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func collectEvents(t *testing.T, r io.Reader) []client.TextStreamEvent {
	t.Helper()
	var events []client.TextStreamEvent
	err := client.NewTextStream().Decode(r, func(event client.TextStreamEvent) error {
		events = append(events, event)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return events
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_textstream_001(t *testing.T) {
	// Decode a sequence of well-formed frames
	assert := assert.New(t)
	stream := "event: start\ndata: {}\n\n" +
		"event: token\ndata: {\"token\":\"Om\"}\n\n" +
		"event: done\ndata: {}\n\n"

	events := collectEvents(t, strings.NewReader(stream))
	assert.Len(events, 3)
	assert.Equal("start", events[0].Event)
	assert.Equal("token", events[1].Event)
	assert.Equal(`{"token":"Om"}`, events[1].Data)
	assert.Equal("done", events[2].Event)
}

func Test_textstream_002(t *testing.T) {
	// The decoded sequence is identical no matter how the stream is
	// chunked
	assert := assert.New(t)
	stream := "event: start\ndata: {}\n\n" +
		"event: thinking\ndata: {\"message\":\"searching the texts\"}\n\n" +
		"event: token\ndata: {\"token\":\"Om\"}\n\n" +
		"event: token\ndata: {\"token\":\" Shanti\"}\n\n" +
		"event: metadata\ndata: {\"language\":\"en\"}\n\n" +
		"event: source\ndata: {\"source\":{\"title\":\"Bhagavad Gita\"}}\n\n" +
		"event: done\ndata: {}\n\n"

	expected := collectEvents(t, strings.NewReader(stream))
	assert.Len(expected, 7)

	for _, size := range []int{1, 2, 3, 5, 7, 16, 64, 1024} {
		events := collectEvents(t, &chunkReader{data: []byte(stream), size: size})
		assert.Equal(expected, events, "chunk size %d", size)
	}
}

func Test_textstream_003(t *testing.T) {
	// Multiple data lines within one frame are joined with a newline
	assert := assert.New(t)
	stream := "event: metadata\ndata: line one\ndata: line two\n\n"

	events := collectEvents(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal("metadata", events[0].Event)
	assert.Equal("line one\nline two", events[0].Data)
}

func Test_textstream_004(t *testing.T) {
	// Comments and unknown fields are ignored
	assert := assert.New(t)
	stream := ": keepalive\n" +
		"id: 42\n" +
		"retry: 1000\n" +
		"event: token\ndata: {\"token\":\"x\"}\n\n" +
		": another comment\n\n"

	events := collectEvents(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal("token", events[0].Event)
}

func Test_textstream_005(t *testing.T) {
	// Returning io.EOF from the callback ends decoding without error
	assert := assert.New(t)
	stream := "event: token\ndata: {}\n\nevent: done\ndata: {}\n\nevent: never\ndata: {}\n\n"

	var seen []string
	err := client.NewTextStream().Decode(strings.NewReader(stream), func(event client.TextStreamEvent) error {
		seen = append(seen, event.Event)
		if event.Event == "done" {
			return io.EOF
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal([]string{"token", "done"}, seen)
}

func Test_textstream_006(t *testing.T) {
	// A final frame without its blank-line terminator is still emitted
	// when the stream ends
	assert := assert.New(t)
	stream := "event: token\ndata: {\"token\":\"a\"}\n\nevent: done\ndata: {}"

	events := collectEvents(t, strings.NewReader(stream))
	assert.Len(events, 2)
	assert.Equal("done", events[1].Event)
	assert.Equal("{}", events[1].Data)
}

func Test_textstream_007(t *testing.T) {
	// CRLF line endings are tolerated
	assert := assert.New(t)
	stream := "event: token\r\ndata: {\"token\":\"a\"}\r\n\r\n"

	events := collectEvents(t, strings.NewReader(stream))
	assert.Len(events, 1)
	assert.Equal("token", events[0].Event)
	assert.Equal(`{"token":"a"}`, events[0].Data)
}

func Test_textstream_008(t *testing.T) {
	// Json decodes the data payload
	assert := assert.New(t)
	event := client.TextStreamEvent{Event: "token", Data: `{"token":"Om"}`}

	var payload struct {
		Token string `json:"token"`
	}
	assert.NoError(event.Json(&payload))
	assert.Equal("Om", payload.Token)

	bad := client.TextStreamEvent{Event: "token", Data: `{"token":`}
	assert.Error(bad.Json(&payload))
}

func Test_textstream_009(t *testing.T) {
	// A pull scanner returns frames one at a time and io.EOF at the end
	assert := assert.New(t)
	stream := "event: start\ndata: {}\n\nevent: done\ndata: {}\n\n"
	scanner := client.NewTextScanner(strings.NewReader(stream))

	event, err := scanner.Next()
	assert.NoError(err)
	assert.Equal("start", event.Event)

	event, err = scanner.Next()
	assert.NoError(err)
	assert.Equal("done", event.Event)

	_, err = scanner.Next()
	assert.ErrorIs(err, io.EOF)

	// Subsequent calls stay at io.EOF
	_, err = scanner.Next()
	assert.ErrorIs(err, io.EOF)
}
