package ui

import (
	"io"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// EventType identifies the kind of incoming event.
type EventType int

const (
	EventText       EventType = iota // A question or free text
	EventCommand                     // A slash command such as /language or /conversations
	EventAttachment                  // A file, for example a voice note or a document
)

// Event is a single piece of incoming user activity.
type Event struct {
	// Type identifies what kind of event this is.
	Type EventType

	// Context identifies the chat and carries the reply methods.
	Context Context

	// Text is the message text, or the caption for an attachment. For
	// commands it holds the full command line.
	Text string

	// Command is the command name without the leading slash, for
	// EventCommand only.
	Command string

	// Args are the command arguments, for EventCommand only.
	Args []string

	// Attachments are the files sent by the user, for EventAttachment.
	Attachments []InAttachment
}

// InAttachment is a file received from the user.
type InAttachment struct {
	// Filename is the original filename, when the platform provides one.
	Filename string

	// Type is the MIME type.
	Type string

	// Data is the file content.
	Data io.Reader
}

// OutAttachment is a file to send to the user.
type OutAttachment struct {
	// Filename is the filename to present.
	Filename string

	// Type is the MIME type.
	Type string

	// Data is the content to send.
	Data io.Reader
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ParseEvent builds an event from a line of input, splitting a leading
// slash command into its name and arguments.
func ParseEvent(ctx Context, text string) Event {
	event := Event{
		Type:    EventText,
		Context: ctx,
		Text:    text,
	}
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		event.Type = EventCommand
		event.Command = strings.TrimPrefix(fields[0], "/")
		event.Args = fields[1:]
	}
	return event
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t EventType) String() string {
	switch t {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}
