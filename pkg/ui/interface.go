// Package ui defines the interface between the guidance client and its
// chat surfaces.
//
// Implementations of [ChatUI] adapt a platform (interactive terminal,
// Telegram) to a common event model. The runner loops over
// [ChatUI.Receive] for incoming questions, commands and attachments,
// and replies through the [Context] carried by each event. Streamed
// answers arrive chunk by chunk via StreamStart, StreamChunk and
// StreamEnd so every surface can show text as the service produces it.
package ui

import "context"

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// ChatUI is the surface a guidance session runs on. It is an event
// source: callers loop over Receive to process incoming user activity.
type ChatUI interface {
	// Receive blocks until the next incoming event is available, the
	// context is cancelled, or the surface is closed. It returns io.EOF
	// when the surface is permanently closed (terminal EOF, bot
	// shutdown).
	Receive(ctx context.Context) (Event, error)

	// Close releases resources held by the surface (polling loops,
	// terminal state).
	Close() error
}

// Context identifies the user and chat a single event belongs to, and
// carries the reply methods for that chat.
type Context interface {
	// UserID returns a platform-unique identifier for the user who
	// triggered the event (Telegram user ID, terminal uid).
	UserID() string

	// UserName returns a display name for the user.
	UserName() string

	// ChatID returns a platform-unique identifier for the chat the
	// event arrived in (Telegram chat ID, terminal session).
	ChatID() string

	// SendText sends a plain text message to the chat.
	SendText(ctx context.Context, text string) error

	// SendMarkdown sends a markdown-formatted message. Surfaces that
	// support rich text render it natively; others fall back to ANSI
	// styling or plain text.
	SendMarkdown(ctx context.Context, markdown string) error

	// SendAttachment sends a file to the chat, such as synthesised
	// speech audio.
	SendAttachment(ctx context.Context, att OutAttachment) error

	// SetTyping shows or hides a platform typing indicator while a
	// query is in flight. Surfaces may ignore the stop call when the
	// platform clears the indicator itself.
	SetTyping(ctx context.Context, typing bool) error

	// StreamStart begins a streamed answer in the chat. Subsequent
	// StreamChunk calls append to it.
	StreamStart(ctx context.Context) error

	// StreamChunk appends a text fragment to the streamed answer. The
	// role is RoleAnswer for answer text or RoleThinking for progress
	// narration, so the surface can style the two differently.
	StreamChunk(ctx context.Context, role, text string) error

	// StreamEnd finalises the streamed answer. Surfaces that support
	// markdown may re-render the complete text with full formatting.
	StreamEnd(ctx context.Context) error
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Roles for streamed chunks
const (
	RoleAnswer   = "answer"
	RoleThinking = "thinking"
)
