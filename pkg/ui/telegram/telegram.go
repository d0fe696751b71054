// Package telegram implements [ui.ChatUI] for Telegram bots using
// telebot v4. Incoming questions, commands, voice notes and documents
// are turned into events, and streamed answers are shown by editing a
// placeholder message in place.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	// Packages
	ui "github.com/mutablelogic/go-divyavaani/pkg/ui"
	tele "gopkg.in/telebot.v4"
)

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	// Minimum interval between streaming edits, within Telegram rate limits
	editInterval = time.Second

	// Placeholder shown while waiting for the first streamed chunk
	streamPlaceholder = "..."

	// Prefix for progress narration previews
	thinkingPrefix = "\U0001F4AD "
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Telegram implements [ui.ChatUI] for the Telegram Bot API.
type Telegram struct {
	bot     *tele.Bot
	events  chan ui.Event
	done    chan struct{}
	allowed map[string]bool // lowercased usernames and ids; empty means open
}

// Opt configures the Telegram surface.
type Opt func(*Telegram) error

// chatContext implements [ui.Context] for one Telegram chat.
type chatContext struct {
	api  tele.API
	chat *tele.Chat
	user *tele.User

	// Streaming state, guarded by mu
	mu       sync.Mutex
	message  *tele.Message // placeholder being edited
	role     string        // role of the current segment
	buf      strings.Builder
	lastEdit time.Time
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a Telegram surface with the given bot token. Long polling
// starts in a background goroutine and New returns immediately.
func New(token string, opts ...Opt) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	t := &Telegram{
		bot:    bot,
		events: make(chan ui.Event, 32),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	// Questions and commands arrive as text, voice notes and audio are
	// transcribed upstream, documents feed the knowledge base
	bot.Handle(tele.OnText, t.onText)
	bot.Handle(tele.OnVoice, t.onVoice)
	bot.Handle(tele.OnAudio, t.onAudio)
	bot.Handle(tele.OnDocument, t.onDocument)

	go func() {
		bot.Start()
		close(t.done)
	}()

	return t, nil
}

// WithAllowedUsers restricts the bot to the given Telegram usernames or
// numeric user ids. Without this option the bot answers anyone.
func WithAllowedUsers(users ...string) Opt {
	return func(t *Telegram) error {
		for _, user := range users {
			user = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(user)), "@")
			if user == "" {
				continue
			}
			if t.allowed == nil {
				t.allowed = make(map[string]bool, len(users))
			}
			t.allowed[user] = true
		}
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Receive blocks until the next incoming event, context cancellation,
// or shutdown. It returns io.EOF when the bot is stopped.
func (t *Telegram) Receive(ctx context.Context) (ui.Event, error) {
	select {
	case evt := <-t.events:
		return evt, nil
	case <-ctx.Done():
		return ui.Event{}, ctx.Err()
	case <-t.done:
		return ui.Event{}, io.EOF
	}
}

// Close stops the bot poller and waits for it to finish.
func (t *Telegram) Close() error {
	t.bot.Stop()
	<-t.done
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// TELEBOT HANDLERS

func (t *Telegram) onText(c tele.Context) error {
	if !t.permitted(c.Sender()) {
		return c.Send("This bot is private.")
	}
	evt := ui.ParseEvent(newContext(c.Bot(), c.Chat(), c.Sender()), c.Text())
	select {
	case t.events <- evt:
	default:
		// Drop when the consumer is not keeping up
	}
	return nil
}

func (t *Telegram) onVoice(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Voice == nil {
		return nil
	}
	mime := msg.Voice.MIME
	if mime == "" {
		mime = "audio/ogg"
	}
	return t.emitAttachment(c, &msg.Voice.File, "voice"+mimeToExt(mime, ".ogg"), mime, msg.Caption)
}

func (t *Telegram) onAudio(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Audio == nil {
		return nil
	}
	filename := msg.Audio.FileName
	if filename == "" {
		filename = "audio" + mimeToExt(msg.Audio.MIME, ".mp3")
	}
	return t.emitAttachment(c, &msg.Audio.File, filename, msg.Audio.MIME, msg.Caption)
}

func (t *Telegram) onDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	return t.emitAttachment(c, &msg.Document.File, msg.Document.FileName, msg.Document.MIME, msg.Caption)
}

// emitAttachment downloads a file into memory and pushes an attachment
// event. The download is buffered because telebot closes the underlying
// reader when the handler returns.
func (t *Telegram) emitAttachment(c tele.Context, file *tele.File, filename, mime, caption string) error {
	if !t.permitted(c.Sender()) {
		return c.Send("This bot is private.")
	}
	rc, err := c.Bot().File(file)
	if err != nil {
		c.Send(fmt.Sprintf("Error downloading file: %v", err))
		return fmt.Errorf("telegram: downloading file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		c.Send(fmt.Sprintf("Error reading file: %v", err))
		return fmt.Errorf("telegram: reading file: %w", err)
	}

	evt := ui.Event{
		Type:    ui.EventAttachment,
		Context: newContext(c.Bot(), c.Chat(), c.Sender()),
		Text:    caption,
		Attachments: []ui.InAttachment{{
			Filename: filename,
			Type:     mime,
			Data:     bytes.NewReader(data),
		}},
	}

	select {
	case t.events <- evt:
	default:
		c.Send("Error: event queue full, attachment dropped")
	}
	return nil
}

// permitted reports whether the sender may use the bot. An empty
// allowlist admits everyone.
func (t *Telegram) permitted(user *tele.User) bool {
	if len(t.allowed) == 0 {
		return true
	}
	if user == nil {
		return false
	}
	if user.Username != "" && t.allowed[strings.ToLower(user.Username)] {
		return true
	}
	return t.allowed[strconv.FormatInt(user.ID, 10)]
}

// mimeToExt returns a file extension for common audio MIME types, or
// the fallback.
func mimeToExt(mime, fallback string) string {
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/flac":
		return ".flac"
	case "audio/aac":
		return ".aac"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return fallback
	}
}

///////////////////////////////////////////////////////////////////////////////
// CONTEXT

func newContext(api tele.API, chat *tele.Chat, user *tele.User) *chatContext {
	return &chatContext{
		api:  api,
		chat: chat,
		user: user,
	}
}

// UserID returns the Telegram user ID as a string.
func (c *chatContext) UserID() string {
	if c.user != nil {
		return strconv.FormatInt(c.user.ID, 10)
	}
	return ""
}

// UserName returns the username, or the first and last name.
func (c *chatContext) UserName() string {
	if c.user == nil {
		return ""
	}
	if c.user.Username != "" {
		return c.user.Username
	}
	name := c.user.FirstName
	if c.user.LastName != "" {
		name += " " + c.user.LastName
	}
	return name
}

// ChatID returns the Telegram chat ID as a string.
func (c *chatContext) ChatID() string {
	if c.chat != nil {
		return strconv.FormatInt(c.chat.ID, 10)
	}
	return ""
}

// SendText sends a plain text message to the chat.
func (c *chatContext) SendText(_ context.Context, text string) error {
	_, err := c.api.Send(c.chat, text)
	return err
}

// SendMarkdown sends a markdown message, converted to Telegram entities
// via goldmark.
func (c *chatContext) SendMarkdown(_ context.Context, markdown string) error {
	text, entities := markdownToEntities(markdown)
	if len(entities) > 0 {
		_, err := c.api.Send(c.chat, text, entities)
		return err
	}
	_, err := c.api.Send(c.chat, text)
	return err
}

// SendAttachment sends a document to the chat.
func (c *chatContext) SendAttachment(_ context.Context, att ui.OutAttachment) error {
	_, err := c.api.Send(c.chat, &tele.Document{
		File:     tele.FromReader(att.Data),
		FileName: att.Filename,
		MIME:     att.Type,
	})
	return err
}

// SetTyping sends the typing chat action. Telegram clears the indicator
// itself, so the stop call is ignored.
func (c *chatContext) SetTyping(_ context.Context, typing bool) error {
	if typing {
		return c.api.Notify(c.chat, tele.Typing)
	}
	return nil
}

// StreamStart begins a streamed answer by sending a placeholder that is
// edited in place as chunks arrive.
func (c *chatContext) StreamStart(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf.Reset()
	c.role = ""

	msg, err := c.api.Send(c.chat, streamPlaceholder)
	if err != nil {
		return err
	}
	c.message = msg
	c.lastEdit = time.Now()
	return nil
}

// StreamChunk appends text to the streaming buffer and periodically
// edits the placeholder with the accumulated content. When the role
// switches from thinking to answer, the narration segment is finalised
// as its own bubble and a fresh placeholder is created lazily.
func (c *chatContext) StreamChunk(_ context.Context, role, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.role != "" && role != c.role {
		c.finaliseSegment()
		c.message = nil
		c.api.Notify(c.chat, tele.Typing) //nolint:errcheck
	}

	c.role = role
	c.buf.WriteString(text)

	if c.message == nil {
		if msg, err := c.api.Send(c.chat, streamPlaceholder); err == nil {
			c.message = msg
			c.lastEdit = time.Now()
		}
	}

	if c.message != nil && time.Since(c.lastEdit) >= editInterval {
		preview := c.buf.String()
		if c.role == ui.RoleThinking {
			preview = thinkingPrefix + preview
		}
		if preview != "" {
			if edited, err := c.api.Edit(c.message, preview); err == nil {
				c.message = edited
			}
			c.lastEdit = time.Now()
		}
	}
	return nil
}

// StreamEnd finalises the last streamed segment with full formatting.
func (c *chatContext) StreamEnd(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.message == nil && c.buf.Len() == 0 {
		return nil
	}

	// Buffered content without a placeholder yet
	if c.message == nil {
		if msg, err := c.api.Send(c.chat, streamPlaceholder); err == nil {
			c.message = msg
		} else {
			return nil
		}
	}

	if c.buf.Len() == 0 {
		c.api.Delete(c.message) //nolint:errcheck
		c.message = nil
		return nil
	}

	c.finaliseSegment()
	c.message = nil
	return nil
}

// finaliseSegment formats the buffered segment according to its role
// and edits the placeholder with the result. Must be called with mu
// held.
func (c *chatContext) finaliseSegment() {
	content := strings.TrimSpace(c.buf.String())
	c.buf.Reset()

	if content == "" {
		c.api.Delete(c.message) //nolint:errcheck
		return
	}

	if c.role == ui.RoleThinking {
		// Narration renders as a blockquote
		entities := tele.Entities{{
			Type:   tele.EntityBlockquote,
			Offset: 0,
			Length: utf16Len(content),
		}}
		if edited, err := c.api.Edit(c.message, content, entities); err == nil {
			c.message = edited
		} else {
			c.api.Edit(c.message, content) //nolint:errcheck
		}
		return
	}

	// Answer text renders with full markdown entities
	text, entities := markdownToEntities(content)
	if len(entities) > 0 {
		if edited, err := c.api.Edit(c.message, text, entities); err == nil {
			c.message = edited
			return
		}
	}
	c.api.Edit(c.message, text) //nolint:errcheck
}
