// Package bubbletea implements [ui.ChatUI] for interactive terminals
// using the Charm bubbletea framework. It provides a scrollable
// transcript, an input prompt, a spinner while a query is in flight,
// and markdown rendering via glamour.
package bubbletea

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"strings"
	"sync"

	// Packages
	spinner "github.com/charmbracelet/bubbles/spinner"
	textinput "github.com/charmbracelet/bubbles/textinput"
	viewport "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	glamour "github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	wordwrap "github.com/muesli/reflow/wordwrap"
	termenv "github.com/muesli/termenv"
	ui "github.com/mutablelogic/go-divyavaani/pkg/ui"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Terminal implements [ui.ChatUI] for interactive terminal sessions.
type Terminal struct {
	program *tea.Program
	events  chan ui.Event
	done    chan struct{}
	err     error
	mu      sync.Mutex
}

// model is the bubbletea model holding the TUI state.
type model struct {
	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	transcript []transcriptEntry
	busy       bool
	width      int
	height     int
	ready      bool
	quitting   bool
	events     chan<- ui.Event
	renderer   *glamour.TermRenderer
	stylePath  string // glamour style, detected before the TUI starts
	ctx        *termContext
}

// transcriptEntry is one message in the transcript.
type transcriptEntry struct {
	role      string    // "user", ui.RoleAnswer, ui.RoleThinking, "system", "error"
	text      string    // rendered text
	raw       string    // unrendered text, kept for re-rendering on resize
	segments  []segment // role-tagged runs accumulated while streaming
	streaming bool
	glamoured bool
}

// segment is a run of streamed text tagged with its role.
type segment struct {
	role string
	text string
}

// termContext implements [ui.Context] for the terminal session.
type termContext struct {
	program  *tea.Program
	userID   string
	userName string
}

///////////////////////////////////////////////////////////////////////////////
// MESSAGES

type appendMsg struct {
	role string
	text string
}

type busyMsg struct {
	busy bool
}

type streamStartMsg struct{}

type streamChunkMsg struct {
	role string
	text string
}

type streamEndMsg struct{}

type clearMsg struct{}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	answerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	systemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a terminal surface. The TUI takes over the terminal and
// should be closed when done.
func New() (*Terminal, error) {
	username := "user"
	uid := "terminal"
	if u, err := user.Current(); err == nil {
		username = u.Username
		uid = u.Uid
	}

	// Detect the terminal background before bubbletea starts, so the
	// escape-sequence response is consumed here rather than leaking
	// into the input reader
	stylePath := "dark"
	if !termenv.HasDarkBackground() {
		stylePath = "light"
	}

	events := make(chan ui.Event, 1)
	tctx := &termContext{
		userID:   uid,
		userName: username,
	}

	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()
	input.CharLimit = 0

	m := &model{
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		events:    events,
		stylePath: stylePath,
		ctx:       tctx,
	}

	t := &Terminal{
		events: events,
		done:   make(chan struct{}),
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	t.program = program
	tctx.program = program

	go func() {
		defer close(t.done)
		if _, err := program.Run(); err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
		}
		close(events)
	}()

	return t, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Receive blocks until the next user event or context cancellation. It
// returns io.EOF when the user quits the TUI.
func (t *Terminal) Receive(ctx context.Context) (ui.Event, error) {
	select {
	case <-ctx.Done():
		return ui.Event{}, ctx.Err()
	case evt, ok := <-t.events:
		if !ok {
			t.mu.Lock()
			err := t.err
			t.mu.Unlock()
			if err != nil {
				return ui.Event{}, err
			}
			return ui.Event{}, io.EOF
		}
		return evt, nil
	}
}

// Close shuts down the terminal surface.
func (t *Terminal) Close() error {
	t.program.Quit()
	<-t.done
	return nil
}

// AppendHistory adds a message to the transcript without generating an
// event, used when restoring a resumed conversation.
func (t *Terminal) AppendHistory(role, text string) {
	t.program.Send(appendMsg{role: role, text: text})
}

// ClearHistory clears the transcript.
func (t *Terminal) ClearHistory() {
	t.program.Send(clearMsg{})
}

///////////////////////////////////////////////////////////////////////////////
// CONTEXT

func (c *termContext) UserID() string   { return c.userID }
func (c *termContext) UserName() string { return c.userName }
func (c *termContext) ChatID() string   { return "terminal" }

func (c *termContext) SendText(ctx context.Context, text string) error {
	c.program.Send(appendMsg{role: "system", text: text})
	return nil
}

func (c *termContext) SendMarkdown(ctx context.Context, markdown string) error {
	c.program.Send(appendMsg{role: ui.RoleAnswer, text: markdown})
	return nil
}

func (c *termContext) SendAttachment(ctx context.Context, att ui.OutAttachment) error {
	c.program.Send(appendMsg{
		role: "system",
		text: fmt.Sprintf("[Attachment: %s (%s)]", att.Filename, att.Type),
	})
	return nil
}

func (c *termContext) SetTyping(ctx context.Context, typing bool) error {
	c.program.Send(busyMsg{busy: typing})
	return nil
}

func (c *termContext) StreamStart(ctx context.Context) error {
	c.program.Send(streamStartMsg{})
	return nil
}

func (c *termContext) StreamChunk(ctx context.Context, role, text string) error {
	c.program.Send(streamChunkMsg{role: role, text: text})
	return nil
}

func (c *termContext) StreamEnd(ctx context.Context) error {
	c.program.Send(streamEndMsg{})
	return nil
}

// AppendHistory adds a pre-existing message to the transcript.
func (c *termContext) AppendHistory(role, text string) {
	c.program.Send(appendMsg{role: role, text: text})
}

// ClearHistory clears the transcript.
func (c *termContext) ClearHistory() {
	c.program.Send(clearMsg{})
}

///////////////////////////////////////////////////////////////////////////////
// MODEL

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.transcript = append(m.transcript, transcriptEntry{role: "user", text: text})
			m.refresh()
			m.events <- ui.ParseEvent(m.ctx, text)
			return m, nil
		}

	case tea.WindowSizeMsg:
		footerHeight := 2 // input and status line
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.YPosition = 0
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.input.Width = msg.Width - 4

		// Recreate the glamour renderer at the new width
		m.newRenderer()
		m.rerender()
		m.refresh()
		return m, nil

	case appendMsg:
		entry := transcriptEntry{role: msg.role, text: msg.text, raw: msg.text}
		if (msg.role == ui.RoleAnswer || msg.role == "system") && m.renderer != nil {
			if out, err := m.renderer.Render(msg.text); err == nil {
				entry.text = strings.TrimSpace(out)
				entry.glamoured = true
			}
		}
		m.transcript = append(m.transcript, entry)
		m.busy = false
		m.refresh()
		return m, nil

	case streamStartMsg:
		m.transcript = append(m.transcript, transcriptEntry{streaming: true})
		m.busy = true
		m.refresh()
		return m, nil

	case streamChunkMsg:
		if n := len(m.transcript); n > 0 && m.transcript[n-1].streaming {
			entry := &m.transcript[n-1]
			entry.raw += msg.text
			if entry.role == "" {
				entry.role = msg.role
			}

			// Append to the current segment, or start a new one when
			// the role changes
			if len(entry.segments) > 0 && entry.segments[len(entry.segments)-1].role == msg.role {
				entry.segments[len(entry.segments)-1].text += msg.text
			} else {
				entry.segments = append(entry.segments, segment{role: msg.role, text: msg.text})
			}

			entry.text = m.renderLive(entry.segments)
			m.refresh()
		}
		return m, nil

	case streamEndMsg:
		if n := len(m.transcript); n > 0 && m.transcript[n-1].streaming {
			entry := &m.transcript[n-1]
			entry.streaming = false
			if entry.role == "" {
				entry.role = ui.RoleAnswer
			}

			if len(entry.segments) <= 1 {
				entry.text = m.renderFinal(entry.segments)
			} else {
				// Split segments into separate entries so each gets its
				// own role label
				segs := entry.segments
				entry.role = segs[0].role
				entry.text = m.renderSegment(segs[0])
				entry.segments = nil
				for _, seg := range segs[1:] {
					m.transcript = append(m.transcript, transcriptEntry{
						role: seg.role,
						text: m.renderSegment(seg),
						raw:  seg.text,
					})
				}
			}
		}
		m.busy = false
		m.refresh()
		return m, nil

	case busyMsg:
		m.busy = msg.busy
		return m, nil

	case clearMsg:
		m.transcript = nil
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Forward navigation keys to the viewport for scrolling, but keep
	// typing keys away from it so the view does not jump per keystroke
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey {
		switch keyMsg.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	var status string
	if m.busy {
		status = dimStyle.Render(m.spinner.View() + " thinking...")
	} else {
		status = dimStyle.Render("ctrl+c to quit")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), status)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// renderLive produces styled, wrapped text from role-tagged segments
// while the stream is still running. Narration renders dim, answer text
// plain. A role label separates segments when the role changes.
func (m *model) renderLive(segs []segment) string {
	w := m.wrapWidth()
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteString("\n\n" + m.roleLabel(seg.role) + "\n")
		}
		wrapped := wordwrap.String(seg.text, w)
		if seg.role == ui.RoleThinking {
			b.WriteString(dimStyle.Render(wrapped))
		} else {
			b.WriteString(wrapped)
		}
	}
	return b.String()
}

// renderFinal renders each segment with full glamour formatting, with
// role labels between segments when the role changes.
func (m *model) renderFinal(segs []segment) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteString("\n\n" + m.roleLabel(seg.role) + "\n")
		}
		b.WriteString(m.renderSegment(seg))
	}
	return b.String()
}

// renderSegment renders one segment with glamour markdown, dimmed for
// narration.
func (m *model) renderSegment(seg segment) string {
	var rendered string
	if m.renderer != nil {
		if out, err := m.renderer.Render(seg.text); err == nil {
			rendered = strings.TrimSpace(out)
		}
	}
	if rendered == "" {
		rendered = wordwrap.String(seg.text, m.wrapWidth())
	}
	if seg.role == ui.RoleThinking {
		return dimStyle.Render(rendered)
	}
	return rendered
}

// wrapWidth returns the available text width, accounting for the role
// prefix and padding.
func (m *model) wrapWidth() int {
	const margin = 14
	return max(m.width-margin, 20)
}

// newRenderer creates a glamour renderer at the current wrap width,
// using the pre-detected style so the terminal is not queried inside
// the event loop.
func (m *model) newRenderer() {
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.stylePath),
		glamour.WithWordWrap(m.wrapWidth()),
	); err == nil {
		m.renderer = r
	}
}

// rerender re-renders markdown transcript entries with the current
// renderer, after a resize.
func (m *model) rerender() {
	if m.renderer == nil {
		return
	}
	for i := range m.transcript {
		entry := &m.transcript[i]
		if entry.streaming || entry.raw == "" {
			continue
		}
		if entry.role != ui.RoleAnswer && entry.role != "system" {
			continue
		}
		if out, err := m.renderer.Render(entry.raw); err == nil {
			entry.text = strings.TrimSpace(out)
			entry.glamoured = true
		}
	}
}

// refresh rebuilds the viewport content from the transcript.
func (m *model) refresh() {
	var b strings.Builder
	for _, entry := range m.transcript {
		if entry.role != "" {
			b.WriteString(m.roleLabel(entry.role))
		}
		if entry.text != "" {
			if entry.glamoured {
				// Glamour handles margins and wrapping itself
				b.WriteString("\n" + entry.text)
			} else {
				b.WriteString("\n" + indent(entry.text))
			}
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// roleLabel returns the styled display label for a role.
func (m *model) roleLabel(role string) string {
	switch role {
	case "user":
		return userStyle.Render("you:")
	case ui.RoleAnswer:
		return answerStyle.Render("divyavaani:")
	case ui.RoleThinking:
		return dimStyle.Render("thinking:")
	case "system":
		return systemStyle.Render("system:")
	case "error":
		return errorStyle.Render("error:")
	default:
		return role + ":"
	}
}

// indent gives every line a two space indent, matching glamour's left
// margin so the transcript lines up.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "  ") {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
