// Package command implements the slash commands shared by the chat
// surfaces.
//
// The [Handler] processes commands like /conversations, /language and
// /feedback against the guidance service, and works with any
// [ui.Context] so the terminal and Telegram frontends share one
// implementation.
package command

import (
	"context"
	"fmt"
	"strings"

	// Packages
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-divyavaani/pkg/types"
	ui "github.com/mutablelogic/go-divyavaani/pkg/ui"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is the API surface the command handler needs.
// *httpclient.Client satisfies this interface.
type Client interface {
	ListConversations(ctx context.Context, opts ...opt.Opt) (*schema.ListConversationResponse, error)
	GetConversation(ctx context.Context, id string) (*schema.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	SubmitFeedback(ctx context.Context, req schema.FeedbackRequest) (*schema.FeedbackResponse, error)
	PopularQuestions(ctx context.Context, opts ...opt.Opt) (*schema.PopularQuestionsResponse, error)
	ListVoices(ctx context.Context, opts ...opt.Opt) (*schema.ListVoicesResponse, error)
	Health(ctx context.Context) (*schema.HealthResponse, error)
}

// Settings is the per-chat state the commands read and mutate. The
// frontend owns the value and applies it to each query it sends.
type Settings struct {
	// Conversation is the active conversation id, empty before the
	// first question.
	Conversation string

	// Language is the preferred response language tag.
	Language string

	// Sources requests source citations with each answer.
	Sources bool

	// Thinking shows retrieval progress while answering.
	Thinking bool

	// LastQueryID is the most recent query, the target for /feedback.
	LastQueryID string
}

// Hooks lets a frontend react to state changes made by commands. A nil
// Hooks is safe.
type Hooks interface {
	// OnConversationChanged is called when the active conversation
	// changes, with the new id or empty for none.
	OnConversationChanged(id string)

	// OnConversationReset is called when /new discards the active
	// conversation, so the frontend can clear its transcript.
	OnConversationReset()
}

// Handler processes slash commands against the guidance service.
type Handler struct {
	client Client
	hooks  Hooks
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a command handler with the given client and optional hooks.
func New(client Client, hooks Hooks) *Handler {
	return &Handler{
		client: client,
		hooks:  hooks,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Handle processes a slash command event, mutating settings in place
// when the command changes chat state.
func (h *Handler) Handle(ctx context.Context, evt ui.Event, settings *Settings) error {
	switch evt.Command {
	case "new":
		return h.cmdNew(ctx, evt, settings)
	case "conversation":
		return h.cmdConversation(ctx, evt, settings)
	case "conversations":
		return h.cmdConversations(ctx, evt, settings)
	case "delete":
		return h.cmdDelete(ctx, evt, settings)
	case "language":
		return h.cmdLanguage(ctx, evt, settings)
	case "sources":
		return h.cmdSources(ctx, evt, settings)
	case "thinking":
		return h.cmdThinking(ctx, evt, settings)
	case "feedback":
		return h.cmdFeedback(ctx, evt, settings)
	case "popular":
		return h.cmdPopular(ctx, evt)
	case "voices":
		return h.cmdVoices(ctx, evt)
	case "health":
		return h.cmdHealth(ctx, evt)
	case "help", "start":
		return h.cmdHelp(ctx, evt)
	default:
		return fmt.Errorf("unknown command: /%s (try /help)", evt.Command)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (h *Handler) cmdNew(ctx context.Context, evt ui.Event, settings *Settings) error {
	settings.Conversation = ""
	settings.LastQueryID = ""
	if h.hooks != nil {
		h.hooks.OnConversationChanged("")
		h.hooks.OnConversationReset()
	}
	return evt.Context.SendText(ctx, "Started a new conversation")
}

func (h *Handler) cmdConversation(ctx context.Context, evt ui.Event, settings *Settings) error {
	if len(evt.Args) == 0 {
		if settings.Conversation == "" {
			return evt.Context.SendText(ctx, "No active conversation (ask a question to start one)")
		}
		conversation, err := h.client.GetConversation(ctx, settings.Conversation)
		if err != nil {
			return err
		}
		var buf strings.Builder
		buf.WriteString("| | |\n|---|---|")
		buf.WriteString(fmt.Sprintf("\n| **Conversation** | %s |", conversation.ID))
		if conversation.Title != "" {
			buf.WriteString(fmt.Sprintf("\n| **Title** | %s |", conversation.Title))
		}
		if conversation.Language != "" {
			buf.WriteString(fmt.Sprintf("\n| **Language** | %s |", types.LanguageName(conversation.Language)))
		}
		buf.WriteString(fmt.Sprintf("\n| **Messages** | %d |", len(conversation.Messages)))
		if sources := conversation.Sources(); len(sources) > 0 {
			buf.WriteString(fmt.Sprintf("\n| **Sources** | %d |", len(sources)))
		}
		if !conversation.Created.IsZero() {
			buf.WriteString(fmt.Sprintf("\n| **Created** | %s |", conversation.Created.Format("2006-01-02 15:04")))
		}
		if !conversation.Modified.IsZero() {
			buf.WriteString(fmt.Sprintf("\n| **Modified** | %s |", conversation.Modified.Format("2006-01-02 15:04")))
		}
		return evt.Context.SendMarkdown(ctx, buf.String())
	}

	// Switch to a different conversation
	id := evt.Args[0]
	conversation, err := h.client.GetConversation(ctx, id)
	if err != nil {
		return fmt.Errorf("conversation %q not found", id)
	}
	settings.Conversation = conversation.ID
	settings.LastQueryID = ""
	if h.hooks != nil {
		h.hooks.OnConversationChanged(conversation.ID)
	}
	return evt.Context.SendText(ctx, fmt.Sprintf("Switched to conversation %s (%d messages)", conversation.ID, len(conversation.Messages)))
}

func (h *Handler) cmdConversations(ctx context.Context, evt ui.Event, settings *Settings) error {
	response, err := h.client.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(response.Body) == 0 {
		return evt.Context.SendText(ctx, "No conversations yet")
	}
	return evt.Context.SendMarkdown(ctx, uitable.RenderMarkdown(schema.ConversationTable{
		Conversations:       response.Body,
		CurrentConversation: settings.Conversation,
	}))
}

func (h *Handler) cmdDelete(ctx context.Context, evt ui.Event, settings *Settings) error {
	if len(evt.Args) == 0 {
		return fmt.Errorf("usage: /delete <conversation-id>")
	}
	id := evt.Args[0]
	if id == settings.Conversation {
		return fmt.Errorf("cannot delete the active conversation (use /new first)")
	}
	if err := h.client.DeleteConversation(ctx, id); err != nil {
		return err
	}
	return evt.Context.SendText(ctx, fmt.Sprintf("Deleted conversation %s", id))
}

func (h *Handler) cmdLanguage(ctx context.Context, evt ui.Event, settings *Settings) error {
	if len(evt.Args) == 0 {
		if settings.Language == "" {
			return evt.Context.SendText(ctx, "No preferred language set (answers follow the language of each question)")
		}
		return evt.Context.SendText(ctx, fmt.Sprintf("Preferred language: %s", types.LanguageName(settings.Language)))
	}
	tag, err := types.NormaliseLanguage(evt.Args[0])
	if err != nil {
		return fmt.Errorf("unknown language %q", evt.Args[0])
	}
	settings.Language = tag
	if tag == "" {
		return evt.Context.SendText(ctx, "Preferred language cleared")
	}
	return evt.Context.SendText(ctx, fmt.Sprintf("Answers will be in %s", types.LanguageName(tag)))
}

func (h *Handler) cmdSources(ctx context.Context, evt ui.Event, settings *Settings) error {
	state, err := toggle(evt.Args, settings.Sources)
	if err != nil {
		return fmt.Errorf("usage: /sources [on|off]")
	}
	settings.Sources = state
	if state {
		return evt.Context.SendText(ctx, "Source citations on")
	}
	return evt.Context.SendText(ctx, "Source citations off")
}

func (h *Handler) cmdThinking(ctx context.Context, evt ui.Event, settings *Settings) error {
	state, err := toggle(evt.Args, settings.Thinking)
	if err != nil {
		return fmt.Errorf("usage: /thinking [on|off]")
	}
	settings.Thinking = state
	if state {
		return evt.Context.SendText(ctx, "Progress narration on")
	}
	return evt.Context.SendText(ctx, "Progress narration off")
}

func (h *Handler) cmdFeedback(ctx context.Context, evt ui.Event, settings *Settings) error {
	if len(evt.Args) == 0 {
		return fmt.Errorf("usage: /feedback <helpful|unhelpful|harmful> [comment]")
	}
	if settings.LastQueryID == "" {
		return fmt.Errorf("nothing to rate yet (ask a question first)")
	}
	var rating schema.Rating
	if err := rating.UnmarshalText([]byte(evt.Args[0])); err != nil {
		return fmt.Errorf("usage: /feedback <helpful|unhelpful|harmful> [comment]")
	}
	if _, err := h.client.SubmitFeedback(ctx, schema.FeedbackRequest{
		QueryID:        settings.LastQueryID,
		ConversationID: settings.Conversation,
		Rating:         rating,
		Comment:        strings.Join(evt.Args[1:], " "),
	}); err != nil {
		return err
	}
	return evt.Context.SendText(ctx, "Thank you, feedback recorded")
}

func (h *Handler) cmdPopular(ctx context.Context, evt ui.Event) error {
	var opts []opt.Opt
	if len(evt.Args) > 0 {
		opts = append(opts, opt.SetString(opt.CategoryKey, evt.Args[0]))
	}
	response, err := h.client.PopularQuestions(ctx, opts...)
	if err != nil {
		return err
	}
	if len(response.Body) == 0 {
		return evt.Context.SendText(ctx, "No popular questions found")
	}
	return evt.Context.SendMarkdown(ctx, uitable.RenderMarkdown(schema.PopularQuestionTable(response.Body)))
}

func (h *Handler) cmdVoices(ctx context.Context, evt ui.Event) error {
	response, err := h.client.ListVoices(ctx)
	if err != nil {
		return err
	}
	if len(response.Body) == 0 {
		return evt.Context.SendText(ctx, "No voices available")
	}
	return evt.Context.SendMarkdown(ctx, uitable.RenderMarkdown(schema.VoiceTable(response.Body)))
}

func (h *Handler) cmdHealth(ctx context.Context, evt ui.Event) error {
	response, err := h.client.Health(ctx)
	if err != nil {
		return err
	}
	return evt.Context.SendMarkdown(ctx, uitable.RenderMarkdown(schema.HealthTable(*response)))
}

func (h *Handler) cmdHelp(ctx context.Context, evt ui.Event) error {
	help := "Ask a question in any supported language, or send a voice note.\n\n" +
		"```\n" +
		"/new                      - Start a new conversation\n" +
		"/conversation [id]        - Show or switch the active conversation\n" +
		"/conversations            - List your conversations\n" +
		"/delete <id>              - Delete a conversation\n" +
		"/language [tag]           - Show or set the preferred answer language\n" +
		"/sources [on|off]         - Toggle source citations\n" +
		"/thinking [on|off]        - Toggle progress narration\n" +
		"/feedback <rating> [text] - Rate the last answer\n" +
		"/popular [category]       - Show popular questions\n" +
		"/voices                   - List text-to-speech voices\n" +
		"/health                   - Show service health\n" +
		"/help                     - Show this help\n" +
		"```"
	return evt.Context.SendText(ctx, help)
}

// toggle interprets on/off arguments against the current state. With no
// arguments the state is flipped.
func toggle(args []string, current bool) (bool, error) {
	if len(args) == 0 {
		return !current, nil
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return current, fmt.Errorf("invalid argument %q", args[0])
	}
}
