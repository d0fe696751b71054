package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	ui "github.com/mutablelogic/go-divyavaani/pkg/ui"
	command "github.com/mutablelogic/go-divyavaani/pkg/ui/command"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
	trace "go.opentelemetry.io/otel/trace"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// runner drives a chat surface against the guidance service. Events for
// the same chat are handled in order, while separate chats proceed
// concurrently up to a bound.
type runner struct {
	client   *httpclient.Client
	surface  ui.ChatUI
	logger   *Logger
	tracer   trace.Tracer
	settings command.Settings

	// hooks builds the per-chat command hooks, and may be nil
	hooks func(chat string) command.Hooks

	// restore is called when a chat resumes an existing conversation,
	// with its history, and may be nil
	restore func(chat string, conversation *schema.Conversation)

	mu    sync.Mutex
	chats map[string]*chatState
}

// chatState is the per-chat session and settings
type chatState struct {
	session  *httpclient.Session
	settings command.Settings
	handler  *command.Handler
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// Bound on chats being handled at the same time
	maxConcurrentChats = 64

	// Events queued per chat before the dispatcher blocks
	chatQueueDepth = 16
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// newRunner creates a runner for a chat surface. The settings seed the
// state of each new chat.
func newRunner(ctx *Globals, client *httpclient.Client, surface ui.ChatUI, settings command.Settings) *runner {
	return &runner{
		client:   client,
		surface:  surface,
		logger:   ctx.logger,
		tracer:   ctx.tracer,
		settings: settings,
		chats:    make(map[string]*chatState),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run receives events from the surface until it closes or the context
// ends, dispatching each event to a per-chat worker.
func (r *runner) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	events := make(chan ui.Event)

	// Receive events from the surface
	group.Go(func() error {
		defer close(events)
		for {
			event, err := r.surface.Receive(ctx)
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			} else if err != nil {
				return err
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return nil
			}
		}
	})

	// Dispatch events to one worker per chat, so a chat handles its
	// events in order
	group.Go(func() error {
		var workers errgroup.Group
		workers.SetLimit(maxConcurrentChats)
		defer workers.Wait()

		queues := make(map[string]chan ui.Event)
		defer func() {
			for _, queue := range queues {
				close(queue)
			}
		}()

		for event := range events {
			chat := event.Context.ChatID()
			queue, exists := queues[chat]
			if !exists {
				queue = make(chan ui.Event, chatQueueDepth)
				queues[chat] = queue
				workers.Go(func() error {
					for event := range queue {
						r.handle(ctx, event)
					}
					return nil
				})
			}
			select {
			case queue <- event:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	return group.Wait()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// handle processes one event, reporting failures to the chat rather
// than ending the runner.
func (r *runner) handle(ctx context.Context, event ui.Event) {
	state := r.state(event.Context.ChatID())

	var err error
	switch event.Type {
	case ui.EventCommand:
		err = state.handler.Handle(ctx, event, &state.settings)
	case ui.EventText:
		err = r.ask(ctx, state, event, event.Text)
	case ui.EventAttachment:
		err = r.attachment(ctx, state, event)
	}
	if err != nil && ctx.Err() == nil {
		r.logger.Debugf(ctx, "chat %s: %v", event.Context.ChatID(), err)
		if err := event.Context.SendText(ctx, fmt.Sprintf("Sorry, that didn't work: %v", err)); err != nil {
			r.logger.Debugf(ctx, "chat %s: %v", event.Context.ChatID(), err)
		}
	}
}

// state returns the state for a chat, creating it on first use
func (r *runner) state(chat string) *chatState {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, exists := r.chats[chat]
	if !exists {
		state = &chatState{settings: r.settings}
		var hooks command.Hooks
		if r.hooks != nil {
			hooks = r.hooks(chat)
		}
		state.handler = command.New(r.client, hooks)
		r.chats[chat] = state
	}
	return state
}

// ask sends a question through the chat session, streaming the answer
// back to the surface as it arrives.
func (r *runner) ask(ctx context.Context, state *chatState, event ui.Event, question string) (err error) {
	if strings.TrimSpace(question) == "" {
		return nil
	}

	// OTEL
	parent, endSpan := otel.StartSpan(r.tracer, ctx, "Ask")
	defer func() { endSpan(err) }()

	session, err := r.session(parent, state, event)
	if err != nil {
		return err
	}

	// Options from the chat settings
	opts := []opt.Opt{}
	if state.settings.Language != "" {
		opts = append(opts, httpclient.WithLanguage(state.settings.Language))
	}
	if state.settings.Sources {
		opts = append(opts, httpclient.WithSources())
	}
	if state.settings.Thinking {
		opts = append(opts, httpclient.WithThinking())
	}

	event.Context.SetTyping(parent, true)
	defer event.Context.SetTyping(parent, false)

	stream, err := session.Ask(parent, question, opts...)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Relay events to the surface as the answer streams
	if err := event.Context.StreamStart(parent); err != nil {
		return err
	}
	for {
		next, err := stream.Next()
		if err != nil {
			break
		}
		switch next.Type {
		case schema.EventThinking:
			if err := event.Context.StreamChunk(parent, ui.RoleThinking, next.Message); err != nil {
				return err
			}
		case schema.EventToken:
			if err := event.Context.StreamChunk(parent, ui.RoleAnswer, next.Token); err != nil {
				return err
			}
		}
	}
	if err := event.Context.StreamEnd(parent); err != nil {
		return err
	}

	// The response so far is kept even when the stream failed partway
	response := stream.Response()
	if response.QueryID != "" {
		state.settings.LastQueryID = response.QueryID
	}
	if err := stream.Err(); err != nil {
		return err
	}

	// Report the answered query; tracking is advisory
	if response.QueryID != "" {
		if err := r.client.Track(parent, schema.AnalyticsEvent{
			Name:       "query_answered",
			SessionID:  state.settings.Conversation,
			Properties: map[string]any{"query_id": response.QueryID},
		}); err != nil {
			r.logger.Debugf(parent, "track: %v", err)
		}
	}

	// Cite sources below the answer
	if state.settings.Sources && len(response.Sources) > 0 {
		return event.Context.SendMarkdown(parent, uitable.RenderMarkdown(schema.SourceTable(response.Sources)))
	}
	return nil
}

// session returns the chat session, reconciling it with the
// conversation selected by the chat commands.
func (r *runner) session(ctx context.Context, state *chatState, event ui.Event) (*httpclient.Session, error) {
	want := state.settings.Conversation
	if state.session != nil && state.session.ID() == want {
		return state.session, nil
	}

	// End any session for a superseded conversation
	if state.session != nil {
		state.session.Close()
		state.session = nil
	}

	if want == "" {
		session, err := r.client.NewSession()
		if err != nil {
			return nil, err
		}
		state.session = session
	} else {
		session, err := r.client.ResumeSession(ctx, want)
		if err != nil {
			return nil, err
		}
		state.session = session
		if r.restore != nil {
			r.restore(event.Context.ChatID(), session.Conversation())
		}
	}
	state.settings.Conversation = state.session.ID()
	return state.session, nil
}

// attachment transcribes voice notes into questions and uploads
// documents to the corpus.
func (r *runner) attachment(ctx context.Context, state *chatState, event ui.Event) error {
	for _, attachment := range event.Attachments {
		name := attachment.Filename
		if name == "" {
			name = "attachment"
		}
		switch {
		case strings.HasPrefix(attachment.Type, "audio/"):
			response, err := r.client.Transcribe(ctx, schema.TranscribeRequest{
				Audio:    client.File{Path: name, Body: attachment.Data},
				Language: state.settings.Language,
			})
			if err != nil {
				return err
			}
			if err := event.Context.SendText(ctx, fmt.Sprintf("You asked: %s", response.Text)); err != nil {
				return err
			}
			if err := r.ask(ctx, state, event, response.Text); err != nil {
				return err
			}
		default:
			response, err := r.client.Upload(ctx, schema.UploadRequest{
				File:        client.File{Path: name, Body: attachment.Data},
				Title:       name,
				Description: event.Text,
			})
			if err != nil {
				return err
			}
			if err := event.Context.SendText(ctx, fmt.Sprintf("Received %s for indexing (%s)", response.Name, response.Status)); err != nil {
				return err
			}
		}
	}
	return nil
}
