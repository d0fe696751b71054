package main

import (
	"encoding/json"
	"fmt"
	"os"

	// Packages
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AskCommands struct {
	Ask AskCommand `cmd:"" name:"ask" help:"Ask a question and stream the answer." group:"QUERY"`
}

type AskCommand struct {
	schema.QueryRequest
	New      bool `name:"new" help:"Start a new conversation" optional:""`
	NoStream bool `name:"no-stream" help:"Wait for the complete answer" optional:""`
	JSON     bool `name:"json" help:"Print the response as JSON" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *AskCommand) Run(ctx *Globals) (err error) {
	// Load defaults for conversation and language when not explicitly set
	if cmd.New {
		cmd.ConversationID = ""
	} else if cmd.ConversationID == "" {
		cmd.ConversationID = ctx.defaults.GetString(defaultConversation)
	}
	if cmd.Language == "" {
		cmd.Language = ctx.defaults.GetString(defaultLanguage)
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "AskCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if cmd.ConversationID != "" {
		opts = append(opts, httpclient.WithConversation(cmd.ConversationID))
	}
	if cmd.Language != "" {
		opts = append(opts, httpclient.WithLanguage(cmd.Language))
	}
	if cmd.UserID != "" {
		opts = append(opts, httpclient.WithUser(cmd.UserID))
	}
	if cmd.Sources {
		opts = append(opts, httpclient.WithSources())
	}
	if cmd.Thinking {
		opts = append(opts, httpclient.WithThinking())
	}
	if !cmd.NoStream && !cmd.JSON && !ctx.Debug {
		opts = append(opts, httpclient.WithStream(printEvent))
	}

	// Send the question, printing events as they arrive
	response, queryErr := client.Query(parent, cmd.Question, opts...)
	if response != nil {
		// Persist the conversation and query for later invocations
		if response.ConversationID != "" {
			if err := ctx.defaults.Set(defaultConversation, response.ConversationID); err != nil {
				return err
			}
		}
		if response.QueryID != "" {
			if err := ctx.defaults.Set(defaultQuery, response.QueryID); err != nil {
				return err
			}
		}
		if cmd.Language != "" {
			if err := ctx.defaults.Set(defaultLanguage, cmd.Language); err != nil {
				return err
			}
		}
	}
	if queryErr != nil {
		// A partial answer is kept when the stream fails partway
		if response != nil && response.Answer != "" && !cmd.NoStream && !cmd.JSON {
			fmt.Println()
		}
		return queryErr
	}

	// Print
	switch {
	case ctx.Debug:
		fmt.Println(response)
	case cmd.JSON:
		data, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case cmd.NoStream:
		fmt.Println(response.Answer)
	default:
		// The answer was already printed as it streamed
		fmt.Println()
	}

	// Print source citations below the answer
	if !cmd.JSON && !ctx.Debug && len(response.Sources) > 0 {
		fmt.Println()
		fmt.Println(uitable.Render(schema.SourceTable(response.Sources)))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// printEvent prints answer tokens as they arrive, with progress
// narration dimmed on a terminal.
func printEvent(event schema.StreamEvent) {
	switch event.Type {
	case schema.EventThinking:
		message := event.Message
		if isTerminal(os.Stdout) {
			message = "\033[2m" + message + "\033[0m" // dim
		}
		fmt.Println(message)
	case schema.EventToken:
		fmt.Print(event.Token)
	}
}
