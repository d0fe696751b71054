package main

import (
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

type ConversationCommands struct {
	ListConversations  ListConversationsCommand  `cmd:"" name:"conversations" help:"List conversations." group:"CONVERSATION"`
	GetConversation    GetConversationCommand    `cmd:"" name:"conversation" help:"Show a conversation transcript." group:"CONVERSATION"`
	DeleteConversation DeleteConversationCommand `cmd:"" name:"delete-conversation" help:"Delete a conversation." group:"CONVERSATION"`
}

type ListConversationsCommand struct {
	schema.ListConversationRequest
}

type GetConversationCommand struct {
	ID string `arg:"" name:"id" help:"Conversation ID (defaults to current conversation)" optional:""`
}

type DeleteConversationCommand struct {
	schema.DeleteConversationRequest
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ListConversationsCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "ListConversationsCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if cmd.UserID != "" {
		opts = append(opts, httpclient.WithUser(cmd.UserID))
	}
	if cmd.Limit != nil {
		opts = append(opts, httpclient.WithLimit(cmd.Limit))
	}
	if cmd.Offset > 0 {
		opts = append(opts, httpclient.WithOffset(cmd.Offset))
	}

	// List conversations
	response, err := client.ListConversations(parent, opts...)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		if len(response.Body) > 0 {
			fmt.Println(uitable.Render(schema.ConversationTable{
				Conversations:       response.Body,
				CurrentConversation: ctx.defaults.GetString(defaultConversation),
			}))
		}
		fmt.Println(TableSummary(len(response.Body), int(response.Offset), int(response.Count)))
	}
	return nil
}

func (cmd *GetConversationCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// Use current conversation if no ID provided
	id := cmd.ID
	if id == "" {
		id = ctx.defaults.GetString(defaultConversation)
	}
	if id == "" {
		return fmt.Errorf("no conversation ID provided and no current conversation set")
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "GetConversationCommand")
	defer func() { endSpan(err) }()

	// Get conversation
	conversation, err := client.GetConversation(parent, id)
	if err != nil {
		// If the default conversation is stale, clear it
		if cmd.ID == "" && isNotFound(err) {
			ctx.defaults.Set(defaultConversation, nil)
			return fmt.Errorf("no conversation ID provided and no current conversation set")
		}
		return err
	}

	// Persist as current default conversation
	if err := ctx.defaults.Set(defaultConversation, conversation.ID); err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(conversation)
	} else {
		printConversation(conversation)
	}
	return nil
}

func (cmd *DeleteConversationCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "DeleteConversationCommand")
	defer func() { endSpan(err) }()

	// Delete conversation
	if err := client.DeleteConversation(parent, cmd.ID); err != nil {
		return err
	}

	// When the current conversation was deleted, clear the default
	if ctx.defaults.GetString(defaultConversation) == cmd.ID {
		if err := ctx.defaults.Set(defaultConversation, nil); err != nil {
			return err
		}
	}

	// Print
	fmt.Printf("Deleted conversation %s\n", cmd.ID)
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// printConversation prints a transcript with one turn per paragraph,
// with roles emphasised on a terminal.
func printConversation(conversation *schema.Conversation) {
	if conversation.Title != "" {
		fmt.Println(conversation.Title)
		fmt.Println()
	}
	for _, message := range conversation.Messages {
		role := message.Role
		if isTerminal(os.Stdout) {
			role = "\033[1m" + role + "\033[0m"
		}
		fmt.Println(role + ": " + message.Text)
		for _, source := range message.Sources {
			label := "  " + source.Label()
			if isTerminal(os.Stdout) {
				label = "\033[2m" + label + "\033[0m"
			}
			fmt.Println(label)
		}
		fmt.Println()
	}
}
