package main

import (
	"fmt"

	// Packages
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type FeedbackCommands struct {
	Feedback FeedbackCommand `cmd:"" name:"feedback" help:"Rate the most recent answer." group:"QUERY"`
}

type FeedbackCommand struct {
	schema.FeedbackRequest
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *FeedbackCommand) Run(ctx *Globals) (err error) {
	// Default to the most recent query
	if cmd.QueryID == "" {
		cmd.QueryID = ctx.defaults.GetString(defaultQuery)
		if cmd.ConversationID == "" {
			cmd.ConversationID = ctx.defaults.GetString(defaultConversation)
		}
	}
	if cmd.QueryID == "" {
		return fmt.Errorf("no query ID provided and no recent answer to rate")
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "FeedbackCommand")
	defer func() { endSpan(err) }()

	// Submit feedback
	response, err := client.SubmitFeedback(parent, cmd.FeedbackRequest)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		fmt.Printf("Feedback recorded for query %s\n", cmd.QueryID)
	}
	return nil
}
