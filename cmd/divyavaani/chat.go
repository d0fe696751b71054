package main

import (
	// Packages
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	bubbletea "github.com/mutablelogic/go-divyavaani/pkg/ui/bubbletea"
	command "github.com/mutablelogic/go-divyavaani/pkg/ui/command"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCommands struct {
	Chat ChatCommand `cmd:"" name:"chat" help:"Chat interactively in the terminal." group:"CHAT"`
}

type ChatCommand struct {
	Conversation string `name:"conversation" help:"Resume a conversation" optional:""`
	Language     string `name:"language" help:"Preferred answer language" optional:""`
	Sources      bool   `name:"sources" help:"Show source citations" optional:""`
	Thinking     bool   `name:"thinking" help:"Show progress narration" optional:""`
}

// terminalHooks clears the terminal transcript when the chat commands
// discard or switch the conversation.
type terminalHooks struct {
	terminal *bubbletea.Terminal
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// Load the preferred language when not explicitly set
	if cmd.Language == "" {
		cmd.Language = ctx.defaults.GetString(defaultLanguage)
	}

	// The TUI takes over the terminal
	terminal, err := bubbletea.New()
	if err != nil {
		return err
	}
	defer terminal.Close()

	// Run the chat, restoring the transcript when a conversation is
	// resumed
	runner := newRunner(ctx, client, terminal, command.Settings{
		Conversation: cmd.Conversation,
		Language:     cmd.Language,
		Sources:      cmd.Sources,
		Thinking:     cmd.Thinking,
	})
	runner.hooks = func(string) command.Hooks {
		return &terminalHooks{terminal: terminal}
	}
	runner.restore = func(_ string, conversation *schema.Conversation) {
		terminal.ClearHistory()
		for _, message := range conversation.Messages {
			terminal.AppendHistory(message.Role, message.Text)
		}
	}
	return runner.Run(ctx.ctx)
}

///////////////////////////////////////////////////////////////////////////////
// HOOKS

func (h *terminalHooks) OnConversationChanged(string) {
	h.terminal.ClearHistory()
}

func (h *terminalHooks) OnConversationReset() {
	h.terminal.ClearHistory()
}
