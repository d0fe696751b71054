package main

import (
	// Packages
	command "github.com/mutablelogic/go-divyavaani/pkg/ui/command"
	telegram "github.com/mutablelogic/go-divyavaani/pkg/ui/telegram"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type TelegramCommands struct {
	Telegram TelegramCommand `cmd:"" name:"telegram" help:"Serve the guidance service as a Telegram bot." group:"CHAT"`
}

type TelegramCommand struct {
	Token    string   `name:"token" env:"TELEGRAM_TOKEN" help:"Telegram bot token" required:""`
	Allow    []string `name:"allow" env:"TELEGRAM_ALLOW" help:"Usernames or user ids permitted to use the bot" optional:""`
	Language string   `name:"language" help:"Default answer language" optional:""`
	Sources  bool     `name:"sources" help:"Show source citations" optional:""`
	Thinking bool     `name:"thinking" help:"Show progress narration" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *TelegramCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// Connect the bot
	bot, err := telegram.New(cmd.Token, telegram.WithAllowedUsers(cmd.Allow...))
	if err != nil {
		return err
	}
	defer bot.Close()

	// Each Telegram chat holds its own conversation and settings
	runner := newRunner(ctx, client, bot, command.Settings{
		Language: cmd.Language,
		Sources:  cmd.Sources,
		Thinking: cmd.Thinking,
	})
	ctx.logger.Print(ctx.ctx, "bot connected, waiting for messages")
	return runner.Run(ctx.ctx)
}
