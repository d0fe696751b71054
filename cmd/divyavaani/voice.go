package main

import (
	"fmt"
	"os"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type VoiceCommands struct {
	Transcribe TranscribeCommand `cmd:"" name:"transcribe" help:"Transcribe recorded speech into text." group:"VOICE"`
	Speak      SpeakCommand      `cmd:"" name:"speak" help:"Synthesise speech from text." group:"VOICE"`
	Voices     VoicesCommand     `cmd:"" name:"voices" help:"List available voices." group:"VOICE"`
}

type TranscribeCommand struct {
	Path     string `arg:"" name:"path" help:"Audio file to transcribe" type:"existingfile"`
	Language string `name:"language" help:"Spoken language hint" optional:""`
	Ask      bool   `name:"ask" help:"Put the transcribed text as a question" optional:""`
}

type SpeakCommand struct {
	schema.SpeakRequest
	Output string `name:"output" short:"o" help:"Write audio to a file rather than stdout" optional:"" type:"path"`
}

type VoicesCommand struct {
	Language string `name:"language" help:"Filter by language" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *TranscribeCommand) Run(ctx *Globals) (err error) {
	c, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "TranscribeCommand")
	defer func() { endSpan(err) }()

	// Open the recording
	f, err := os.Open(cmd.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Transcribe
	response, err := c.Transcribe(parent, schema.TranscribeRequest{
		Audio:    client.File{Path: f.Name(), Body: f},
		Language: cmd.Language,
	})
	if err != nil {
		return err
	}

	// Put the transcribed text as a question
	if cmd.Ask {
		ask := AskCommand{}
		ask.Question = response.Text
		ask.Language = response.Language
		return ask.Run(ctx)
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		fmt.Println(response.Text)
	}
	return nil
}

func (cmd *SpeakCommand) Run(ctx *Globals) (err error) {
	c, err := ctx.Client()
	if err != nil {
		return err
	}

	// Refuse to write audio to a terminal
	w := os.Stdout
	if cmd.Output != "" {
		w, err = os.Create(cmd.Output)
		if err != nil {
			return err
		}
		defer w.Close()
	} else if isTerminal(os.Stdout) {
		return divyavaani.ErrBadParameter.With("stdout is a terminal, use --output or redirect")
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "SpeakCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if cmd.Voice != "" {
		opts = append(opts, httpclient.WithVoice(cmd.Voice))
	}
	if cmd.Language != "" {
		opts = append(opts, httpclient.WithLanguage(cmd.Language))
	}
	if cmd.Format != "" {
		opts = append(opts, httpclient.WithFormat(cmd.Format))
	}

	// Synthesise, writing the audio to w
	return c.Speak(parent, w, cmd.Text, opts...)
}

func (cmd *VoicesCommand) Run(ctx *Globals) (err error) {
	c, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "VoicesCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if cmd.Language != "" {
		opts = append(opts, httpclient.WithLanguage(cmd.Language))
	}

	// List voices
	response, err := c.ListVoices(parent, opts...)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		if len(response.Body) > 0 {
			fmt.Println(uitable.Render(schema.VoiceTable(response.Body)))
		}
		fmt.Println(TableSummary(len(response.Body), 0, int(response.Count)))
	}
	return nil
}
