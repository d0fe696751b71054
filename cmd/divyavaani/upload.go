package main

import (
	"fmt"
	"os"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type UploadCommands struct {
	Upload UploadCommand `cmd:"" name:"upload" help:"Upload a document to the corpus." group:"CORPUS"`
}

type UploadCommand struct {
	Path        string `arg:"" name:"path" help:"Document to upload" type:"existingfile"`
	Title       string `name:"title" help:"Document title" optional:""`
	Language    string `name:"language" help:"Document language" optional:""`
	Description string `name:"description" help:"Document description" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *UploadCommand) Run(ctx *Globals) (err error) {
	c, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "UploadCommand")
	defer func() { endSpan(err) }()

	// Open the document
	f, err := os.Open(cmd.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Upload
	response, err := c.Upload(parent, schema.UploadRequest{
		File:        client.File{Path: f.Name(), Body: f},
		Title:       cmd.Title,
		Language:    cmd.Language,
		Description: cmd.Description,
	})
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		fmt.Printf("Uploaded %s (%s)\n", response.ID, response.Status)
	}
	return nil
}
