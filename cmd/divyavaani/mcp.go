package main

import (
	"os"
	"strings"

	// Packages
	mcp "github.com/mutablelogic/go-divyavaani/pkg/mcp"
	tool "github.com/mutablelogic/go-divyavaani/pkg/tool"
	version "github.com/mutablelogic/go-divyavaani/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type MCPCommands struct {
	MCP MCPCommand `cmd:"" name:"mcp" help:"Expose the service as tools over stdio." group:"MCP"`
}

type MCPCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *MCPCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// Make a toolkit from the client
	tools, err := mcp.NewTools(client)
	if err != nil {
		return err
	}
	toolkit, err := tool.NewToolkit(tools...)
	if err != nil {
		return err
	}

	// Create the server
	server, err := mcp.New(ctx.execName, version.Version(), mcp.WithToolkit(toolkit))
	if err != nil {
		return err
	}

	// Log the tools served, then hand the terminal streams to the server
	names := make([]string, 0, len(toolkit.Tools()))
	for _, t := range toolkit.Tools() {
		names = append(names, t.Name())
	}
	ctx.logger.Printf(ctx.ctx, "serving tools: %s", strings.Join(names, ", "))
	return server.RunStdio(ctx.ctx, os.Stdin, os.Stdout)
}
