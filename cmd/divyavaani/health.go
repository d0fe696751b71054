package main

import (
	"fmt"
	"sort"

	// Packages
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
	version "github.com/mutablelogic/go-divyavaani/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type HealthCommands struct {
	Health  HealthCommand  `cmd:"" name:"health" help:"Check the service and its dependencies." group:"SERVICE"`
	Version VersionCommand `cmd:"" name:"version" help:"Print version information." group:"SERVICE"`
}

type HealthCommand struct{}

type VersionCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *HealthCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "HealthCommand")
	defer func() { endSpan(err) }()

	// Probe the service
	response, err := client.Health(parent)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		fmt.Println(uitable.Render(schema.HealthTable(*response)))
	}

	// A degraded or unhealthy service exits with an error
	if !response.Healthy() {
		return fmt.Errorf("service is %s", response.Status)
	}
	return nil
}

func (cmd *VersionCommand) Run(ctx *Globals) (err error) {
	metadata := version.Map(ctx.execName)
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%-10s %s\n", key, metadata[key])
	}
	return nil
}
