package main

import (
	"fmt"
	"sort"
	"time"

	// Packages
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AnalyticsCommands struct {
	Popular PopularCommand `cmd:"" name:"popular" help:"List the most frequently asked questions." group:"ANALYTICS"`
	Usage   UsageCommand   `cmd:"" name:"usage" help:"Show aggregate usage." group:"ANALYTICS"`
}

type PopularCommand struct {
	schema.PopularQuestionsRequest
}

type UsageCommand struct {
	Since time.Time `name:"since" help:"Start of the reporting window" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *PopularCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "PopularCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if !cmd.Since.IsZero() {
		opts = append(opts, httpclient.WithSince(cmd.Since))
	}
	if cmd.Category != "" {
		opts = append(opts, httpclient.WithCategory(cmd.Category))
	}
	if cmd.Language != "" {
		opts = append(opts, httpclient.WithLanguage(cmd.Language))
	}
	if cmd.Limit != nil {
		opts = append(opts, httpclient.WithLimit(cmd.Limit))
	}
	if cmd.Offset > 0 {
		opts = append(opts, httpclient.WithOffset(cmd.Offset))
	}

	// Fetch the report
	response, err := client.PopularQuestions(parent, opts...)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		if len(response.Body) > 0 {
			fmt.Println(uitable.Render(schema.PopularQuestionTable(response.Body)))
		}
		fmt.Println(TableSummary(len(response.Body), int(response.Offset), int(response.Count)))
	}
	return nil
}

func (cmd *UsageCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "UsageCommand")
	defer func() { endSpan(err) }()

	// Build options
	opts := []opt.Opt{}
	if !cmd.Since.IsZero() {
		opts = append(opts, httpclient.WithSince(cmd.Since))
	}

	// Fetch the summary
	response, err := client.Usage(parent, opts...)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(response)
	} else {
		printUsage(response)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// printUsage prints the usage summary with the language breakdown
// sorted by count, most used first.
func printUsage(usage *schema.UsageSummary) {
	if !usage.Since.IsZero() {
		fmt.Printf("Reporting window %s to %s\n", usage.Since.Format(time.DateOnly), usage.Until.Format(time.DateOnly))
	}
	fmt.Printf("Queries:       %d\n", usage.Queries)
	fmt.Printf("Users:         %d\n", usage.Users)
	fmt.Printf("Conversations: %d\n", usage.Conversations)
	if len(usage.Languages) > 0 {
		languages := make([]string, 0, len(usage.Languages))
		for language := range usage.Languages {
			languages = append(languages, language)
		}
		sort.Slice(languages, func(i, j int) bool {
			if usage.Languages[languages[i]] != usage.Languages[languages[j]] {
				return usage.Languages[languages[i]] > usage.Languages[languages[j]]
			}
			return languages[i] < languages[j]
		})
		fmt.Println("Languages:")
		for _, language := range languages {
			fmt.Printf("  %-12s %d\n", language, usage.Languages[language])
		}
	}
}
