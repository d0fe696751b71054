package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	Endpoint   string        `name:"endpoint" env:"DIVYAVAANI_ENDPOINT" default:"http://localhost:8080/api/v1" help:"Service endpoint"`
	Timeout    time.Duration `name:"timeout" help:"Request timeout" optional:""`
	Passphrase string        `name:"passphrase" env:"DIVYAVAANI_PASSPHRASE" help:"Passphrase which encrypts stored credentials" optional:""`
	OTEL       string        `name:"otel" env:"OTEL_EXPORTER_OTLP_ENDPOINT" help:"OTLP collector endpoint for traces and metrics" optional:""`
	Debug      bool          `name:"debug" help:"Enable debug output"`
	Verbose    bool          `name:"verbose" help:"Enable verbose output"`

	// Context
	ctx       context.Context
	logger    *Logger
	tracer    trace.Tracer
	defaults  *Defaults
	execName  string
	configDir string
}

type CLI struct {
	Globals

	AskCommands          `embed:""`
	ConversationCommands `embed:""`
	FeedbackCommands     `embed:""`
	UploadCommands       `embed:""`
	VoiceCommands        `embed:""`
	AnalyticsCommands    `embed:""`
	HealthCommands       `embed:""`
	AuthCommands         `embed:""`
	ChatCommands         `embed:""`
	TelegramCommands     `embed:""`
	MCPCommands          `embed:""`
	ConfigCommands       `embed:""`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Command-line client for the DivyaVaani spiritual guidance service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(yamlResolver, configFile()),
	)

	// Create a context which ends on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx

	// Logging
	cli.Globals.logger = NewLogger(os.Stderr, cli.Debug)

	// Executable name and configuration directory
	cli.Globals.execName = execName()
	configDir, err := os.UserConfigDir()
	cmd.FatalIfErrorf(err)
	cli.Globals.configDir = filepath.Join(configDir, cli.Globals.execName)

	// Defaults persisted between invocations
	defaults, err := NewDefaults(filepath.Join(cli.Globals.configDir, "defaults.json"))
	cmd.FatalIfErrorf(err)
	cli.Globals.defaults = defaults

	// Telemetry, when a collector endpoint is set
	if cli.OTEL != "" {
		tracer, shutdown, err := NewTelemetry(ctx, cli.OTEL, cli.Globals.execName)
		cmd.FatalIfErrorf(err)
		defer shutdown()
		cli.Globals.tracer = tracer
	}

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// configFile returns the path of the optional YAML configuration file,
// which is ignored when it does not exist.
func configFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, execName(), "config.yaml")
}
