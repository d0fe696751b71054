package main

import (
	"fmt"
	"io"

	// Packages
	kong "github.com/alecthomas/kong"
	divyavaani "github.com/mutablelogic/go-divyavaani"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ConfigCommands struct {
	Config ConfigCommand `cmd:"" name:"config" help:"Manage saved defaults." group:"CONFIG"`
}

type ConfigCommand struct {
	List ConfigListCommand `cmd:"" name:"list" default:"1" help:"List saved defaults."`
	Get  ConfigGetCommand  `cmd:"" name:"get" help:"Print one saved default."`
	Set  ConfigSetCommand  `cmd:"" name:"set" help:"Set a saved default, or clear it by omitting the value."`
}

type ConfigListCommand struct{}

type ConfigGetCommand struct {
	Key string `arg:"" help:"Name of the default"`
}

type ConfigSetCommand struct {
	Key   string `arg:"" help:"Name of the default"`
	Value string `arg:"" optional:"" help:"New value"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ConfigListCommand) Run(ctx *Globals) error {
	for _, key := range ctx.defaults.Keys() {
		fmt.Printf("%-14s %v\n", key, ctx.defaults.Get(key))
	}
	return nil
}

func (cmd *ConfigGetCommand) Run(ctx *Globals) error {
	value := ctx.defaults.Get(cmd.Key)
	if value == nil {
		return divyavaani.ErrNotFound.Withf("%q", cmd.Key)
	}
	fmt.Println(value)
	return nil
}

func (cmd *ConfigSetCommand) Run(ctx *Globals) error {
	if cmd.Value == "" {
		return ctx.defaults.Set(cmd.Key, nil)
	}
	return ctx.defaults.Set(cmd.Key, cmd.Value)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// yamlResolver loads flag defaults from a YAML document of flag names to
// values, so a config file can stand in for repeated command line flags.
func yamlResolver(r io.Reader) (kong.Resolver, error) {
	values := make(map[string]any)
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, err
	}
	return kong.ResolverFunc(func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if value, exists := values[flag.Name]; exists {
			return value, nil
		}
		return nil, nil
	}), nil
}
