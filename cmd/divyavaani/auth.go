package main

import (
	"errors"
	"fmt"
	"os"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	otel "github.com/mutablelogic/go-divyavaani/pkg/otel"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AuthCommands struct {
	Login  LoginCommand  `cmd:"" name:"login" help:"Authenticate with the service and store the credentials." group:"AUTH"`
	Logout LogoutCommand `cmd:"" name:"logout" help:"Revoke the session and remove stored credentials." group:"AUTH"`
	Whoami WhoamiCommand `cmd:"" name:"whoami" help:"Show the identity requests are sent as." group:"AUTH"`
}

type LoginCommand struct {
	Email    string `arg:"" name:"email" help:"Account email"`
	Password string `name:"password" help:"Account password (prompted when not given)" optional:""`
}

type LogoutCommand struct{}

type WhoamiCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *LoginCommand) Run(ctx *Globals) (err error) {
	// The credential store requires a passphrase, check before prompting
	credentials, err := ctx.CredentialStore()
	if err != nil {
		return err
	}

	// Prompt for the password when not given as a flag
	if cmd.Password == "" {
		if !isTerminal(os.Stdin) {
			return divyavaani.ErrBadParameter.With("missing password")
		}
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		cmd.Password = string(password)
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "LoginCommand")
	defer func() { endSpan(err) }()

	// Authenticate
	credential, err := client.Login(parent, schema.LoginRequest{
		Email:    cmd.Email,
		Password: cmd.Password,
	})
	if err != nil {
		return err
	}

	// Store the credentials for later invocations
	if err := credentials.SetCredential(parent, ctx.Endpoint, *credential); err != nil {
		return err
	}

	// Print
	if credential.User != nil && credential.User.Email != "" {
		fmt.Printf("Logged in as %s\n", credential.User.Email)
	} else {
		fmt.Printf("Logged in as %s\n", cmd.Email)
	}
	return nil
}

func (cmd *LogoutCommand) Run(ctx *Globals) (err error) {
	credentials, err := ctx.CredentialStore()
	if err != nil {
		return err
	}

	// Nothing to do without stored credentials
	if _, err := credentials.GetCredential(ctx.ctx, ctx.Endpoint); errors.Is(err, divyavaani.ErrNotFound) {
		fmt.Println("Not logged in")
		return nil
	} else if err != nil {
		return err
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "LogoutCommand")
	defer func() { endSpan(err) }()

	// Revoke the session, then remove the stored credentials
	if err := client.Logout(parent); err != nil {
		ctx.logger.Debugf(parent, "logout: %v", err)
	}
	if err := credentials.DeleteCredential(parent, ctx.Endpoint); err != nil && !errors.Is(err, divyavaani.ErrNotFound) {
		return err
	}

	// Print
	fmt.Println("Logged out")
	return nil
}

func (cmd *WhoamiCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// A guest identity is not known to the service
	if httpclient.IsGuest(client.User()) {
		fmt.Printf("Guest %s\n", client.User())
		return nil
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "WhoamiCommand")
	defer func() { endSpan(err) }()

	// Ask the service who the token belongs to
	user, err := client.Me(parent)
	if err != nil {
		return err
	}

	// Print
	if ctx.Debug {
		fmt.Println(user)
	} else if user.Name != "" {
		fmt.Printf("%s (%s)\n", user.Name, user.Email)
	} else {
		fmt.Println(user.Email)
	}
	return nil
}
