package mcp

import (
	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	tool "github.com/mutablelogic/go-divyavaani/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*Server) error

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func (server *Server) apply(opts ...Opt) error {
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithToolkit sets the toolkit served over tools/list and tools/call
func WithToolkit(v *tool.Toolkit) Opt {
	return func(server *Server) error {
		if v == nil {
			return divyavaani.ErrBadParameter.With("toolkit")
		}
		server.toolkit = v
		return nil
	}
}
