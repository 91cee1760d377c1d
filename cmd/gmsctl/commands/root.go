// Package commands implements the gmsctl subcommands.
package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/gms"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/session"
)

// GlobalOptions holds the values of the root persistent flags.
type GlobalOptions struct {
	ConfigPath string
	Timeout    time.Duration
	URL        string
	Token      string
}

// Globals is bound to the root command's persistent flags by main.
var Globals = &GlobalOptions{}

// newResolver builds the resolver for one command invocation. --gms-url
// replaces every other connection source.
func newResolver() *am.Resolver {
	resolver := am.NewResolver(Globals.ConfigPath)
	if Globals.URL != "" {
		resolver.SetOverride(Globals.URL, Globals.Token)
	}
	return resolver
}

func newFactory() *session.Factory {
	return session.NewFactory(newResolver(), session.Options{Timeout: Globals.Timeout})
}

// openClient returns a client bound to a live session, or an error marked
// errors.ErrNotConfigured when no host is set.
func openClient() (*gms.Client, error) {
	s, err := newFactory().MustOpen()
	if err != nil {
		return nil, err
	}
	return gms.NewClient(s), nil
}

// commandContext tags the command's context with its name so request logs can
// be traced back to the command that issued them.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithComponent(ctx, cmd.CommandPath())
}
