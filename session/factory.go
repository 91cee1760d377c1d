package session

import (
	"go.uber.org/zap"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

// Factory opens sessions from a caller-owned resolver.
type Factory struct {
	resolver *am.Resolver
	opts     Options
	logger   *zap.SugaredLogger
}

// NewFactory creates a factory. Non-zero Timeout and MaxRequestsPerSecond in opts
// take precedence over the values from the config file.
func NewFactory(resolver *am.Resolver, opts Options) *Factory {
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("session")
	}
	return &Factory{resolver: resolver, opts: opts, logger: log}
}

// Resolver returns the resolver the factory reads from.
func (f *Factory) Resolver() *am.Resolver {
	return f.resolver
}

// Open resolves the connection and creates a Session.
//
// When no host can be determined Open logs an error and returns (nil, nil): the
// "not configured" case is not an error here, callers must check for a nil
// session. Any other resolution failure is returned.
func (f *Factory) Open() (*Session, error) {
	res, err := f.resolver.Resolve()
	if errors.Is(err, am.ErrNoHost) {
		f.logger.Errorf("Metadata service host is not set. Use 'gmsctl init' or set the %s environment variable", am.EnvGmsURL)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	opts := f.opts
	if opts.Timeout == 0 {
		opts.Timeout = res.Timeout
	}
	if opts.MaxRequestsPerSecond == 0 {
		opts.MaxRequestsPerSecond = res.MaxRequestsPerSecond
	}
	if opts.SystemAuth == "" {
		opts.SystemAuth = f.resolver.SystemAuth()
	}
	opts.Logger = f.logger

	return New(res.Host, res.Token, opts)
}

// MustOpen is Open that turns the "not configured" sentinel into an error marked
// errors.ErrNotConfigured.
func (f *Factory) MustOpen() (*Session, error) {
	s, err := f.Open()
	if err != nil {
		return nil, err
	}
	if s == nil {
		err := errors.Mark(errors.New("metadata service is not configured"), errors.ErrNotConfigured)
		return nil, errors.WithHintf(err, "run 'gmsctl init' or set %s", am.EnvGmsURL)
	}
	return s, nil
}
