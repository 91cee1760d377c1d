// Package session opens authenticated HTTP sessions against the metadata service.
//
// A Session is cheap to create and owned by the caller. It carries the resolved
// host, the default headers every request needs and the underlying HTTP client.
package session

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/gmsctl/internal/httpclient"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/version"
)

// Default headers sent with every request
const (
	HeaderProtocolVersion = "X-RestLi-Protocol-Version"
	ProtocolVersion       = "2.0.0"
	ContentTypeJSON       = "application/json"
)

// Options tunes a Session. The zero value gives an unthrottled client without
// a timeout.
type Options struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// MaxRequestsPerSecond throttles requests. Zero means unlimited.
	MaxRequestsPerSecond float64

	// SystemAuth is sent as the Authorization header when no token is set.
	SystemAuth string

	// HTTPClient replaces the default client, mostly for tests with httptest.
	HTTPClient *http.Client

	Logger *zap.SugaredLogger // nil = logger.ComponentLogger("session")
}

// Session is an HTTP client bound to a host and default headers.
type Session struct {
	host    string
	headers http.Header
	client  *httpclient.Client
	logger  *zap.SugaredLogger
}

// New creates a Session for host. token may contain {VAR} placeholders which are
// substituted from the process environment now; an unknown variable is a
// configuration error.
func New(host, token string, opts Options) (*Session, error) {
	headers := http.Header{}
	headers.Set(HeaderProtocolVersion, ProtocolVersion)
	headers.Set("Content-Type", ContentTypeJSON)
	headers.Set("User-Agent", version.UserAgent())

	if token != "" {
		expanded, err := InterpolateEnv(token)
		if err != nil {
			return nil, err
		}
		headers.Set("Authorization", "Bearer "+expanded)
	} else if opts.SystemAuth != "" {
		headers.Set("Authorization", opts.SystemAuth)
	}

	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("session")
	}

	var client *httpclient.Client
	if opts.HTTPClient != nil {
		client = httpclient.Wrap(opts.HTTPClient)
	} else {
		client = httpclient.New(httpclient.Options{
			Timeout:              opts.Timeout,
			MaxRequestsPerSecond: opts.MaxRequestsPerSecond,
		})
	}

	return &Session{
		host:    strings.TrimRight(host, "/"),
		headers: headers,
		client:  client,
		logger:  log,
	}, nil
}

// Host returns the base URL requests are sent to, without a trailing slash.
func (s *Session) Host() string {
	return s.host
}

// Header returns a copy of the default headers.
func (s *Session) Header() http.Header {
	return s.headers.Clone()
}

// Logger returns the session's logger so operation clients can derive from it.
func (s *Session) Logger() *zap.SugaredLogger {
	return s.logger
}
