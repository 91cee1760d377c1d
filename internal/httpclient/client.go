package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teranos/gmsctl/errors"
)

// DefaultMaxRedirects is used when Options.MaxRedirects is nil.
const DefaultMaxRedirects = 10

// Client wraps http.Client with scheme validation, a redirect cap and optional
// client-side rate limiting.
//
// Unlike a general-purpose outbound client it does not block private addresses:
// the metadata service commonly runs on localhost or inside a private network.
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
	limiter        *rate.Limiter
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request including redirects and reading the body.
	// Zero means no timeout.
	Timeout time.Duration

	// MaxRequestsPerSecond throttles Do. Zero means unlimited.
	MaxRequestsPerSecond float64

	AllowedSchemes []string // Default: ["http", "https"]
	MaxRedirects   *int     // Default: 10

	// Transport replaces http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
}

// New creates a Client from opts.
func New(opts Options) *Client {
	client := &Client{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		allowedSchemes: []string{"http", "https"},
		maxRedirects:   DefaultMaxRedirects,
	}
	if opts.AllowedSchemes != nil {
		client.allowedSchemes = opts.AllowedSchemes
	}
	if opts.MaxRedirects != nil {
		client.maxRedirects = *opts.MaxRedirects
	}
	if opts.MaxRequestsPerSecond > 0 {
		burst := int(opts.MaxRequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), burst)
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return client
}

// Wrap adapts an existing http.Client (for example httptest.Server.Client()).
// The wrapped client keeps its own redirect policy.
func Wrap(client *http.Client) *Client {
	return &Client{
		Client:         client,
		allowedSchemes: []string{"http", "https"},
		maxRedirects:   DefaultMaxRedirects,
	}
}

// ValidateURL parses urlStr and checks it can be requested by this client.
func (c *Client) ValidateURL(urlStr string) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}

	if err := c.validateURL(u); err != nil {
		return nil, err
	}

	return u, nil
}

func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, allowedScheme := range c.allowedSchemes {
		if scheme == allowedScheme {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}

	if u.Hostname() == "" {
		return errors.New("URL missing hostname")
	}

	return nil
}

// Do validates the request URL, waits for the rate limiter and sends the request.
// Waiting honours the request context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "rate limiter")
		}
	}

	return c.Client.Do(req)
}

// Limited reports whether requests are rate limited.
func (c *Client) Limited() bool {
	return c.limiter != nil
}
