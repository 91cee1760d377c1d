// Package gms translates catalog operations into REST calls against the
// metadata service and reshapes the responses.
//
// Every operation takes a context and blocks until the response has been read.
// List operations return a Seq over a fully fetched response.
package gms

import (
	"go.uber.org/zap"

	"github.com/teranos/gmsctl/aspect"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/session"
)

// REST endpoints, relative to the session host
const (
	pathSearch           = "/entities?action=search"
	pathEntitiesV2       = "/entitiesV2"
	pathRelationships    = "/relationships"
	pathIngestProposal   = "/aspects/?action=ingestProposal"
	pathTimeseriesValues = "/aspects?action=getTimeseriesAspectValues"
	pathDelete           = "/entities?action=delete"
	pathDeleteReferences = "/entities?action=deleteReferences"
	pathRollback         = "/runs?action=rollback"
)

// Client issues query and mutation requests over a Session.
type Client struct {
	session  *session.Session
	registry *aspect.Registry
	logger   *zap.SugaredLogger
}

// NewClient creates a client using the default aspect registry. s may be nil
// (the "not configured" session); every operation then fails with
// errors.ErrNotConfigured.
func NewClient(s *session.Session) *Client {
	return &Client{
		session:  s,
		registry: aspect.Default,
		logger:   logger.ComponentLogger("gms"),
	}
}

// WithRegistry returns a copy of the client that decodes aspects with r.
func (c *Client) WithRegistry(r *aspect.Registry) *Client {
	clone := *c
	clone.registry = r
	return &clone
}

// Session returns the underlying session.
func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) ready() error {
	if c.session == nil {
		return errors.Mark(errors.New("no session: metadata service is not configured"), errors.ErrNotConfigured)
	}
	return nil
}
