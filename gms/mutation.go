package gms

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/teranos/gmsctl/aspect"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/session"
	"github.com/teranos/gmsctl/urn"
)

// ChangeTypeUpsert is the only change type PostEntity sends.
const ChangeTypeUpsert = "UPSERT"

type genericAspect struct {
	ContentType string `json:"contentType"`
	Value       string `json:"value"`
}

type proposal struct {
	EntityType string        `json:"entityType"`
	EntityUrn  string        `json:"entityUrn"`
	AspectName string        `json:"aspectName"`
	ChangeType string        `json:"changeType"`
	Aspect     genericAspect `json:"aspect"`
}

type ingestProposalBody struct {
	Proposal proposal `json:"proposal"`
	Async    string   `json:"async"`
}

// PostEntity upserts one aspect through an ingest proposal and returns the
// HTTP status code. value is JSON-encoded into the proposal.
//
// On a non-2xx status the server's message is logged and a *session.StatusError
// is returned along with the status code.
func (c *Client) PostEntity(ctx context.Context, entityUrn, entityType, aspectName string, value interface{}, async bool) (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to encode aspect %s", aspectName)
	}

	body := ingestProposalBody{
		Proposal: proposal{
			EntityType: entityType,
			EntityUrn:  entityUrn,
			AspectName: aspectName,
			ChangeType: ChangeTypeUpsert,
			Aspect: genericAspect{
				ContentType: session.ContentTypeJSON,
				Value:       string(encoded),
			},
		},
		Async: strconv.FormatBool(async),
	}

	resp, err := c.session.Post(ctx, pathIngestProposal, body)
	if err != nil {
		return 0, err
	}
	if !resp.OK() {
		statusErr := session.NewStatusError(resp)
		if statusErr.Message != "" {
			c.logger.Info(statusErr.Message)
		} else {
			c.logger.Infof("post entity failed: %s", string(resp.Body))
		}
		return resp.StatusCode, statusErr
	}

	c.logger.Debugw("Aspect upserted",
		logger.FieldUrn, entityUrn,
		logger.FieldEntityType, entityType,
		logger.FieldAspect, aspectName,
		logger.FieldStatus, resp.StatusCode)
	return resp.StatusCode, nil
}

// SoftDelete marks an entity as removed by upserting status{removed: true}.
func (c *Client) SoftDelete(ctx context.Context, entityUrn string) (int, error) {
	entityType, err := urn.GuessEntityType(entityUrn)
	if err != nil {
		return 0, err
	}
	return c.PostEntity(ctx, entityUrn, entityType, "status", aspect.Status{Removed: true}, false)
}

// DeleteRequest hard-deletes an entity, or one aspect of it. For timeseries
// aspects the time bounds restrict which values are removed.
type DeleteRequest struct {
	Urn             string `json:"urn"`
	AspectName      string `json:"aspectName,omitempty"`
	StartTimeMillis *int64 `json:"startTimeMillis,omitempty"`
	EndTimeMillis   *int64 `json:"endTimeMillis,omitempty"`
}

// DeleteResult summarises a hard delete.
type DeleteResult struct {
	Urn            string `mapstructure:"urn" json:"urn"`
	Rows           int    `mapstructure:"rows" json:"rows"`
	TimeseriesRows int    `mapstructure:"timeseriesRows" json:"timeseriesRows"`
}

// DeleteEntity posts to the delete endpoint.
func (c *Client) DeleteEntity(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	var result DeleteResult
	if err := c.postRun(ctx, pathDelete, req, &result); err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

// RelatedAspect is an aspect of another entity that references the deleted one.
type RelatedAspect struct {
	Entity       string `mapstructure:"entity" json:"entity"`
	Aspect       string `mapstructure:"aspect" json:"aspect"`
	Relationship string `mapstructure:"relationship" json:"relationship"`
}

// ReferencesResult summarises a reference deletion.
type ReferencesResult struct {
	Total          int             `mapstructure:"total" json:"total"`
	RelatedAspects []RelatedAspect `mapstructure:"relatedAspects" json:"relatedAspects"`
}

type deleteReferencesBody struct {
	Urn    string `json:"urn"`
	DryRun bool   `json:"dryRun"`
}

// DeleteReferences removes references to entityUrn from other entities. With
// dryRun only the references are reported.
func (c *Client) DeleteReferences(ctx context.Context, entityUrn string, dryRun bool) (ReferencesResult, error) {
	var result ReferencesResult
	if err := c.postRun(ctx, pathDeleteReferences, deleteReferencesBody{Urn: entityUrn, DryRun: dryRun}, &result); err != nil {
		return ReferencesResult{}, err
	}
	return result, nil
}

// RollbackRequest reverts what an ingestion run wrote.
type RollbackRequest struct {
	RunID      string `json:"runId"`
	DryRun     bool   `json:"dryRun"`
	HardDelete bool   `json:"hardDelete"`
	// Safe skips entities that other runs also wrote to.
	Safe bool `json:"safe"`
}

// UnsafeEntity is an entity a safe rollback left alone.
type UnsafeEntity struct {
	Urn string `mapstructure:"urn" json:"urn"`
}

// RollbackResult summarises a rollback. Rows only holds rows of the requested run.
type RollbackResult struct {
	Rows                []EntitySummaryRow `mapstructure:"aspectRowSummaries" json:"rows"`
	EntitiesAffected    int                `mapstructure:"entitiesAffected" json:"entitiesAffected"`
	AspectsReverted     int                `mapstructure:"aspectsReverted" json:"aspectsReverted"`
	AspectsAffected     int                `mapstructure:"aspectsAffected" json:"aspectsAffected"`
	UnsafeEntitiesCount int                `mapstructure:"unsafeEntitiesCount" json:"unsafeEntitiesCount"`
	UnsafeEntities      []UnsafeEntity     `mapstructure:"unsafeEntities" json:"unsafeEntities"`
}

// RollbackRun rolls back an ingestion run.
//
// The returned rows are filtered to those whose run id equals req.RunID. When
// the server reports no rows at all a warning is logged.
func (c *Client) RollbackRun(ctx context.Context, req RollbackRequest) (RollbackResult, error) {
	var result RollbackResult
	if err := c.postRun(ctx, pathRollback, req, &result); err != nil {
		return RollbackResult{}, err
	}

	if len(result.Rows) == 0 {
		payload, _ := json.Marshal(req)
		c.logger.Warnw("No entities found", logger.FieldRunID, req.RunID, "payload", string(payload))
	}

	result.Rows = FilterRunRows(result.Rows, req.RunID)
	return result, nil
}

// FilterRunRows keeps the rows written by runID.
func FilterRunRows(rows []EntitySummaryRow, runID string) []EntitySummaryRow {
	kept := make([]EntitySummaryRow, 0, len(rows))
	for _, row := range rows {
		if row.RunID == runID {
			kept = append(kept, row)
		}
	}
	return kept
}

func (c *Client) postRun(ctx context.Context, path string, body interface{}, out interface{}) error {
	if err := c.ready(); err != nil {
		return err
	}

	resp, err := c.session.Post(ctx, path, body)
	if err != nil {
		return err
	}

	summary, err := parseRunResponse(resp)
	if err != nil {
		var statusErr *session.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Errorw("Failed to execute operation", logger.FieldStatus, statusErr.StatusCode, "message", statusErr.Message)
		}
		return err
	}
	return decodeSummary(summary, out)
}
