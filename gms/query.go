package gms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/teranos/gmsctl/aspect"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
	"github.com/teranos/gmsctl/session"
	"github.com/teranos/gmsctl/urn"
)

// Entity is an entity record as returned by /entitiesV2.
type Entity map[string]interface{}

// Urn returns the record's urn, if present.
func (e Entity) Urn() string {
	s, _ := e["urn"].(string)
	return s
}

// Aspects returns the record's aspects keyed by name, each shaped {"value": ...}.
func (e Entity) Aspects() (map[string]interface{}, bool) {
	aspects, ok := e["aspects"].(map[string]interface{})
	return aspects, ok
}

// Direction selects which edges Relationships follows.
type Direction string

const (
	Incoming Direction = "INCOMING"
	Outgoing Direction = "OUTGOING"
)

// Relationship is one edge returned by /relationships.
type Relationship struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
}

type searchResponse struct {
	Value *struct {
		NumEntities int `json:"numEntities"`
		Entities    []struct {
			Entity string `json:"entity"`
		} `json:"entities"`
	} `json:"value"`
}

// SearchByFilter returns the urns matching req.
//
// A mismatch between the number of urns returned and the total the server
// reports is logged as a warning.
func (c *Client) SearchByFilter(ctx context.Context, req SearchRequest) (*Seq[string], error) {
	body := searchBody{
		Input:  req.query(),
		Entity: req.entityType(),
		Start:  0,
		Count:  SearchCount,
		Filter: req.Filter(),
	}

	urns, total, err := c.search(ctx, body)
	if err != nil {
		return nil, err
	}

	if len(urns) != total {
		c.logger.Warnw("Discrepancy in entities yielded and num entities. This means all entities may not have been processed",
			logger.FieldCount, len(urns),
			logger.FieldTotalCount, total)
	}
	return newSeq(urns, total), nil
}

// SearchContainerIDs returns the urns of database, schema, project and dataset
// containers whose instance custom property is env.
//
// Unlike SearchByFilter a count mismatch is an assertion failure.
func (c *Client) SearchContainerIDs(ctx context.Context, env, entityType, query string) (*Seq[string], error) {
	if entityType == "" {
		entityType = "container"
	}
	if query == "" {
		query = DefaultQuery
	}

	body := searchBody{
		Input:  query,
		Entity: entityType,
		Start:  0,
		Count:  SearchCount,
		Filter: ContainerFilter(env),
	}

	urns, total, err := c.search(ctx, body)
	if err != nil {
		return nil, err
	}

	if len(urns) != total {
		return nil, errors.AssertionFailedf(
			"container search yielded %d of %d reported entities; try running this command again", len(urns), total)
	}
	return newSeq(urns, total), nil
}

func (c *Client) search(ctx context.Context, body searchBody) ([]string, int, error) {
	if err := c.ready(); err != nil {
		return nil, 0, err
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputRequestBody) {
		if payload, err := json.Marshal(body); err == nil {
			c.logger.Debugw("Search payload", "payload", string(payload))
		}
	}

	resp, err := c.session.Post(ctx, pathSearch, body)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("Failed to execute search query", logger.FieldStatus, resp.StatusCode, "body", string(resp.Body))
		return nil, 0, session.NewStatusError(resp)
	}

	var parsed searchResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, 0, err
	}
	if parsed.Value == nil {
		return nil, 0, shapeError("search response has no value")
	}

	urns := make([]string, 0, len(parsed.Value.Entities))
	for _, e := range parsed.Value.Entities {
		urns = append(urns, e.Entity)
	}
	return urns, parsed.Value.NumEntities, nil
}

// BatchGet fetches several entities in one request. Records are returned in
// the order the server lists them. A count mismatch is an assertion failure.
func (c *Client) BatchGet(ctx context.Context, ids []string) (*Seq[Entity], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	encoded := make([]string, len(ids))
	for i, id := range ids {
		encoded[i] = urn.Encode(id)
	}
	path := fmt.Sprintf("%s?ids=List(%s)", pathEntitiesV2, strings.Join(encoded, ","))

	resp, err := c.session.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("Failed to execute batch get", logger.FieldStatus, resp.StatusCode, "body", string(resp.Body))
		return nil, session.NewStatusError(resp)
	}

	entities, reported, err := decodeOrderedResults(resp.Body)
	if err != nil {
		return nil, err
	}

	if len(entities) != reported {
		return nil, errors.AssertionFailedf(
			"batch get yielded %d of %d results; try running this command again", len(entities), reported)
	}
	return newSeq(entities, reported), nil
}

// decodeOrderedResults walks {"results": {id: record, ...}} keeping key order.
// It returns the records and the number of keys in the results object.
func decodeOrderedResults(body []byte) ([]Entity, int, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, 0, err
	}

	var (
		entities []Entity
		keys     int
		found    bool
	)
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, 0, shapeError("malformed batch get response")
		}
		if key != "results" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, 0, shapeError("malformed batch get response")
			}
			continue
		}

		found = true
		if err := expectDelim(dec, '{'); err != nil {
			return nil, 0, err
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, 0, shapeError("malformed batch get results")
			}
			keys++
			var record Entity
			if err := dec.Decode(&record); err != nil {
				return nil, 0, shapeError("malformed batch get record")
			}
			entities = append(entities, record)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, 0, err
		}
	}

	if !found {
		return nil, 0, shapeError("batch get response has no results")
	}
	return entities, keys, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "malformed response"), errors.ErrResponseShape)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return shapeError(fmt.Sprintf("expected %q, got %v", want, tok))
	}
	return nil
}

type relationshipsResponse struct {
	Count         int            `json:"count"`
	Relationships []Relationship `json:"relationships"`
}

// Relationships returns the edges of the given types in direction.
// A count mismatch is logged as a warning.
func (c *Client) Relationships(ctx context.Context, entityUrn string, types []string, direction Direction) (*Seq[Relationship], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s?urn=%s&direction=%s&types=List(%s)",
		pathRelationships, urn.Encode(entityUrn), direction, strings.Join(types, ","))

	resp, err := c.session.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("Failed to execute relationships query", logger.FieldStatus, resp.StatusCode, "body", string(resp.Body))
		return nil, session.NewStatusError(resp)
	}

	var parsed relationshipsResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, err
	}

	if len(parsed.Relationships) != parsed.Count {
		c.logger.Warnw("Yielded relationships differ from reported count",
			logger.FieldUrn, entityUrn,
			logger.FieldCount, len(parsed.Relationships),
			logger.FieldTotalCount, parsed.Count)
	}
	return newSeq(parsed.Relationships, parsed.Count), nil
}

// IncomingRelationships is Relationships with direction Incoming.
func (c *Client) IncomingRelationships(ctx context.Context, entityUrn string, types []string) (*Seq[Relationship], error) {
	return c.Relationships(ctx, entityUrn, types, Incoming)
}

// OutgoingRelationships is Relationships with direction Outgoing.
func (c *Client) OutgoingRelationships(ctx context.Context, entityUrn string, types []string) (*Seq[Relationship], error) {
	return c.Relationships(ctx, entityUrn, types, Outgoing)
}

// GetEntity fetches one entity. entityUrn may be raw ("urn:...") or already
// encoded ("urn%3A..."); anything else fails with errors.ErrInvalidUrn.
// aspectNames, when given, scopes the returned aspects.
func (c *Client) GetEntity(ctx context.Context, entityUrn string, aspectNames []string) (Entity, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	encoded, err := urn.ForPath(entityUrn)
	if err != nil {
		return nil, err
	}

	path := pathEntitiesV2 + "/" + encoded
	if len(aspectNames) > 0 {
		path += "?aspects=List(" + strings.Join(aspectNames, ",") + ")"
	}

	resp, err := c.session.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var entity Entity
	if err := resp.Decode(&entity); err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, shapeError("entity response is not an object")
	}
	return entity, nil
}

type timeseriesRequest struct {
	Urn         string `json:"urn"`
	Entity      string `json:"entity"`
	Aspect      string `json:"aspect"`
	LatestValue bool   `json:"latestValue"`
}

type timeseriesResponse struct {
	Value struct {
		Values []struct {
			Aspect struct {
				ContentType string `json:"contentType"`
				Value       string `json:"value"`
			} `json:"aspect"`
		} `json:"values"`
	} `json:"value"`
}

// LatestTimeseriesValue returns the latest value of a timeseries aspect with
// its JSON-encoded payload decoded. Every failure is treated as "no value":
// ok is false and the cause is only logged at debug level.
func (c *Client) LatestTimeseriesValue(ctx context.Context, entityUrn, aspectName string) (value interface{}, ok bool) {
	log := c.logger.With(logger.FieldUrn, entityUrn, logger.FieldAspect, aspectName)

	value, err := c.latestTimeseriesValue(ctx, entityUrn, aspectName)
	if err != nil {
		log.Debugw("No timeseries value", logger.FieldError, err)
		return nil, false
	}
	if value == nil {
		return nil, false
	}
	return value, true
}

func (c *Client) latestTimeseriesValue(ctx context.Context, entityUrn, aspectName string) (interface{}, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	entityType, err := urn.GuessEntityType(entityUrn)
	if err != nil {
		return nil, err
	}

	resp, err := c.session.Post(ctx, pathTimeseriesValues, timeseriesRequest{
		Urn:         entityUrn,
		Entity:      entityType,
		Aspect:      aspectName,
		LatestValue: true,
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var parsed timeseriesResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Value.Values) == 0 {
		return nil, nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(parsed.Value.Values[0].Aspect.Value), &value); err != nil {
		return nil, errors.Wrap(err, "failed to decode timeseries aspect value")
	}
	return value, nil
}

// AspectsForEntity fetches the named aspects of one entity, merging
// synchronous aspects from GetEntity with the latest value of each timeseries
// aspect.
//
// Timeseries fetch failures leave that aspect out. With typed, each aspect is
// decoded through the registry; aspects without a decoder and aspects that
// fail to decode are left out, the latter with an error log. When names is
// non-empty the result holds at most those names.
func (c *Client) AspectsForEntity(ctx context.Context, entityUrn string, names []string, typed bool) (aspect.Map, error) {
	synchronous, timeseries := c.registry.Partition(names)

	entity, err := c.GetEntity(ctx, entityUrn, synchronous)
	if err != nil {
		return nil, err
	}

	raw := aspect.Map{}
	if aspects, ok := entity.Aspects(); ok {
		for name, a := range aspects {
			envelope, isObj := a.(map[string]interface{})
			if !isObj {
				return nil, shapeError(fmt.Sprintf("aspect %s is not an object", name))
			}
			raw[name] = envelope["value"]
		}
	} else if _, present := entity["aspects"]; present {
		return nil, shapeError("entity aspects is not an object")
	}

	for _, name := range timeseries {
		if value, ok := c.LatestTimeseriesValue(ctx, entityUrn, name); ok {
			raw[name] = value
		}
	}

	result := aspect.Map{}
	for name, value := range raw {
		if !typed {
			result[name] = value
			continue
		}
		decoded, ok, err := c.registry.Decode(name, value)
		if !ok {
			continue
		}
		if err != nil {
			c.logger.Errorw("Failed to decode aspect",
				logger.FieldUrn, entityUrn,
				logger.FieldAspect, name,
				logger.FieldError, err)
			continue
		}
		result[name] = decoded
	}

	if len(names) == 0 {
		return result, nil
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}
	for name := range result {
		if !requested[name] {
			delete(result, name)
		}
	}
	return result, nil
}
