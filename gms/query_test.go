package gms

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/gmsctl/aspect"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/session"
)

func TestCriteria_ContainerNeverFiltersByEnv(t *testing.T) {
	for _, env := range []string{"", "PROD", "DEV"} {
		criteria := SearchRequest{Env: env, EntityType: "container", Platform: "mysql"}.Criteria()
		for _, c := range criteria {
			assert.NotEqual(t, "origin", c.Field, "env %q", env)
		}
	}

	criteria := SearchRequest{Env: "PROD", EntityType: "Container"}.Criteria()
	assert.Empty(t, criteria, "entity type comparison is case-insensitive")
}

func TestCriteria_DatasetPlatform(t *testing.T) {
	criteria := SearchRequest{Platform: "hive", Env: "PROD"}.Criteria()

	assert.Equal(t, []Criterion{
		{Field: "origin", Value: "PROD", Condition: ConditionEqual},
		{Field: "platform", Value: "urn:li:dataPlatform:hive", Condition: ConditionEqual},
	}, criteria)
}

func TestCriteria_PlatformByEntityType(t *testing.T) {
	tests := []struct {
		entityType string
		want       []Criterion
	}{
		{"dataflow", []Criterion{{"platform", "urn:li:dataPlatform:airflow", ConditionEqual}}},
		{"datajob", []Criterion{{"platform", "urn:li:dataPlatform:airflow", ConditionEqual}}},
		{"chart", []Criterion{{"tool", "airflow", ConditionEqual}}},
		{"dashboard", []Criterion{{"tool", "airflow", ConditionEqual}}},
		{"corpuser", []Criterion{}},
	}

	for _, tt := range tests {
		t.Run(tt.entityType, func(t *testing.T) {
			got := SearchRequest{Platform: "airflow", EntityType: tt.entityType}.Criteria()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCriteria_NoPlatformMeansNoPlatformCriterion(t *testing.T) {
	for _, entityType := range []string{"dataset", "dataflow", "datajob", "container", "chart"} {
		assert.Empty(t, SearchRequest{EntityType: entityType}.Criteria(), entityType)
	}
}

func TestCriteria_RemovedFlags(t *testing.T) {
	assert.Equal(t, []Criterion{{"removed", "", ConditionEqual}},
		SearchRequest{IncludeRemoved: true}.Criteria())
	assert.Equal(t, []Criterion{{"removed", "true", ConditionEqual}},
		SearchRequest{OnlySoftDeleted: true}.Criteria())
	assert.Equal(t, []Criterion{{"removed", "true", ConditionEqual}},
		SearchRequest{IncludeRemoved: true, OnlySoftDeleted: true}.Criteria(),
		"only-soft-deleted wins")
}

func TestContainerFilter(t *testing.T) {
	filter := ContainerFilter("prod")
	require.Len(t, filter.Or, 4)
	for i, subType := range ContainerSubTypes {
		assert.Equal(t, []Criterion{
			{"customProperties", "instance=prod", ConditionEqual},
			{"typeNames", subType, ConditionEqual},
		}, filter.Or[i].And)
	}
}

const searchFiveReportsThree = `{"value":{"numEntities":5,"entities":[
	{"entity":"urn:li:dataset:a"},{"entity":"urn:li:dataset:b"},{"entity":"urn:li:dataset:c"}]}}`

func TestSearchByFilter(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusOK,
		`{"value":{"numEntities":2,"entities":[{"entity":"urn:li:dataset:a"},{"entity":"urn:li:dataset:b"}]}}`)
	c, logs := gms.client()

	seq, err := c.SearchByFilter(context.Background(), SearchRequest{Platform: "hive", Env: "PROD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"urn:li:dataset:a", "urn:li:dataset:b"}, seq.Slice())
	assert.Equal(t, 2, seq.Total())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	body := gms.last().Body
	assert.Equal(t, "*", body["input"])
	assert.Equal(t, "dataset", body["entity"])
	assert.Equal(t, float64(0), body["start"])
	assert.Equal(t, float64(10000), body["count"])
	assert.Equal(t, map[string]interface{}{"or": []interface{}{map[string]interface{}{"and": []interface{}{
		map[string]interface{}{"field": "origin", "value": "PROD", "condition": "EQUAL"},
		map[string]interface{}{"field": "platform", "value": "urn:li:dataPlatform:hive", "condition": "EQUAL"},
	}}}}, body["filter"])
}

func TestSearchByFilter_EmptyCriteriaSendsEmptyList(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusOK, `{"value":{"numEntities":0,"entities":[]}}`)
	c, _ := gms.client()

	_, err := c.SearchByFilter(context.Background(), SearchRequest{EntityType: "corpuser", Query: "jdoe"})
	require.NoError(t, err)

	body := gms.last().Body
	assert.Equal(t, "jdoe", body["input"])
	assert.Equal(t, map[string]interface{}{"or": []interface{}{map[string]interface{}{"and": []interface{}{}}}}, body["filter"])
}

func TestSearchByFilter_MismatchOnlyWarns(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusOK, searchFiveReportsThree)
	c, logs := gms.client()

	seq, err := c.SearchByFilter(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, 5, seq.Total())

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "Discrepancy")
}

func TestSearchContainerIDs_MismatchIsAssertion(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusOK, searchFiveReportsThree)
	c, _ := gms.client()

	_, err := c.SearchContainerIDs(context.Background(), "prod", "", "")
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err))
	assert.True(t, errors.IsFatal(err))

	body := gms.last().Body
	assert.Equal(t, "container", body["entity"])
	assert.Len(t, body["filter"].(map[string]interface{})["or"], 4)
}

func TestSearchContainerIDs(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusOK,
		`{"value":{"numEntities":1,"entities":[{"entity":"urn:li:container:abc"}]}}`)
	c, _ := gms.client()

	seq, err := c.SearchContainerIDs(context.Background(), "prod", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"urn:li:container:abc"}, seq.Slice())
}

func TestSearch_ServerError(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodPost, "/entities?action=search", http.StatusInternalServerError, `{"message":"index unavailable"}`)
	c, _ := gms.client()

	_, err := c.SearchByFilter(context.Background(), SearchRequest{})
	var statusErr *session.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "index unavailable", statusErr.Message)
}

func TestBatchGet_KeepsServerOrder(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2?ids=List(urn%3Ali%3Acorpuser%3Ab,urn%3Ali%3Acorpuser%3Aa)", http.StatusOK,
		`{"results":{"urn:li:corpuser:b":{"urn":"urn:li:corpuser:b"},"urn:li:corpuser:a":{"urn":"urn:li:corpuser:a"}},"errors":{}}`)
	c, _ := gms.client()

	seq, err := c.BatchGet(context.Background(), []string{"urn:li:corpuser:b", "urn:li:corpuser:a"})
	require.NoError(t, err)

	var urns []string
	for e := range seq.All() {
		urns = append(urns, e.Urn())
	}
	assert.Equal(t, []string{"urn:li:corpuser:b", "urn:li:corpuser:a"}, urns)
	assert.Equal(t, 2, seq.Total())
}

func TestBatchGet_MissingResults(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2?ids=List(urn%3Ali%3Acorpuser%3Aa)", http.StatusOK, `{"errors":{}}`)
	c, _ := gms.client()

	_, err := c.BatchGet(context.Background(), []string{"urn:li:corpuser:a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrResponseShape))
}

func TestRelationships(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/relationships?urn=urn%3Ali%3Adataset%3Ax&direction=INCOMING&types=List(DownstreamOf,Consumes)",
		http.StatusOK, `{"start":0,"count":3,"relationships":[{"type":"DownstreamOf","entity":"urn:li:dataset:y"}]}`)
	c, logs := gms.client()

	seq, err := c.IncomingRelationships(context.Background(), "urn:li:dataset:x", []string{"DownstreamOf", "Consumes"})
	require.NoError(t, err)
	assert.Equal(t, []Relationship{{Type: "DownstreamOf", Entity: "urn:li:dataset:y"}}, seq.Slice())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "count mismatch only warns")
}

func TestGetEntity_UrnForms(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Axyz", http.StatusOK, `{"urn":"urn:li:dataset:xyz","aspects":{}}`)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Axyz?aspects=List(status,ownership)", http.StatusOK, `{"urn":"urn:li:dataset:xyz","aspects":{}}`)
	c, _ := gms.client()
	ctx := context.Background()

	entity, err := c.GetEntity(ctx, "urn:li:dataset:xyz", nil)
	require.NoError(t, err)
	assert.Equal(t, "urn:li:dataset:xyz", entity.Urn())

	_, err = c.GetEntity(ctx, "urn%3Ali%3Adataset%3Axyz", nil)
	require.NoError(t, err)
	assert.Equal(t, "/entitiesV2/urn%3Ali%3Adataset%3Axyz", gms.last().RequestURI, "encoded urn is not encoded twice")

	_, err = c.GetEntity(ctx, "urn:li:dataset:xyz", []string{"status", "ownership"})
	require.NoError(t, err)

	requests := len(gms.requests)
	_, err = c.GetEntity(ctx, "notAUrn", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidUrn))
	assert.Len(t, gms.requests, requests, "no request for an invalid urn")
}

func TestGetEntity_NotFound(t *testing.T) {
	gms := newFakeGMS(t)
	c, _ := gms.client()

	_, err := c.GetEntity(context.Background(), "urn:li:dataset:missing", nil)
	var statusErr *session.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

const entityWithStatus = `{"urn":"urn:li:dataset:x","aspects":{"status":{"name":"status","value":{"removed":false}}}}`

func TestAspectsForEntity_TimeseriesFailureIsSwallowed(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Ax?aspects=List(status)", http.StatusOK, entityWithStatus)
	gms.handle(http.MethodPost, "/aspects?action=getTimeseriesAspectValues", http.StatusInternalServerError, `{"message":"boom"}`)
	c, _ := gms.client()

	aspects, err := c.AspectsForEntity(context.Background(), "urn:li:dataset:x", []string{"status", "datasetProfile"}, false)
	require.NoError(t, err)
	assert.Equal(t, aspect.Map{"status": map[string]interface{}{"removed": false}}, aspects)
}

func TestAspectsForEntity_MergesTimeseries(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Ax?aspects=List(status)", http.StatusOK, entityWithStatus)
	gms.handle(http.MethodPost, "/aspects?action=getTimeseriesAspectValues", http.StatusOK,
		`{"value":{"limit":1,"values":[{"aspect":{"contentType":"application/json","value":"{\"timestampMillis\":1650000000000,\"rowCount\":10}"}}]}}`)
	c, _ := gms.client()

	aspects, err := c.AspectsForEntity(context.Background(), "urn:li:dataset:x", []string{"status", "datasetProfile"}, false)
	require.NoError(t, err)
	assert.Equal(t, aspect.Map{
		"status":         map[string]interface{}{"removed": false},
		"datasetProfile": map[string]interface{}{"timestampMillis": float64(1650000000000), "rowCount": float64(10)},
	}, aspects)

	body := gms.last().Body
	assert.Equal(t, map[string]interface{}{
		"urn": "urn:li:dataset:x", "entity": "dataset", "aspect": "datasetProfile", "latestValue": true,
	}, body)
}

func TestAspectsForEntity_Typed(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Ax", http.StatusOK, `{"urn":"urn:li:dataset:x","aspects":{
		"status":{"value":{"removed":true}},
		"ownership":{"value":{"owners":[{"type":"DATAOWNER"}]}},
		"customThing":{"value":{"a":1}}}}`)
	c, logs := gms.client()

	aspects, err := c.AspectsForEntity(context.Background(), "urn:li:dataset:x", nil, true)
	require.NoError(t, err)
	assert.Equal(t, aspect.Map{"status": &aspect.Status{Removed: true}}, aspects,
		"invalid ownership and undecodable customThing are dropped")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAspectsForEntity_FiltersToRequestedNames(t *testing.T) {
	gms := newFakeGMS(t)
	gms.handle(http.MethodGet, "/entitiesV2/urn%3Ali%3Adataset%3Ax?aspects=List(status)", http.StatusOK,
		`{"aspects":{"status":{"value":{"removed":false}},"datasetKey":{"value":{"name":"x"}}}}`)
	c, _ := gms.client()

	aspects, err := c.AspectsForEntity(context.Background(), "urn:li:dataset:x", []string{"status"}, false)
	require.NoError(t, err)
	assert.Len(t, aspects, 1)
	assert.Contains(t, aspects, "status")
}

func TestNilSession(t *testing.T) {
	c := NewClient(nil)
	_, err := c.SearchByFilter(context.Background(), SearchRequest{})
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))

	_, ok := c.LatestTimeseriesValue(context.Background(), "urn:li:dataset:x", "datasetProfile")
	assert.False(t, ok)
}

func TestSeq(t *testing.T) {
	seq := newSeq([]int{1, 2, 3}, 4)

	var got []int
	for v := range seq.All() {
		if v == 3 {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, 4, seq.Total())

	copied := seq.Slice()
	copied[0] = 99
	assert.Equal(t, 1, seq.Slice()[0])

	var empty *Seq[int]
	assert.Zero(t, empty.Len())
	for range empty.All() {
		t.Fatal("nil seq yields nothing")
	}
}
