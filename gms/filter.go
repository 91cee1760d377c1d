package gms

import (
	"strings"

	"github.com/teranos/gmsctl/urn"
)

// Condition is a search criterion operator.
type Condition string

// ConditionEqual is the only operator this client sends.
const ConditionEqual Condition = "EQUAL"

// Criterion matches one indexed field.
type Criterion struct {
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Condition Condition `json:"condition"`
}

// Conjunction ANDs its criteria.
type Conjunction struct {
	And []Criterion `json:"and"`
}

// Filter ORs its conjunctions.
type Filter struct {
	Or []Conjunction `json:"or"`
}

func equal(field, value string) Criterion {
	return Criterion{Field: field, Value: value, Condition: ConditionEqual}
}

// Search defaults
const (
	DefaultEntityType = "dataset"
	DefaultQuery      = "*"
	// SearchCount is requested as the page size; one page is treated as everything.
	SearchCount = 10000
)

// ContainerSubTypes are the container kinds SearchContainerIDs matches.
var ContainerSubTypes = []string{"Database", "Schema", "Project", "Dataset"}

// SearchRequest selects entities for SearchByFilter.
type SearchRequest struct {
	// Platform is a platform name such as "hive". It becomes a platform urn
	// criterion for datasets, flows, jobs and containers, and a raw tool
	// criterion for charts and dashboards.
	Platform string
	// Env matches the origin field. Ignored for containers.
	Env string
	// EntityType defaults to "dataset".
	EntityType string
	// Query defaults to "*".
	Query string
	// IncludeRemoved also matches soft-deleted entities.
	IncludeRemoved bool
	// OnlySoftDeleted matches only soft-deleted entities and wins over IncludeRemoved.
	OnlySoftDeleted bool
}

func (r SearchRequest) entityType() string {
	if r.EntityType == "" {
		return DefaultEntityType
	}
	return r.EntityType
}

func (r SearchRequest) query() string {
	if r.Query == "" {
		return DefaultQuery
	}
	return r.Query
}

// Criteria builds the single AND group SearchByFilter sends.
func (r SearchRequest) Criteria() []Criterion {
	criteria := []Criterion{}
	entityType := strings.ToLower(r.entityType())

	if r.Env != "" && entityType != "container" {
		criteria = append(criteria, equal("origin", r.Env))
	}

	if r.Platform != "" {
		switch entityType {
		case "dataset", "dataflow", "datajob", "container":
			criteria = append(criteria, equal("platform", urn.MakeDataPlatformUrn(r.Platform)))
		case "chart", "dashboard":
			criteria = append(criteria, equal("tool", r.Platform))
		}
	}

	switch {
	case r.OnlySoftDeleted:
		criteria = append(criteria, equal("removed", "true"))
	case r.IncludeRemoved:
		// matches removed true, false and unset
		criteria = append(criteria, equal("removed", ""))
	}

	return criteria
}

// Filter returns the request's criteria as a one-group filter.
func (r SearchRequest) Filter() Filter {
	return Filter{Or: []Conjunction{{And: r.Criteria()}}}
}

// ContainerFilter ORs one group per container subtype, each requiring the
// instance custom property and the subtype name.
func ContainerFilter(env string) Filter {
	filter := Filter{Or: make([]Conjunction, 0, len(ContainerSubTypes))}
	for _, subType := range ContainerSubTypes {
		filter.Or = append(filter.Or, Conjunction{And: []Criterion{
			equal("customProperties", "instance="+env),
			equal("typeNames", subType),
		}})
	}
	return filter
}

type searchBody struct {
	Input  string `json:"input"`
	Entity string `json:"entity"`
	Start  int    `json:"start"`
	Count  int    `json:"count"`
	Filter Filter `json:"filter"`
}
