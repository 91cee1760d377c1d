package aspect

// AuditStamp records who changed something and when.
type AuditStamp struct {
	Time  int64  `json:"time"`
	Actor string `json:"actor"`
}

// Status marks an entity as soft-deleted.
type Status struct {
	Removed bool `json:"removed"`
}

// Owner is one entry of Ownership.
type Owner struct {
	Owner string `json:"owner" validate:"required"`
	Type  string `json:"type,omitempty"`
}

// Ownership lists the owners of an entity.
type Ownership struct {
	Owners       []Owner     `json:"owners" validate:"dive"`
	LastModified *AuditStamp `json:"lastModified,omitempty"`
}

// TagAssociation attaches one tag urn.
type TagAssociation struct {
	Tag string `json:"tag" validate:"required"`
}

// GlobalTags lists the tags on an entity.
type GlobalTags struct {
	Tags []TagAssociation `json:"tags" validate:"dive"`
}

// SubTypes refines an entity's type, e.g. "Database" for a container.
type SubTypes struct {
	TypeNames []string `json:"typeNames"`
}

// Container points an entity at its parent container.
type Container struct {
	Container string `json:"container" validate:"required"`
}

// ContainerProperties describes a container.
type ContainerProperties struct {
	Name             string            `json:"name" validate:"required"`
	Description      string            `json:"description,omitempty"`
	QualifiedName    string            `json:"qualifiedName,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

// DatasetProperties describes a dataset.
type DatasetProperties struct {
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	QualifiedName    string            `json:"qualifiedName,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
}

// DataPlatformInstance ties an entity to a platform and optional instance.
type DataPlatformInstance struct {
	Platform string `json:"platform" validate:"required"`
	Instance string `json:"instance,omitempty"`
}

// Domains lists the domain urns an entity belongs to.
type Domains struct {
	Domains []string `json:"domains"`
}

// Union is a normalized union member: TypeName holds the member's short type
// name and Fields the remaining members' values.
type Union struct {
	TypeName string                 `json:"__type" validate:"required"`
	Fields   map[string]interface{} `json:",remain"`
}

// SchemaFieldDataType wraps the field type union, e.g. StringType.
type SchemaFieldDataType struct {
	Type Union `json:"type"`
}

// SchemaField is one column of a schema.
type SchemaField struct {
	FieldPath      string              `json:"fieldPath" validate:"required"`
	NativeDataType string              `json:"nativeDataType"`
	Type           SchemaFieldDataType `json:"type"`
	Nullable       bool                `json:"nullable"`
	Description    string              `json:"description,omitempty"`
}

// SchemaMetadata is the schema of a dataset.
type SchemaMetadata struct {
	SchemaName string        `json:"schemaName" validate:"required"`
	Platform   string        `json:"platform" validate:"required"`
	Version    int64         `json:"version"`
	Hash       string        `json:"hash,omitempty"`
	Fields     []SchemaField `json:"fields" validate:"dive"`
	// PlatformSchema is the platform-specific raw schema union.
	PlatformSchema *Union `json:"platformSchema,omitempty"`
}

// FieldProfile holds column statistics of a DatasetProfile.
type FieldProfile struct {
	FieldPath      string   `json:"fieldPath" validate:"required"`
	UniqueCount    int64    `json:"uniqueCount,omitempty"`
	NullCount      int64    `json:"nullCount,omitempty"`
	NullProportion float64  `json:"nullProportion,omitempty"`
	Min            string   `json:"min,omitempty"`
	Max            string   `json:"max,omitempty"`
	Mean           string   `json:"mean,omitempty"`
	Median         string   `json:"median,omitempty"`
	SampleValues   []string `json:"sampleValues,omitempty"`
}

// DatasetProfile is a timeseries of dataset statistics.
type DatasetProfile struct {
	TimestampMillis int64          `json:"timestampMillis" validate:"required"`
	RowCount        int64          `json:"rowCount,omitempty"`
	ColumnCount     int64          `json:"columnCount,omitempty"`
	FieldProfiles   []FieldProfile `json:"fieldProfiles,omitempty" validate:"dive"`
}

// DatasetUsageStatistics is a timeseries of dataset query activity.
type DatasetUsageStatistics struct {
	TimestampMillis int64    `json:"timestampMillis" validate:"required"`
	UniqueUserCount int64    `json:"uniqueUserCount,omitempty"`
	TotalSqlQueries int64    `json:"totalSqlQueries,omitempty"`
	TopSqlQueries   []string `json:"topSqlQueries,omitempty"`
}

// Operation is a timeseries of writes to a dataset.
type Operation struct {
	TimestampMillis      int64  `json:"timestampMillis" validate:"required"`
	LastUpdatedTimestamp int64  `json:"lastUpdatedTimestamp" validate:"required"`
	OperationType        string `json:"operationType" validate:"required"`
	Actor                string `json:"actor,omitempty"`
	NumAffectedRows      int64  `json:"numAffectedRows,omitempty"`
}

// DashboardUsageStatistics is a timeseries of dashboard views.
type DashboardUsageStatistics struct {
	TimestampMillis int64 `json:"timestampMillis" validate:"required"`
	ViewsCount      int64 `json:"viewsCount,omitempty"`
	ExecutionsCount int64 `json:"executionsCount,omitempty"`
	UniqueUserCount int64 `json:"uniqueUserCount,omitempty"`
}

// ChartUsageStatistics is a timeseries of chart views.
type ChartUsageStatistics struct {
	TimestampMillis int64 `json:"timestampMillis" validate:"required"`
	ViewsCount      int64 `json:"viewsCount,omitempty"`
	UniqueUserCount int64 `json:"uniqueUserCount,omitempty"`
}

func init() {
	for _, e := range []Entry{
		{Name: "status", New: func() interface{} { return &Status{} }},
		{Name: "ownership", New: func() interface{} { return &Ownership{} }},
		{Name: "globalTags", New: func() interface{} { return &GlobalTags{} }},
		{Name: "subTypes", New: func() interface{} { return &SubTypes{} }},
		{Name: "container", New: func() interface{} { return &Container{} }},
		{Name: "containerProperties", New: func() interface{} { return &ContainerProperties{} }},
		{Name: "datasetProperties", New: func() interface{} { return &DatasetProperties{} }},
		{Name: "dataPlatformInstance", New: func() interface{} { return &DataPlatformInstance{} }},
		{Name: "domains", New: func() interface{} { return &Domains{} }},
		{Name: "schemaMetadata", New: func() interface{} { return &SchemaMetadata{} }},

		{Name: "datasetProfile", New: func() interface{} { return &DatasetProfile{} }, Timeseries: true},
		{Name: "datasetUsageStatistics", New: func() interface{} { return &DatasetUsageStatistics{} }, Timeseries: true},
		{Name: "operation", New: func() interface{} { return &Operation{} }, Timeseries: true},
		{Name: "dashboardUsageStatistics", New: func() interface{} { return &DashboardUsageStatistics{} }, Timeseries: true},
		{Name: "chartUsageStatistics", New: func() interface{} { return &ChartUsageStatistics{} }, Timeseries: true},
	} {
		Default.Register(e)
	}
}
