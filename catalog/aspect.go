package catalog

// FieldOrigin marks which side of a topic's schema pair a field came from.
type FieldOrigin string

// Field origins
const (
	OriginKey   FieldOrigin = "KEY"
	OriginValue FieldOrigin = "VALUE"
)

// SchemaField is one flattened leaf field of a topic schema.
type SchemaField struct {
	Path       string      `json:"path"`
	Type       string      `json:"type"`
	NativeType string      `json:"native_type"`
	Origin     FieldOrigin `json:"origin"`
	Nullable   bool        `json:"nullable"`
}

// Aspect is one typed facet of a snapshot. Implementations are plain value
// objects; AspectName supplies the envelope tag used during serialization.
type Aspect interface {
	AspectName() string
}

// Status is the identity-bearing aspect present on every snapshot.
type Status struct {
	Removed bool `json:"removed"`
}

// AspectName implements Aspect.
func (Status) AspectName() string { return "status" }

// SchemaMetadata describes the resolved key/value schema of a topic.
type SchemaMetadata struct {
	SchemaName  string        `json:"schemaName"`
	Platform    string        `json:"platform"`
	Version     int           `json:"version"`
	Hash        string        `json:"hash"`
	KeySchema   string        `json:"keySchema,omitempty"`
	ValueSchema string        `json:"valueSchema,omitempty"`
	Fields      []SchemaField `json:"fields"`
}

// AspectName implements Aspect.
func (SchemaMetadata) AspectName() string { return "schemaMetadata" }

// DataPlatformInstance qualifies a snapshot with the deployment it was
// extracted from. Emitted only when a platform instance is configured.
type DataPlatformInstance struct {
	Instance string `json:"instance"`
}

// AspectName implements Aspect.
func (DataPlatformInstance) AspectName() string { return "dataPlatformInstance" }

// BrowsePaths carries the hierarchical navigation paths for a snapshot.
type BrowsePaths struct {
	Paths []string `json:"paths"`
}

// AspectName implements Aspect.
func (BrowsePaths) AspectName() string { return "browsePaths" }

// DatasetProperties surfaces broker-reported topic configuration verbatim.
type DatasetProperties struct {
	CustomProperties map[string]string `json:"customProperties"`
}

// AspectName implements Aspect.
func (DatasetProperties) AspectName() string { return "datasetProperties" }

// SubTypes tags the entity kind of a snapshot.
type SubTypes struct {
	TypeNames []string `json:"typeNames"`
}

// AspectName implements Aspect.
func (SubTypes) AspectName() string { return "subTypes" }
