package geo

// Message tags of the path generation boundary.
const (
	MessageGeneratePaths = "generate-paths"
	MessagePathsReady    = "paths-ready"
)

// PathRequest asks for a batch of features to be converted to SVG paths.
type PathRequest struct {
	Type     string    `json:"type,omitempty" yaml:"type,omitempty"`
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Names    *NameKeys `json:"names,omitempty" yaml:"names,omitempty"`
	Features []Feature `json:"features" yaml:"features"`
	Params   `yaml:",inline"`
}

// PathResponse carries the converted batch. ID echoes the request ID.
type PathResponse struct {
	Type  string       `json:"type" yaml:"type"`
	ID    string       `json:"id,omitempty" yaml:"id,omitempty"`
	Paths []PathResult `json:"paths" yaml:"paths"`
}

// PathResult is the rendered path of a single feature. ID is the feature
// index in the request.
type PathResult struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	ID   int    `json:"id" yaml:"id"`
}

// Default feature property keys holding the display name.
const (
	DefaultNameKey     = "district"
	DefaultFallbackKey = "dtname"
)

// NameKeys selects the properties used as the display name.
type NameKeys struct {
	Primary  string `yaml:"name_key,omitempty" json:"primary,omitempty"`
	Fallback string `yaml:"name_fallback_key,omitempty" json:"fallback,omitempty"`
}

// WithDefaults fills empty keys with DefaultNameKey and DefaultFallbackKey.
func (k NameKeys) WithDefaults() NameKeys {
	if k.Primary == "" {
		k.Primary = DefaultNameKey
	}
	if k.Fallback == "" {
		k.Fallback = DefaultFallbackKey
	}

	return k
}
