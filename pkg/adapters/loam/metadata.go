package loam

// PrototypeMetadata is the front-matter (or whole-file JSON/YAML) shape of a
// prototype document stored in a Loam repository.
// Nested structures stay generic; pkg/document owns their decoding.
type PrototypeMetadata struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	Version       int    `json:"version" mapstructure:"version"`
	InitialScreen string `json:"initialScreen" mapstructure:"initialScreen"`
	Screens       []any  `json:"screens" mapstructure:"screens"`
	Transitions   []any  `json:"transitions" mapstructure:"transitions"`
	Variables     []any  `json:"variables" mapstructure:"variables"`
	Interactions  []any  `json:"interactions" mapstructure:"interactions"`
}
