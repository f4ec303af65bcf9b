package umm

// Collection is one normalized collection descriptor.
type Collection struct {
	ConceptID string `json:"concept_id"`
	ShortName string `json:"short_name"`
	Version   string `json:"version,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Title     string `json:"title,omitempty"`
	Abstract  string `json:"abstract,omitempty"`
}
