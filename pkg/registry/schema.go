// pkg/registry/schema.go
package registry

// Kind names a bot sub-resource type.
type Kind string

const (
	KindSlotType Kind = "slotType"
	KindSlot     Kind = "slot"
	KindIntent   Kind = "intent"
)

// Kinds lists every resource kind the repair loop knows about.
var Kinds = []Kind{KindSlotType, KindSlot, KindIntent}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ResourceRegistry holds the prompts and schemas the repair oracle works from.
type ResourceRegistry struct {
	Version             string         `json:"version"`
	LastUpdated         string         `json:"lastUpdated"`
	ClassifierGuideline string         `json:"classifierGuideline"`
	CorrectionPreamble  string         `json:"correctionPreamble"`
	Resources           []ResourceSpec `json:"resources"`
}

// ResourceSpec describes one resource kind.
type ResourceSpec struct {
	Kind        Kind                   `json:"kind"`
	DisplayName string                 `json:"displayName"`
	Guideline   string                 `json:"guideline"`
	Schema      map[string]interface{} `json:"schema"`
	Example     map[string]interface{} `json:"example,omitempty"`
}
