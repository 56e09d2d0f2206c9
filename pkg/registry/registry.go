// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed default_registry.json
var defaultRegistry []byte

// Default returns the registry compiled into the binary.
func Default() *ResourceRegistry {
	reg, err := parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded resource registry is invalid: %v", err))
	}
	return reg
}

// LoadRegistry reads a registry file. An empty path yields the default.
func LoadRegistry(path string) (*ResourceRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ResourceRegistry, error) {
	var reg ResourceRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	for _, kind := range Kinds {
		spec, ok := reg.Lookup(kind)
		if !ok {
			return nil, fmt.Errorf("registry has no entry for %s", kind)
		}
		if spec.Guideline == "" {
			return nil, fmt.Errorf("registry entry %s has no guideline", kind)
		}
	}
	return &reg, nil
}

// Lookup finds the ResourceSpec for a resource kind.
func (r *ResourceRegistry) Lookup(kind Kind) (ResourceSpec, bool) {
	for _, spec := range r.Resources {
		if spec.Kind == kind {
			return spec, true
		}
	}
	return ResourceSpec{}, false
}

// SchemaJSON returns the JSON schema for kind, or nil if none is set.
func (r *ResourceRegistry) SchemaJSON(kind Kind) []byte {
	spec, ok := r.Lookup(kind)
	if !ok || len(spec.Schema) == 0 {
		return nil
	}
	b, err := json.Marshal(spec.Schema)
	if err != nil {
		return nil
	}
	return b
}
