// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasEveryKind(t *testing.T) {
	reg := Default()

	for _, kind := range Kinds {
		spec, ok := reg.Lookup(kind)
		require.True(t, ok, kind)
		assert.NotEmpty(t, spec.Guideline)
		assert.NotEmpty(t, reg.SchemaJSON(kind))
	}
	assert.NotEmpty(t, reg.ClassifierGuideline)
	assert.NotEmpty(t, reg.CorrectionPreamble)
}

func TestLoadRegistry_EmptyPathUsesDefault(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, Default().Version, reg.Version)
}

func TestLoadRegistry_RejectsMissingKind(t *testing.T) {
	partial := ResourceRegistry{
		Version:   "x",
		Resources: []ResourceSpec{{Kind: KindIntent, Guideline: "g"}},
	}
	data, err := json.Marshal(partial)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slotType")
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindSlot.Valid())
	assert.False(t, Kind("bot").Valid())
}
