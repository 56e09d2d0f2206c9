// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_EXPORT_BUCKET", "exports-bucket")

	path := writeConfig(t, `
aws:
  region: eu-west-1
  s3:
    export_bucket: ${TEST_EXPORT_BUCKET}
  dynamodb:
    artifact_table: artifacts
oracle:
  model_id: some-model
workers:
  bot-build-artifact:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "exports-bucket", cfg.AWS.S3.ExportBucket)
	assert.Equal(t, "bedrock", cfg.Oracle.Provider)
	assert.Equal(t, "dynamodb", cfg.Repository.Backend)
	assert.Equal(t, 2, cfg.Build.MaxBuildRetries)
	assert.Equal(t, 5, cfg.Build.MaxRepairAttempts)
	assert.Equal(t, 5*time.Second, GetDuration(cfg.Build.PollInterval))
	assert.Equal(t, "bot-build-repairs", cfg.Database.Elasticsearch.RepairIndex)

	w := GetWorkerConfig(cfg, "bot-build-artifact")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 300000, w.Timeout)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing table for dynamodb",
			body: `
aws:
  s3:
    export_bucket: b
oracle:
  model_id: m
`,
			wantErr: "artifact_table",
		},
		{
			name: "gemini without key",
			body: `
repository:
  backend: memory
aws:
  s3:
    export_bucket: b
oracle:
  provider: gemini
`,
			wantErr: "api_key",
		},
		{
			name: "unknown backend",
			body: `
repository:
  backend: mongo
`,
			wantErr: "not supported",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"bot-fix-resource": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "bot-fix-resource"))
	assert.True(t, IsWorkerEnabled(cfg, "bot-create-intent"))
}
