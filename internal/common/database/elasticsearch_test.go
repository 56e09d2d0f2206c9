package database

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lex-build-workers/internal/common/config"
)

func newESServer(t *testing.T, status int, seen *map[string]interface{}, path *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPut || r.Method == http.MethodPost {
			*path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIndexDocument(t *testing.T) {
	var doc map[string]interface{}
	var path string
	srv := newESServer(t, http.StatusCreated, &doc, &path)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	err = es.IndexDocument(context.Background(), "bot-build-repairs", "art-1-0", map[string]interface{}{"reason": "Intent X invalid"})

	require.NoError(t, err)
	assert.Equal(t, "/bot-build-repairs/_doc/art-1-0", path)
	assert.Equal(t, "Intent X invalid", doc["reason"])
}

func TestIndexDocument_ErrorStatus(t *testing.T) {
	var doc map[string]interface{}
	var path string
	srv := newESServer(t, http.StatusBadRequest, &doc, &path)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	err = es.IndexDocument(context.Background(), "bot-build-repairs", "x", map[string]string{"a": "b"})

	assert.ErrorContains(t, err, "400")
}
