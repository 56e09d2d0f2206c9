package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK\x03\x04export"))
	}))
	defer srv.Close()

	body, err := NewClient(time.Second).Download(context.Background(), srv.URL+"/export.zip")

	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04export"), body)
}

func TestDownload_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(time.Second).Download(context.Background(), srv.URL)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestDownload_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 32))
	}))
	defer srv.Close()
	c := NewClient(time.Second)
	c.maxBytes = 16

	_, err := c.Download(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "exceeds 16 bytes")
}
