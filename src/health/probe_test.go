package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeParsesHealthyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthCheckPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"failing": false, "minResponseTime": 7}`))
	}))
	defer server.Close()

	record := NewHTTPProber().Probe(context.Background(), domain.DefaultProcessor, server.URL)

	require.NotNil(t, record)
	assert.Equal(t, domain.DefaultProcessor, record.Name)
	assert.Equal(t, server.URL, record.URL)
	assert.False(t, record.Failing)
	assert.Equal(t, 7, record.MinResponseTime)
}

func TestProbeTreatsNonOKAsFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	record := NewHTTPProber().Probe(context.Background(), domain.FallbackProcessor, server.URL)

	require.NotNil(t, record)
	assert.True(t, record.Failing)
	assert.Zero(t, record.MinResponseTime)
}

func TestProbeReturnsNilWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	record := NewHTTPProber().Probe(context.Background(), domain.DefaultProcessor, server.URL)

	assert.Nil(t, record)
}

func TestProbeReturnsNilOnUnreadableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	record := NewHTTPProber().Probe(context.Background(), domain.DefaultProcessor, server.URL)

	assert.Nil(t, record)
}
