package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeES struct {
	mu       sync.Mutex
	indices  map[string]bool
	docs     map[string]string
	failNext int
	// hideIndex makes HEAD report a missing index that PUT then finds.
	hideIndex bool
	// createErr is returned as the error type of the next PUT.
	createErr string
}

func newFakeES(t *testing.T) (*fakeES, *elasticsearch.Client) {
	t.Helper()
	f := &fakeES{indices: map[string]bool{}, docs: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return f, es
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if f.failNext > 0 {
		f.failNext--
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"unavailable"}`)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if f.hideIndex || !f.indices[parts[0]] {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		if f.createErr != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"`+f.createErr+`","reason":"rejected"},"status":400}`)
			return
		}
		if f.indices[parts[0]] {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception","reason":"exists"},"status":400}`)
			return
		}
		f.indices[parts[0]] = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case len(parts) == 3 && parts[1] == "_doc":
		b, _ := io.ReadAll(r.Body)
		f.docs[parts[2]] = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestEnsureIndex_CreatesOnce(t *testing.T) {
	f, es := newFakeES(t)
	x := NewEventIndex(es, "auth-events")

	require.NoError(t, x.EnsureIndex(context.Background()))
	assert.True(t, f.indices["auth-events"])
	require.NoError(t, x.EnsureIndex(context.Background()))
}

func TestEnsureIndex_LostCreateRace(t *testing.T) {
	f, es := newFakeES(t)
	f.indices["auth-events"] = true
	f.hideIndex = true

	assert.NoError(t, NewEventIndex(es, "auth-events").EnsureIndex(context.Background()))
}

func TestEnsureIndex_RejectedMapping(t *testing.T) {
	f, es := newFakeES(t)
	f.createErr = "mapper_parsing_exception"

	err := NewEventIndex(es, "auth-events").EnsureIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.False(t, f.indices["auth-events"])
}

func TestIndex_StoresDocumentUnderID(t *testing.T) {
	f, es := newFakeES(t)
	x := NewEventIndex(es, "auth-events")

	err := x.Index(context.Background(), "ev-1", map[string]string{"type": "user.registered"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"user.registered"}`, f.docs["ev-1"])
}

func TestIndex_ServerError(t *testing.T) {
	f, es := newFakeES(t)
	f.failNext = 10
	x := NewEventIndex(es, "auth-events")

	assert.Error(t, x.Index(context.Background(), "ev-1", map[string]string{}))
}
