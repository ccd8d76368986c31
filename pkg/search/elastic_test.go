package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElastic answers the handful of endpoints the client uses.
type fakeElastic struct {
	mu       sync.Mutex
	indexed  map[string]string
	queries  []string
	existing bool
}

func (f *fakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodPut && r.URL.Path == "/categories":
		if f.existing {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"},"status":400}`)
			return
		}
		f.existing = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/categories/_doc/"):
		f.indexed[strings.TrimPrefix(r.URL.Path, "/categories/_doc/")] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/categories/_doc/"):
		id := strings.TrimPrefix(r.URL.Path, "/categories/_doc/")
		if _, ok := f.indexed[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.indexed, id)
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		f.queries = append(f.queries, string(body))
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_id":"B","_score":1.5,"_source":{"id":"B","name":"Boots"}}]}}`)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeElastic) {
	fake := &fakeElastic{indexed: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, fake
}

func TestCreateIndexIsIdempotent(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.CreateIndex(ctx, "categories", `{"mappings":{}}`))
	require.NoError(t, client.CreateIndex(ctx, "categories", `{"mappings":{}}`))
}

func TestIndexSearchDelete(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Index(ctx, "categories", "B", map[string]string{"name": "Boots"}))
	assert.Contains(t, fake.indexed["B"], "Boots")

	res, err := client.Search(ctx, "categories", map[string]any{"query": map[string]any{"match_all": map[string]any{}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "B", res.Hits.Hits[0].ID)

	var src map[string]string
	require.NoError(t, json.Unmarshal(res.Hits.Hits[0].Source, &src))
	assert.Equal(t, "Boots", src["name"])
	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "match_all")

	require.NoError(t, client.Delete(ctx, "categories", "B"))
	require.NoError(t, client.Delete(ctx, "categories", "B"))
}

func TestNewClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := NewClient(&Config{Addresses: []string{srv.URL}})
	assert.Error(t, err)
}
