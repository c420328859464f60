package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dining-concierge/internal/common/logger"
)

// fakeElasticsearch serves canned responses and records the last search
// request body. The product header is required by the v8 client.
func fakeElasticsearch(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
}

func newTestIndex(t *testing.T, srv *httptest.Server) *Index {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(client, "restaurants", logger.NewTestLogger(t))
}

func searchResponse(ids ...string) string {
	type hit struct {
		Source map[string]string `json:"_source"`
	}
	hits := make([]hit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, hit{Source: map[string]string{"RestaurantID": id, "Cuisine": "italian"}})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(ids)},
			"hits":  hits,
		},
	})
	return string(body)
}

func TestFindByCuisine_ReturnsIDs(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			json.Unmarshal(raw, &gotBody)
		}
		io.WriteString(w, searchResponse("id-1", "id-2", "id-3"))
	})
	defer srv.Close()

	ix := newTestIndex(t, srv)
	ids, err := ix.FindByCuisine(context.Background(), "  Italian ", 50)
	require.NoError(t, err)

	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, ids)
	assert.Equal(t, "/restaurants/_search", gotPath)

	// Term is lowercased and trimmed; size cap goes with the request.
	query := gotBody["query"].(map[string]interface{})
	term := query["term"].(map[string]interface{})
	assert.Equal(t, "italian", term["Cuisine"])
	assert.Equal(t, float64(50), gotBody["size"])
}

func TestFindByCuisine_NoHits(t *testing.T) {
	srv := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, searchResponse())
	})
	defer srv.Close()

	ix := newTestIndex(t, srv)
	ids, err := ix.FindByCuisine(context.Background(), "klingon", 50)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFindByCuisine_MissingIndex(t *testing.T) {
	srv := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"type":"index_not_found_exception"}}`)
	})
	defer srv.Close()

	ix := newTestIndex(t, srv)
	_, err := ix.FindByCuisine(context.Background(), "italian", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestFindByCuisine_ServerError(t *testing.T) {
	srv := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"type":"search_phase_execution_exception"}}`)
	})
	defer srv.Close()

	ix := newTestIndex(t, srv)
	_, err := ix.FindByCuisine(context.Background(), "italian", 50)
	assert.Error(t, err)
}
