// Package search adapts the Elasticsearch restaurant index: a cuisine term
// query for the fulfillment worker, plus the admin operations the rebuild
// tool needs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

const DefaultIndex = "restaurants"

var ErrIndexNotFound = errors.New("search index not found")

// indexMapping matches the loader: both fields keyword-typed so the cuisine
// term query is an exact match on the lowercased value.
const indexMapping = `{
	"mappings": {
		"properties": {
			"RestaurantID": {"type": "keyword"},
			"Cuisine":      {"type": "keyword"}
		}
	}
}`

type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	if name == "" {
		name = DefaultIndex
	}
	return &Index{
		client: client,
		name:   name,
		logger: log.WithFields(map[string]interface{}{"index": name}),
	}
}

// FindByCuisine returns up to limit restaurant ids whose cuisine matches the
// given value, case-normalized.
func (ix *Index) FindByCuisine(ctx context.Context, cuisine string, limit int) ([]string, error) {
	term := strings.ToLower(strings.TrimSpace(cuisine))

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"Cuisine": term},
		},
		"size": limit,
	}
	body, _ := json.Marshal(queryBody)

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("search %q: %w", term, ErrIndexNotFound)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search %q: %s", term, res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.IndexEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", term, err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source.RestaurantID != "" {
			ids = append(ids, hit.Source.RestaurantID)
		}
	}

	ix.logger.Debug("cuisine query", map[string]interface{}{
		"cuisine": term,
		"hits":    len(ids),
	})
	return ids, nil
}

// EnsureIndex creates the index with its mapping, tolerating an index that
// already exists.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Create(
		ix.name,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index: %s", res.String())
	}
	return nil
}

// DeleteIndex drops the index, ignoring a missing one.
func (ix *Index) DeleteIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Delete(
		[]string{ix.name},
		ix.client.Indices.Delete.WithContext(ctx),
		ix.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete index: %s", res.String())
	}
	return nil
}

// Put indexes one entry under its restaurant id, lowercasing the cuisine so
// queries stay case-insensitive.
func (ix *Index) Put(ctx context.Context, entry models.IndexEntry) error {
	entry.Cuisine = strings.ToLower(entry.Cuisine)
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("index %s: marshal entry: %w", entry.RestaurantID, err)
	}

	req := esapi.IndexRequest{
		Index:      ix.name,
		DocumentID: entry.RestaurantID,
		Body:       strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index %s: %w", entry.RestaurantID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s", entry.RestaurantID, res.String())
	}
	return nil
}

// Count returns the number of documents in the index.
func (ix *Index) Count(ctx context.Context) (int64, error) {
	res, err := ix.client.Count(
		ix.client.Count.WithContext(ctx),
		ix.client.Count.WithIndex(ix.name),
	)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count: %s", res.String())
	}

	var r struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("count: decode response: %w", err)
	}
	return r.Count, nil
}
