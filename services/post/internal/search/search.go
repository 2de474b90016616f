// Package search indexes posts into elasticsearch and serves the fuzzy
// content search endpoint.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/socialmesh/platform/services/post/internal/models"
)

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}

	return client, nil
}

func (i *Index) IndexPost(ctx context.Context, post *models.Post) error {
	payload, err := json.Marshal(post)
	if err != nil {
		return err
	}

	res, err := i.ES.Index(i.Name, bytes.NewReader(payload),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(post.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index post %s: %w", post.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index post %s: %s", post.ID, res.Status())
	}
	return nil
}

func (i *Index) RemovePost(ctx context.Context, id string) error {
	res, err := i.ES.Delete(i.Name, id, i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("remove post %s: %w", id, err)
	}
	defer res.Body.Close()
	// 404 means the document never made it into the index; nothing to do.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove post %s: %s", id, res.Status())
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Post, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"content"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Post `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	posts := make([]models.Post, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		posts[n] = hit.Source
	}
	return r.Hits.Total.Value, posts, nil
}
