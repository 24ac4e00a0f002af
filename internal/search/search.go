// Package search keeps a secondary Elasticsearch index of projects for the
// public gallery search. Indexing is write-through and best-effort.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/velsland/portfolio-api/internal/models"
)

type Service struct {
	es    *elasticsearch.Client
	index string
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

// NewService returns nil when es is nil; a nil Service skips indexing and
// reports search as unavailable.
func NewService(es *elasticsearch.Client, index string) *Service {
	if es == nil {
		return nil
	}
	return &Service{es: es, index: index}
}

func (s *Service) Enabled() bool { return s != nil }

func (s *Service) IndexProject(ctx context.Context, p *models.Project) error {
	if s == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return err
	}

	res, err := s.es.Index(
		s.index,
		&buf,
		s.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index project %d: %s", p.ID, res.Status())
	}
	return nil
}

func (s *Service) DeleteProject(ctx context.Context, id uint) error {
	if s == nil {
		return nil
	}

	res, err := s.es.Delete(
		s.index,
		strconv.FormatUint(uint64(id), 10),
		s.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete project %d: %s", id, res.Status())
	}
	return nil
}

func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Project, error) {
	if s == nil {
		return 0, nil, fmt.Errorf("search is not configured")
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description"},
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

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
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
				Source models.Project `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	projects := make([]models.Project, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		projects[i] = hit.Source
	}
	return r.Hits.Total.Value, projects, nil
}
