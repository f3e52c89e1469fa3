// Package search stores auth events in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const eventMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "type":        {"type": "keyword"},
      "user_id":     {"type": "keyword"},
      "email":       {"type": "keyword"},
      "method":      {"type": "keyword"},
      "occurred_at": {"type": "date"}
    }
  }
}`

type EventIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewEventIndex(es *elasticsearch.Client, index string) *EventIndex {
	return &EventIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *EventIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	drain(res)
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index: %s", res.Status())
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(ctx),
		x.es.Indices.Create.WithBody(bytes.NewReader([]byte(eventMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer drain(res)
	if !res.IsError() {
		return nil
	}
	// lost a create race with another notifier
	if res.StatusCode == http.StatusBadRequest && errorType(res) == "resource_already_exists_exception" {
		return nil
	}
	return fmt.Errorf("create index: %s", res.Status())
}

func errorType(res *esapi.Response) string {
	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Error.Type
}

// Index writes doc under id. Reusing the event id makes redelivery idempotent.
func (x *EventIndex) Index(ctx context.Context, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("index event: %w", err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("index event: %s", res.Status())
	}
	return nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
