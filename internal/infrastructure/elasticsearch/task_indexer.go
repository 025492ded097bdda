package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// NewClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewClient(addrs []string, username, password string) (*es.Client, error) {
	return es.NewClient(es.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

// TaskIndexer mirrors task documents into an index for external search and
// reporting. The API never reads from it.
type TaskIndexer struct {
	client *es.Client
	index  string
}

func NewTaskIndexer(client *es.Client, index string) *TaskIndexer {
	return &TaskIndexer{client: client, index: index}
}

const taskMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "owner":       {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "status":      {"type": "keyword"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the task index with its mapping unless it already exists.
func (x *TaskIndexer) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", x.index, err)
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", x.index, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(taskMapping)}.Do(c, x.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", x.index, err)
	}
	defer func() { _ = res.Body.Close() }()
	// another instance may have created it first
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

type taskDoc struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (x *TaskIndexer) Index(ctx context.Context, t *entity.Task) error {
	b, err := json.Marshal(taskDoc{
		ID:          t.ID,
		Owner:       t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: t.ID,
		Body:       bytes.NewReader(b),
		Routing:    t.OwnerID,
		Refresh:    "false",
	}
	return x.do(ctx, req)
}

func (x *TaskIndexer) Remove(ctx context.Context, ownerID, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id, Routing: ownerID}
	return x.do(ctx, req)
}

func (x *TaskIndexer) do(ctx context.Context, req esapi.Request) error {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a missing document on delete is not worth reporting
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return nil
}
