package elasticsearch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// fakeCluster answers the handful of index APIs the indexer uses.
type fakeCluster struct {
	mu      sync.Mutex
	indices map[string]string
	calls   []string
	docs    map[string]string
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{indices: map[string]string{}, docs: map[string]string{}}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	body, _ := io.ReadAll(r.Body)
	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if _, ok := f.indices[parts[0]]; !ok {
			w.WriteHeader(http.StatusNotFound)
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		if _, ok := f.indices[parts[0]]; ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
			return
		}
		f.indices[parts[0]] = string(body)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodPut:
		f.docs[parts[2]] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		delete(f.docs, parts[2])
		_, _ = w.Write([]byte(`{"result":"deleted"}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func newTestIndexer(t *testing.T) (*TaskIndexer, *fakeCluster) {
	t.Helper()
	cluster := newFakeCluster()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := NewClient([]string{srv.URL}, "", "")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewTaskIndexer(client, "tasks"), cluster
}

func TestEnsureIndexCreatesOnce(t *testing.T) {
	t.Parallel()

	x, cluster := newTestIndexer(t)
	ctx := context.Background()

	if err := x.EnsureIndex(ctx); err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}
	if err := x.EnsureIndex(ctx); err != nil {
		t.Fatalf("second EnsureIndex() error = %v", err)
	}

	cluster.mu.Lock()
	defer cluster.mu.Unlock()
	mapping, ok := cluster.indices["tasks"]
	if !ok {
		t.Fatal("index was not created")
	}
	if !strings.Contains(mapping, `"owner":       {"type": "keyword"}`) {
		t.Errorf("mapping = %s", mapping)
	}
	want := []string{"HEAD /tasks", "PUT /tasks", "HEAD /tasks"}
	if strings.Join(cluster.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", cluster.calls, want)
	}
}

func TestIndexAndRemove(t *testing.T) {
	t.Parallel()

	x, cluster := newTestIndexer(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := &entity.Task{
		ID: "t1", OwnerID: "u1", Title: "Write report",
		Status: entity.TaskStatusPending, CreatedAt: now, UpdatedAt: now,
	}

	if err := x.Index(ctx, task); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	cluster.mu.Lock()
	doc := cluster.docs["t1"]
	cluster.mu.Unlock()
	if !strings.Contains(doc, `"owner":"u1"`) || !strings.Contains(doc, `"created_at":"2026-01-02T03:04:05Z"`) {
		t.Errorf("indexed doc = %s", doc)
	}

	if err := x.Remove(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := x.Remove(ctx, "u1", "t1"); err != nil {
		t.Errorf("Remove() of a missing doc error = %v", err)
	}
}
