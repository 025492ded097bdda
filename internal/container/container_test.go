package container

import (
	"context"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-task-manager/config"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Env:         "development",
		StoreDriver: config.StoreDriverMemory,
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		BcryptCost:  4,
	}
}

func TestBuildMemory(t *testing.T) {
	t.Parallel()

	c, err := Build(context.Background(), memoryConfig(), helpers.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Close()

	if c.Users == nil || c.Tasks == nil || c.Store == nil {
		t.Fatalf("store not wired: %+v", c)
	}
	if c.Cache != nil || c.Mail != nil || c.Indexer != nil || c.Exports != nil {
		t.Error("optional integrations should stay disabled without configuration")
	}
	if c.AuthService() != c.AuthService() || c.TaskService() != c.TaskService() {
		t.Error("services should be built once")
	}
	if err := c.Store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestBuildUnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.StoreDriver = "sqlite"
	if _, err := Build(context.Background(), cfg, helpers.NewDiscardLogger()); err == nil {
		t.Error("Build() expected error for unknown driver")
	}
}

func TestCloseRunsInReverse(t *testing.T) {
	t.Parallel()

	c := &Container{}
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		c.OnClose(func() { order = append(order, i) })
	}
	c.Close()
	c.Close()

	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Errorf("close order = %v, want [3 2 1]", order)
	}
}
