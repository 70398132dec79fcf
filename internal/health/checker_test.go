package health

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestCheckOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewChecker(map[string]string{ServiceLLM: server.URL}, time.Second, setupTestLogger())

	status := checker.Check(context.Background(), ServiceLLM)
	assert.Equal(t, ServiceLLM, status.ServiceName)
	assert.Equal(t, domain.ServiceOnline, status.State)
}

func TestCheckDegraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := NewChecker(map[string]string{ServiceComfyUI: server.URL}, time.Second, setupTestLogger())

	status := checker.Check(context.Background(), ServiceComfyUI)
	assert.Equal(t, domain.ServiceDegraded, status.State)
}

func TestCheckOffline(t *testing.T) {
	// Start then immediately close the server so the port refuses
	// connections.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	checker := NewChecker(map[string]string{ServiceLLM: url}, time.Second, setupTestLogger())

	status := checker.Check(context.Background(), ServiceLLM)
	assert.Equal(t, domain.ServiceOffline, status.State)
}

func TestCheckUnknownService(t *testing.T) {
	checker := NewChecker(map[string]string{}, time.Second, setupTestLogger())

	status := checker.Check(context.Background(), "render-farm")
	assert.Equal(t, domain.ServiceOffline, status.State)
	assert.Equal(t, "render-farm", status.ServiceName)
}

func TestCheckAll(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer badServer.Close()

	checker := NewChecker(map[string]string{
		ServiceLLM:     okServer.URL,
		ServiceComfyUI: badServer.URL,
	}, time.Second, setupTestLogger())

	snapshot := checker.CheckAll(context.Background())
	assert.Len(t, snapshot, 2)
	assert.Equal(t, domain.ServiceOnline, snapshot[ServiceLLM].State)
	assert.Equal(t, domain.ServiceDegraded, snapshot[ServiceComfyUI].State)
}
