package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	memoryService "github.com/zhouzirui/z-memo/backend/internal/service/memory"
)

func TestRouterServesPoliciesAndHealth(t *testing.T) {
	r := NewRouter(policy.NewMemoryStore(policy.Seed()), nil, memoryService.NewStore(0))

	for _, path := range []string{"/healthz", "/api/policies", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.Code)
		}
	}
}
