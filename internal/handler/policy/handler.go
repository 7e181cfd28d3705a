package policy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/pkg/utils"
)

// Handler policy 目录的HTTP处理器
type Handler struct {
	policies policy.Store
}

// New 创建policy处理器
func New(policies policy.Store) *Handler {
	return &Handler{
		policies: policies,
	}
}

// RegisterRoutes 注册policy相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/policies", h.handleListPolicies)
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.policies.List())
}
