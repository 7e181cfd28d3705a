package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-memo/backend/internal/service/dialogue"
	memoryService "github.com/zhouzirui/z-memo/backend/internal/service/memory"
	"github.com/zhouzirui/z-memo/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	dialogueSvc *dialogue.Service
	memory      *memoryService.Store
}

// New 创建聊天处理器。dialogueSvc 为 nil 时对话接口返回 503。
func New(dialogueSvc *dialogue.Service, memory *memoryService.Store) *Handler {
	return &Handler{
		dialogueSvc: dialogueSvc,
		memory:      memory,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reply", h.handleReply)
	r.Get("/memory/{username}", h.handleGetMemory)
	r.Delete("/memory/{username}", h.handleResetMemory)
}

// handleChat 带短期记忆与结构校验的对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Message  string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.dialogueSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai unavailable")
		return
	}

	reply, err := h.dialogueSvc.HandleTurn(r.Context(), payload.Username, payload.Message)
	if err != nil {
		respondDialogueError(w, err, "Missing username or message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleReply 无状态对话，直接返回模型文本
func (h *Handler) handleReply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.dialogueSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai unavailable")
		return
	}

	text, err := h.dialogueSvc.Reply(r.Context(), payload.Message)
	if err != nil {
		respondDialogueError(w, err, "Message is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": text})
}

// handleGetMemory 返回某个用户的短期记忆
func (h *Handler) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"exchanges": h.memory.Get(username),
	})
}

// handleResetMemory 清空某个用户的短期记忆
func (h *Handler) handleResetMemory(w http.ResponseWriter, r *http.Request) {
	h.memory.Reset(chi.URLParam(r, "username"))
	w.WriteHeader(http.StatusNoContent)
}

func respondDialogueError(w http.ResponseWriter, err error, badRequestMsg string) {
	switch {
	case errors.Is(err, dialogue.ErrBadRequest):
		utils.RespondError(w, http.StatusBadRequest, badRequestMsg)
	case errors.Is(err, dialogue.ErrUpstreamTimeout):
		utils.RespondError(w, http.StatusGatewayTimeout, "AI service timed out")
	case errors.Is(err, dialogue.ErrUpstreamUnavailable):
		log.Printf("[chat] upstream failure: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "AI service unavailable")
	case errors.Is(err, dialogue.ErrUpstreamFormat):
		utils.RespondError(w, http.StatusBadGateway, "Invalid AI response format")
	default:
		log.Printf("[chat] error processing request: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
