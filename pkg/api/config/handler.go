// Package config serves the LLM provider settings.
package config

import (
	"encoding/json"
	"net/http"

	"financial_analyst/pkg/api/respond"
	"financial_analyst/pkg/core/agent"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.AvailableProviders(),
	})
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Provider == "" {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.HandleConfig(w, r)
}
