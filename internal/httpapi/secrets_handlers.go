package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"leadhunt/internal/config"
	"leadhunt/internal/secrets"
)

type SecretsHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
}

type setCSEReq struct {
	APIKey string `json:"api_key"`
	CX     string `json:"cx"`
}

// SetCSE stores the search API key and engine id. The key goes to the OS
// keychain when one is available.
func (h SecretsHandler) SetCSE(w http.ResponseWriter, r *http.Request) {
	var req setCSEReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if req.CX == "" {
		req.CX = cfg.Search.CX
	}
	next, loc, err := secrets.SaveCredentials(cfg, req.CX, req.APIKey)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_credentials", err.Error())
		return
	}
	if err := config.SaveAtomic(h.UserCfgPath, next); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	h.CfgVal.Store(next)
	writeJSON(w, map[string]any{"stored_in": loc, "cx": next.Search.CX})
}
