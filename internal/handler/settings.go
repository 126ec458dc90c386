package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ksanogo/cabas/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(settings *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.settings.Currency()
	if err != nil {
		h.logger.Error("get currency", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	hasPIN, err := h.settings.HasPIN()
	if err != nil {
		h.logger.Error("check pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"currency": currency, "pin_set": hasPIN})
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

func (h *SettingsHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Currency = strings.TrimSpace(req.Currency)
	if req.Currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	if err := h.settings.SetCurrency(req.Currency); err != nil {
		h.logger.Error("set currency", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save currency")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currency": req.Currency})
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *SettingsHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.PIN) < 4 {
		writeError(w, http.StatusBadRequest, "pin must be at least 4 characters")
		return
	}

	if err := h.settings.SetPIN(req.PIN); err != nil {
		h.logger.Error("set pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save pin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *SettingsHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.ClearPIN(); err != nil {
		h.logger.Error("clear pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear pin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func (h *SettingsHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ok, err := h.settings.VerifyPIN(req.PIN)
	if err != nil {
		h.logger.Error("verify pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify pin")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "incorrect pin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
