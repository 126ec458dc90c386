package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ksanogo/cabas/internal/backup"
)

type BackupHandler struct {
	backups *backup.Manager
	keep    int
	logger  *slog.Logger
}

func NewBackupHandler(backups *backup.Manager, keep int, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, keep: keep, logger: logger}
}

// Create takes a snapshot and prunes old ones down to the retention count.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backups.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create backup")
		return
	}

	if _, err := h.backups.Prune(h.keep); err != nil {
		h.logger.Warn("prune snapshots", "error", err)
	}

	writeJSON(w, http.StatusCreated, snap)
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.backups.List()
	if err != nil {
		h.logger.Error("list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if snapshots == nil {
		snapshots = []backup.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

type exportRequest struct {
	Passphrase string `json:"passphrase"`
}

// Export streams a passphrase-encrypted copy of the store as a download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Passphrase) < 8 {
		writeError(w, http.StatusBadRequest, "passphrase must be at least 8 characters")
		return
	}

	// Buffer the blob so a failed export still gets a proper error response.
	var buf bytes.Buffer
	if err := h.backups.Export(r.Context(), &buf, req.Passphrase); err != nil {
		h.logger.Error("export", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	filename := "cabas-export-" + time.Now().UTC().Format("20060102") + ".db.enc"
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}
