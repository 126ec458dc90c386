package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ksanogo/cabas/internal/catalog"
	"github.com/ksanogo/cabas/internal/model"
	"github.com/ksanogo/cabas/internal/store"
	"github.com/ksanogo/cabas/internal/websocket"
)

type ItemHandler struct {
	items  *store.ItemStore
	lists  *store.ListStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(items *store.ItemStore, lists *store.ListStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, lists: lists, hub: hub, logger: logger}
}

type itemRequest struct {
	Label     string  `json:"label"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.PathValue("list_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	list, err := h.lists.GetByID(listID)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	// Suggest a unit from the label when none was given
	if req.Unit == "" {
		req.Unit = catalog.SuggestUnit(req.Label)
	}

	item, err := h.items.Create(listID, req.Label, req.Unit)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("item", "created", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) ListByList(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.ParseInt(r.PathValue("list_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list_id")
		return
	}

	items, err := h.items.ListByList(listID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.LineItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if req.Quantity < 0 || req.UnitPrice < 0 {
		writeError(w, http.StatusBadRequest, "quantity and unit_price must not be negative")
		return
	}

	item, err := h.items.Update(id, req.Label, req.Unit, req.Quantity, req.UnitPrice)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("item", "updated", id, map[string]any{"list_id": item.ListID}))
	writeJSON(w, http.StatusOK, item)
}

type checkRequest struct {
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Check marks an item purchased. Both quantity and unit price must be above
// zero, otherwise the item would stay in the unchecked state.
func (h *ItemHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Quantity <= 0 || req.UnitPrice <= 0 {
		writeError(w, http.StatusBadRequest, "quantity and unit_price must be above zero")
		return
	}

	item, err := h.items.Check(id, req.Quantity, req.UnitPrice)
	if err != nil {
		h.logger.Error("check item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("item", "checked", id, map[string]any{"list_id": item.ListID}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Uncheck(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.items.Uncheck(id)
	if err != nil {
		h.logger.Error("uncheck item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to uncheck item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("item", "unchecked", id, map[string]any{"list_id": item.ListID}))
	writeJSON(w, http.StatusOK, item)
}

// Delete removes an item; a list emptied by the deletion is removed with it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.items.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	h.hub.Broadcast(websocket.NewMessage("item", "deleted", id, map[string]any{"list_id": item.ListID}))

	remaining, err := h.items.CountByList(item.ListID)
	if err != nil {
		h.logger.Error("count items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count items")
		return
	}

	listDeleted := false
	if remaining == 0 {
		if err := h.lists.Delete(item.ListID); err != nil {
			h.logger.Error("delete emptied list", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete emptied list")
			return
		}
		listDeleted = true
		h.hub.Broadcast(websocket.NewMessage("list", "deleted", item.ListID, nil))
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "list_deleted": listDeleted})
}
