package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ksanogo/cabas/internal/model"
	"github.com/ksanogo/cabas/internal/recurrence"
	"github.com/ksanogo/cabas/internal/store"
	"github.com/ksanogo/cabas/internal/websocket"
)

type NotificationHandler struct {
	notifications *store.NotificationStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *store.NotificationStore, hub *websocket.Hub, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub, logger: logger}
}

type notificationRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Date       string `json:"date"`
	ListID     *int64 `json:"list_id"`
	Recurrence string `json:"recurrence"`
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC 3339")
		return
	}

	req.Recurrence = strings.TrimSpace(req.Recurrence)
	if req.Recurrence != "" {
		if _, err := recurrence.Parse(req.Recurrence); err != nil {
			writeError(w, http.StatusBadRequest, "invalid recurrence rule")
			return
		}
	}

	notification, err := h.notifications.Create(req.Title, req.Message, date, req.ListID, req.Recurrence)
	if err != nil {
		h.logger.Error("create notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("notification", "created", notification.ID, nil))
	writeJSON(w, http.StatusCreated, notification)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List()
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.CountUnread()
	if err != nil {
		h.logger.Error("count unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count unread")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	notification, err := h.notifications.MarkRead(id)
	if err != nil {
		h.logger.Error("mark read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}
	if notification == nil {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("notification", "read", id, nil))
	writeJSON(w, http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.MarkAllRead()
	if err != nil {
		h.logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark all read")
		return
	}
	h.hub.Broadcast(websocket.NewMessage("notification", "read_all", 0, nil))
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.notifications.Delete(id); err != nil {
		h.logger.Error("delete notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	h.hub.Broadcast(websocket.NewMessage("notification", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.DeleteAll()
	if err != nil {
		h.logger.Error("delete all notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete notifications")
		return
	}
	h.hub.Broadcast(websocket.NewMessage("notification", "deleted_all", 0, nil))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}
