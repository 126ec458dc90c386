package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/ksanogo/cabas/internal/backup"
	"github.com/ksanogo/cabas/internal/config"
	"github.com/ksanogo/cabas/internal/handler"
	"github.com/ksanogo/cabas/internal/middleware"
	"github.com/ksanogo/cabas/internal/report"
	"github.com/ksanogo/cabas/internal/store"
	ws "github.com/ksanogo/cabas/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	listH         *handler.ListHandler
	itemH         *handler.ItemHandler
	productH      *handler.ProductHandler
	notificationH *handler.NotificationHandler
	reportH       *handler.ReportHandler
	settingsH     *handler.SettingsHandler
	exportH       *handler.ExportHandler
	backupH       *handler.BackupHandler
	Notifications *store.NotificationStore
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	listStore := store.NewListStore(db)
	itemStore := store.NewItemStore(db)
	productStore := store.NewProductStore(db)
	notificationStore := store.NewNotificationStore(db)
	settingsStore := store.NewSettingsStore(db)
	reportStore := store.NewReportStore(db)

	reportSvc := report.NewService(reportStore, logger.With("component", "report"))
	backups := backup.NewManager(db, cfg.DBPath, cfg.BackupDir, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		listH:         handler.NewListHandler(listStore, itemStore, hub, logger.With("component", "list")),
		itemH:         handler.NewItemHandler(itemStore, listStore, hub, logger.With("component", "item")),
		productH:      handler.NewProductHandler(productStore, logger.With("component", "product")),
		notificationH: handler.NewNotificationHandler(notificationStore, hub, logger.With("component", "notification")),
		reportH:       handler.NewReportHandler(reportSvc),
		settingsH:     handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		exportH:       handler.NewExportHandler(reportSvc),
		backupH:       handler.NewBackupHandler(backups, cfg.BackupKeep, logger.With("component", "backup")),
		Notifications: notificationStore,
		logger:        logger,
	}
}

// Hub exposes the websocket hub so the reminder scheduler can broadcast.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	// Shopping lists
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Rename)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)

	// Line items
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.itemH.Create)
	mux.HandleFunc("GET /api/lists/{list_id}/items", s.itemH.ListByList)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("POST /api/items/{id}/check", s.itemH.Check)
	mux.HandleFunc("POST /api/items/{id}/uncheck", s.itemH.Uncheck)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	// Product catalog
	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)
	mux.HandleFunc("PUT /api/products/{id}", s.productH.Update)
	mux.HandleFunc("DELETE /api/products/{id}", s.productH.Delete)

	// Notifications
	mux.HandleFunc("POST /api/notifications", s.notificationH.Create)
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("GET /api/notifications/unread-count", s.notificationH.UnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Delete)
	mux.HandleFunc("DELETE /api/notifications", s.notificationH.DeleteAll)

	// Reports
	mux.HandleFunc("GET /api/reports/overview", s.reportH.Overview)
	mux.HandleFunc("GET /api/reports/breakdown", s.reportH.Breakdown)
	mux.HandleFunc("GET /api/reports/pie", s.reportH.PieChart)
	mux.HandleFunc("GET /api/reports/periods", s.reportH.Periods)
	mux.HandleFunc("GET /api/reports/history", s.reportH.History)
	mux.HandleFunc("GET /api/reports/labels", s.reportH.Labels)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings/currency", s.settingsH.SetCurrency)
	mux.HandleFunc("POST /api/settings/pin", s.settingsH.SetPIN)
	mux.HandleFunc("DELETE /api/settings/pin", s.settingsH.ClearPIN)
	mux.HandleFunc("POST /api/settings/pin/verify", s.settingsH.VerifyPIN)

	// Export
	mux.HandleFunc("GET /api/export/history.csv", s.exportH.ProductHistory)
	mux.HandleFunc("GET /api/export/breakdown.csv", s.exportH.Breakdown)

	// Backups
	mux.HandleFunc("POST /api/backups", s.backupH.Create)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/export", s.backupH.Export)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
