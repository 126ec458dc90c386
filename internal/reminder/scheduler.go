// Package reminder fires scheduled notifications. A background loop polls
// the notification table and broadcasts reminders that came due since the
// previous poll; marking them read stays with the user.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ksanogo/cabas/internal/model"
	"github.com/ksanogo/cabas/internal/recurrence"
	"github.com/ksanogo/cabas/internal/store"
	"github.com/ksanogo/cabas/internal/websocket"
)

// Broadcaster is the piece of the websocket hub the scheduler needs.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

type Scheduler struct {
	mu            sync.Mutex
	notifications *store.NotificationStore
	hub           Broadcaster
	logger        *slog.Logger
	interval      time.Duration
	lastCheck     time.Time
	cancel        context.CancelFunc
	done          chan struct{}
}

func NewScheduler(notifications *store.NotificationStore, hub Broadcaster, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		notifications: notifications,
		hub:           hub,
		logger:        logger,
		interval:      interval,
	}
}

// Start begins the polling loop. Reminders already overdue at startup are
// delivered on the first tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.lastCheck = time.Time{}
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// tick broadcasts every unread notification that came due in
// (lastCheck, now]. The window slides forward only on success so a failed
// poll retries the same reminders next time.
func (s *Scheduler) tick(now time.Time) {
	s.mu.Lock()
	from := s.lastCheck
	s.mu.Unlock()

	due, err := s.notifications.ListDueBetween(from, now)
	if err != nil {
		s.logger.Error("reminder poll", "error", err)
		return
	}

	for _, n := range due {
		payload := map[string]any{
			"title":   n.Title,
			"message": n.Message,
		}
		if n.ListID != nil {
			payload["list_id"] = *n.ListID
		}
		s.hub.Broadcast(websocket.NewMessage("notification", "due", n.ID, payload))
		s.logger.Info("reminder fired", "notification", n.ID, "title", n.Title)

		if n.Recurrence != "" {
			s.scheduleNext(n, now)
		}
	}

	s.mu.Lock()
	s.lastCheck = now
	s.mu.Unlock()
}

// scheduleNext creates the follow-up occurrence of a recurring reminder. The
// fired one stays in the inbox until the user reads it.
func (s *Scheduler) scheduleNext(n model.Notification, now time.Time) {
	rule, err := recurrence.Parse(n.Recurrence)
	if err != nil {
		s.logger.Warn("bad recurrence rule, reminder will not repeat", "notification", n.ID, "error", err)
		return
	}

	next := rule.Next(n.Date, now)
	if next.IsZero() {
		s.logger.Info("recurring reminder ran out", "notification", n.ID)
		return
	}

	// After a restart the window starts over and a still-unread reminder
	// fires again; its follow-up from the previous run already exists.
	exists, err := s.notifications.HasUpcoming(n.Title, n.Recurrence, now)
	if err != nil {
		s.logger.Error("check scheduled occurrence", "notification", n.ID, "error", err)
		return
	}
	if exists {
		return
	}

	created, err := s.notifications.Create(n.Title, n.Message, next, n.ListID, n.Recurrence)
	if err != nil {
		s.logger.Error("schedule next occurrence", "notification", n.ID, "error", err)
		return
	}
	s.logger.Info("next occurrence scheduled", "notification", created.ID, "date", next)
}
