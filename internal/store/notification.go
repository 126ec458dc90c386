package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ksanogo/cabas/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, title, message, date, estLu, achatId, recurrence`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var date string
	var read int
	var listID sql.NullInt64
	err := scanner.Scan(&n.ID, &n.Title, &n.Message, &date, &read, &listID, &n.Recurrence)
	if err != nil {
		return nil, err
	}
	n.Date = parseStoredTime(date)
	n.Read = read != 0
	if listID.Valid {
		n.ListID = &listID.Int64
	}
	return &n, nil
}

func (s *NotificationStore) Create(title, message string, date time.Time, listID *int64, recurrence string) (*model.Notification, error) {
	var lID sql.NullInt64
	if listID != nil {
		lID = sql.NullInt64{Int64: *listID, Valid: true}
	}
	result, err := s.db.Exec(
		`INSERT INTO Notification (title, message, date, achatId, recurrence) VALUES (?, ?, ?, ?, ?)`,
		title, message, formatStoredTime(date), lID, recurrence,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM Notification WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) List() ([]model.Notification, error) {
	rows, err := s.db.Query(`SELECT ` + notificationCols + ` FROM Notification ORDER BY datetime(date) DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// ListDueBetween returns unread notifications scheduled after from and up to
// and including to, oldest first. The reminder scheduler calls this with a
// sliding window so each reminder fires once.
func (s *NotificationStore) ListDueBetween(from, to time.Time) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM Notification
		 WHERE estLu = 0 AND datetime(date) > datetime(?) AND datetime(date) <= datetime(?)
		 ORDER BY datetime(date) ASC, id ASC`,
		formatStoredTime(from), formatStoredTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// HasUpcoming reports whether an unread notification with the same title and
// recurrence rule is already scheduled after the given instant. The reminder
// scheduler checks this before creating a follow-up, so a restart that
// re-fires a still-unread reminder does not pile up duplicates.
func (s *NotificationStore) HasUpcoming(title, recurrence string, after time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM Notification
		 WHERE estLu = 0 AND title = ? AND recurrence = ? AND datetime(date) > datetime(?)`,
		title, recurrence, formatStoredTime(after),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check upcoming notification: %w", err)
	}
	return count > 0, nil
}

func (s *NotificationStore) MarkRead(id int64) (*model.Notification, error) {
	_, err := s.db.Exec(`UPDATE Notification SET estLu = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) MarkAllRead() (int64, error) {
	result, err := s.db.Exec(`UPDATE Notification SET estLu = 1 WHERE estLu = 0`)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM Notification WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM Notification`)
	if err != nil {
		return 0, fmt.Errorf("delete all notifications: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) CountUnread() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM Notification WHERE estLu = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
