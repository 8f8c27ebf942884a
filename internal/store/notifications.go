package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/auditledger/internal/api"
)

func (s *Store) CreateNotification(ctx context.Context, n *api.Notification) error {
	if n.ID == "" {
		n.ID = uuid.Must(uuid.NewV7()).String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, title, message, entry_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.Title, n.Message, n.EntryID, n.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the most recent notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, limit int) ([]api.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, kind, title, message, entry_id, created_at FROM notifications
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []api.Notification{}
	for rows.Next() {
		var n api.Notification
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Message, &n.EntryID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}
