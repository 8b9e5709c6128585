package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kpark/internal/db"
)

// NotificationRepository is the delivery log. A row is written for every
// attempted notification, whatever the outcome.
type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(database *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: database}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *db.Notification) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, phone, type, message, status, reference, twilio_sid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		n.UserID, n.Phone, n.Type, n.Message, n.Status, n.Reference, n.TwilioSID,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting notification log: %w", err)
	}
	return nil
}

// Exists reports whether a notification of the type has already been logged
// for the reference. The reminder sweep uses it to avoid double sends.
func (r *NotificationRepository) Exists(ctx context.Context, reference, notificationType string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications WHERE reference = $1 AND type = $2
		)`, reference, notificationType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking notification log: %w", err)
	}
	return exists, nil
}
