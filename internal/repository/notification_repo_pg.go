package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotificationNotFound = errors.New("notification not found")

// BackOfficeRecipient addresses a notification to every admin and staff
// user instead of a single customer.
const BackOfficeRecipient int64 = 0

type NotificationRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, eventID string, n *domain.Notification) (bool, error)
	List(ctx context.Context, recipients []int64, limit int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, recipients []int64) (int, error)
	MarkRead(ctx context.Context, recipients []int64, id string) error
	MarkAllRead(ctx context.Context, recipients []int64) (int64, error)
	PurgeReadBefore(ctx context.Context, deadline time.Time) (int64, error)
}

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

const notificationSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	event_id   TEXT NOT NULL,
	user_id    BIGINT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_id, user_id)
);
CREATE INDEX IF NOT EXISTS notifications_user_created_idx ON notifications (user_id, created_at DESC);`

func (r *PGNotificationRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, notificationSchema)
	return err
}

// Create stores n unless a notification for the same event and recipient
// already exists, which makes redelivered events harmless. It reports
// whether a row was inserted.
func (r *PGNotificationRepository) Create(ctx context.Context, eventID string, n *domain.Notification) (bool, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO notifications (id, event_id, user_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING created_at`, n.ID, eventID, n.UserID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt)
	if err := row.Scan(&n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PGNotificationRepository) List(ctx context.Context, recipients []int64, limit int) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, type, title, message, read, created_at FROM notifications
		WHERE user_id = ANY($1) ORDER BY created_at DESC LIMIT $2`, recipients, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *PGNotificationRepository) UnreadCount(ctx context.Context, recipients []int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = ANY($1) AND NOT read`, recipients).Scan(&count)
	return count, err
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, recipients []int64, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1 AND user_id = ANY($2)`, id, recipients)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PGNotificationRepository) MarkAllRead(ctx context.Context, recipients []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = true WHERE user_id = ANY($1) AND NOT read`, recipients)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeReadBefore deletes read notifications older than deadline.
func (r *PGNotificationRepository) PurgeReadBefore(ctx context.Context, deadline time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE read AND created_at <= $1`, deadline)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Recipients lists the notification audiences a user reads from.
func Recipients(u domain.User) []int64 {
	if u.Role.IsBackOffice() {
		return []int64{u.ID, BackOfficeRecipient}
	}
	return []int64{u.ID}
}
