package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
)

type CenterUseCase interface {
	List(ctx context.Context, u domain.User) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, u domain.User) (int, error)
	MarkRead(ctx context.Context, u domain.User, id string) error
	MarkAllRead(ctx context.Context, u domain.User) error
}

const listLimit = 50

// Center reads a user's notifications. A nil repository yields an empty
// center so the storefront runs without a database.
type Center struct {
	repo repository.NotificationRepository
}

func NewCenter(repo repository.NotificationRepository) *Center {
	return &Center{repo: repo}
}

var _ CenterUseCase = (*Center)(nil)

func (c *Center) List(ctx context.Context, u domain.User) ([]domain.Notification, error) {
	if c.repo == nil {
		return []domain.Notification{}, nil
	}
	return c.repo.List(ctx, repository.Recipients(u), listLimit)
}

func (c *Center) UnreadCount(ctx context.Context, u domain.User) (int, error) {
	if c.repo == nil {
		return 0, nil
	}
	return c.repo.UnreadCount(ctx, repository.Recipients(u))
}

func (c *Center) MarkRead(ctx context.Context, u domain.User, id string) error {
	if c.repo == nil {
		return repository.ErrNotificationNotFound
	}
	return c.repo.MarkRead(ctx, repository.Recipients(u), id)
}

func (c *Center) MarkAllRead(ctx context.Context, u domain.User) error {
	if c.repo == nil {
		return nil
	}
	_, err := c.repo.MarkAllRead(ctx, repository.Recipients(u))
	return err
}

// Purge drops read notifications older than retention; the worker runs it
// on a ticker.
func Purge(ctx context.Context, repo repository.NotificationRepository, retention time.Duration, now time.Time) (int64, error) {
	return repo.PurgeReadBefore(ctx, now.Add(-retention))
}
