package storage

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	GetEntry(ctx context.Context, key string) (Entry, error)
	PutEntry(ctx context.Context, key string, value json.RawMessage) error
	DeleteEntry(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)

	AppendNotification(ctx context.Context, in NotificationRecord) error
	ListNotifications(ctx context.Context, filter NotificationListFilter) ([]NotificationRecord, error)
}
