package storage

import (
	"encoding/json"
	"time"
)

// Fixed keys for the locally persisted presentation state.
const (
	KeyUser              = "fluid_user"
	KeyWorkplaceApps     = "fluid_workplace_apps"
	KeyWorkplaceExpanded = "fluid_workplace_expanded"
)

type Entry struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}

type NotificationKind string

const (
	NotificationReminder    NotificationKind = "reminder"
	NotificationAchievement NotificationKind = "achievement"
)

type NotificationRecord struct {
	ID        string
	TaskID    string
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
}

type NotificationListFilter struct {
	TaskID string
	Limit  int
	Offset int
}
