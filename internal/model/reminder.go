package model

import (
	"strings"
	"time"
)

// ReminderMarkers are the substrings the remote service uses to flag a
// reminder-worthy message. Classification is owned by the service, so the
// client only matches these literally.
var ReminderMarkers = []string{"Reminder", "Heads up"}

func IsReminderWorthy(message string) bool {
	for _, marker := range ReminderMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

type ReminderPhase string

const (
	ReminderIdle         ReminderPhase = "Idle"
	ReminderPendingCheck ReminderPhase = "PendingCheck"
	ReminderNotified     ReminderPhase = "Notified"
)

func (p ReminderPhase) IsValid() bool {
	switch p {
	case ReminderIdle, ReminderPendingCheck, ReminderNotified:
		return true
	default:
		return false
	}
}

// ReminderState is per-task and lives only in memory.
type ReminderState struct {
	TaskID         string
	Phase          ReminderPhase
	LastNotifiedAt *time.Time
	// Tick is the sweep that last moved the task into PendingCheck.
	Tick uint64
}

// CanCheck reports whether a new reminder check may be issued.
func (r ReminderState) CanCheck() bool {
	return r.Phase != ReminderPendingCheck
}
