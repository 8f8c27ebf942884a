package api

import (
	"errors"
	"time"
)

// Notification is pushed over the SSE stream and listed by GET /notifications.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	EntryID   string    `json:"entryId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n Notification) Validate() error {
	if n.ID == "" {
		return errors.New("notification id is empty")
	}
	return nil
}

type NotificationList []Notification

func (l NotificationList) Validate() error {
	for _, n := range l {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Notification kinds.
const (
	NotifyEntryCreated = "entry.created"
	NotifyEntryPosted  = "entry.posted"
	NotifyEntryUpdated = "entry.updated"
	NotifyEntryDeleted = "entry.deleted"
	NotifyTBImported   = "trial_balance.imported"
)
