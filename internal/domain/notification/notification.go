package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrNotFound         = errors.New("notification: not found")
	ErrMessageRequired  = errors.New("notification: message is required")
	ErrRecipientMissing = errors.New("notification: recipient is required")
	ErrInvalidType      = errors.New("notification: unknown type")
	ErrNotRecipient     = errors.New("notification: only the recipient may update it")
)

type ID string

type Type string

const (
	TypeBooking       Type = "booking"
	TypeConfirmation  Type = "confirmation"
	TypeCancellation  Type = "cancellation"
	TypeSystem        Type = "system"
	TypeCancelRequest Type = "cancel-request"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeBooking, TypeConfirmation, TypeCancellation, TypeSystem, TypeCancelRequest:
		return true
	}
	return false
}

// Notification is created only as a side effect of booking lifecycle events
// and mutated only by its recipient, to flip IsRead.
type Notification struct {
	ID          ID
	RecipientID user.ID
	SenderID    user.ID
	Message     string
	Type        Type
	IsRead      bool
	CreatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Notification, error)
	Create(ctx context.Context, n *Notification) error
	// CreateMany persists a batch in a single insert and returns the
	// number of records written.
	CreateMany(ctx context.Context, batch []*Notification) (int, error)
	ListByRecipient(ctx context.Context, recipientID user.ID) ([]*Notification, error)
	Save(ctx context.Context, n *Notification) error
}

func New(recipientID, senderID user.ID, message string, typ Type, now time.Time) (*Notification, error) {
	if recipientID == "" {
		return nil, ErrRecipientMissing
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		return nil, ErrMessageRequired
	}
	if !typ.IsValid() {
		return nil, ErrInvalidType
	}
	if now.IsZero() {
		now = time.Now()
	}
	return &Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Message:     msg,
		Type:        typ,
		CreatedAt:   now.UTC(),
	}, nil
}

// MarkRead flips the read flag; only the recipient may do so.
func (n *Notification) MarkRead(actor user.ID) error {
	if actor != n.RecipientID {
		return ErrNotRecipient
	}
	n.IsRead = true
	return nil
}
