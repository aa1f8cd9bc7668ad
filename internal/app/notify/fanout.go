// Package notify turns booking lifecycle events into notification records.
// Fan-out is best-effort: failures are logged and never surfaced to the
// lifecycle operation that triggered them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"staybook/internal/app/authz"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/notification"
	"staybook/internal/domain/user"
)

type Fanout struct {
	Notifications notification.Repository
	Users         user.Repository
	Logger        *slog.Logger
	Now           func() time.Time
}

func (f Fanout) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// BookingRequested notifies the listing's host and broadcasts to admins.
func (f Fanout) BookingRequested(ctx context.Context, b *booking.Booking, listingTitle string) []*notification.Notification {
	created := make([]*notification.Notification, 0, 2)
	msg := fmt.Sprintf("%s booked %s from %s to %s", b.GuestName, listingTitle,
		b.Range.CheckIn.Format("2006-01-02"), b.Range.CheckOut.Format("2006-01-02"))
	if n := f.create(ctx, b.HostID, b.GuestID, msg, notification.TypeBooking); n != nil {
		created = append(created, n)
	}
	broadcast := fmt.Sprintf("%s booked %s", b.GuestName, listingTitle)
	created = append(created, f.broadcast(ctx, user.RoleAdmin, b.GuestID, broadcast, notification.TypeBooking)...)
	return created
}

// BookingConfirmed notifies the guest, when one exists.
func (f Fanout) BookingConfirmed(ctx context.Context, b *booking.Booking, listingTitle string) []*notification.Notification {
	if b.GuestID == "" {
		return nil
	}
	msg := fmt.Sprintf("Your booking for %s has been confirmed", listingTitle)
	if n := f.create(ctx, b.GuestID, b.HostID, msg, notification.TypeConfirmation); n != nil {
		return []*notification.Notification{n}
	}
	return nil
}

// BookingCancelled notifies the counter-parties of the actor. The cancelling
// party is never re-notified of its own action; admins get visibility into
// every cancellation they did not initiate.
func (f Fanout) BookingCancelled(ctx context.Context, b *booking.Booking, listingTitle string, actor authz.Identity) []*notification.Notification {
	created := make([]*notification.Notification, 0, 2)
	switch {
	case actor.IsAdmin():
		if b.GuestID != "" {
			msg := fmt.Sprintf("Your booking for %s was cancelled by an admin", listingTitle)
			if n := f.create(ctx, b.GuestID, actor.ID, msg, notification.TypeCancellation); n != nil {
				created = append(created, n)
			}
		}
		msg := fmt.Sprintf("An admin cancelled a booking for your listing %s", listingTitle)
		if n := f.create(ctx, b.HostID, actor.ID, msg, notification.TypeCancellation); n != nil {
			created = append(created, n)
		}
	case actor.ID == b.HostID:
		if b.GuestID != "" {
			msg := fmt.Sprintf("Your booking for %s was cancelled by the host", listingTitle)
			if n := f.create(ctx, b.GuestID, actor.ID, msg, notification.TypeCancellation); n != nil {
				created = append(created, n)
			}
		}
		broadcast := fmt.Sprintf("Host cancelled a booking for %s", listingTitle)
		created = append(created, f.broadcast(ctx, user.RoleAdmin, actor.ID, broadcast, notification.TypeCancellation)...)
	default:
		msg := fmt.Sprintf("%s cancelled their booking for %s", b.GuestName, listingTitle)
		if n := f.create(ctx, b.HostID, actor.ID, msg, notification.TypeCancellation); n != nil {
			created = append(created, n)
		}
		broadcast := fmt.Sprintf("Guest cancelled a booking for %s", listingTitle)
		created = append(created, f.broadcast(ctx, user.RoleAdmin, actor.ID, broadcast, notification.TypeCancellation)...)
	}
	return created
}

// CancelRequested creates one cancel-request record per admin. The booking
// status is untouched; head office decides.
func (f Fanout) CancelRequested(ctx context.Context, b *booking.Booking, listingTitle string, host authz.Identity) []*notification.Notification {
	msg := fmt.Sprintf("Host requests cancellation of a booking for %s (%s to %s)", listingTitle,
		b.Range.CheckIn.Format("2006-01-02"), b.Range.CheckOut.Format("2006-01-02"))
	return f.broadcast(ctx, user.RoleAdmin, host.ID, msg, notification.TypeCancelRequest)
}

// NotifyRole builds one notification per user carrying the role and persists
// the batch in a single insert. It returns the number created.
func (f Fanout) NotifyRole(ctx context.Context, role user.Role, senderID user.ID, message string, typ notification.Type) (int, error) {
	recipients, err := f.Users.ListByRole(ctx, role)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}
	batch := make([]*notification.Notification, 0, len(recipients))
	for _, r := range recipients {
		n, err := notification.New(r.ID, senderID, message, typ, f.now())
		if err != nil {
			return 0, err
		}
		batch = append(batch, n)
	}
	return f.Notifications.CreateMany(ctx, batch)
}

func (f Fanout) broadcast(ctx context.Context, role user.Role, senderID user.ID, message string, typ notification.Type) []*notification.Notification {
	recipients, err := f.Users.ListByRole(ctx, role)
	if err != nil {
		f.log(ctx, "role lookup failed", err, "role", role)
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}
	batch := make([]*notification.Notification, 0, len(recipients))
	for _, r := range recipients {
		n, err := notification.New(r.ID, senderID, message, typ, f.now())
		if err != nil {
			f.log(ctx, "notification build failed", err, "recipient", r.ID)
			continue
		}
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return nil
	}
	if _, err := f.Notifications.CreateMany(ctx, batch); err != nil {
		f.log(ctx, "broadcast insert failed", err, "role", role, "count", len(batch))
		return nil
	}
	return batch
}

func (f Fanout) create(ctx context.Context, recipient, sender user.ID, message string, typ notification.Type) *notification.Notification {
	n, err := notification.New(recipient, sender, message, typ, f.now())
	if err != nil {
		f.log(ctx, "notification build failed", err, "recipient", recipient)
		return nil
	}
	if err := f.Notifications.Create(ctx, n); err != nil {
		f.log(ctx, "notification insert failed", err, "recipient", recipient)
		return nil
	}
	return n
}

func (f Fanout) log(ctx context.Context, msg string, err error, args ...any) {
	if f.Logger == nil {
		return
	}
	f.Logger.WarnContext(ctx, msg, append([]any{"error", err}, args...)...)
}
