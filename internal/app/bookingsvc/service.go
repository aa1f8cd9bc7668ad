// Package bookingsvc drives the booking lifecycle: creation behind the
// availability check, status transitions under the authorization guard, and
// notification fan-out on every state change.
package bookingsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"staybook/internal/app/authz"
	"staybook/internal/app/availability"
	"staybook/internal/app/notify"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listing"
	"staybook/internal/domain/notification"
	"staybook/internal/domain/user"
)

var ErrValidation = errors.New("booking: invalid input")

// Events receives lifecycle events for the booking stream. Publishing is
// best-effort; a nil Events field disables it.
type Events interface {
	BookingEvent(ctx context.Context, event string, b *booking.Booking) error
}

const (
	EventRequested = "booking.requested"
	EventConfirmed = "booking.confirmed"
	EventCancelled = "booking.cancelled"
	EventCompleted = "booking.completed"
	EventRefunded  = "booking.refunded"
	EventDeleted   = "booking.deleted"
)

type Service struct {
	Bookings booking.Repository
	Listings listing.Repository
	Fanout   notify.Fanout
	Events   Events
	Logger   *slog.Logger
	Now      func() time.Time

	validate *validator.Validate
}

func New(bookings booking.Repository, listings listing.Repository, fanout notify.Fanout, events Events, logger *slog.Logger) *Service {
	return &Service{
		Bookings: bookings,
		Listings: listings,
		Fanout:   fanout,
		Events:   events,
		Logger:   logger,
		validate: validator.New(),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateInput struct {
	ListingID       string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int       `validate:"required,min=1"`
	TotalPrice      float64   `validate:"min=0"`
	GuestName       string    `validate:"required"`
	GuestEmail      string    `validate:"required,email"`
	GuestPhone      string    `validate:"omitempty,max=32"`
	SpecialRequests string    `validate:"max=500"`
}

// Create records a new pending booking. The availability check and the
// insert run atomically in the repository, so two concurrent requests for
// overlapping dates cannot both succeed. Anonymous callers are allowed; the
// guest reference is then left empty.
func (s *Service) Create(ctx context.Context, actor authz.Identity, in CreateInput) (*booking.Booking, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	dr, err := booking.NewDateRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}

	l, err := s.Listings.ByID(ctx, listing.ID(in.ListingID))
	if err != nil {
		return nil, err
	}
	if !l.IsBookable() {
		return nil, listing.ErrNotActive
	}

	b, err := booking.New(booking.CreateParams{
		ID:              booking.ID(uuid.NewString()),
		ListingID:       l.ID,
		HostID:          l.HostID,
		GuestID:         actor.ID,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		GuestPhone:      in.GuestPhone,
		Range:           dr,
		Guests:          in.Guests,
		MaxGuests:       l.MaxGuests,
		TotalPrice:      in.TotalPrice,
		SpecialRequests: in.SpecialRequests,
		CreatedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.Bookings.CreateIfAvailable(ctx, b); err != nil {
		return nil, err
	}

	s.Fanout.BookingRequested(ctx, b, l.Title)
	s.publish(ctx, EventRequested, b)

	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "booking created", "booking_id", b.ID, "listing_id", b.ListingID, "guest", b.GuestName)
	}
	return b, nil
}

// CheckAvailability answers the availability endpoint. The listing must
// exist; the range must be ordered.
func (s *Service) CheckAvailability(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	dr, err := booking.NewDateRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if _, err := s.Listings.ByID(ctx, listing.ID(listingID)); err != nil {
		return false, err
	}
	checker := availability.Checker{Bookings: s.Bookings}
	return checker.Check(ctx, listing.ID(listingID), dr, "")
}

// Transition moves a booking to newStatus under the authorization guard and
// the transition table. A no-op transition succeeds without side effects.
func (s *Service) Transition(ctx context.Context, actor authz.Identity, bookingID string, newStatus string) (*booking.Booking, error) {
	target := booking.Status(newStatus)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	b, err := s.Bookings.ByID(ctx, booking.ID(bookingID))
	if err != nil {
		return nil, err
	}
	if err := authz.CanTransition(actor, b, target); err != nil {
		return nil, err
	}

	changed, err := b.TransitionTo(target, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}
	if err := s.Bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	switch target {
	case booking.StatusConfirmed:
		s.Fanout.BookingConfirmed(ctx, b, s.listingTitle(ctx, b.ListingID))
		s.publish(ctx, EventConfirmed, b)
	case booking.StatusCancelled:
		s.Fanout.BookingCancelled(ctx, b, s.listingTitle(ctx, b.ListingID), actor)
		s.publish(ctx, EventCancelled, b)
	case booking.StatusCompleted:
		s.publish(ctx, EventCompleted, b)
	case booking.StatusRefunded:
		s.publish(ctx, EventRefunded, b)
	}

	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "booking status changed", "booking_id", b.ID, "status", b.Status, "actor", actor.ID)
	}
	return b, nil
}

// Cancel is the dedicated cancel path with the three-way fan-out rule.
// Cancelling an already cancelled booking is a no-op and creates no further
// notifications.
func (s *Service) Cancel(ctx context.Context, actor authz.Identity, bookingID string) (*booking.Booking, error) {
	return s.Transition(ctx, actor, bookingID, string(booking.StatusCancelled))
}

// RequestCancellation lets the listing's host escalate to the admins instead
// of cancelling unilaterally. The booking status is untouched. Returns the
// number of cancel-request records created.
func (s *Service) RequestCancellation(ctx context.Context, actor authz.Identity, bookingID string) (int, error) {
	b, err := s.Bookings.ByID(ctx, booking.ID(bookingID))
	if err != nil {
		return 0, err
	}
	if err := authz.CanRequestCancellation(actor, b); err != nil {
		return 0, err
	}
	msg := fmt.Sprintf("Host requests cancellation of a booking for %s (%s to %s)",
		s.listingTitle(ctx, b.ListingID),
		b.Range.CheckIn.Format("2006-01-02"), b.Range.CheckOut.Format("2006-01-02"))
	return s.Fanout.NotifyRole(ctx, user.RoleAdmin, actor.ID, msg, notification.TypeCancelRequest)
}

// DeleteResult reports the outcome of the two-step delete guard.
type DeleteResult struct {
	Deleted bool
	Booking *booking.Booking
	Message string
}

// Delete implements the admin-only two-step removal: a non-cancelled booking
// is first cancelled (with admin-cancel fan-out) and kept; only a booking
// that is already cancelled is hard deleted.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, bookingID string) (DeleteResult, error) {
	if err := authz.CanDelete(actor); err != nil {
		return DeleteResult{}, err
	}
	b, err := s.Bookings.ByID(ctx, booking.ID(bookingID))
	if err != nil {
		return DeleteResult{}, err
	}

	if b.Status != booking.StatusCancelled {
		b.ForceCancel(s.now())
		if err := s.Bookings.Update(ctx, b); err != nil {
			return DeleteResult{}, err
		}
		s.Fanout.BookingCancelled(ctx, b, s.listingTitle(ctx, b.ListingID), actor)
		s.publish(ctx, EventCancelled, b)
		return DeleteResult{
			Booking: b,
			Message: "booking cancelled; call delete again to remove permanently",
		}, nil
	}

	if err := s.Bookings.Delete(ctx, b.ID); err != nil {
		return DeleteResult{}, err
	}
	s.publish(ctx, EventDeleted, b)
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "booking deleted", "booking_id", b.ID, "admin", actor.ID)
	}
	return DeleteResult{Deleted: true, Booking: b, Message: "booking permanently deleted"}, nil
}

// Get returns a single booking, visible to its guest, the listing's host, or
// an admin.
func (s *Service) Get(ctx context.Context, actor authz.Identity, bookingID string) (*booking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, booking.ID(bookingID))
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListForGuest scopes a non-admin caller to their own bookings; admins see
// everything.
func (s *Service) ListForGuest(ctx context.Context, actor authz.Identity) ([]*booking.Booking, error) {
	if actor.IsAnonymous() {
		return nil, authz.ErrForbidden
	}
	if actor.IsAdmin() {
		return s.Bookings.ListAll(ctx)
	}
	return s.Bookings.ListByGuest(ctx, actor.ID)
}

// ListForHost returns bookings for the caller's listings; admins see all.
func (s *Service) ListForHost(ctx context.Context, actor authz.Identity) ([]*booking.Booking, error) {
	if err := authz.CanListHostBookings(actor); err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return s.Bookings.ListAll(ctx)
	}
	return s.Bookings.ListByHost(ctx, actor.ID)
}

func (s *Service) listingTitle(ctx context.Context, id listing.ID) string {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "listing lookup for notification failed", "listing_id", id, "error", err)
		}
		return "your listing"
	}
	return l.Title
}

func (s *Service) publish(ctx context.Context, event string, b *booking.Booking) {
	if s.Events == nil {
		return
	}
	if err := s.Events.BookingEvent(ctx, event, b); err != nil && s.Logger != nil {
		s.Logger.WarnContext(ctx, "event publish failed", "event", event, "booking_id", b.ID, "error", err)
	}
}
