package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/listing"
	"staybook/internal/domain/user"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidGuests     = errors.New("booking: guests count must be at least 1")
	ErrGuestsExceedLimit = errors.New("booking: guests count exceeds listing capacity")
	ErrInvalidPrice      = errors.New("booking: total price must not be negative")
	ErrGuestNameRequired = errors.New("booking: guest name is required")
	ErrGuestEmail        = errors.New("booking: guest email is required")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrDatesConflict     = errors.New("booking: property not available for selected dates")
)

const maxSpecialRequestsLen = 500

type ID string

// Booking reserves a listing for a date range. HostID is denormalized from
// the listing at creation so authorization checks do not need a listing
// lookup; it is never updated afterwards, even if the listing changes hands.
// GuestID is empty for walk-in bookings recorded without an account.
type Booking struct {
	ID              ID
	ListingID       listing.ID
	HostID          user.ID
	GuestID         user.ID
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	Range           DateRange
	Guests          int
	TotalPrice      float64
	Status          Status
	PaymentStatus   PaymentStatus
	SpecialRequests string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	// CreateIfAvailable persists a new booking only when no pending or
	// confirmed booking for the same listing overlaps its range. The
	// conflict check and the insert happen atomically; ErrDatesConflict
	// is returned on overlap.
	CreateIfAvailable(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id ID) error
	// ListActiveByListing returns bookings holding dates (pending or
	// confirmed) for the listing, optionally excluding one booking.
	ListActiveByListing(ctx context.Context, listingID listing.ID, exclude ID) ([]*Booking, error)
	ListByGuest(ctx context.Context, guestID user.ID) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID user.ID) ([]*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
}

type CreateParams struct {
	ID              ID
	ListingID       listing.ID
	HostID          user.ID
	GuestID         user.ID
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	Range           DateRange
	Guests          int
	MaxGuests       int
	TotalPrice      float64
	SpecialRequests string
	CreatedAt       time.Time
}

func New(params CreateParams) (*Booking, error) {
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	if params.MaxGuests > 0 && params.Guests > params.MaxGuests {
		return nil, ErrGuestsExceedLimit
	}
	if params.TotalPrice < 0 {
		return nil, ErrInvalidPrice
	}
	name := strings.TrimSpace(params.GuestName)
	if name == "" {
		return nil, ErrGuestNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.GuestEmail))
	if email == "" {
		return nil, ErrGuestEmail
	}
	requests := strings.TrimSpace(params.SpecialRequests)
	if len(requests) > maxSpecialRequestsLen {
		requests = requests[:maxSpecialRequestsLen]
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Booking{
		ID:              params.ID,
		ListingID:       params.ListingID,
		HostID:          params.HostID,
		GuestID:         params.GuestID,
		GuestName:       name,
		GuestEmail:      email,
		GuestPhone:      strings.TrimSpace(params.GuestPhone),
		Range:           params.Range,
		Guests:          params.Guests,
		TotalPrice:      params.TotalPrice,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		SpecialRequests: requests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TransitionTo moves the booking to target, validating against the state
// machine. A transition to the current status is a no-op and reports false.
func (b *Booking) TransitionTo(target Status, now time.Time) (bool, error) {
	if !target.IsValid() {
		return false, ErrInvalidTransition
	}
	if target == b.Status {
		return false, nil
	}
	if !b.Status.CanTransitionTo(target) {
		return false, ErrInvalidTransition
	}
	b.Status = target
	b.touch(now)
	return true, nil
}

func (b *Booking) Confirm(now time.Time) error {
	_, err := b.TransitionTo(StatusConfirmed, now)
	return err
}

// Cancel is idempotent: cancelling an already cancelled booking changes
// nothing and reports false.
func (b *Booking) Cancel(now time.Time) (bool, error) {
	return b.TransitionTo(StatusCancelled, now)
}

// ForceCancel is the admin override behind the two-step delete guard. It
// bypasses the transition table so even completed or refunded bookings land
// in cancelled before a permanent delete. Reports whether the status changed.
func (b *Booking) ForceCancel(now time.Time) bool {
	if b.Status == StatusCancelled {
		return false
	}
	b.Status = StatusCancelled
	b.touch(now)
	return true
}

func (b *Booking) SetPaymentStatus(p PaymentStatus, now time.Time) error {
	if !p.IsValid() {
		return errors.New("booking: invalid payment status")
	}
	b.PaymentStatus = p
	b.touch(now)
	return nil
}

func (b *Booking) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	b.UpdatedAt = now.UTC()
}
