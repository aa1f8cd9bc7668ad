// Package authz holds the role and ownership checks gating every booking
// lifecycle operation.
package authz

import (
	"errors"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/user"
)

var ErrForbidden = errors.New("authz: not allowed")

// Identity is the opaque caller identity attached by the authentication
// layer. A zero Identity means an anonymous request.
type Identity struct {
	ID   user.ID
	Role user.Role
}

func (id Identity) IsAnonymous() bool { return id.ID == "" }
func (id Identity) IsAdmin() bool     { return id.Role == user.RoleAdmin }

func (id Identity) ownsBookingAsHost(b *booking.Booking) bool {
	return !id.IsAnonymous() && id.ID == b.HostID
}

func (id Identity) ownsBookingAsGuest(b *booking.Booking) bool {
	return !id.IsAnonymous() && b.GuestID != "" && id.ID == b.GuestID
}

// CanView allows the booking's guest, the listing's host, or an admin.
func CanView(id Identity, b *booking.Booking) error {
	if id.IsAdmin() || id.ownsBookingAsHost(b) || id.ownsBookingAsGuest(b) {
		return nil
	}
	return ErrForbidden
}

// CanTransition gates a status change. Confirm, complete and refund require
// the listing's host or an admin; cancel additionally allows the booking's
// guest.
func CanTransition(id Identity, b *booking.Booking, target booking.Status) error {
	if id.IsAdmin() || id.ownsBookingAsHost(b) {
		return nil
	}
	if target == booking.StatusCancelled && id.ownsBookingAsGuest(b) {
		return nil
	}
	return ErrForbidden
}

// CanRequestCancellation is host-only: the listing's host asks admins to make
// the final call instead of cancelling unilaterally.
func CanRequestCancellation(id Identity, b *booking.Booking) error {
	if id.ownsBookingAsHost(b) {
		return nil
	}
	return ErrForbidden
}

// CanDelete permits permanent removal to admins only.
func CanDelete(id Identity) error {
	if id.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// CanListHostBookings requires the host or admin role.
func CanListHostBookings(id Identity) error {
	if id.IsAdmin() || id.Role == user.RoleHost {
		return nil
	}
	return ErrForbidden
}
