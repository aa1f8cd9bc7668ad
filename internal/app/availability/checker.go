// Package availability answers whether a date range is free for a listing.
package availability

import (
	"context"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listing"
)

// Checker scans active bookings for date conflicts. It backs the
// check-availability endpoint; booking creation itself relies on the
// repository's atomic CreateIfAvailable so two concurrent creates cannot
// both pass the check.
type Checker struct {
	Bookings booking.Repository
}

// Check reports whether [dr.CheckIn, dr.CheckOut) is free for the listing.
// The range must already be validated; exclude skips one booking, which is
// needed when re-checking during an update. Only pending and confirmed
// bookings block dates.
func (c Checker) Check(ctx context.Context, listingID listing.ID, dr booking.DateRange, exclude booking.ID) (bool, error) {
	active, err := c.Bookings.ListActiveByListing(ctx, listingID, exclude)
	if err != nil {
		return false, err
	}
	for _, b := range active {
		if b.Range.Overlaps(dr) {
			return false, nil
		}
	}
	return true, nil
}
