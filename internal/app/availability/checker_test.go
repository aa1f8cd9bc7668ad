package availability_test

import (
	"context"
	"testing"
	"time"

	"staybook/internal/app/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, in, out time.Time) booking.DateRange {
	t.Helper()
	dr, err := booking.NewDateRange(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func seedBooking(t *testing.T, repo *memory.BookingRepository, id string, dr booking.DateRange) *booking.Booking {
	t.Helper()
	b, err := booking.New(booking.CreateParams{
		ID:         booking.ID(id),
		ListingID:  "l-1",
		HostID:     "host-1",
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		Range:      dr,
		Guests:     2,
		TotalPrice: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateIfAvailable(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCheckDetectsOverlap(t *testing.T) {
	repo := memory.NewBookingRepository()
	seedBooking(t, repo, "b-1", mustRange(t, date(2024, 3, 1), date(2024, 3, 5)))
	checker := availability.Checker{Bookings: repo}

	available, err := checker.Check(context.Background(), "l-1", mustRange(t, date(2024, 3, 3), date(2024, 3, 7)), "")
	if err != nil {
		t.Fatal(err)
	}
	if available {
		t.Fatal("overlapping range reported available")
	}
}

func TestCheckHalfOpenBoundary(t *testing.T) {
	repo := memory.NewBookingRepository()
	seedBooking(t, repo, "b-1", mustRange(t, date(2024, 3, 1), date(2024, 3, 5)))
	checker := availability.Checker{Bookings: repo}

	available, err := checker.Check(context.Background(), "l-1", mustRange(t, date(2024, 3, 5), date(2024, 3, 8)), "")
	if err != nil {
		t.Fatal(err)
	}
	if !available {
		t.Fatal("range touching at the boundary must be available")
	}
}

func TestCheckIgnoresNonBlockingStatuses(t *testing.T) {
	repo := memory.NewBookingRepository()
	b := seedBooking(t, repo, "b-1", mustRange(t, date(2024, 3, 1), date(2024, 3, 5)))
	if _, err := b.Cancel(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	checker := availability.Checker{Bookings: repo}

	available, err := checker.Check(context.Background(), "l-1", mustRange(t, date(2024, 3, 2), date(2024, 3, 4)), "")
	if err != nil {
		t.Fatal(err)
	}
	if !available {
		t.Fatal("cancelled booking must not block dates")
	}
}

func TestCheckExcludesGivenBooking(t *testing.T) {
	repo := memory.NewBookingRepository()
	seedBooking(t, repo, "b-1", mustRange(t, date(2024, 3, 1), date(2024, 3, 5)))
	checker := availability.Checker{Bookings: repo}

	available, err := checker.Check(context.Background(), "l-1", mustRange(t, date(2024, 3, 2), date(2024, 3, 6)), "b-1")
	if err != nil {
		t.Fatal(err)
	}
	if !available {
		t.Fatal("excluded booking must not count as a conflict")
	}
}

func TestCheckOtherListingDoesNotConflict(t *testing.T) {
	repo := memory.NewBookingRepository()
	seedBooking(t, repo, "b-1", mustRange(t, date(2024, 3, 1), date(2024, 3, 5)))
	checker := availability.Checker{Bookings: repo}

	available, err := checker.Check(context.Background(), "l-2", mustRange(t, date(2024, 3, 2), date(2024, 3, 4)), "")
	if err != nil {
		t.Fatal(err)
	}
	if !available {
		t.Fatal("bookings on another listing must not conflict")
	}
}
