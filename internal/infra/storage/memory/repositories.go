// Package memory holds in-process repositories mirroring the Mongo ones.
// They back local runs and the package tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
)

// ListingRepository is an in-memory listing store.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlisting.ID]*domainlisting.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return l, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID] = l
	return nil
}

// BookingRepository stores bookings in memory. The mutex makes the
// availability check and the insert in CreateIfAvailable atomic, matching
// the Mongo implementation's transaction.
type BookingRepository struct {
	mu    sync.Mutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) CreateIfAvailable(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ListingID != b.ListingID || !existing.Status.Blocks() {
			continue
		}
		if existing.Range.Overlaps(b.Range) {
			return domainbooking.ErrDatesConflict
		}
	}
	if b.ID == "" {
		b.ID = domainbooking.ID(uuid.NewString())
	}
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; !ok {
		return domainbooking.ErrNotFound
	}
	b.Version++
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ListActiveByListing(ctx context.Context, listingID domainlisting.ID, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.ListingID != listingID || !b.Status.Blocks() {
			continue
		}
		if exclude != "" && b.ID == exclude {
			continue
		}
		matches = append(matches, b)
	}
	return sortByNewest(matches), nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.GuestID == guestID })
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.HostID == hostID })
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.filter(func(*domainbooking.Booking) bool { return true })
}

func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) ([]*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			matches = append(matches, b)
		}
	}
	return sortByNewest(matches), nil
}

func sortByNewest(items []*domainbooking.Booking) []*domainbooking.Booking {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}
