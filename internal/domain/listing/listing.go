package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrNotFound         = errors.New("listing: not found")
	ErrNotActive        = errors.New("listing: not accepting bookings")
	ErrTitleRequired    = errors.New("listing: title is required")
	ErrHostRequired     = errors.New("listing: host is required")
	ErrInvalidPrice     = errors.New("listing: nightly price must be positive")
	ErrInvalidCapacity  = errors.New("listing: capacity values must be positive")
	ErrInvalidType      = errors.New("listing: unknown property type")
	ErrPrimaryImage     = errors.New("listing: exactly one image must be primary")
	ErrInvalidBathrooms = errors.New("listing: bathrooms must be in half steps")
)

type ID string

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeVilla     PropertyType = "villa"
	TypeCondo     PropertyType = "condo"
	TypeCabin     PropertyType = "cabin"
	TypeStudio    PropertyType = "studio"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeVilla, TypeCondo, TypeCabin, TypeStudio:
		return true
	}
	return false
}

type Image struct {
	URL       string
	IsPrimary bool
}

// Listing is a rentable property. Location is derived from City and Country
// and recomputed whenever either changes.
type Listing struct {
	ID           ID
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Location     string
	Price        float64
	Bedrooms     int
	Bathrooms    float64
	MaxGuests    int
	PropertyType PropertyType
	Amenities    []string
	Images       []Image
	HostID       user.ID
	Status       Status
	Rating       float64
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	Save(ctx context.Context, l *Listing) error
}

type CreateParams struct {
	ID           ID
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Price        float64
	Bedrooms     int
	Bathrooms    float64
	MaxGuests    int
	PropertyType PropertyType
	Amenities    []string
	Images       []Image
	HostID       user.ID
	CreatedAt    time.Time
}

func New(params CreateParams) (*Listing, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if params.HostID == "" {
		return nil, ErrHostRequired
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if params.Bedrooms <= 0 || params.Bathrooms <= 0 || params.MaxGuests <= 0 {
		return nil, ErrInvalidCapacity
	}
	if float64(int(params.Bathrooms*2)) != params.Bathrooms*2 {
		return nil, ErrInvalidBathrooms
	}
	if !params.PropertyType.IsValid() {
		return nil, ErrInvalidType
	}
	if err := validateImages(params.Images); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	l := &Listing{
		ID:           params.ID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		Address:      strings.TrimSpace(params.Address),
		City:         strings.TrimSpace(params.City),
		Country:      strings.TrimSpace(params.Country),
		Price:        params.Price,
		Bedrooms:     params.Bedrooms,
		Bathrooms:    params.Bathrooms,
		MaxGuests:    params.MaxGuests,
		PropertyType: params.PropertyType,
		Amenities:    append([]string(nil), params.Amenities...),
		Images:       append([]Image(nil), params.Images...),
		HostID:       params.HostID,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.recomputeLocation()
	return l, nil
}

func (l *Listing) IsBookable() bool {
	return l.Status == StatusActive
}

func (l *Listing) Activate(now time.Time) {
	l.Status = StatusActive
	l.touch(now)
}

func (l *Listing) Deactivate(now time.Time) {
	l.Status = StatusInactive
	l.touch(now)
}

// Relocate updates city and country and keeps the display location in sync.
func (l *Listing) Relocate(city, country string, now time.Time) {
	l.City = strings.TrimSpace(city)
	l.Country = strings.TrimSpace(country)
	l.recomputeLocation()
	l.touch(now)
}

func (l *Listing) SetImages(images []Image, now time.Time) error {
	if err := validateImages(images); err != nil {
		return err
	}
	l.Images = append([]Image(nil), images...)
	l.touch(now)
	return nil
}

func (l *Listing) PrimaryImage() (Image, bool) {
	for _, img := range l.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return Image{}, false
}

func (l *Listing) ApplyReview(rating float64) {
	total := l.Rating*float64(l.ReviewCount) + rating
	l.ReviewCount++
	l.Rating = total / float64(l.ReviewCount)
}

func (l *Listing) recomputeLocation() {
	l.Location = fmt.Sprintf("%s, %s", l.City, l.Country)
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}

func validateImages(images []Image) error {
	if len(images) == 0 {
		return nil
	}
	primary := 0
	for _, img := range images {
		if img.IsPrimary {
			primary++
		}
	}
	if primary != 1 {
		return ErrPrimaryImage
	}
	return nil
}
