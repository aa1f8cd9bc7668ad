package listing

import (
	"testing"
	"time"
)

func validParams() CreateParams {
	return CreateParams{
		ID:           "l-1",
		Title:        "Sea View Apartment",
		City:         "Lisbon",
		Country:      "Portugal",
		Price:        120,
		Bedrooms:     2,
		Bathrooms:    1.5,
		MaxGuests:    4,
		PropertyType: TypeApartment,
		HostID:       "host-1",
	}
}

func TestNewListingDerivesLocation(t *testing.T) {
	l, err := New(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if l.Location != "Lisbon, Portugal" {
		t.Fatalf("location = %q", l.Location)
	}
	l.Relocate("Porto", "Portugal", time.Now())
	if l.Location != "Porto, Portugal" {
		t.Fatalf("location after relocate = %q", l.Location)
	}
}

func TestNewListingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"no title", func(p *CreateParams) { p.Title = " " }, ErrTitleRequired},
		{"no host", func(p *CreateParams) { p.HostID = "" }, ErrHostRequired},
		{"zero price", func(p *CreateParams) { p.Price = 0 }, ErrInvalidPrice},
		{"zero guests", func(p *CreateParams) { p.MaxGuests = 0 }, ErrInvalidCapacity},
		{"quarter bathroom", func(p *CreateParams) { p.Bathrooms = 1.25 }, ErrInvalidBathrooms},
		{"unknown type", func(p *CreateParams) { p.PropertyType = "castle" }, ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			if _, err := New(params); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPrimaryImageInvariant(t *testing.T) {
	params := validParams()
	params.Images = []Image{{URL: "a.jpg"}, {URL: "b.jpg"}}
	if _, err := New(params); err != ErrPrimaryImage {
		t.Fatalf("no primary: got %v, want ErrPrimaryImage", err)
	}
	params.Images = []Image{{URL: "a.jpg", IsPrimary: true}, {URL: "b.jpg", IsPrimary: true}}
	if _, err := New(params); err != ErrPrimaryImage {
		t.Fatalf("two primaries: got %v, want ErrPrimaryImage", err)
	}
	params.Images = []Image{{URL: "a.jpg", IsPrimary: true}, {URL: "b.jpg"}}
	l, err := New(params)
	if err != nil {
		t.Fatal(err)
	}
	primary, ok := l.PrimaryImage()
	if !ok || primary.URL != "a.jpg" {
		t.Fatalf("primary image = %+v ok=%v", primary, ok)
	}
	// no images at all is fine
	params.Images = nil
	if _, err := New(params); err != nil {
		t.Fatalf("imageless listing rejected: %v", err)
	}
}

func TestBookableOnlyWhenActive(t *testing.T) {
	l, err := New(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if l.IsBookable() {
		t.Fatal("pending listing must not be bookable")
	}
	l.Activate(time.Now())
	if !l.IsBookable() {
		t.Fatal("active listing must be bookable")
	}
	l.Deactivate(time.Now())
	if l.IsBookable() {
		t.Fatal("inactive listing must not be bookable")
	}
}

func TestApplyReview(t *testing.T) {
	l, err := New(validParams())
	if err != nil {
		t.Fatal(err)
	}
	l.ApplyReview(4)
	l.ApplyReview(5)
	if l.ReviewCount != 2 {
		t.Fatalf("review count = %d", l.ReviewCount)
	}
	if l.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", l.Rating)
	}
}
