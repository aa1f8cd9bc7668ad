package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type listingDocument struct {
	ID           string          `bson:"_id"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description,omitempty"`
	Address      string          `bson:"address,omitempty"`
	City         string          `bson:"city"`
	Country      string          `bson:"country"`
	Location     string          `bson:"location"`
	Price        float64         `bson:"price"`
	Bedrooms     int             `bson:"bedrooms"`
	Bathrooms    float64         `bson:"bathrooms"`
	MaxGuests    int             `bson:"max_guests"`
	PropertyType string          `bson:"property_type"`
	Amenities    []string        `bson:"amenities,omitempty"`
	Images       []imageDocument `bson:"images,omitempty"`
	HostID       string          `bson:"host_id"`
	Status       string          `bson:"status"`
	Rating       float64         `bson:"rating"`
	ReviewCount  int             `bson:"review_count"`
	CreatedAt    int64           `bson:"created_at"`
	UpdatedAt    int64           `bson:"updated_at"`
}

type imageDocument struct {
	URL       string `bson:"url"`
	IsPrimary bool   `bson:"is_primary"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	images := make([]imageDocument, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, imageDocument{URL: img.URL, IsPrimary: img.IsPrimary})
	}
	return listingDocument{
		ID:           string(l.ID),
		Title:        l.Title,
		Description:  l.Description,
		Address:      l.Address,
		City:         l.City,
		Country:      l.Country,
		Location:     l.Location,
		Price:        l.Price,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		MaxGuests:    l.MaxGuests,
		PropertyType: string(l.PropertyType),
		Amenities:    l.Amenities,
		Images:       images,
		HostID:       string(l.HostID),
		Status:       string(l.Status),
		Rating:       l.Rating,
		ReviewCount:  l.ReviewCount,
		CreatedAt:    l.CreatedAt.UnixMilli(),
		UpdatedAt:    l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlisting.Listing {
	images := make([]domainlisting.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domainlisting.Image{URL: img.URL, IsPrimary: img.IsPrimary})
	}
	return &domainlisting.Listing{
		ID:           domainlisting.ID(d.ID),
		Title:        d.Title,
		Description:  d.Description,
		Address:      d.Address,
		City:         d.City,
		Country:      d.Country,
		Location:     d.Location,
		Price:        d.Price,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		MaxGuests:    d.MaxGuests,
		PropertyType: domainlisting.PropertyType(d.PropertyType),
		Amenities:    d.Amenities,
		Images:       images,
		HostID:       domainuser.ID(d.HostID),
		Status:       domainlisting.Status(d.Status),
		Rating:       d.Rating,
		ReviewCount:  d.ReviewCount,
		CreatedAt:    time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(d.UpdatedAt).UTC(),
	}
}
