package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

var activeStatuses = []string{
	string(domainbooking.StatusPending),
	string(domainbooking.StatusConfirmed),
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// CreateIfAvailable runs the overlap check and the insert inside a single
// session transaction so two concurrent creates for overlapping dates cannot
// both pass the check.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, b *domainbooking.Booking) error {
	if b.ID == "" {
		b.ID = domainbooking.ID(uuid.NewString())
	}
	doc := newBookingDocument(b)

	session, err := r.col.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		conflict := bson.M{
			"listing_id":      doc.ListingID,
			"status":          bson.M{"$in": activeStatuses},
			"range.check_in":  bson.M{"$lt": doc.Range.CheckOut},
			"range.check_out": bson.M{"$gt": doc.Range.CheckIn},
		}
		count, err := r.col.CountDocuments(sc, conflict)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, domainbooking.ErrDatesConflict
		}
		_, err = r.col.InsertOne(sc, doc)
		return nil, err
	})
	return err
}

func (r *BookingRepository) Update(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) ListActiveByListing(ctx context.Context, listingID domainlisting.ID, exclude domainbooking.ID) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"listing_id": string(listingID),
		"status":     bson.M{"$in": activeStatuses},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": string(guestID)})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"host_id": string(hostID)})
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

type bookingDocument struct {
	ID              string        `bson:"_id"`
	ListingID       string        `bson:"listing_id"`
	HostID          string        `bson:"host_id"`
	GuestID         string        `bson:"guest_id,omitempty"`
	GuestName       string        `bson:"guest_name"`
	GuestEmail      string        `bson:"guest_email"`
	GuestPhone      string        `bson:"guest_phone,omitempty"`
	Range           rangeDocument `bson:"range"`
	Guests          int           `bson:"guests"`
	TotalPrice      float64       `bson:"total_price"`
	Status          string        `bson:"status"`
	PaymentStatus   string        `bson:"payment_status"`
	SpecialRequests string        `bson:"special_requests,omitempty"`
	CreatedAt       int64         `bson:"created_at"`
	UpdatedAt       int64         `bson:"updated_at"`
	Version         int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		HostID:          string(b.HostID),
		GuestID:         string(b.GuestID),
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		Range:           rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:          b.Guests,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		Version:         b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:              domainbooking.ID(d.ID),
		ListingID:       domainlisting.ID(d.ListingID),
		HostID:          domainuser.ID(d.HostID),
		GuestID:         domainuser.ID(d.GuestID),
		GuestName:       d.GuestName,
		GuestEmail:      d.GuestEmail,
		GuestPhone:      d.GuestPhone,
		Range: domainbooking.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Guests:          d.Guests,
		TotalPrice:      d.TotalPrice,
		Status:          domainbooking.Status(d.Status),
		PaymentStatus:   domainbooking.PaymentStatus(d.PaymentStatus),
		SpecialRequests: d.SpecialRequests,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
