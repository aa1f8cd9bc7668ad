package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnotification "staybook/internal/domain/notification"
	domainuser "staybook/internal/domain/user"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection("notifications")}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotification.ID) (*domainnotification.Notification, error) {
	var doc notificationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainnotification.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domainnotification.Notification) error {
	if n.ID == "" {
		n.ID = domainnotification.ID(uuid.NewString())
	}
	_, err := r.col.InsertOne(ctx, newNotificationDocument(n))
	return err
}

// CreateMany writes the whole batch in a single insert.
func (r *NotificationRepository) CreateMany(ctx context.Context, batch []*domainnotification.Notification) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(batch))
	for _, n := range batch {
		if n.ID == "" {
			n.ID = domainnotification.ID(uuid.NewString())
		}
		docs = append(docs, newNotificationDocument(n))
	}
	res, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		if res != nil {
			return len(res.InsertedIDs), err
		}
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID domainuser.ID) ([]*domainnotification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"recipient_id": string(recipientID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domainnotification.Notification
	for cursor.Next(ctx) {
		var doc notificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *NotificationRepository) Save(ctx context.Context, n *domainnotification.Notification) error {
	doc := newNotificationDocument(n)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainnotification.ErrNotFound
	}
	return nil
}

type notificationDocument struct {
	ID          string `bson:"_id"`
	RecipientID string `bson:"recipient_id"`
	SenderID    string `bson:"sender_id,omitempty"`
	Message     string `bson:"message"`
	Type        string `bson:"type"`
	IsRead      bool   `bson:"is_read"`
	CreatedAt   int64  `bson:"created_at"`
}

func newNotificationDocument(n *domainnotification.Notification) notificationDocument {
	return notificationDocument{
		ID:          string(n.ID),
		RecipientID: string(n.RecipientID),
		SenderID:    string(n.SenderID),
		Message:     n.Message,
		Type:        string(n.Type),
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt.UnixMilli(),
	}
}

func (d notificationDocument) toAggregate() *domainnotification.Notification {
	return &domainnotification.Notification{
		ID:          domainnotification.ID(d.ID),
		RecipientID: domainuser.ID(d.RecipientID),
		SenderID:    domainuser.ID(d.SenderID),
		Message:     d.Message,
		Type:        domainnotification.Type(d.Type),
		IsRead:      d.IsRead,
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
	}
}
