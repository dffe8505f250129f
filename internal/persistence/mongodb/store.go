package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type notificationDoc struct {
	Id           string         `bson:"_id"`
	UserId       string         `bson:"userId"`
	Type         string         `bson:"type"`
	Title        string         `bson:"title"`
	Message      string         `bson:"message"`
	Read         bool           `bson:"read"`
	InspectionId string         `bson:"inspectionId,omitempty"`
	ListingId    string         `bson:"listingId,omitempty"`
	PaymentId    string         `bson:"paymentId,omitempty"`
	Metadata     map[string]any `bson:"metadata,omitempty"`
	CreateTime   time.Time      `bson:"createTime"`
}

func (d notificationDoc) toNotification() notify.Notification {
	return notify.Notification{
		Id:           d.Id,
		UserId:       d.UserId,
		Type:         d.Type,
		Title:        d.Title,
		Message:      d.Message,
		Read:         d.Read,
		InspectionId: d.InspectionId,
		ListingId:    d.ListingId,
		PaymentId:    d.PaymentId,
		Metadata:     d.Metadata,
		CreateTime:   d.CreateTime,
	}
}

type Store struct {
	collection *mongo.Collection
}

func NewStore(client *mongo.Client) *Store {
	database := client.Database("notify")
	collection := database.Collection("notifications")

	return &Store{
		collection,
	}
}

func (s *Store) Setup(ctx context.Context) error {
	listIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "createTime", Value: -1},
		},
	}

	unreadIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "read", Value: 1},
		},
	}

	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{listIndexModel, unreadIndexModel})

	return err
}

func (s *Store) Create(ctx context.Context, request persistence.CreateRequest) (notify.Notification, error) {
	doc := notificationDoc{
		Id:           gonanoid.Must(),
		UserId:       request.UserId,
		Type:         request.Type,
		Title:        request.Title,
		Message:      request.Message,
		Read:         false,
		InspectionId: request.InspectionId,
		ListingId:    request.ListingId,
		PaymentId:    request.PaymentId,
		Metadata:     request.Metadata,
		CreateTime:   time.Now(),
	}

	_, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return notify.Notification{}, err
	}

	return doc.toNotification(), nil
}

func (s *Store) Get(ctx context.Context, id string) (notify.Notification, error) {
	var doc notificationDoc

	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("notification not found"))
	}
	if err != nil {
		return notify.Notification{}, err
	}

	return doc.toNotification(), nil
}

func (s *Store) List(ctx context.Context, request persistence.ListRequest) (persistence.ListResult, error) {
	total, err := s.collection.CountDocuments(ctx, bson.M{"userId": request.UserId})
	if err != nil {
		return persistence.ListResult{}, err
	}

	unread, err := s.collection.CountDocuments(ctx, bson.M{"userId": request.UserId, "read": false})
	if err != nil {
		return persistence.ListResult{}, err
	}

	filter := bson.M{"userId": request.UserId}
	matched := total
	if request.UnreadOnly {
		filter["read"] = false
		matched = unread
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createTime", Value: -1}}).
		SetSkip(request.Offset).
		SetLimit(request.Limit)

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return persistence.ListResult{}, err
	}

	var docs []notificationDoc
	err = cursor.All(ctx, &docs)
	if err != nil {
		return persistence.ListResult{}, err
	}

	notifications := make([]notify.Notification, len(docs))
	for i, doc := range docs {
		notifications[i] = doc.toNotification()
	}

	return persistence.ListResult{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		HasMore:       request.Offset+int64(len(notifications)) < matched,
	}, nil
}

func (s *Store) MarkRead(ctx context.Context, id string, read bool) (notify.Notification, error) {
	update := bson.M{"$set": bson.M{"read": read}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc notificationDoc

	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("notification not found"))
	}
	if err != nil {
		return notify.Notification{}, err
	}

	return doc.toNotification(), nil
}

func (s *Store) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	filter := bson.M{"userId": userId, "read": false}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
