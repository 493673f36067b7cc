package mongo

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const paymentCollectionName = "payments"

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new payment repository.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.TrainerID == primitive.NilObjectID || payment.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires trainerId and clientId")
	}
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		return primitive.NilObjectID, err
	}
	return payment.ID, nil
}

func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (r *mongoPaymentRepository) List(ctx context.Context, f repository.PaymentFilter) ([]domain.Payment, error) {
	filter := bson.M{"trainerId": f.TrainerID}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			rng["$lte"] = f.To.UTC()
		}
		filter["date"] = rng
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Payment](ctx, cursor)
}

func (r *mongoPaymentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeOldestPackageSession finds and decrements in one atomic operation.
func (r *mongoPaymentRepository) ConsumeOldestPackageSession(ctx context.Context, clientID primitive.ObjectID) (*domain.Payment, error) {
	filter := bson.M{
		"clientId":          clientID,
		"type":              domain.PaymentPackage,
		"remainingSessions": bson.M{"$gt": 0},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	var payment domain.Payment
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"remainingSessions": -1}}, opts).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// EnsurePaymentIndexes creates indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: -1}}},
		{
			// Package consumption lookup
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "type", Value: 1}, {Key: "date", Value: 1}},
		},
	})
}
