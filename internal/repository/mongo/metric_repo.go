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

const (
	bodyMetricCollectionName          = "body_metrics"
	bodyMetricEntryCollectionName     = "body_metric_entries"
	exerciseMetricCollectionName      = "exercise_metrics"
	exerciseMetricEntryCollectionName = "exercise_metric_entries"
)

// entryQuery builds the listing filter shared by both entry collections.
func entryQuery(f repository.EntryFilter, timeField string) bson.M {
	filter := bson.M{"userId": f.UserID}
	if f.MetricID != nil {
		filter["metricId"] = *f.MetricID
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			rng["$lte"] = f.To.UTC()
		}
		filter[timeField] = rng
	}
	return filter
}

// --- Body metrics ---

type mongoBodyMetricRepository struct {
	metrics *mongo.Collection
	entries *mongo.Collection
}

// NewMongoBodyMetricRepository creates a new body metric repository.
func NewMongoBodyMetricRepository(db *mongo.Database) repository.BodyMetricRepository {
	return &mongoBodyMetricRepository{
		metrics: db.Collection(bodyMetricCollectionName),
		entries: db.Collection(bodyMetricEntryCollectionName),
	}
}

func (r *mongoBodyMetricRepository) Create(ctx context.Context, metric *domain.BodyMetric) (primitive.ObjectID, error) {
	if metric.UserID == primitive.NilObjectID || metric.Label == "" {
		return primitive.NilObjectID, errors.New("body metric requires userId and label")
	}
	metric.ID = primitive.NewObjectID()
	metric.CreatedAt = time.Now().UTC()
	if _, err := r.metrics.InsertOne(ctx, metric); err != nil {
		return primitive.NilObjectID, err
	}
	return metric.ID, nil
}

func (r *mongoBodyMetricRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMetric, error) {
	var metric domain.BodyMetric
	if err := r.metrics.FindOne(ctx, bson.M{"_id": id}).Decode(&metric); err != nil {
		return nil, notFound(err)
	}
	return &metric, nil
}

func (r *mongoBodyMetricRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyMetric, error) {
	cursor, err := r.metrics.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.BodyMetric](ctx, cursor)
}

func (r *mongoBodyMetricRepository) SetTarget(ctx context.Context, id primitive.ObjectID, change domain.TargetChange) error {
	change.ChangedAt = change.ChangedAt.UTC()
	update := bson.M{"$push": bson.M{"targetHistory": change}}
	if change.Target != nil {
		update["$set"] = bson.M{"target": *change.Target}
	} else {
		update["$unset"] = bson.M{"target": ""}
	}
	result, err := r.metrics.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoBodyMetricRepository) AddEntry(ctx context.Context, entry *domain.BodyMetricEntry) (primitive.ObjectID, error) {
	if entry.MetricID == primitive.NilObjectID || entry.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body metric entry requires metricId and userId")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoBodyMetricRepository) ListEntries(ctx context.Context, f repository.EntryFilter) ([]domain.BodyMetricEntry, error) {
	cursor, err := r.entries.Find(ctx, entryQuery(f, "recordedAt"), options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.BodyMetricEntry](ctx, cursor)
}

// --- Exercise metrics ---

type mongoExerciseMetricRepository struct {
	metrics *mongo.Collection
	entries *mongo.Collection
}

// NewMongoExerciseMetricRepository creates a new exercise metric repository.
func NewMongoExerciseMetricRepository(db *mongo.Database) repository.ExerciseMetricRepository {
	return &mongoExerciseMetricRepository{
		metrics: db.Collection(exerciseMetricCollectionName),
		entries: db.Collection(exerciseMetricEntryCollectionName),
	}
}

func (r *mongoExerciseMetricRepository) Create(ctx context.Context, metric *domain.ExerciseMetric) (primitive.ObjectID, error) {
	if metric.UserID == primitive.NilObjectID || metric.Label == "" {
		return primitive.NilObjectID, errors.New("exercise metric requires userId and label")
	}
	metric.ID = primitive.NewObjectID()
	metric.CreatedAt = time.Now().UTC()
	if _, err := r.metrics.InsertOne(ctx, metric); err != nil {
		return primitive.NilObjectID, err
	}
	return metric.ID, nil
}

func (r *mongoExerciseMetricRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseMetric, error) {
	var metric domain.ExerciseMetric
	if err := r.metrics.FindOne(ctx, bson.M{"_id": id}).Decode(&metric); err != nil {
		return nil, notFound(err)
	}
	return &metric, nil
}

func (r *mongoExerciseMetricRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseMetric, error) {
	cursor, err := r.metrics.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ExerciseMetric](ctx, cursor)
}

func (r *mongoExerciseMetricRepository) AddEntry(ctx context.Context, entry *domain.ExerciseMetricEntry) (primitive.ObjectID, error) {
	if entry.MetricID == primitive.NilObjectID || entry.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise metric entry requires metricId and userId")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoExerciseMetricRepository) ListEntries(ctx context.Context, f repository.EntryFilter) ([]domain.ExerciseMetricEntry, error) {
	cursor, err := r.entries.Find(ctx, entryQuery(f, "date"), options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ExerciseMetricEntry](ctx, cursor)
}

// EnsureMetricIndexes creates indexes for the four metric collections.
func EnsureMetricIndexes(ctx context.Context, db *mongo.Database) {
	byUser := []mongo.IndexModel{{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}}}
	createIndexes(ctx, db.Collection(bodyMetricCollectionName), byUser)
	createIndexes(ctx, db.Collection(exerciseMetricCollectionName), byUser)
	createIndexes(ctx, db.Collection(bodyMetricEntryCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "recordedAt", Value: -1}}},
		{Keys: bson.D{{Key: "metricId", Value: 1}, {Key: "recordedAt", Value: -1}}},
	})
	createIndexes(ctx, db.Collection(exerciseMetricEntryCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "metricId", Value: 1}, {Key: "date", Value: -1}}},
	})
}
