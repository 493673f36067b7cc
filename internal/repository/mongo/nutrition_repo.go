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
	nutritionCollectionName = "nutrition_entries"
	noteCollectionName      = "trainer_notes"
)

// --- Nutrition ---

type mongoNutritionRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionRepository creates a new nutrition repository.
func NewMongoNutritionRepository(db *mongo.Database) repository.NutritionRepository {
	return &mongoNutritionRepository{collection: db.Collection(nutritionCollectionName)}
}

func (r *mongoNutritionRepository) Create(ctx context.Context, entry *domain.NutritionEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.Day == "" {
		return primitive.NilObjectID, errors.New("nutrition entry requires userId and day")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		entry.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoNutritionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionEntry, error) {
	var entry domain.NutritionEntry
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (r *mongoNutritionRepository) GetByDay(ctx context.Context, userID primitive.ObjectID, day string) (*domain.NutritionEntry, error) {
	var entry domain.NutritionEntry
	if err := r.collection.FindOne(ctx, bson.M{"userId": userID, "day": day}).Decode(&entry); err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (r *mongoNutritionRepository) List(ctx context.Context, f repository.EntryFilter) ([]domain.NutritionEntry, error) {
	f.MetricID = nil
	cursor, err := r.collection.Find(ctx, entryQuery(f, "date"), options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.NutritionEntry](ctx, cursor)
}

func (r *mongoNutritionRepository) Update(ctx context.Context, entry *domain.NutritionEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"date":      entry.Date.UTC(),
		"day":       entry.Day,
		"calories":  entry.Calories,
		"proteins":  entry.Proteins,
		"fats":      entry.Fats,
		"carbs":     entry.Carbs,
		"notes":     entry.Notes,
		"updatedAt": entry.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID, "userId": entry.UserID}, update)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoNutritionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNutritionIndexes creates indexes for the nutrition collection.
func EnsureNutritionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// One entry per user and day
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
	})
}

// --- Trainer notes ---

type mongoNoteRepository struct {
	collection *mongo.Collection
}

// NewMongoNoteRepository creates a new trainer note repository.
func NewMongoNoteRepository(db *mongo.Database) repository.NoteRepository {
	return &mongoNoteRepository{collection: db.Collection(noteCollectionName)}
}

func (r *mongoNoteRepository) Create(ctx context.Context, note *domain.TrainerNote) (primitive.ObjectID, error) {
	if note.TrainerID == primitive.NilObjectID || note.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("note requires trainerId and clientId")
	}
	note.ID = primitive.NewObjectID()
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	if _, err := r.collection.InsertOne(ctx, note); err != nil {
		return primitive.NilObjectID, err
	}
	return note.ID, nil
}

func (r *mongoNoteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerNote, error) {
	var note domain.TrainerNote
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&note); err != nil {
		return nil, notFound(err)
	}
	return &note, nil
}

func (r *mongoNoteRepository) List(ctx context.Context, f repository.NoteFilter) ([]domain.TrainerNote, error) {
	filter := bson.M{}
	if f.TrainerID != nil {
		filter["trainerId"] = *f.TrainerID
	}
	if f.ClientID != nil {
		filter["clientId"] = *f.ClientID
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.TrainerNote](ctx, cursor)
}

func (r *mongoNoteRepository) Update(ctx context.Context, note *domain.TrainerNote) error {
	note.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":     note.Title,
		"content":   note.Content,
		"updatedAt": note.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": note.ID, "trainerId": note.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoNoteRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNoteIndexes creates indexes for the trainer notes collection.
func EnsureNoteIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
}
