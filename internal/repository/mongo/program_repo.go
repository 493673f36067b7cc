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
	programCollectionName    = "training_programs"
	programDayCollectionName = "program_days"
)

// --- Programs ---

type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new training program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.TrainingProgram) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Title == "" {
		return primitive.NilObjectID, errors.New("program requires userId and title")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, program); err != nil {
		return primitive.NilObjectID, err
	}
	return program.ID, nil
}

func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingProgram, error) {
	var program domain.TrainingProgram
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&program); err != nil {
		return nil, notFound(err)
	}
	return &program, nil
}

// ListByUserIDs returns programs living in any of the given users' spaces, newest first.
func (r *mongoProgramRepository) ListByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]domain.TrainingProgram, error) {
	if len(userIDs) == 0 {
		return []domain.TrainingProgram{}, nil
	}
	filter := bson.M{"userId": bson.M{"$in": userIDs}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.TrainingProgram](ctx, cursor)
}

// Update changes title and description only.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.TrainingProgram) error {
	if program.Title == "" {
		return errors.New("program title cannot be empty")
	}
	program.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":       program.Title,
			"description": program.Description,
			"updatedAt":   program.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": program.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramIndexes creates indexes for the programs collection.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

// --- Program days ---

type mongoProgramDayRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramDayRepository creates a repository for days and their embedded blocks.
func NewMongoProgramDayRepository(db *mongo.Database) repository.ProgramDayRepository {
	return &mongoProgramDayRepository{
		collection: db.Collection(programDayCollectionName),
	}
}

func (r *mongoProgramDayRepository) Create(ctx context.Context, day *domain.ProgramDay) (primitive.ObjectID, error) {
	if day.ProgramID == primitive.NilObjectID || day.Name == "" {
		return primitive.NilObjectID, errors.New("program day requires programId and name")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now
	if day.Blocks == nil {
		day.Blocks = []domain.ProgramBlock{}
	}

	if _, err := r.collection.InsertOne(ctx, day); err != nil {
		return primitive.NilObjectID, err
	}
	return day.ID, nil
}

func (r *mongoProgramDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDay, error) {
	var day domain.ProgramDay
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&day); err != nil {
		return nil, notFound(err)
	}
	return &day, nil
}

func (r *mongoProgramDayRepository) ListByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ProgramDay](ctx, cursor)
}

func (r *mongoProgramDayRepository) CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"programId": programID})
	return int(n), err
}

// Update replaces the day document, subtree included. Program and owner never change.
func (r *mongoProgramDayRepository) Update(ctx context.Context, day *domain.ProgramDay) error {
	day.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":      day.Name,
			"notes":     day.Notes,
			"order":     day.Order,
			"blocks":    day.Blocks,
			"updatedAt": day.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgramDayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByProgramID removes every day of a program and returns their IDs.
func (r *mongoProgramDayRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}

// EnsureProgramDayIndexes creates indexes for the program days collection.
func EnsureProgramDayIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "programId", Value: 1}, {Key: "order", Value: 1}}},
	})
}
