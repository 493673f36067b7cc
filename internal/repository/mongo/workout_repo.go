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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

func validateWorkout(w *domain.Workout) error {
	if w.UserID == primitive.NilObjectID || w.Title == "" {
		return errors.New("workout requires userId and title")
	}
	if !w.End.After(w.Start) {
		return errors.New("workout end must be after start")
	}
	return nil
}

func stampNew(w *domain.Workout, now time.Time) {
	if w.ID == primitive.NilObjectID {
		w.ID = primitive.NewObjectID()
	}
	if w.Attendance == "" {
		w.Attendance = domain.AttendanceScheduled
	}
	w.CreatedAt = now
	w.UpdatedAt = now
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if err := validateWorkout(workout); err != nil {
		return primitive.NilObjectID, err
	}
	stampNew(workout, time.Now().UTC())

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

// CreateMany inserts a recurring series in one round trip.
func (r *mongoWorkoutRepository) CreateMany(ctx context.Context, workouts []*domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(workouts))
	for i, w := range workouts {
		if err := validateWorkout(w); err != nil {
			return err
		}
		stampNew(w, now)
		docs[i] = w
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, notFound(err)
	}
	return &workout, nil
}

// List returns workouts of the given users, ordered by start.
func (r *mongoWorkoutRepository) List(ctx context.Context, f repository.WorkoutFilter) ([]domain.Workout, error) {
	if len(f.UserIDs) == 0 {
		return []domain.Workout{}, nil
	}
	filter := bson.M{"userId": bson.M{"$in": f.UserIDs}}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			rng["$lte"] = f.To.UTC()
		}
		filter["start"] = rng
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Workout](ctx, cursor)
}

// GetBySeriesID returns every occurrence of a recurring series.
func (r *mongoWorkoutRepository) GetBySeriesID(ctx context.Context, seriesID primitive.ObjectID) ([]domain.Workout, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"recurrenceSeriesId": seriesID}, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Workout](ctx, cursor)
}

// Update writes back the mutable fields of a workout. Owner and series stay fixed.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if err := validateWorkout(workout); err != nil {
		return err
	}
	workout.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"title":      workout.Title,
		"start":      workout.Start,
		"end":        workout.End,
		"location":   workout.Location,
		"attendance": workout.Attendance,
		"updatedAt":  workout.UpdatedAt,
	}
	unset := bson.M{}
	optional := map[string]interface{}{
		"format":       workout.Format,
		"coachNote":    workout.CoachNote,
		"programDayId": workout.ProgramDayID,
	}
	for key, v := range optional {
		if isNilPtr(v) {
			unset[key] = ""
		} else {
			set[key] = v
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single workout.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearProgramDay unlinks workouts from removed program days.
func (r *mongoWorkoutRepository) ClearProgramDay(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	if len(dayIDs) == 0 {
		return 0, nil
	}
	update := bson.M{
		"$unset": bson.M{"programDayId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateMany(ctx, bson.M{"programDayId": bson.M{"$in": dayIDs}}, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func isNilPtr(v interface{}) bool {
	switch p := v.(type) {
	case *domain.WorkoutFormat:
		return p == nil
	case *string:
		return p == nil
	case *primitive.ObjectID:
		return p == nil
	}
	return v == nil
}

// EnsureWorkoutIndexes creates indexes for the workouts collection.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// Calendar queries: a user's workouts in a date range
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "recurrenceSeriesId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "programDayId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
