package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerTag records who authored a program artifact. A client may use trainer
// authored content but never delete it.
type OwnerTag string

const (
	OwnerTrainer OwnerTag = "trainer"
	OwnerClient  OwnerTag = "client"
)

// AuthoredBy is the tag for content the actor creates.
func AuthoredBy(actor Actor) OwnerTag {
	if actor.IsTrainer() {
		return OwnerTrainer
	}
	return OwnerClient
}

// TrainingProgram is a reusable plan made of ordered days.
type TrainingProgram struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"` // Whose space the program lives in
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Owner       OwnerTag           `bson:"owner" json:"owner"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgramDay is stored as its own document; blocks and exercises are embedded
// so a day and its whole subtree are written atomically.
type ProgramDay struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProgramID        primitive.ObjectID  `bson:"programId" json:"programId"`
	Name             string              `bson:"name" json:"name"`
	Notes            string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Order            int                 `bson:"order" json:"order"`
	Owner            OwnerTag            `bson:"owner" json:"owner"`
	SourceTemplateID *primitive.ObjectID `bson:"sourceTemplateId,omitempty" json:"sourceTemplateId,omitempty"`
	Blocks           []ProgramBlock      `bson:"blocks" json:"blocks"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ProgramBlock groups exercises into a phase of the day ("warmup", "main", "cooldown").
type ProgramBlock struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Order     int                `bson:"order" json:"order"`
	Owner     OwnerTag           `bson:"owner,omitempty" json:"owner"`
	Exercises []ProgramExercise  `bson:"exercises" json:"exercises"`
}

// ProgramExercise keeps its quantities typed. Units are implicit:
// minutes, seconds and kilograms respectively.
type ProgramExercise struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Sets            int                `bson:"sets" json:"sets"`
	Reps            *int               `bson:"reps,omitempty" json:"reps,omitempty"`
	DurationMinutes *int               `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	RestSeconds     *int               `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	WeightKg        *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL        string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Order           int                `bson:"order" json:"order"`
	Owner           OwnerTag           `bson:"owner,omitempty" json:"owner"`
}

// Block returns the block with the given id, or nil.
func (d *ProgramDay) Block(id primitive.ObjectID) *ProgramBlock {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return &d.Blocks[i]
		}
	}
	return nil
}

// ExerciseOwner is the exercise's own tag, falling back to the day's for
// exercises stored before exercises were tagged.
func (d *ProgramDay) ExerciseOwner(ex *ProgramExercise) OwnerTag {
	if ex.Owner != "" {
		return ex.Owner
	}
	return d.Owner
}

// Exercise returns the exercise with the given id, or nil.
func (b *ProgramBlock) Exercise(id primitive.ObjectID) *ProgramExercise {
	for i := range b.Exercises {
		if b.Exercises[i].ID == id {
			return &b.Exercises[i]
		}
	}
	return nil
}

// NextExerciseOrder is one past the highest order in the block.
func (b *ProgramBlock) NextExerciseOrder() int {
	next := 0
	for _, ex := range b.Exercises {
		if ex.Order >= next {
			next = ex.Order + 1
		}
	}
	return next
}
