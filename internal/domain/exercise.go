package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls who besides the author can see a library exercise.
type Visibility string

const (
	VisibilityAll     Visibility = "all"     // Every client of the trainer
	VisibilityClient  Visibility = "client"  // One named client
	VisibilityTrainer Visibility = "trainer" // Author only
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityAll, VisibilityClient, VisibilityTrainer:
		return true
	}
	return false
}

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Link to the Trainer who created/owns this exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MuscleGroups          string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"` // e.g., "Chest, Triceps"
	Equipment             string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty            string `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g., "Novice", "Medium", "Advanced"
	StartingPosition      string `bson:"startingPosition,omitempty" json:"startingPosition,omitempty"`
	ExecutionInstructions string `bson:"executionInstructions,omitempty" json:"executionInstructions,omitempty"`
	VideoURL              string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Notes                 string `bson:"notes,omitempty" json:"notes,omitempty"`

	Visibility Visibility          `bson:"visibility" json:"visibility"`
	ClientID   *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"` // Set iff Visibility == client

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
