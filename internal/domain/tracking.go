package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyMetric is a measurement a user tracks over time, e.g. weight in kg.
type BodyMetric struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Label         string             `bson:"label" json:"label"`
	Unit          string             `bson:"unit" json:"unit"`
	Target        *float64           `bson:"target,omitempty" json:"target"`
	TargetHistory []TargetChange     `bson:"targetHistory,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// TargetChange records one edit of a body metric's target. A nil Target
// means the target was cleared.
type TargetChange struct {
	Target    *float64  `bson:"target" json:"target"`
	ChangedAt time.Time `bson:"changedAt" json:"changedAt"`
}

type BodyMetricEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MetricID   primitive.ObjectID `bson:"metricId" json:"metricId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"` // Copied from the metric for per-user listing
	Value      float64            `bson:"value" json:"value"`
	RecordedAt time.Time          `bson:"recordedAt" json:"recordedAt"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// ExerciseMetric tracks strength progress on one movement.
type ExerciseMetric struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Label       string             `bson:"label" json:"label"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type ExerciseMetricEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MetricID    primitive.ObjectID `bson:"metricId" json:"metricId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Date        time.Time          `bson:"date" json:"date"`
	Weight      *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Repetitions *int               `bson:"repetitions,omitempty" json:"repetitions,omitempty"`
	Sets        *int               `bson:"sets,omitempty" json:"sets,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// NutritionEntry is a user's food log for one calendar day. Day is the
// date in the offset the entry was submitted with; a user has at most one
// entry per Day.
type NutritionEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      time.Time          `bson:"date" json:"date"`
	Day       string             `bson:"day" json:"day"` // 2006-01-02
	Calories  *float64           `bson:"calories,omitempty" json:"calories,omitempty"`
	Proteins  *float64           `bson:"proteins,omitempty" json:"proteins,omitempty"`
	Fats      *float64           `bson:"fats,omitempty" json:"fats,omitempty"`
	Carbs     *float64           `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NutritionDay returns the calendar day a nutrition entry dated t belongs to.
func NutritionDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// TrainerNote is a note a trainer keeps about one of their clients.
// The client can read it; only the author can change it.
type TrainerNote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content,omitempty" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
