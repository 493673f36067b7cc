package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance is the lifecycle state of a scheduled workout.
type Attendance string

const (
	AttendanceScheduled Attendance = "scheduled"
	AttendanceCompleted Attendance = "completed"
	AttendanceMissed    Attendance = "missed"
)

func (a Attendance) Valid() bool {
	switch a {
	case AttendanceScheduled, AttendanceCompleted, AttendanceMissed:
		return true
	}
	return false
}

// WorkoutFormat tells whether the session happens in person or remotely.
type WorkoutFormat string

const (
	FormatOnline  WorkoutFormat = "online"
	FormatOffline WorkoutFormat = "offline"
)

func (f WorkoutFormat) Valid() bool {
	return f == FormatOnline || f == FormatOffline
}

// Workout represents a single scheduled training session on the calendar.
type Workout struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`                           // Owner (the client, or the trainer for their own sessions)
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"` // Coach running the session
	Title     string              `bson:"title" json:"title"`
	Start     time.Time           `bson:"start" json:"start"`
	End       time.Time           `bson:"end" json:"end"`
	Location  string              `bson:"location,omitempty" json:"location,omitempty"`
	Format    *WorkoutFormat      `bson:"format,omitempty" json:"format,omitempty"`

	Attendance Attendance `bson:"attendance" json:"attendance"`
	CoachNote  *string    `bson:"coachNote,omitempty" json:"coachNote,omitempty"`

	// Template the session follows. Nulled when the day or its program is removed.
	ProgramDayID *primitive.ObjectID `bson:"programDayId,omitempty" json:"programDayId,omitempty"`

	// Shared by every occurrence generated from one recurring request.
	RecurrenceSeriesID *primitive.ObjectID `bson:"recurrenceSeriesId,omitempty" json:"recurrenceSeriesId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Duration returns the length of the session.
func (w *Workout) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
