package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationWorkoutRescheduled = "workout_rescheduled"
	NotificationTrainerNote        = "trainer_note"
)

// Notification is an in-app feed entry. Delivery beyond the feed is out of scope.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"` // Recipient
	SenderID  *primitive.ObjectID `bson:"senderId,omitempty" json:"senderId,omitempty"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Content   string              `bson:"content" json:"content"`
	Link      string              `bson:"link,omitempty" json:"link,omitempty"`
	IsRead    bool                `bson:"isRead" json:"isRead"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
