package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique index
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Client-specific ---
	// The single source of truth for the trainer/client link.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	// Aggregate of prepaid sessions left. Nil means the client never bought a package.
	WorkoutsPackage       *int       `bson:"workoutsPackage,omitempty" json:"workoutsPackage,omitempty"`
	SubscriptionExpiresAt *time.Time `bson:"subscriptionExpiresAt,omitempty" json:"subscriptionExpiresAt,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsClientOf reports whether u is a client linked to the given trainer.
func (u *User) IsClientOf(trainerID primitive.ObjectID) bool {
	return u.IsClient() && u.TrainerID != nil && *u.TrainerID == trainerID
}

// Actor is the authenticated identity a service call is made on behalf of.
type Actor struct {
	ID        primitive.ObjectID
	Role      Role
	TrainerID *primitive.ObjectID
}

// ActorFromUser builds the identity context for an authenticated user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role, TrainerID: u.TrainerID}
}

func (a Actor) IsTrainer() bool { return a.Role == RoleTrainer }

func (a Actor) IsClient() bool { return a.Role == RoleClient }
