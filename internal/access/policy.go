// Package access holds the trainer/client authorization rules. Every function
// is a pure predicate: callers resolve the resource owner beforehand and a nil
// owner always denies.
package access

import (
	"alcyxob/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ManagesUser reports whether the actor may act on resources owned by user:
// the user is the actor, or the actor is a trainer and user is one of their clients.
func ManagesUser(actor domain.Actor, user *domain.User) bool {
	if user == nil {
		return false
	}
	if user.ID == actor.ID {
		return true
	}
	return actor.IsTrainer() && user.IsClientOf(actor.ID)
}

// ManagesClient is the trainer-only half of ManagesUser.
func ManagesClient(actor domain.Actor, user *domain.User) bool {
	return user != nil && actor.IsTrainer() && user.IsClientOf(actor.ID)
}

// CanAccessProgram covers the program and everything nested under it.
func CanAccessProgram(actor domain.Actor, program *domain.TrainingProgram, owner *domain.User) bool {
	return program != nil && ownedBy(program.UserID, owner) && canReach(actor, owner)
}

// CanAccessWorkout applies the same ownership rule to a scheduled workout.
func CanAccessWorkout(actor domain.Actor, workout *domain.Workout, owner *domain.User) bool {
	return workout != nil && ownedBy(workout.UserID, owner) && canReach(actor, owner)
}

// CanDeleteProgramArtifact gates deletion of a program, day or exercise.
// tag is the owner tag of the artifact being removed.
func CanDeleteProgramArtifact(actor domain.Actor, program *domain.TrainingProgram, owner *domain.User, tag domain.OwnerTag) bool {
	if !CanAccessProgram(actor, program, owner) {
		return false
	}
	return !(actor.IsClient() && tag == domain.OwnerTrainer)
}

// CanDeleteWorkout additionally stops a client from removing a session built
// on a trainer-authored program day. day may be nil.
func CanDeleteWorkout(actor domain.Actor, workout *domain.Workout, owner *domain.User, day *domain.ProgramDay) bool {
	if !CanAccessWorkout(actor, workout, owner) {
		return false
	}
	if actor.IsClient() && day != nil && day.Owner == domain.OwnerTrainer {
		return false
	}
	return true
}

func ownedBy(userID primitive.ObjectID, owner *domain.User) bool {
	return owner != nil && owner.ID == userID
}

func canReach(actor domain.Actor, owner *domain.User) bool {
	switch actor.Role {
	case domain.RoleTrainer:
		return owner.ID == actor.ID || owner.IsClientOf(actor.ID)
	case domain.RoleClient:
		return owner.ID == actor.ID
	}
	return false
}
