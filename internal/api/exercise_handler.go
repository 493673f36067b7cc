package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// ExerciseLibraryRequest is the body for creating or replacing a library exercise.
type ExerciseLibraryRequest struct {
	Name                  string              `json:"name" binding:"required"`
	Description           string              `json:"description"`
	MuscleGroups          string              `json:"muscleGroups"`
	Equipment             string              `json:"equipment"`
	Difficulty            string              `json:"difficulty"`
	StartingPosition      string              `json:"startingPosition"`
	ExecutionInstructions string              `json:"executionInstructions"`
	VideoURL              string              `json:"videoUrl" binding:"omitempty,url"`
	Notes                 string              `json:"notes"`
	Visibility            domain.Visibility   `json:"visibility" binding:"omitempty,oneof=all client trainer"`
	ClientID              *primitive.ObjectID `json:"clientId"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID                    string            `json:"id"`
	TrainerID             string            `json:"trainerId"`
	Name                  string            `json:"name"`
	Description           string            `json:"description,omitempty"`
	MuscleGroups          string            `json:"muscleGroups,omitempty"`
	Equipment             string            `json:"equipment,omitempty"`
	Difficulty            string            `json:"difficulty,omitempty"`
	StartingPosition      string            `json:"startingPosition,omitempty"`
	ExecutionInstructions string            `json:"executionInstructions,omitempty"`
	VideoURL              string            `json:"videoUrl,omitempty"`
	Notes                 string            `json:"notes,omitempty"`
	Visibility            domain.Visibility `json:"visibility"`
	ClientID              *string           `json:"clientId,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

func (r ExerciseLibraryRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:                  r.Name,
		Description:           r.Description,
		MuscleGroups:          r.MuscleGroups,
		Equipment:             r.Equipment,
		Difficulty:            r.Difficulty,
		StartingPosition:      r.StartingPosition,
		ExecutionInstructions: r.ExecutionInstructions,
		VideoURL:              r.VideoURL,
		Notes:                 r.Notes,
		Visibility:            r.Visibility,
		ClientID:              r.ClientID,
	}
}

func mapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:                    e.ID.Hex(),
		TrainerID:             e.TrainerID.Hex(),
		Name:                  e.Name,
		Description:           e.Description,
		MuscleGroups:          e.MuscleGroups,
		Equipment:             e.Equipment,
		Difficulty:            e.Difficulty,
		StartingPosition:      e.StartingPosition,
		ExecutionInstructions: e.ExecutionInstructions,
		VideoURL:              e.VideoURL,
		Notes:                 e.Notes,
		Visibility:            e.Visibility,
		ClientID:              hexPtr(e.ClientID),
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseLibraryRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Failure 400,401,403,500 {object} gin.H
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), actor, req.input())
	if err != nil {
		respondWithServiceError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, mapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List exercises visible to the caller
// @Description Trainers get their whole library; clients get what their trainer shared with them.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err, "retrieve exercises")
		return
	}
	resp := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		resp[i] = mapExerciseToResponse(&exercises[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), actor, id)
	if err != nil {
		respondWithServiceError(c, err, "get exercise")
		return
	}
	c.JSON(http.StatusOK, mapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ExerciseLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), actor, id, req.input())
	if err != nil {
		respondWithServiceError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, mapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), actor, id); err != nil {
		respondWithServiceError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}
