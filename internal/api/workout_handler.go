package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/schedule"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService  service.WorkoutService
	calendarService service.CalendarService
}

func NewWorkoutHandler(workoutService service.WorkoutService, calendarService service.CalendarService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, calendarService: calendarService}
}

// --- DTOs ---

type RecurrenceRequest struct {
	Frequency   schedule.Frequency `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	Interval    int                `json:"interval" binding:"omitempty,min=1"`
	DaysOfWeek  []int              `json:"daysOfWeek" binding:"omitempty,dive,weekday"`
	Until       string             `json:"until"` // RFC 3339 or YYYY-MM-DD
	Occurrences *int               `json:"occurrences" binding:"omitempty,min=1"`
}

type CreateWorkoutRequest struct {
	Title              string                `json:"title" binding:"required"`
	Start              time.Time             `json:"start" binding:"required"`
	End                time.Time             `json:"end" binding:"required"`
	Location           string                `json:"location"`
	Format             *domain.WorkoutFormat `json:"format" binding:"omitempty,oneof=online offline"`
	CoachNote          *string               `json:"coachNote"`
	ClientID           *primitive.ObjectID   `json:"clientId"`
	TrainerID          *primitive.ObjectID   `json:"trainerId"`
	ProgramDayID       *primitive.ObjectID   `json:"programDayId"`
	RecurrenceSeriesID *primitive.ObjectID   `json:"recurrenceSeriesId"`
	Recurrence         *RecurrenceRequest    `json:"recurrence"`
}

type UpdateWorkoutRequest struct {
	Title        domain.Field[string]                `json:"title"`
	Start        domain.Field[time.Time]             `json:"start"`
	End          domain.Field[time.Time]             `json:"end"`
	Location     domain.Field[string]                `json:"location"`
	Attendance   domain.Field[domain.Attendance]     `json:"attendance"`
	CoachNote    domain.Field[*string]               `json:"coachNote"`
	ProgramDayID domain.Field[*primitive.ObjectID]   `json:"programDayId"`
	Format       domain.Field[*domain.WorkoutFormat] `json:"format"`
}

type WorkoutResponse struct {
	ID                 string                `json:"id"`
	UserID             string                `json:"userId"`
	TrainerID          *string               `json:"trainerId,omitempty"`
	Title              string                `json:"title"`
	Start              time.Time             `json:"start"`
	End                time.Time             `json:"end"`
	Location           string                `json:"location,omitempty"`
	Format             *domain.WorkoutFormat `json:"format,omitempty"`
	Attendance         domain.Attendance     `json:"attendance"`
	CoachNote          *string               `json:"coachNote,omitempty"`
	ProgramDayID       *string               `json:"programDayId"`
	RecurrenceSeriesID *string               `json:"recurrenceSeriesId,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

func mapWorkout(w *domain.Workout) WorkoutResponse {
	return WorkoutResponse{
		ID:                 w.ID.Hex(),
		UserID:             w.UserID.Hex(),
		TrainerID:          hexPtr(w.TrainerID),
		Title:              w.Title,
		Start:              w.Start,
		End:                w.End,
		Location:           w.Location,
		Format:             w.Format,
		Attendance:         w.Attendance,
		CoachNote:          w.CoachNote,
		ProgramDayID:       hexPtr(w.ProgramDayID),
		RecurrenceSeriesID: hexPtr(w.RecurrenceSeriesID),
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

func mapWorkouts(ws []domain.Workout) []WorkoutResponse {
	out := make([]WorkoutResponse, len(ws))
	for i := range ws {
		out[i] = mapWorkout(&ws[i])
	}
	return out
}

// --- Handlers ---

// CreateWorkout godoc
// @Summary Schedule a workout or a recurring series
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {array} WorkoutResponse "Every created occurrence, first one first"
// @Failure 400,403,404,500 {object} gin.H
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	in := service.CreateWorkoutInput{
		ClientID:           req.ClientID,
		TrainerID:          req.TrainerID,
		Title:              req.Title,
		Start:              req.Start,
		End:                req.End,
		Location:           req.Location,
		Format:             req.Format,
		CoachNote:          req.CoachNote,
		ProgramDayID:       req.ProgramDayID,
		RecurrenceSeriesID: req.RecurrenceSeriesID,
	}
	if r := req.Recurrence; r != nil {
		rule := schedule.Rule{
			Frequency:   r.Frequency,
			Interval:    r.Interval,
			DaysOfWeek:  r.DaysOfWeek,
			Occurrences: r.Occurrences,
		}
		if r.Until != "" {
			until, err := parseUntil(r.Until, req.Start.Location())
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid recurrence.until: expected RFC 3339 or YYYY-MM-DD")
				return
			}
			rule.Until = &until
		}
		in.Recurrence = &rule
	}

	created, err := h.workoutService.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondWithServiceError(c, err, "create workout")
		return
	}
	c.JSON(http.StatusCreated, mapWorkouts(created))
}

// listFilter reads from/to (or start_date/end_date), clientId and trainerView.
func listFilter(c *gin.Context) (service.WorkoutListFilter, bool) {
	var f service.WorkoutListFilter
	var ok bool
	if f.From, ok = timeQuery(c, "from", "start_date"); !ok {
		return f, false
	}
	if f.To, ok = timeQuery(c, "to", "end_date"); !ok {
		return f, false
	}
	if f.ClientID, ok = optionalIDQuery(c, "clientId", "client_id"); !ok {
		return f, false
	}
	f.TrainerView = boolQuery(c, "trainerView", "trainer_view")
	return f, true
}

// ListWorkouts godoc
// @Summary List workouts ordered by start
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start at or after (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Start at or before"
// @Param clientId query string false "Linked client (trainer only)"
// @Param trainerView query bool false "All linked clients (trainer only)"
// @Success 200 {array} WorkoutResponse
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondWithServiceError(c, err, "list workouts")
		return
	}
	c.JSON(http.StatusOK, mapWorkouts(workouts))
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	workout, err := h.workoutService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithServiceError(c, err, "get workout")
		return
	}
	c.JSON(http.StatusOK, mapWorkout(workout))
}

// UpdateWorkout godoc
// @Summary Partially update a workout
// @Description Only supplied fields change. Setting attendance to completed
// @Description consumes one prepaid session.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WorkoutResponse
// @Router /workouts/{id} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.workoutService.Update(c.Request.Context(), actor, id, service.WorkoutPatch{
		Title:        req.Title,
		Start:        req.Start,
		End:          req.End,
		Location:     req.Location,
		Attendance:   req.Attendance,
		CoachNote:    req.CoachNote,
		ProgramDayID: req.ProgramDayID,
		Format:       req.Format,
	})
	if err != nil {
		respondWithServiceError(c, err, "update workout")
		return
	}
	c.JSON(http.StatusOK, mapWorkout(updated))
}

// DeleteWorkout godoc
// @Summary Delete a workout, or the permitted members of its series
// @Tags Workouts
// @Param deleteSeries query bool false "Delete the whole series"
// @Success 200 {object} gin.H "deleted count"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.workoutService.Delete(c.Request.Context(), actor, id, boolQuery(c, "deleteSeries", "delete_series"))
	if err != nil {
		respondWithServiceError(c, err, "delete workout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ExportWorkouts publishes the listed workouts as an .ics file and returns a download link.
func (h *WorkoutHandler) ExportWorkouts(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	export, err := h.calendarService.Export(c.Request.Context(), actor, filter)
	if err != nil {
		respondWithServiceError(c, err, "export workouts")
		return
	}
	c.JSON(http.StatusOK, export)
}
