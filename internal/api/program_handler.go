package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/units"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type CreateProgramRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	UserID      *primitive.ObjectID `json:"userId"`
}

type UpdateProgramRequest struct {
	Title       domain.Field[string] `json:"title"`
	Description domain.Field[string] `json:"description"`
}

// LegacyExerciseRequest is an exercise inside a day payload. Quantities use
// the text form, e.g. "10 мин", "90 сек", "70 кг".
type LegacyExerciseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Sets        int     `json:"sets" binding:"omitempty,min=1"`
	Reps        *int    `json:"reps" binding:"omitempty,min=0"`
	Duration    *string `json:"duration"`
	Rest        *string `json:"rest"`
	Weight      *string `json:"weight"`
	Description string  `json:"description"`
	VideoURL    string  `json:"videoUrl" binding:"omitempty,url"`
}

type BlockRequest struct {
	Type      string                  `json:"type" binding:"required"`
	Title     string                  `json:"title"`
	Exercises []LegacyExerciseRequest `json:"exercises" binding:"dive"`
}

type CreateDayRequest struct {
	Name             string              `json:"name" binding:"required"`
	Notes            string              `json:"notes"`
	SourceTemplateID *primitive.ObjectID `json:"sourceTemplateId"`
	Blocks           []BlockRequest      `json:"blocks" binding:"dive"`
}

type UpdateDayRequest struct {
	Name  domain.Field[string] `json:"name"`
	Notes domain.Field[string] `json:"notes"`
	Order domain.Field[int]    `json:"order"`
}

// ExerciseRequest is the numeric form used by the block exercise endpoints:
// duration in minutes, rest in seconds, weight in kilograms.
type ExerciseRequest struct {
	Title       string   `json:"title" binding:"required"`
	Sets        int      `json:"sets" binding:"omitempty,min=1"`
	Reps        *int     `json:"reps" binding:"omitempty,min=0"`
	Duration    *int     `json:"duration" binding:"omitempty,min=0"`
	Rest        *int     `json:"rest" binding:"omitempty,min=0"`
	Weight      *float64 `json:"weight" binding:"omitempty,min=0"`
	Description string   `json:"description"`
	VideoURL    string   `json:"videoUrl" binding:"omitempty,url"`
}

type UpdateExerciseRequest struct {
	Title       domain.Field[string]   `json:"title"`
	Sets        domain.Field[int]      `json:"sets"`
	Reps        domain.Field[*int]     `json:"reps"`
	Duration    domain.Field[*int]     `json:"duration"`
	Rest        domain.Field[*int]     `json:"rest"`
	Weight      domain.Field[*float64] `json:"weight"`
	Description domain.Field[string]   `json:"description"`
	VideoURL    domain.Field[string]   `json:"videoUrl"`
}

type ProgramResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Owner       domain.OwnerTag `json:"owner"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Days        []DayResponse   `json:"days,omitempty"`
}

type DayResponse struct {
	ID               string          `json:"id"`
	ProgramID        string          `json:"programId"`
	Name             string          `json:"name"`
	Notes            string          `json:"notes,omitempty"`
	Order            int             `json:"order"`
	Owner            domain.OwnerTag `json:"owner"`
	SourceTemplateID *string         `json:"sourceTemplateId,omitempty"`
	Blocks           []BlockResponse `json:"blocks"`
}

type BlockResponse struct {
	ID        string                   `json:"id"`
	Type      string                   `json:"type"`
	Title     string                   `json:"title,omitempty"`
	Order     int                      `json:"order"`
	Owner     domain.OwnerTag          `json:"owner"`
	Exercises []LegacyExerciseResponse `json:"exercises"`
}

// LegacyExerciseResponse renders quantities in the text form.
type LegacyExerciseResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Sets        int             `json:"sets"`
	Reps        *int            `json:"reps,omitempty"`
	Duration    *string         `json:"duration,omitempty"`
	Rest        *string         `json:"rest,omitempty"`
	Weight      *string         `json:"weight,omitempty"`
	Description string          `json:"description,omitempty"`
	VideoURL    string          `json:"videoUrl,omitempty"`
	Order       int             `json:"order"`
	Owner       domain.OwnerTag `json:"owner"`
}

type ExerciseItemResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Sets        int             `json:"sets"`
	Reps        *int            `json:"reps,omitempty"`
	Duration    *int            `json:"duration,omitempty"`
	Rest        *int            `json:"rest,omitempty"`
	Weight      *float64        `json:"weight,omitempty"`
	Description string          `json:"description,omitempty"`
	VideoURL    string          `json:"videoUrl,omitempty"`
	Order       int             `json:"order"`
	Owner       domain.OwnerTag `json:"owner"`
}

func mapProgram(p *domain.TrainingProgram, days []domain.ProgramDay) ProgramResponse {
	resp := ProgramResponse{
		ID:          p.ID.Hex(),
		UserID:      p.UserID.Hex(),
		Title:       p.Title,
		Description: p.Description,
		Owner:       p.Owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range days {
		resp.Days = append(resp.Days, mapDay(&days[i]))
	}
	return resp
}

func mapDay(d *domain.ProgramDay) DayResponse {
	resp := DayResponse{
		ID:               d.ID.Hex(),
		ProgramID:        d.ProgramID.Hex(),
		Name:             d.Name,
		Notes:            d.Notes,
		Order:            d.Order,
		Owner:            d.Owner,
		SourceTemplateID: hexPtr(d.SourceTemplateID),
		Blocks:           make([]BlockResponse, len(d.Blocks)),
	}
	for i, b := range d.Blocks {
		block := BlockResponse{
			ID:        b.ID.Hex(),
			Type:      b.Type,
			Title:     b.Title,
			Order:     b.Order,
			Owner:     b.Owner,
			Exercises: make([]LegacyExerciseResponse, len(b.Exercises)),
		}
		for j, e := range b.Exercises {
			block.Exercises[j] = LegacyExerciseResponse{
				ID:          e.ID.Hex(),
				Title:       e.Title,
				Sets:        e.Sets,
				Reps:        e.Reps,
				Duration:    units.ToString(e.DurationMinutes, units.Minutes),
				Rest:        units.ToString(e.RestSeconds, units.Seconds),
				Weight:      units.FloatToString(e.WeightKg, units.Kilograms),
				Description: e.Description,
				VideoURL:    e.VideoURL,
				Order:       e.Order,
				Owner:       d.ExerciseOwner(&b.Exercises[j]),
			}
		}
		resp.Blocks[i] = block
	}
	return resp
}

func mapExerciseItem(e *domain.ProgramExercise) ExerciseItemResponse {
	return ExerciseItemResponse{
		ID:          e.ID.Hex(),
		Title:       e.Title,
		Sets:        e.Sets,
		Reps:        e.Reps,
		Duration:    e.DurationMinutes,
		Rest:        e.RestSeconds,
		Weight:      e.WeightKg,
		Description: e.Description,
		VideoURL:    e.VideoURL,
		Order:       e.Order,
		Owner:       e.Owner,
	}
}

// --- Programs ---

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	program, err := h.programService.CreateProgram(c.Request.Context(), actor, service.CreateProgramInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(c, err, "create program")
		return
	}
	c.JSON(http.StatusCreated, mapProgram(program, nil))
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := optionalIDQuery(c, "userId", "user_id")
	if !ok {
		return
	}
	programs, err := h.programService.ListPrograms(c.Request.Context(), actor, userID)
	if err != nil {
		respondWithServiceError(c, err, "list programs")
		return
	}
	resp := make([]ProgramResponse, len(programs))
	for i := range programs {
		resp[i] = mapProgram(&programs[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProgramHandler) GetProgram(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.programService.GetProgram(c.Request.Context(), actor, id)
	if err != nil {
		respondWithServiceError(c, err, "get program")
		return
	}
	c.JSON(http.StatusOK, mapProgram(&detail.Program, detail.Days))
}

func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	program, err := h.programService.UpdateProgram(c.Request.Context(), actor, id, service.ProgramPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(c, err, "update program")
		return
	}
	c.JSON(http.StatusOK, mapProgram(program, nil))
}

func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.programService.DeleteProgram(c.Request.Context(), actor, id); err != nil {
		respondWithServiceError(c, err, "delete program")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Days ---

// CreateDay godoc
// @Summary Append a day with its blocks and exercises to a program
// @Description Exercise quantities are given as text: "10 мин", "90 сек", "70 кг".
// @Tags Programs
// @Router /programs/{id}/days [post]
func (h *ProgramHandler) CreateDay(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	programID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CreateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in := service.CreateDayInput{
		Name:             req.Name,
		Notes:            req.Notes,
		SourceTemplateID: req.SourceTemplateID,
		Blocks:           make([]service.ProgramBlockInput, len(req.Blocks)),
	}
	for i, b := range req.Blocks {
		block := service.ProgramBlockInput{Type: b.Type, Title: b.Title, Exercises: make([]service.ProgramExerciseInput, len(b.Exercises))}
		for j, e := range b.Exercises {
			block.Exercises[j] = service.ProgramExerciseInput{
				Title:           e.Title,
				Sets:            e.Sets,
				Reps:            e.Reps,
				DurationMinutes: units.Parse(e.Duration, units.Minutes),
				RestSeconds:     units.Parse(e.Rest, units.Seconds),
				WeightKg:        units.ParseFloat(e.Weight, units.Kilograms),
				Description:     e.Description,
				VideoURL:        e.VideoURL,
			}
		}
		in.Blocks[i] = block
	}

	day, err := h.programService.CreateDay(c.Request.Context(), actor, programID, in)
	if err != nil {
		respondWithServiceError(c, err, "create program day")
		return
	}
	c.JSON(http.StatusCreated, mapDay(day))
}

func (h *ProgramHandler) ListDays(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	programID, ok := idParam(c, "id")
	if !ok {
		return
	}
	days, err := h.programService.ListDays(c.Request.Context(), actor, programID)
	if err != nil {
		respondWithServiceError(c, err, "list program days")
		return
	}
	resp := make([]DayResponse, len(days))
	for i := range days {
		resp[i] = mapDay(&days[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProgramHandler) GetDay(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	day, err := h.programService.GetDay(c.Request.Context(), actor, programID, dayID)
	if err != nil {
		respondWithServiceError(c, err, "get program day")
		return
	}
	c.JSON(http.StatusOK, mapDay(day))
}

func (h *ProgramHandler) UpdateDay(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	var req UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	day, err := h.programService.UpdateDay(c.Request.Context(), actor, programID, dayID, service.DayPatch{
		Name:  req.Name,
		Notes: req.Notes,
		Order: req.Order,
	})
	if err != nil {
		respondWithServiceError(c, err, "update program day")
		return
	}
	c.JSON(http.StatusOK, mapDay(day))
}

func (h *ProgramHandler) DeleteDay(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	if err := h.programService.DeleteDay(c.Request.Context(), actor, programID, dayID); err != nil {
		respondWithServiceError(c, err, "delete program day")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Block exercises ---

func (h *ProgramHandler) AddExercise(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	blockID, ok := idParam(c, "blockId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ex, err := h.programService.AddExercise(c.Request.Context(), actor, programID, dayID, blockID, service.ProgramExerciseInput{
		Title:           req.Title,
		Sets:            req.Sets,
		Reps:            req.Reps,
		DurationMinutes: req.Duration,
		RestSeconds:     req.Rest,
		WeightKg:        req.Weight,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
	})
	if err != nil {
		respondWithServiceError(c, err, "add exercise")
		return
	}
	c.JSON(http.StatusCreated, mapExerciseItem(ex))
}

func (h *ProgramHandler) UpdateExercise(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	blockID, ok := idParam(c, "blockId")
	if !ok {
		return
	}
	exerciseID, ok := idParam(c, "exerciseId")
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ex, err := h.programService.UpdateExercise(c.Request.Context(), actor, programID, dayID, blockID, exerciseID, service.ProgramExercisePatch{
		Title:           req.Title,
		Sets:            req.Sets,
		Reps:            req.Reps,
		DurationMinutes: req.Duration,
		RestSeconds:     req.Rest,
		WeightKg:        req.Weight,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
	})
	if err != nil {
		respondWithServiceError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, mapExerciseItem(ex))
}

func (h *ProgramHandler) DeleteExercise(c *gin.Context) {
	actor, programID, dayID, ok := dayParams(c)
	if !ok {
		return
	}
	blockID, ok := idParam(c, "blockId")
	if !ok {
		return
	}
	exerciseID, ok := idParam(c, "exerciseId")
	if !ok {
		return
	}
	if err := h.programService.DeleteExercise(c.Request.Context(), actor, programID, dayID, blockID, exerciseID); err != nil {
		respondWithServiceError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

func dayParams(c *gin.Context) (domain.Actor, primitive.ObjectID, primitive.ObjectID, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return actor, primitive.NilObjectID, primitive.NilObjectID, false
	}
	programID, ok := idParam(c, "id")
	if !ok {
		return actor, primitive.NilObjectID, primitive.NilObjectID, false
	}
	dayID, ok := idParam(c, "dayId")
	return actor, programID, dayID, ok
}
