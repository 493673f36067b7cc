package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NutritionHandler struct {
	nutritionService service.NutritionService
}

func NewNutritionHandler(nutritionService service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

type NutritionRequest struct {
	Date     *time.Time `json:"date" binding:"required"`
	Calories *float64   `json:"calories" binding:"omitempty,gte=0"`
	Proteins *float64   `json:"proteins" binding:"omitempty,gte=0"`
	Fats     *float64   `json:"fats" binding:"omitempty,gte=0"`
	Carbs    *float64   `json:"carbs" binding:"omitempty,gte=0"`
	Notes    string     `json:"notes" binding:"max=2000"`
}

func (r NutritionRequest) input() service.NutritionInput {
	return service.NutritionInput{
		Date:     *r.Date,
		Calories: r.Calories,
		Proteins: r.Proteins,
		Fats:     r.Fats,
		Carbs:    r.Carbs,
		Notes:    r.Notes,
	}
}

// LogNutrition godoc
// @Summary Log the day's nutrition
// @Description Creates the entry for the date's day, or overwrites the existing one (200).
// @Tags Nutrition
// @Security BearerAuth
// @Success 201 {object} domain.NutritionEntry
// @Success 200 {object} domain.NutritionEntry
// @Router /nutrition [post]
func (h *NutritionHandler) LogNutrition(c *gin.Context) {
	var req NutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	entry, created, err := h.nutritionService.Log(c.Request.Context(), actor, req.input())
	if err != nil {
		respondWithServiceError(c, err, "log nutrition")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, entry)
}

func (h *NutritionHandler) ListNutrition(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	f, ok := trackingFilter(c)
	if !ok {
		return
	}
	entries, err := h.nutritionService.List(c.Request.Context(), actor, f)
	if err != nil {
		respondWithServiceError(c, err, "list nutrition entries")
		return
	}
	if entries == nil {
		entries = []domain.NutritionEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *NutritionHandler) GetNutrition(c *gin.Context) {
	h.withEntryID(c, func(actor domain.Actor, id primitive.ObjectID) {
		entry, err := h.nutritionService.Get(c.Request.Context(), actor, id)
		if err != nil {
			respondWithServiceError(c, err, "get nutrition entry")
			return
		}
		c.JSON(http.StatusOK, entry)
	})
}

func (h *NutritionHandler) UpdateNutrition(c *gin.Context) {
	var req NutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.withEntryID(c, func(actor domain.Actor, id primitive.ObjectID) {
		entry, err := h.nutritionService.Update(c.Request.Context(), actor, id, req.input())
		if err != nil {
			respondWithServiceError(c, err, "update nutrition entry")
			return
		}
		c.JSON(http.StatusOK, entry)
	})
}

func (h *NutritionHandler) DeleteNutrition(c *gin.Context) {
	h.withEntryID(c, func(actor domain.Actor, id primitive.ObjectID) {
		if err := h.nutritionService.Delete(c.Request.Context(), actor, id); err != nil {
			respondWithServiceError(c, err, "delete nutrition entry")
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (h *NutritionHandler) withEntryID(c *gin.Context, fn func(actor domain.Actor, id primitive.ObjectID)) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fn(actor, id)
}
