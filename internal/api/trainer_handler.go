package api

import (
	"alcyxob/coach-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse
// @Failure 400,401,403,404,409,500 {object} gin.H
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), actor, req.ClientEmail)
	if err != nil {
		respondWithServiceError(c, err, "add client")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get the trainer's managed clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err, "retrieve managed clients")
		return
	}

	resp := make([]UserResponse, len(clients))
	for i := range clients {
		resp[i] = MapUserToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetManagedClient returns one linked client with their balances.
func (h *TrainerHandler) GetManagedClient(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	clientID, ok := idParam(c, "clientId")
	if !ok {
		return
	}

	client, err := h.trainerService.GetManagedClient(c.Request.Context(), actor, clientID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve client")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}
