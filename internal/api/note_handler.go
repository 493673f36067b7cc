package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NoteHandler struct {
	noteService service.NoteService
}

func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

type CreateNoteRequest struct {
	ClientID primitive.ObjectID `json:"clientId" binding:"required"`
	Title    string             `json:"title" binding:"required,max=200"`
	Content  string             `json:"content" binding:"max=10000"`
}

type UpdateNoteRequest struct {
	Title   domain.Field[string] `json:"title"`
	Content domain.Field[string] `json:"content"`
}

// CreateNote godoc
// @Summary Write a note about a linked client
// @Tags Notes
// @Security BearerAuth
// @Success 201 {object} domain.TrainerNote
// @Router /notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	note, err := h.noteService.Create(c.Request.Context(), actor, service.CreateNoteInput{
		ClientID: req.ClientID, Title: req.Title, Content: req.Content,
	})
	if err != nil {
		respondWithServiceError(c, err, "create note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes godoc
// @Summary A trainer's notes, or the notes about the calling client
// @Tags Notes
// @Param clientId query string false "Only notes about this client (trainers)"
// @Success 200 {array} domain.TrainerNote
// @Router /notes [get]
func (h *NoteHandler) ListNotes(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	clientID, ok := optionalIDQuery(c, "clientId", "client_id")
	if !ok {
		return
	}
	notes, err := h.noteService.List(c.Request.Context(), actor, clientID)
	if err != nil {
		respondWithServiceError(c, err, "list notes")
		return
	}
	if notes == nil {
		notes = []domain.TrainerNote{}
	}
	c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	note, err := h.noteService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithServiceError(c, err, "get note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	note, err := h.noteService.Update(c.Request.Context(), actor, id, service.NotePatch{Title: req.Title, Content: req.Content})
	if err != nil {
		respondWithServiceError(c, err, "update note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.noteService.Delete(c.Request.Context(), actor, id); err != nil {
		respondWithServiceError(c, err, "delete note")
		return
	}
	c.Status(http.StatusNoContent)
}
