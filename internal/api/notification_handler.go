package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary The caller's notification feed, newest first
// @Tags Notifications
// @Param unread query bool false "Only unread"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size (default 50)"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	skip, ok := intQuery(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}

	list, err := h.notificationService.List(c.Request.Context(), actor, repository.NotificationFilter{
		OnlyUnread: boolQuery(c, "unread", "unread_only"),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondWithServiceError(c, err, "list notifications")
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.byID(c, h.notificationService.MarkRead, "mark notification read")
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	h.byID(c, h.notificationService.Delete, "delete notification")
}

func (h *NotificationHandler) byID(c *gin.Context, fn func(context.Context, domain.Actor, primitive.ObjectID) error, action string) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), actor, id); err != nil {
		respondWithServiceError(c, err, action)
		return
	}
	c.Status(http.StatusNoContent)
}
