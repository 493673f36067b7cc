package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	financeService service.FinanceService
}

func NewPaymentHandler(financeService service.FinanceService) *PaymentHandler {
	return &PaymentHandler{financeService: financeService}
}

type CreatePaymentRequest struct {
	ClientID         primitive.ObjectID `json:"clientId" binding:"required"`
	Amount           float64            `json:"amount" binding:"required,gt=0"`
	Date             *time.Time         `json:"date"`
	Type             domain.PaymentType `json:"type" binding:"required,oneof=single package subscription"`
	PackageSize      *int               `json:"packageSize" binding:"omitempty,min=1"`
	SubscriptionDays *int               `json:"subscriptionDays" binding:"omitempty,min=1"`
	Notes            string             `json:"notes"`
}

// CreatePayment godoc
// @Summary Record a payment from a linked client
// @Description A package tops up the client's session balance; a subscription extends its expiry.
// @Tags Finance
// @Security BearerAuth
// @Success 201 {object} domain.Payment
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	in := service.CreatePaymentInput{
		ClientID:         req.ClientID,
		Amount:           req.Amount,
		Type:             req.Type,
		PackageSize:      req.PackageSize,
		SubscriptionDays: req.SubscriptionDays,
		Notes:            req.Notes,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	payment, err := h.financeService.CreatePayment(c.Request.Context(), actor, in)
	if err != nil {
		respondWithServiceError(c, err, "record payment")
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var f service.PaymentListFilter
	if f.ClientID, ok = optionalIDQuery(c, "clientId", "client_id"); !ok {
		return
	}
	if f.From, ok = timeQuery(c, "from", "start_date"); !ok {
		return
	}
	if f.To, ok = timeQuery(c, "to", "end_date"); !ok {
		return
	}

	payments, err := h.financeService.ListPayments(c.Request.Context(), actor, f)
	if err != nil {
		respondWithServiceError(c, err, "list payments")
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Stats(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	stats, err := h.financeService.Stats(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err, "compute payment stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.financeService.DeletePayment(c.Request.Context(), actor, id); err != nil {
		respondWithServiceError(c, err, "delete payment")
		return
	}
	c.Status(http.StatusNoContent)
}
