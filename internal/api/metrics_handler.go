package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricsHandler serves body and exercise progress tracking.
type MetricsHandler struct {
	metricsService service.MetricsService
}

func NewMetricsHandler(metricsService service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

type CreateBodyMetricRequest struct {
	Label  string   `json:"label" binding:"required,max=100"`
	Unit   string   `json:"unit" binding:"required,max=20"`
	Target *float64 `json:"target"`
}

type SetTargetRequest struct {
	Target domain.Field[*float64] `json:"target"`
}

type BodyEntryRequest struct {
	MetricID   primitive.ObjectID `json:"metricId" binding:"required"`
	Value      *float64           `json:"value" binding:"required"`
	RecordedAt *time.Time         `json:"recordedAt"`
}

type CreateExerciseMetricRequest struct {
	Label       string `json:"label" binding:"required,max=100"`
	MuscleGroup string `json:"muscleGroup" binding:"max=100"`
}

type ExerciseEntryRequest struct {
	MetricID    primitive.ObjectID `json:"metricId" binding:"required"`
	Date        *time.Time         `json:"date"`
	Weight      *float64           `json:"weight" binding:"omitempty,gte=0"`
	Repetitions *int               `json:"repetitions" binding:"omitempty,gte=0"`
	Sets        *int               `json:"sets" binding:"omitempty,gte=0"`
}

// trackingFilter reads the shared listing query: whose data, which metric, and a date range.
func trackingFilter(c *gin.Context, metricKeys ...string) (service.TrackingFilter, bool) {
	var f service.TrackingFilter
	var ok bool
	if f.UserID, ok = optionalIDQuery(c, "userId", "user_id"); !ok {
		return f, false
	}
	if len(metricKeys) > 0 {
		if f.MetricID, ok = optionalIDQuery(c, metricKeys...); !ok {
			return f, false
		}
	}
	if f.From, ok = timeQuery(c, "from", "start_date"); !ok {
		return f, false
	}
	if f.To, ok = timeQuery(c, "to", "end_date"); !ok {
		return f, false
	}
	return f, true
}

// CreateBodyMetric godoc
// @Summary Start tracking a body measurement
// @Tags Metrics
// @Security BearerAuth
// @Success 201 {object} domain.BodyMetric
// @Router /metrics/body [post]
func (h *MetricsHandler) CreateBodyMetric(c *gin.Context) {
	var req CreateBodyMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	metric, err := h.metricsService.CreateBodyMetric(c.Request.Context(), actor, service.CreateBodyMetricInput{
		Label: req.Label, Unit: req.Unit, Target: req.Target,
	})
	if err != nil {
		respondWithServiceError(c, err, "create body metric")
		return
	}
	c.JSON(http.StatusCreated, metric)
}

// ListBodyMetrics godoc
// @Summary The caller's body metrics, or a linked client's with userId
// @Tags Metrics
// @Param userId query string false "Client ID (trainers only)"
// @Success 200 {array} domain.BodyMetric
// @Router /metrics/body [get]
func (h *MetricsHandler) ListBodyMetrics(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := optionalIDQuery(c, "userId", "user_id")
	if !ok {
		return
	}
	list, err := h.metricsService.ListBodyMetrics(c.Request.Context(), actor, userID)
	if err != nil {
		respondWithServiceError(c, err, "list body metrics")
		return
	}
	if list == nil {
		list = []domain.BodyMetric{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *MetricsHandler) SetBodyMetricTarget(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req SetTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Target.Set {
		abortWithError(c, http.StatusBadRequest, "target is required (use null to clear it)")
		return
	}
	metric, err := h.metricsService.SetBodyMetricTarget(c.Request.Context(), actor, id, req.Target.Value)
	if err != nil {
		respondWithServiceError(c, err, "update body metric target")
		return
	}
	c.JSON(http.StatusOK, metric)
}

func (h *MetricsHandler) BodyTargetHistory(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	f, ok := trackingFilter(c, "metricId", "metric_id")
	if !ok {
		return
	}
	history, err := h.metricsService.BodyTargetHistory(c.Request.Context(), actor, f.MetricID, f.UserID)
	if err != nil {
		respondWithServiceError(c, err, "load target history")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *MetricsHandler) AddBodyEntry(c *gin.Context) {
	var req BodyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	in := service.BodyEntryInput{MetricID: req.MetricID, Value: *req.Value}
	if req.RecordedAt != nil {
		in.RecordedAt = *req.RecordedAt
	}
	entry, err := h.metricsService.AddBodyEntry(c.Request.Context(), actor, in)
	if err != nil {
		respondWithServiceError(c, err, "record body metric")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListBodyEntries godoc
// @Summary Body metric entries, newest first
// @Tags Metrics
// @Param userId query string false "Client ID (trainers only)"
// @Param metricId query string false "Only this metric"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Success 200 {array} domain.BodyMetricEntry
// @Router /metrics/body/entries [get]
func (h *MetricsHandler) ListBodyEntries(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	f, ok := trackingFilter(c, "metricId", "metric_id")
	if !ok {
		return
	}
	entries, err := h.metricsService.ListBodyEntries(c.Request.Context(), actor, f)
	if err != nil {
		respondWithServiceError(c, err, "list body metric entries")
		return
	}
	if entries == nil {
		entries = []domain.BodyMetricEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *MetricsHandler) CreateExerciseMetric(c *gin.Context) {
	var req CreateExerciseMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	metric, err := h.metricsService.CreateExerciseMetric(c.Request.Context(), actor, service.CreateExerciseMetricInput{
		Label: req.Label, MuscleGroup: req.MuscleGroup,
	})
	if err != nil {
		respondWithServiceError(c, err, "create exercise metric")
		return
	}
	c.JSON(http.StatusCreated, metric)
}

func (h *MetricsHandler) ListExerciseMetrics(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := optionalIDQuery(c, "userId", "user_id")
	if !ok {
		return
	}
	list, err := h.metricsService.ListExerciseMetrics(c.Request.Context(), actor, userID)
	if err != nil {
		respondWithServiceError(c, err, "list exercise metrics")
		return
	}
	if list == nil {
		list = []domain.ExerciseMetric{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *MetricsHandler) AddExerciseEntry(c *gin.Context) {
	var req ExerciseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	in := service.ExerciseEntryInput{MetricID: req.MetricID, Weight: req.Weight, Repetitions: req.Repetitions, Sets: req.Sets}
	if req.Date != nil {
		in.Date = *req.Date
	}
	entry, err := h.metricsService.AddExerciseEntry(c.Request.Context(), actor, in)
	if err != nil {
		respondWithServiceError(c, err, "record exercise metric")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *MetricsHandler) ListExerciseEntries(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	f, ok := trackingFilter(c, "metricId", "exercise_metric_id")
	if !ok {
		return
	}
	entries, err := h.metricsService.ListExerciseEntries(c.Request.Context(), actor, f)
	if err != nil {
		respondWithServiceError(c, err, "list exercise metric entries")
		return
	}
	if entries == nil {
		entries = []domain.ExerciseMetricEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
