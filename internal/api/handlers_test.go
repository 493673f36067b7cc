package api

import (
	"net/http"
	"testing"
	"time"

	"alcyxob/coach-app/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")

	w := s.do(http.MethodGet, "/api/v1/me", anna.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	decode(t, w, &me)
	assert.Equal(t, anna.ID, me.ID)
	assert.Equal(t, domain.RoleClient, me.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Anna", "email": anna.Email, "password": "password123", "role": "client"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "X", "email": "x@example.com", "password": "short", "role": "client"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": anna.Email, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/me", "not-a-token", nil).Code)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/payments", anna.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/trainer/clients", anna.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/exercises", anna.Token, gin.H{"name": "Squat"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/exercises", anna.Token, nil).Code)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, RouteOptions{AuthRateLimit: 0.001, AuthBurst: 2})
	body := gin.H{"email": "nobody@example.com", "password": "x"}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ping", "", nil).Code)
}

func TestWorkoutEndpoints(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	coach := s.signUp("Coach", "trainer")
	anna := s.signUp("Anna", "client")
	s.link(coach, anna)

	w := s.do(http.MethodPost, "/api/v1/workouts", coach.Token, gin.H{
		"title":    "Strength",
		"start":    "2024-01-01T10:00:00Z",
		"end":      "2024-01-01T11:00:00Z",
		"clientId": anna.ID,
		"recurrence": gin.H{
			"frequency":   "weekly",
			"daysOfWeek":  []int{1, 5},
			"occurrences": 4,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []WorkoutResponse
	decode(t, w, &created)
	require.Len(t, created, 4)
	assert.Equal(t, anna.ID, created[0].UserID)
	require.NotNil(t, created[3].RecurrenceSeriesID)
	assert.Equal(t, created[0].ID, *created[3].RecurrenceSeriesID)
	assert.Equal(t, "2024-01-12T10:00:00Z", created[3].Start.Format("2006-01-02T15:04:05Z07:00"))

	var listed []WorkoutResponse
	w = s.do(http.MethodGet, "/api/v1/workouts?client_id="+anna.ID+"&start_date=2024-01-06&end_date=2024-01-31", coach.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &listed)
	assert.Len(t, listed, 2)

	w = s.do(http.MethodGet, "/api/v1/workouts?trainerView=true", coach.Token, nil)
	decode(t, w, &listed)
	assert.Len(t, listed, 4)

	w = s.do(http.MethodGet, "/api/v1/workouts?from=yesterday", coach.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/workouts/"+created[0].ID, anna.Token, gin.H{"attendance": "completed", "coachNote": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated WorkoutResponse
	decode(t, w, &updated)
	assert.Equal(t, domain.AttendanceCompleted, updated.Attendance)
	assert.Equal(t, "Strength", updated.Title)

	for _, body := range []gin.H{{"start": nil}, {"end": nil}} {
		w = s.do(http.MethodPatch, "/api/v1/workouts/"+created[0].ID, anna.Token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/api/v1/workouts/"+created[0].ID, anna.Token, nil)
	decode(t, w, &updated)
	assert.Equal(t, "2024-01-01T10:00:00Z", updated.Start.Format(time.RFC3339))

	w = s.do(http.MethodDelete, "/api/v1/workouts/"+created[1].ID+"?deleteSeries=true", anna.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var deleted struct{ Deleted int }
	decode(t, w, &deleted)
	assert.Equal(t, 4, deleted.Deleted)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/workouts/"+created[0].ID, anna.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/workouts/not-an-id", anna.Token, nil).Code)
}

func TestCreateWorkoutRejectsBadRecurrence(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")
	base := func(rec gin.H) gin.H {
		return gin.H{"title": "Run", "start": "2024-01-01T10:00:00Z", "end": "2024-01-01T11:00:00Z", "recurrence": rec}
	}

	cases := map[string]gin.H{
		"weekday out of range": {"frequency": "weekly", "daysOfWeek": []int{1, 8}},
		"unknown frequency":    {"frequency": "yearly"},
		"bad until":            {"frequency": "daily", "until": "soon"},
		"zero occurrences":     {"frequency": "daily", "occurrences": 0},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, base(rec))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, base(gin.H{"frequency": "weekly", "daysOfWeek": []int{0, 7}, "until": "2024-01-31"}))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRecurrenceUntilDateIsInclusive(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")
	create := func(rec gin.H) []WorkoutResponse {
		t.Helper()
		w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, gin.H{
			"title": "Run", "start": "2024-01-01T09:00:00Z", "end": "2024-01-01T10:00:00Z", "recurrence": rec,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created []WorkoutResponse
		decode(t, w, &created)
		return created
	}

	created := create(gin.H{"frequency": "weekly", "daysOfWeek": []int{1, 5}, "until": "2024-01-12"})
	require.Len(t, created, 4)
	assert.Equal(t, "2024-01-12T09:00:00Z", created[3].Start.Format(time.RFC3339))

	for _, until := range []string{"2024-01-01", "2023-12-01", "2024-01-01T09:30:00Z"} {
		created = create(gin.H{"frequency": "daily", "until": until})
		require.Len(t, created, 1, until)
		assert.Equal(t, "2024-01-01T09:00:00Z", created[0].Start.Format(time.RFC3339))
	}
}

func TestWorkoutWithUnknownProgramDay(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")
	w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, gin.H{
		"title": "Run", "start": "2024-01-01T10:00:00Z", "end": "2024-01-01T11:00:00Z",
		"programDayId": "65a000000000000000000000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkoutExport(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	anna := s.signUp("Anna", "client")
	w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, gin.H{"title": "Run", "start": "2024-01-01T10:00:00Z", "end": "2024-01-01T11:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/workouts/export", anna.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var export struct {
		URL   string `json:"url"`
		Count int    `json:"count"`
	}
	decode(t, w, &export)
	assert.Equal(t, 1, export.Count)
	assert.Contains(t, export.URL, "http://files.test/")
}

func TestProgramDayLegacyUnits(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	coach := s.signUp("Coach", "trainer")
	anna := s.signUp("Anna", "client")
	s.link(coach, anna)

	w := s.do(http.MethodPost, "/api/v1/programs", coach.Token, gin.H{"title": "Plan", "userId": anna.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var program ProgramResponse
	decode(t, w, &program)
	assert.Equal(t, domain.OwnerTrainer, program.Owner)

	w = s.do(http.MethodPost, "/api/v1/programs/"+program.ID+"/days", coach.Token, gin.H{
		"name": "Upper",
		"blocks": []gin.H{{
			"type": "main",
			"exercises": []gin.H{
				{"title": "Bench", "sets": 3, "reps": 8, "weight": "72,5 кг", "rest": "90 сек"},
				{"title": "Bike", "duration": "10мин", "weight": "heavy"},
			},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var day DayResponse
	decode(t, w, &day)
	require.Len(t, day.Blocks, 1)
	bench, bike := day.Blocks[0].Exercises[0], day.Blocks[0].Exercises[1]
	assert.Equal(t, "72.5 кг", *bench.Weight)
	assert.Equal(t, "90 сек", *bench.Rest)
	assert.Equal(t, "10 мин", *bike.Duration)
	assert.Nil(t, bike.Weight)

	path := "/api/v1/programs/" + program.ID + "/days/" + day.ID + "/blocks/" + day.Blocks[0].ID + "/exercises"
	w = s.do(http.MethodPost, path, anna.Token, gin.H{"title": "Dips", "rest": 60})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item ExerciseItemResponse
	decode(t, w, &item)
	assert.Equal(t, 2, item.Order)
	assert.Equal(t, 60, *item.Rest)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path+"/"+bench.ID, anna.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/programs/"+program.ID, anna.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path+"/"+bench.ID, coach.Token, nil).Code)
}

func TestPaymentEndpoints(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	coach := s.signUp("Coach", "trainer")
	anna := s.signUp("Anna", "client")
	s.link(coach, anna)

	w := s.do(http.MethodPost, "/api/v1/payments", coach.Token, gin.H{"clientId": anna.ID, "amount": 500, "type": "package", "packageSize": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var payment domain.Payment
	decode(t, w, &payment)
	assert.Equal(t, 10, *payment.RemainingSessions)

	w = s.do(http.MethodPost, "/api/v1/payments", coach.Token, gin.H{"clientId": anna.ID, "amount": 500, "type": "barter"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me", anna.Token, nil)
	var me UserResponse
	decode(t, w, &me)
	require.NotNil(t, me.WorkoutsPackage)
	assert.Equal(t, 10, *me.WorkoutsPackage)

	w = s.do(http.MethodGet, "/api/v1/payments/stats", coach.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.PaymentStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.TotalPayments)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/payments/"+payment.ID.Hex(), coach.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/payments/"+payment.ID.Hex(), coach.Token, nil).Code)
}

func TestRescheduleNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	coach := s.signUp("Coach", "trainer")
	anna := s.signUp("Anna", "client")
	s.link(coach, anna)

	w := s.do(http.MethodPost, "/api/v1/workouts", anna.Token, gin.H{
		"title": "PT", "start": "2024-01-01T10:00:00Z", "end": "2024-01-01T11:00:00Z", "trainerId": coach.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []WorkoutResponse
	decode(t, w, &created)

	w = s.do(http.MethodPut, "/api/v1/workouts/"+created[0].ID, anna.Token, gin.H{"start": "2024-01-02T10:00:00Z", "end": "2024-01-02T11:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/notifications?unread=true", coach.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var feed []domain.Notification
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, domain.NotificationWorkoutRescheduled, feed[0].Type)

	id := feed[0].ID.Hex()
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/v1/notifications/"+id+"/read", anna.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/api/v1/notifications/"+id+"/read", coach.Token, nil).Code)

	w = s.do(http.MethodGet, "/api/v1/notifications?unread=true", coach.Token, nil)
	decode(t, w, &feed)
	assert.Empty(t, feed)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/notifications/"+id, coach.Token, nil).Code)
}
