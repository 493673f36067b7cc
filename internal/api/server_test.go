package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alcyxob/coach-app/internal/repository/memory"
	"alcyxob/coach-app/internal/schedule"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	files  *storage.MemoryStorage
}

type account struct {
	ID    string
	Email string
	Token string
}

func newTestServer(t *testing.T, opts RouteOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	store := memory.NewStore()
	files := storage.NewMemoryStorage("http://files.test")
	finance := service.NewFinanceService(store, store.Users(), store.Payments())
	notifications := service.NewNotificationService(store.Notifications())
	workouts := service.NewWorkoutService(store, store.Users(), store.Workouts(), store.Programs(), store.ProgramDays(),
		finance, notifications, schedule.Expander{})

	opts.JWTSecret = testSecret
	router := gin.New()
	SetupRoutes(router, opts, Services{
		Auth:         service.NewAuthService(store.Users(), testSecret, time.Hour),
		Trainer:      service.NewTrainerService(store.Users()),
		Workout:      workouts,
		Program:      service.NewProgramService(store, store.Users(), store.Programs(), store.ProgramDays(), store.Workouts()),
		Finance:      finance,
		Notification: notifications,
		Exercise:     service.NewExerciseService(store.Exercises(), store.Users()),
		Calendar:     service.NewCalendarService(workouts, files, time.Minute),
		Metrics:      service.NewMetricsService(store.Users(), store.BodyMetrics(), store.ExerciseMetrics()),
		Nutrition:    service.NewNutritionService(store, store.Users(), store.Nutrition()),
		Notes:        service.NewNoteService(store.Users(), store.Notes(), notifications),
	})
	return &testServer{t: t, router: router, store: store, files: files}
}

// do sends body as JSON (unless nil) and returns the recorder.
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers and logs in a user through the API.
func (s *testServer) signUp(name, role string) account {
	s.t.Helper()
	email := strings.ToLower(name) + "@example.com"
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": name, "email": email, "password": "password123", "role": role})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	decode(s.t, w, &resp)
	return account{ID: resp.User.ID, Email: email, Token: resp.Token}
}

// link makes client a client of trainer.
func (s *testServer) link(trainer, client account) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/trainer/clients", trainer.Token, gin.H{"clientEmail": client.Email})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
