package api

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Trainer      service.TrainerService
	Workout      service.WorkoutService
	Program      service.ProgramService
	Finance      service.FinanceService
	Notification service.NotificationService
	Exercise     service.ExerciseService
	Calendar     service.CalendarService
	Metrics      service.MetricsService
	Nutrition    service.NutritionService
	Notes        service.NoteService
}

// RouteOptions configures the cross-cutting middleware.
type RouteOptions struct {
	JWTSecret     string
	AuthRateLimit float64 // Requests per second per IP; zero disables
	AuthBurst     int
}

func SetupRoutes(router *gin.Engine, opts RouteOptions, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	trainerHandler := NewTrainerHandler(svc.Trainer)
	workoutHandler := NewWorkoutHandler(svc.Workout, svc.Calendar)
	programHandler := NewProgramHandler(svc.Program)
	paymentHandler := NewPaymentHandler(svc.Finance)
	notificationHandler := NewNotificationHandler(svc.Notification)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	metricsHandler := NewMetricsHandler(svc.Metrics)
	nutritionHandler := NewNutritionHandler(svc.Nutrition)
	noteHandler := NewNoteHandler(svc.Notes)

	router.Use(RequestIDMiddleware(), MetricsMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	if opts.AuthRateLimit > 0 {
		authGroup.Use(RateLimitMiddleware(opts.AuthRateLimit, opts.AuthBurst))
	}
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(opts.JWTSecret), ActorMiddleware(svc.Auth))
	{
		protected.GET("/me", authHandler.Me)

		// --- Trainer roster ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerApiGroup.GET("/clients/:clientId", trainerHandler.GetManagedClient)
		}

		// --- Calendar ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/export", workoutHandler.ExportWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		}

		// --- Programs ---
		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", programHandler.CreateProgram)
			programGroup.GET("", programHandler.ListPrograms)
			programGroup.GET("/:id", programHandler.GetProgram)
			programGroup.PUT("/:id", programHandler.UpdateProgram)
			programGroup.DELETE("/:id", programHandler.DeleteProgram)

			programGroup.POST("/:id/days", programHandler.CreateDay)
			programGroup.GET("/:id/days", programHandler.ListDays)
			programGroup.GET("/:id/days/:dayId", programHandler.GetDay)
			programGroup.PUT("/:id/days/:dayId", programHandler.UpdateDay)
			programGroup.DELETE("/:id/days/:dayId", programHandler.DeleteDay)

			exercises := "/:id/days/:dayId/blocks/:blockId/exercises"
			programGroup.POST(exercises, programHandler.AddExercise)
			programGroup.PUT(exercises+"/:exerciseId", programHandler.UpdateExercise)
			programGroup.DELETE(exercises+"/:exerciseId", programHandler.DeleteExercise)
		}

		// --- Finance ---
		paymentGroup := protected.Group("/payments")
		paymentGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			paymentGroup.POST("", paymentHandler.CreatePayment)
			paymentGroup.GET("", paymentHandler.ListPayments)
			paymentGroup.GET("/stats", paymentHandler.Stats)
			paymentGroup.DELETE("/:id", paymentHandler.DeletePayment)
		}

		// --- Notifications ---
		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.ListNotifications)
			notificationGroup.PUT("/:id/read", notificationHandler.MarkRead)
			notificationGroup.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		// --- Exercise library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
		}

		// --- Progress tracking ---
		metricsGroup := protected.Group("/metrics")
		{
			metricsGroup.POST("/body", metricsHandler.CreateBodyMetric)
			metricsGroup.GET("/body", metricsHandler.ListBodyMetrics)
			metricsGroup.PATCH("/body/:id/target", metricsHandler.SetBodyMetricTarget)
			metricsGroup.GET("/body/target-history", metricsHandler.BodyTargetHistory)
			metricsGroup.POST("/body/entries", metricsHandler.AddBodyEntry)
			metricsGroup.GET("/body/entries", metricsHandler.ListBodyEntries)

			metricsGroup.POST("/exercise", metricsHandler.CreateExerciseMetric)
			metricsGroup.GET("/exercise", metricsHandler.ListExerciseMetrics)
			metricsGroup.POST("/exercise/entries", metricsHandler.AddExerciseEntry)
			metricsGroup.GET("/exercise/entries", metricsHandler.ListExerciseEntries)
		}

		nutritionGroup := protected.Group("/nutrition")
		{
			nutritionGroup.POST("", nutritionHandler.LogNutrition)
			nutritionGroup.GET("", nutritionHandler.ListNutrition)
			nutritionGroup.GET("/:id", nutritionHandler.GetNutrition)
			nutritionGroup.PUT("/:id", nutritionHandler.UpdateNutrition)
			nutritionGroup.DELETE("/:id", nutritionHandler.DeleteNutrition)
		}

		// --- Trainer notes ---
		noteGroup := protected.Group("/notes")
		{
			noteGroup.POST("", RoleMiddleware(domain.RoleTrainer), noteHandler.CreateNote)
			noteGroup.GET("", noteHandler.ListNotes)
			noteGroup.GET("/:id", noteHandler.GetNote)
			noteGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), noteHandler.UpdateNote)
			noteGroup.PATCH("/:id", RoleMiddleware(domain.RoleTrainer), noteHandler.UpdateNote)
			noteGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), noteHandler.DeleteNote)
		}
	}
}
