package main

import (
	"alcyxob/coach-app/internal/api"
	"alcyxob/coach-app/internal/config"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/repository/memory"
	"alcyxob/coach-app/internal/repository/mongo"
	"alcyxob/coach-app/internal/schedule"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// repositories is the storage backend selected by database.driver.
type repositories struct {
	tx            repository.Transactor
	users         repository.UserRepository
	workouts      repository.WorkoutRepository
	programs      repository.ProgramRepository
	programDays   repository.ProgramDayRepository
	payments      repository.PaymentRepository
	notifications repository.NotificationRepository
	exercises     repository.ExerciseRepository
	bodyMetrics   repository.BodyMetricRepository
	exMetrics     repository.ExerciseMetricRepository
	nutrition     repository.NutritionRepository
	notes         repository.NoteRepository
	close         func()
}

// @title Coach API
// @version 1.0
// @description Scheduling, programs and payments for trainers and their clients.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Starting Coach App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (database driver: %s).", cfg.Database.Driver)

	// --- Storage backends ---
	repos, err := openRepositories(cfg.Database)
	if err != nil {
		log.Fatalf("FATAL: Could not open %s database: %v", cfg.Database.Driver, err)
	}
	defer repos.close()

	fileStorage, err := openFileStorage(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize file storage: %v", err)
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	expander := schedule.Expander{
		DefaultOccurrences: cfg.Schedule.DefaultOccurrences,
		MaxOccurrences:     cfg.Schedule.MaxOccurrences,
	}
	authService := service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	financeService := service.NewFinanceService(repos.tx, repos.users, repos.payments)
	notificationService := service.NewNotificationService(repos.notifications)
	workoutService := service.NewWorkoutService(repos.tx, repos.users, repos.workouts, repos.programs, repos.programDays,
		financeService, notificationService, expander)

	services := api.Services{
		Auth:         authService,
		Trainer:      service.NewTrainerService(repos.users),
		Workout:      workoutService,
		Program:      service.NewProgramService(repos.tx, repos.users, repos.programs, repos.programDays, repos.workouts),
		Finance:      financeService,
		Notification: notificationService,
		Exercise:     service.NewExerciseService(repos.exercises, repos.users),
		Calendar:     service.NewCalendarService(workoutService, fileStorage, cfg.S3.ExportURLExpiry),
		Metrics:      service.NewMetricsService(repos.users, repos.bodyMetrics, repos.exMetrics),
		Nutrition:    service.NewNutritionService(repos.tx, repos.users, repos.nutrition),
		Notes:        service.NewNoteService(repos.users, repos.notes, notificationService),
	}

	// --- Initialize Gin Engine ---
	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("FATAL: Failed to register validators: %v", err)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLoggingMiddleware())

	api.SetupRoutes(router, api.RouteOptions{
		JWTSecret:     cfg.JWT.Secret,
		AuthRateLimit: cfg.Server.AuthRateLimit,
		AuthBurst:     cfg.Server.AuthBurst,
	}, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting.")
}

func openRepositories(cfg config.DatabaseConfig) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		log.Println("WARN: Using the in-memory store; data is lost on restart.")
		store := memory.NewStore()
		return &repositories{
			tx:            store,
			users:         store.Users(),
			workouts:      store.Workouts(),
			programs:      store.Programs(),
			programDays:   store.ProgramDays(),
			payments:      store.Payments(),
			notifications: store.Notifications(),
			exercises:     store.Exercises(),
			bodyMetrics:   store.BodyMetrics(),
			exMetrics:     store.ExerciseMetrics(),
			nutrition:     store.Nutrition(),
			notes:         store.Notes(),
			close:         func() {},
		}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	appDB := dbClient.Database(cfg.Name)
	log.Println("Database connection established.")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	if !cfg.Transactions {
		log.Println("WARN: MongoDB transactions disabled; multi-document writes are not atomic.")
	}
	return &repositories{
		tx:            mongo.NewTransactor(dbClient, cfg.Transactions),
		users:         mongo.NewMongoUserRepository(appDB),
		workouts:      mongo.NewMongoWorkoutRepository(appDB),
		programs:      mongo.NewMongoProgramRepository(appDB),
		programDays:   mongo.NewMongoProgramDayRepository(appDB),
		payments:      mongo.NewMongoPaymentRepository(appDB),
		notifications: mongo.NewMongoNotificationRepository(appDB),
		exercises:     mongo.NewMongoExerciseRepository(appDB),
		bodyMetrics:   mongo.NewMongoBodyMetricRepository(appDB),
		exMetrics:     mongo.NewMongoExerciseMetricRepository(appDB),
		nutrition:     mongo.NewMongoNutritionRepository(appDB),
		notes:         mongo.NewMongoNoteRepository(appDB),
		close: func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		},
	}, nil
}

// openFileStorage uses S3 when a bucket is configured and process memory otherwise.
func openFileStorage(cfg config.Config) (storage.FileStorage, error) {
	if cfg.S3.BucketName == "" {
		log.Println("WARN: s3.bucket_name not set; calendar exports are kept in memory.")
		return storage.NewMemoryStorage("http://localhost" + cfg.Server.Address + "/exports"), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return storage.NewS3Storage(ctx, cfg.S3)
}
