package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/accoumar12/dashboard/internal/config"
	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/handlers"
	"github.com/accoumar12/dashboard/internal/routes"
	"github.com/accoumar12/dashboard/internal/services"
)

// PrimaryDatasetID identifies the dataset backed by the configured
// Postgres database, as opposed to uploaded sessions.
const PrimaryDatasetID = "primary"

// NewServer wires all services and returns the HTTP server together
// with a shutdown function that releases connections and background
// workers. Call the shutdown function after the server has stopped.
func NewServer() (*http.Server, func()) {
	settings := config.Load()

	if !settings.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	schemaService := services.NewSchemaService()
	datasetService := services.NewDatasetService(schemaService)
	sessionService := services.NewSessionService(settings, datasetService)
	uploadService := services.NewUploadService(settings, sessionService)
	queryService := services.NewQueryService(datasetService, settings)

	pgDB := bootstrapDataset(settings, datasetService, sessionService)

	sessionService.StartCleanup()

	statusHandler := handlers.NewStatusHandler(datasetService)
	schemaHandler := handlers.NewSchemaHandler(datasetService)
	queryHandler := handlers.NewQueryHandler(queryService)
	sessionHandler := handlers.NewSessionHandler(sessionService, uploadService)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     settings.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, datasetService, statusHandler, schemaHandler, queryHandler, sessionHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdown := func() {
		sessionService.StopCleanup()
		sessionService.Shutdown()
		if pgDB != nil {
			if err := pgDB.Close(); err != nil {
				log.Printf("warning: closing postgres connection: %v", err)
			}
		}
	}

	return server, shutdown
}

// bootstrapDataset activates an initial dataset: the configured Postgres
// database when available, otherwise the bundled playground file. The
// server still starts without either; session and status endpoints keep
// working and an upload can activate a dataset later.
func bootstrapDataset(settings *config.Settings, datasets *services.DatasetService, sessions *services.SessionService) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if settings.DatabaseURL != "" {
		db, err := database.OpenPostgres(settings.DatabaseURL)
		if err != nil {
			log.Printf("warning: failed to connect to database: %v", err)
		} else if _, err := datasets.Activate(ctx, PrimaryDatasetID, db, database.DialectPostgres); err != nil {
			log.Printf("warning: failed to analyze database schema: %v", err)
			db.Close()
		} else {
			log.Println("Connected to database and activated primary dataset")
			return db
		}
	}

	if settings.UsePlayground {
		if err := sessions.InitPlayground(); err != nil {
			log.Printf("warning: failed to open playground database: %v", err)
		} else if _, err := sessions.Activate(ctx, services.PlaygroundSessionID); err != nil {
			log.Printf("warning: failed to activate playground dataset: %v", err)
		} else {
			log.Println("Activated playground dataset")
			return nil
		}
	}

	log.Println("No dataset active; waiting for an upload")
	return nil
}
