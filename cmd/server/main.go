// Package main is the entry point for the PrepDesk API server: session
// templates, the question catalog, CSV import, and the asset-backed thumbnails.
//
// @title PrepDesk API
// @version 1.0
// @description Interview session-template and question catalog service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"

	"prepdesk/config"
	"prepdesk/internal/adapters/assets"
	"prepdesk/internal/adapters/auth"
	"prepdesk/internal/database"
	httpdelivery "prepdesk/internal/delivery/http"
	"prepdesk/internal/delivery/http/controllers"
	"prepdesk/internal/delivery/http/middleware"
	"prepdesk/internal/repository/postgres"
	"prepdesk/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := database.Connect(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	topicRepo := postgres.NewTopicRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	questionRepo := postgres.NewQuestionRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	assetStore, err := assets.NewStore(cfg.Assets)
	if err != nil {
		logger.Error("failed to init asset store", "err", err)
		os.Exit(1)
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	sessionService := services.NewSessionService(sessionRepo, topicRepo, tagRepo, questionRepo, assetStore, serviceTimeout)
	catalogService := services.NewCatalogService(questionRepo, tagRepo, topicRepo, serviceTimeout)
	importer := services.NewQuestionImporter(questionRepo, tagRepo, sessionRepo, logger, serviceTimeout)

	sessionController := controllers.NewSessionController(logger, sessionService)
	questionController := controllers.NewQuestionController(logger, catalogService, importer)
	tagController := controllers.NewTagController(logger, catalogService)
	topicController := controllers.NewTopicController(logger, catalogService)

	mux := httpdelivery.NewRouter(logger, verifier, sessionController, questionController, tagController, topicController)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(middleware.LoggingMiddleware(logger, mux))

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
