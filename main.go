package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grievance-processor/config"
	"grievance-processor/database"
	"grievance-processor/detector"
	"grievance-processor/handlers"
	"grievance-processor/metrics"
	"grievance-processor/middleware"
	"grievance-processor/rabbitmq"
	"grievance-processor/services"
	"grievance-processor/translator"
	"grievance-processor/triage"
	"grievance-processor/version"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	metrics.Register()

	// Create database connection
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to create database connection: %v", err)
	}
	defer db.Close()

	// Ensure complaints table exists
	if err := db.EnsureComplaintsTable(context.Background()); err != nil {
		log.Fatalf("Failed to ensure complaints table: %v", err)
	}

	// Initialize RabbitMQ publisher for verified-complaint events
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		rabbitmqPublisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			log.Warnf("Failed to initialize RabbitMQ publisher: %v", err)
			log.Warn("Complaint events will be unavailable. Continuing without RabbitMQ...")
		} else {
			publisher = rabbitmqPublisher
			defer rabbitmqPublisher.Close()
			log.Infof("RabbitMQ publisher initialized: exchange=%s, routing_key=%s", cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		}
	}

	// Wire the intake pipeline
	detectorClient := detector.NewClient(cfg.DetectorBaseURL, cfg.DetectorAPIKey,
		cfg.DetectorModelID, cfg.DetectorModelVersion, cfg.DetectorMinConfidence, cfg.DetectorTimeout)
	translatorClient := translator.NewClient(cfg.TranslateURL, cfg.TranslateTarget, cfg.TranslateTimeout)
	engine := triage.NewEngine(triage.DefaultConfig())
	intake := services.NewIntakeService(db, detectorClient, translatorClient, engine, publisher, cfg.UploadDir)

	// Create handlers
	h := handlers.NewHandlers(intake, db)

	// Setup HTTP server
	router := setupRouter(h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func setupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())

	// API routes
	api := router.Group("/api/v3")
	{
		api.POST("/complaints/submit", h.SubmitComplaint)
		api.GET("/complaints/:id", h.GetComplaint)
		api.GET("/complaints", h.ListComplaints)
	}

	// Root health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "grievance-processor",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("grievance-processor"))
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
