package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"country-insights/handlers"
	"country-insights/models"
	"country-insights/services"
	"country-insights/system"
)

func main() {
	// 0. Environment & Logger
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := system.InitLogger(envOr("LOG_DIR", "./logs")); err != nil {
		log.Printf("Warning: Could not initialize file logger: %v", err)
	}
	defer system.Close()

	system.Info("Country Insights backend starting...")

	// 1. Setup Database
	dbPath := envOr("DB_PATH", "countries.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		system.Error("Failed to connect to database: %v", err)
		log.Fatal("Failed to connect to database:", err)
	}
	system.Info("Database connected: %s", dbPath)

	// Enable WAL mode so reads during a refresh don't hit lock errors
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		system.Warn("Failed to enable WAL mode: %v", err)
	} else {
		system.Info("SQLite WAL mode enabled")
	}

	// Migrate
	if err := db.AutoMigrate(&models.Country{}, &models.Metadata{}); err != nil {
		system.Error("Database migration failed: %v", err)
		log.Fatalf("CRITICAL: Database migration failed. Application cannot start: %v", err)
	}
	system.Info("Database migration completed successfully")

	// 2. Setup Services
	store := services.NewCountryStore(db)
	client := services.NewCountryClient()
	renderer := services.NewSummaryRenderer(envOr("CACHE_DIR", "./cache"))
	summary := services.NewSummaryService(store, renderer)
	refresh := services.NewRefreshService(store, client, summary)

	// 3. Setup Handlers
	h := handlers.NewHandler(store, refresh, renderer.ImagePath())

	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
	})

	// Add request logging middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stdout,
	}))

	app.Use(cors.New())

	app.Get("/", h.Root)
	app.Get("/status", h.GetStatus)

	app.Post("/countries/refresh", h.RefreshCountries)
	app.Get("/countries", h.GetCountries)
	// Registered before :name so "image" never resolves as a country
	app.Get("/countries/image", h.GetSummaryImage)
	app.Get("/countries/:name", h.GetCountry)
	app.Delete("/countries/:name", h.DeleteCountry)

	// Graceful Shutdown Handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c // Wait for signal
		system.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	port := envOr("PORT", "3000")
	system.Info("Server starting on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
