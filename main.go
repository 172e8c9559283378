package main

import (
	"log"
	"os"
	"strings"
	"time"

	"tripscout/config"
	"tripscout/database"
	"tripscout/handlers"
	"tripscout/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	database.InitDB(cfg.DatabaseURL)

	// Flight providers: each is enabled only when its credentials are present.
	// One missing credential degrades to single-provider mode; both missing is
	// a configuration error caught here, before any network call.
	var providers []services.OfferProvider
	var hotelSrc services.HotelSource

	if cfg.SerpAPIEnabled() {
		providers = append(providers, services.NewSerpAPI(cfg.SerpAPIKey, cfg.SerpAPIURL))
		log.Println("✅ SerpAPI flight provider enabled")
	} else {
		log.Println("⚠️  SERPAPI_KEY not set — SerpAPI provider disabled")
	}
	if cfg.AmadeusEnabled() {
		amadeus := services.NewAmadeus(cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.AmadeusURL)
		providers = append(providers, amadeus)
		hotelSrc = amadeus
		log.Println("✅ Amadeus flight provider enabled")
	} else {
		log.Println("⚠️  AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set — Amadeus provider disabled")
	}
	if len(providers) == 0 {
		log.Fatal("❌ No flight provider credentials configured — set SERPAPI_KEY and/or AMADEUS_CLIENT_ID + AMADEUS_CLIENT_SECRET")
	}

	planner := services.NewPlanner(providers, cfg.ProviderTimeout)

	// Synthesizer: missing key degrades to fallback itinerary text.
	synth := services.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiURL)
	if cfg.SynthesisEnabled() {
		log.Printf("✅ Gemini synthesizer enabled (model %s)", cfg.GeminiModel)
	} else {
		log.Println("⚠️  GOOGLE_API_KEY not set — itineraries will use fallback text")
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS — allow configured frontend origins
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if cfg.FrontendURL != "" {
		for _, u := range strings.Split(cfg.FrontendURL, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Routes
	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthHandler)
		api.POST("/plan", handlers.PlanHandler(planner, synth, hotelSrc))
		api.POST("/export", handlers.ExportHandler())
		api.GET("/download/:id", handlers.DownloadHandler())
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 TripScout backend starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
