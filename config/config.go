package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds every credential and knob the service needs. Constructed once
// at startup and passed to whichever component needs it; nothing reads the
// environment after Load returns.
type Config struct {
	Port        string
	FrontendURL string

	SerpAPIKey string
	SerpAPIURL string

	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusURL          string

	GeminiAPIKey string
	GeminiModel  string
	GeminiURL    string

	ProviderTimeout time.Duration

	DatabaseURL string
}

// Load reads an optional config file (TRIPSCOUT_CONFIG or conventional
// locations) layered under environment variables.
func Load() *Config {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("provider_timeout", "10s")
	v.SetDefault("serpapi_url", "https://serpapi.com")
	v.SetDefault("amadeus_url", "https://test.api.amadeus.com")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("gemini_url", "https://generativelanguage.googleapis.com")

	if path := os.Getenv("TRIPSCOUT_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tripscout")
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("provider_timeout"))
	if err != nil {
		log.Fatalf("❌ bad provider_timeout: %v", err)
	}

	// Amadeus production needs an explicit opt-in, like the sandbox default
	// of the Amadeus SDKs.
	amadeusURL := v.GetString("amadeus_url")
	if v.GetString("amadeus_env") == "production" {
		amadeusURL = "https://api.amadeus.com"
	}

	return &Config{
		Port:                v.GetString("port"),
		FrontendURL:         v.GetString("frontend_url"),
		SerpAPIKey:          v.GetString("serpapi_key"),
		SerpAPIURL:          v.GetString("serpapi_url"),
		AmadeusClientID:     v.GetString("amadeus_client_id"),
		AmadeusClientSecret: v.GetString("amadeus_client_secret"),
		AmadeusURL:          amadeusURL,
		GeminiAPIKey:        v.GetString("google_api_key"),
		GeminiModel:         v.GetString("gemini_model"),
		GeminiURL:           v.GetString("gemini_url"),
		ProviderTimeout:     timeout,
		DatabaseURL:         v.GetString("database_url"),
	}
}

// SerpAPIEnabled reports whether the SerpAPI adapter has its credential.
func (c *Config) SerpAPIEnabled() bool { return c.SerpAPIKey != "" }

// AmadeusEnabled reports whether the Amadeus adapter has its credentials.
func (c *Config) AmadeusEnabled() bool {
	return c.AmadeusClientID != "" && c.AmadeusClientSecret != ""
}

// SynthesisEnabled reports whether the Gemini synthesizer has its credential.
func (c *Config) SynthesisEnabled() bool { return c.GeminiAPIKey != "" }
