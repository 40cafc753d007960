// Package config loads runtime settings from the environment. Every
// external integration is optional except the settings with explicit
// defaults: missing credentials disable the integration, they never
// stop the engine.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	FirebaseCredentials string
	NLPCredentials      string

	ORSAPIKey  string
	ORSBaseURL string

	MapsAPIKey       string
	NominatimBaseURL string
	NominatimEmail   string

	IPGeoAPIKey  string
	IPGeoBaseURL string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GeocodeTTL    time.Duration

	DriveStride int
	DrivePace   time.Duration

	StaticDataDir string
}

func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		NLPCredentials:      os.Getenv("NATURAL_LANGUAGE_CREDENTIALS"),

		ORSAPIKey:  os.Getenv("ORS_API_KEY"),
		ORSBaseURL: getEnv("ORS_BASE_URL", "https://api.openrouteservice.org/v2/directions/driving-car/geojson"),

		MapsAPIKey:       os.Getenv("MAPS_API_KEY"),
		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org/search"),
		NominatimEmail:   os.Getenv("NOMINATIM_EMAIL"),

		IPGeoAPIKey:  os.Getenv("IPGEO_API_KEY"),
		IPGeoBaseURL: getEnv("IPGEO_BASE_URL", "https://ipgeolocation.abstractapi.com/v1/"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		GeocodeTTL:    getDurationEnv("GEOCODE_CACHE_TTL", 24*time.Hour),

		DriveStride: getIntEnv("DRIVE_STRIDE", 3),
		DrivePace:   getDurationEnv("DRIVE_PACE", 600*time.Millisecond),

		StaticDataDir: getEnv("STATIC_DATA_DIR", "data"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
