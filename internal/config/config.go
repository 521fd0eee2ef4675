package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr   string
	APIBaseURL string // REST base, e.g. http://127.0.0.1:8000/api
	WSBaseURL  string // event stream base, e.g. ws://127.0.0.1:8000/ws
	LogFile    string
}

func Load() Config {
	// .env is optional; real env wins either way.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		APIBaseURL: getenv("API_BASE_URL", "http://127.0.0.1:8000/api"),
		WSBaseURL:  getenv("WS_BASE_URL", "ws://127.0.0.1:8000/ws"),
		LogFile:    os.Getenv("LOG_FILE"),
	}
	log.Printf("[config] HTTP_ADDR=%s API_BASE_URL=%s WS_BASE_URL=%s LOG_FILE=%s",
		cfg.HTTPAddr, cfg.APIBaseURL, cfg.WSBaseURL, cfg.LogFile)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
