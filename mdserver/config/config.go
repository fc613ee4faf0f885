package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed by value to every component.
type Config struct {
	Host    string
	Port    string
	APIKey  string
	Version string

	MaxFileSize    int64
	TimeoutSeconds int
	URLFetchTimeoutSeconds int
	BrowserTimeoutSeconds  int
	OCRTimeoutSeconds      int

	AllowLocalhost       bool
	AllowPrivateNetworks bool

	MaxWorkers int
	Debug      bool
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// no .env file: system environment only
	}

	return Config{
		Host:    getEnv("MD_SERVER_HOST", "127.0.0.1"),
		Port:    getEnv("MD_SERVER_PORT", "8080"),
		APIKey:  getEnv("MD_SERVER_API_KEY", ""),
		Version: getEnv("MD_SERVER_VERSION", "1.0.0"),

		MaxFileSize:            int64(getEnvInt("MD_SERVER_MAX_FILE_SIZE", 50*1024*1024)),
		TimeoutSeconds:         getEnvInt("MD_SERVER_TIMEOUT_SECONDS", 30),
		URLFetchTimeoutSeconds: getEnvInt("MD_SERVER_URL_FETCH_TIMEOUT", 30),
		BrowserTimeoutSeconds:  getEnvInt("MD_SERVER_BROWSER_TIMEOUT", 60),
		OCRTimeoutSeconds:      getEnvInt("MD_SERVER_OCR_TIMEOUT", 90),

		AllowLocalhost:       getEnvBool("MD_SERVER_ALLOW_LOCALHOST", true),
		AllowPrivateNetworks: getEnvBool("MD_SERVER_ALLOW_PRIVATE_NETWORKS", false),

		MaxWorkers: getEnvInt("MD_SERVER_MAX_WORKERS", 4),
		Debug:      getEnvBool("MD_SERVER_DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
