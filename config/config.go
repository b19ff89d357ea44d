// Package config reads application settings from the environment.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BrandName          string
	PublicBaseURL      string
	GenAIAPIKey        string
	GenAIImageModel    string
	GenAIVisionModel   string
	ExportTemplatePath string
	ImageFetchTimeout  time.Duration
}

// LoadDotEnv loads .env files into the environment. A missing file is not
// an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}
}

// Load builds the configuration from environment variables with defaults.
func Load() Config {
	return Config{
		BrandName:          getEnv("BRAND_NAME", "Nammos"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://127.0.0.1:8090"), "/"),
		GenAIAPIKey:        getEnv("GOOGLE_GENAI_API_KEY", ""),
		GenAIImageModel:    getEnv("GENAI_IMAGE_MODEL", "gemini-2.0-flash-exp"),
		GenAIVisionModel:   getEnv("GENAI_VISION_MODEL", "gemini-2.0-flash"),
		ExportTemplatePath: getEnv("EXPORT_TEMPLATE_PATH", ""),
		ImageFetchTimeout:  getDuration("IMAGE_FETCH_TIMEOUT", 15*time.Second),
	}
}

// PreviewEnabled reports whether the AI preview credential is configured.
func (c Config) PreviewEnabled() bool {
	return strings.TrimSpace(c.GenAIAPIKey) != ""
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, v, def)
		return def
	}
	return d
}
