// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port       int
	DBPath     string
	CORSOrigin string

	JWTSecret string
	JWTTTL    time.Duration

	// OCR settings are handed to the recognizer at construction.
	TesseractPath  string
	TesseractLang  string
	TessdataDir    string
	TesseractPSM   int
	OCRTimeout     time.Duration
	UploadMaxBytes int64
}

// Load reads the given .env files (".env" when none are given) and then the process
// environment. Missing .env files are not an error; real environment variables win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "./data/paynion.db"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
		TesseractLang: getEnv("TESSERACT_LANG", "eng"),
		TessdataDir:   os.Getenv("TESSDATA_DIR"),
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TesseractPSM, err = getInt("TESSERACT_PSM", 0); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OCRTimeout, err = getDuration("OCR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	maxBytes, err := getInt("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
