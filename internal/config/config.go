package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docmark/internal/highlight"
)

type Config struct {
	Port string

	// Auth
	DocmarkAPIKey string

	// Highlight policy
	OverlapPolicy  string
	DuplicateScope string

	// Upload limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool

	// Event feed
	EventBuffer       int
	EventWriteTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocmarkAPIKey: os.Getenv("DOCMARK_API_KEY"),

		OverlapPolicy:  envOr("OVERLAP_POLICY", string(highlight.RejectOverlap)),
		DuplicateScope: envOr("DUPLICATE_SCOPE", string(highlight.ScopeSameDocument)),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		EventBuffer:       envInt("EVENT_BUFFER", 64),
		EventWriteTimeout: envDuration("EVENT_WRITE_TIMEOUT", 10*time.Second),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if cfg.EventWriteTimeout <= 0 {
		cfg.EventWriteTimeout = 10 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocmarkAPIKey == "" {
		return fmt.Errorf("DOCMARK_API_KEY is required")
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("OVERLAP_POLICY: %w", err)
	}
	if _, err := c.Scope(); err != nil {
		return fmt.Errorf("DUPLICATE_SCOPE: %w", err)
	}
	return nil
}

// Policy parses OverlapPolicy.
func (c Config) Policy() (highlight.Policy, error) {
	return highlight.ParsePolicy(c.OverlapPolicy)
}

// Scope parses DuplicateScope.
func (c Config) Scope() (highlight.Scope, error) {
	return highlight.ParseScope(c.DuplicateScope)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
