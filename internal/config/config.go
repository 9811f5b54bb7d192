package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	ListenAddr  string        // e.g. ":8080"
	HTTPTimeout time.Duration // per upstream request, retries excluded

	// Upstream source
	SourceURL string // listings endpoint
	UserAgent string

	// Postgres (explicit pieces)
	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDatabase string
	PGSSLMode  string
}

// BuildDSN composes a keyword/value DSN compatible with pgxpool.
func (c Config) BuildDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PGHost, c.PGPort, c.PGUser, c.PGPassword, c.PGDatabase, c.PGSSLMode,
	)
}

func FromEnv() Config {
	c := Config{}

	c.ListenAddr = getenv("HTTP_LISTEN_ADDR", ":8080")

	if d, err := time.ParseDuration(getenv("HTTP_TIMEOUT", "25s")); err == nil {
		c.HTTPTimeout = d
	} else {
		c.HTTPTimeout = 25 * time.Second
	}

	c.SourceURL = getenv("SOURCE_URL", "https://api.kaya.ir/api/v2/projects/projects")
	c.UserAgent = getenv("USER_AGENT", "KayaScraper/1.2")

	// Postgres pieces
	c.PGHost = getenv("PG_HOST", "postgres")
	c.PGPort = getenvi("PG_PORT", 5432)
	c.PGUser = getenv("PG_USER", "app")
	c.PGPassword = getenv("PG_PASSWORD", "app")
	c.PGDatabase = getenv("PG_DATABASE", "kaya")
	c.PGSSLMode = getenv("PG_SSLMODE", "disable")

	return c
}

// ParseSkillList converts a list of decimal tokens into skill ids. Blank
// tokens are skipped; any non-numeric token fails the whole list.
func ParseSkillList(tokens []string) ([]int, error) {
	var ids []int
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		id, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid skill id %q: %w", t, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var iv int
		_, err := fmt.Sscanf(v, "%d", &iv)
		if err == nil {
			return iv
		}
	}
	return def
}
