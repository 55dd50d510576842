package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	KafkaBrokers    []string
	KafkaTopic      string
	ArchiveBucket   string
	ArchivePrefix   string
	AllowDebugToken bool
	DebugToken      string
}

const (
	defaultAddr       = ":8074"
	defaultKafkaTopic = "documint.notifications"
)

func Load() (Config, error) {
	cfg := Config{
		Addr:            getEnv("DOCUMINT_ADDR", defaultAddr),
		DatabaseURL:     firstNonEmpty(os.Getenv("DOCUMINT_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		KafkaBrokers:    splitList(os.Getenv("DOCUMINT_KAFKA_BROKERS")),
		KafkaTopic:      getEnv("DOCUMINT_KAFKA_TOPIC", defaultKafkaTopic),
		ArchiveBucket:   os.Getenv("DOCUMINT_ARCHIVE_BUCKET"),
		ArchivePrefix:   os.Getenv("DOCUMINT_ARCHIVE_PREFIX"),
		AllowDebugToken: getBool("DOCUMINT_ALLOW_DEBUG_TOKEN", false),
		DebugToken:      os.Getenv("DOCUMINT_DEBUG_TOKEN"),
	}
	if cfg.AllowDebugToken && cfg.DebugToken == "" {
		return Config{}, fmt.Errorf("DOCUMINT_DEBUG_TOKEN required when DOCUMINT_ALLOW_DEBUG_TOKEN is set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
