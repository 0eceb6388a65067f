package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvDuration parses key as a Go duration ("750ms", "2s").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

// ApplyEnv overrides defaults from SCRAPER_* and LLM_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := EnvString("SCRAPER_SCHOOLS"); ok {
		c.SchoolsFile = v
	}
	if v, ok := EnvString("SCRAPER_OUTPUT"); ok {
		c.OutputDir = v
	}
	if v, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := EnvString("SCRAPER_CONTENT_FORMAT"); ok {
		c.ContentFormat = v
	}
	if v, ok := EnvString("SCRAPER_MONGO_URI"); ok {
		c.MongoURI = v
	}
	if v, ok := EnvString("LLM_PROVIDER"); ok {
		c.LLMProvider = v
	}
	if v, ok := EnvString("LLM_MODEL"); ok {
		c.LLMModel = v
	}
	if v, ok := EnvString("LLM_BASE_URL"); ok {
		c.LLMBaseURL = v
	}
	if v, ok := EnvString("LLM_API_KEY"); ok {
		c.LLMAPIKey = v
	} else if v, ok := EnvString("GEMINI_API_KEY"); ok {
		c.LLMAPIKey = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SCRAPER_BATCH_SIZE", &c.BatchSize},
		{"SCRAPER_MAX_RETRIES", &c.MaxRetries},
		{"SCRAPER_SCHOOL_WORKERS", &c.SchoolWorkers},
		{"SCRAPER_CACHE_SIZE", &c.CacheSize},
		{"SCRAPER_DISCOVERY_DEPTH", &c.DiscoveryDepth},
		{"LLM_RETRIES", &c.LLMRetries},
		{"LLM_PROMPT_BUDGET", &c.PromptCharBudget},
	}
	for _, item := range ints {
		v, ok, err := EnvInt(item.key)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SCRAPER_TIMEOUT", &c.Timeout},
		{"SCRAPER_BATCH_PAUSE", &c.BatchPause},
		{"SCRAPER_BROWSER_SETTLE", &c.BrowserSettle},
		{"LLM_TIMEOUT", &c.LLMTimeout},
	}
	for _, item := range durations {
		v, ok, err := EnvDuration(item.key)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	if v, ok, err := EnvBool("SCRAPER_RESPECT_ROBOTS"); err != nil {
		return err
	} else if ok {
		c.RespectRobotsTxt = v
	}
	return nil
}
