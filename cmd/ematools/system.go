package main

import (
	"fmt"
	"os"
	"strconv"

	"ematools/config"
	"ematools/fetch"
	"ematools/register"
	"ematools/store"
)

// cliConfig is the resolved tool configuration, merged with precedence:
// environment variables over the config file over defaults.
type cliConfig struct {
	*config.Config
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig() *cliConfig {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Continuing with defaults and environment variables...\n\n")
		cfg = config.Default()
	}

	cfg.BaseURL = getEnv("EMATOOLS_BASE_URL", cfg.BaseURL)
	cfg.CacheDir = getEnv("EMATOOLS_CACHE_DIR", cfg.CacheDir)
	cfg.DatabasePath = getEnv("EMATOOLS_DB", cfg.DatabasePath)
	cfg.RequestLogPath = getEnv("EMATOOLS_REQUEST_LOG", cfg.RequestLogPath)
	cfg.NewsFeedURL = getEnv("EMATOOLS_NEWS_FEED", cfg.NewsFeedURL)
	if val := os.Getenv("EMATOOLS_CONCURRENCY"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "Error: invalid EMATOOLS_CONCURRENCY: %q\n", val)
			os.Exit(1)
		}
		cfg.Concurrency = n
	}

	return &cliConfig{Config: cfg}
}

// openStore opens the register database or exits.
func openStore(cfg *cliConfig) *store.Store {
	st, err := store.NewStore(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// openClient opens the caching fetch client or exits.
func openClient(cfg *cliConfig) *fetch.Client {
	client, err := fetch.NewClient(fetch.Options{
		CacheDir: cfg.CacheDir,
		Timeout:  cfg.FetchTimeoutDuration(),
		LogPath:  cfg.RequestLogPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create fetch client: %v\n", err)
		os.Exit(1)
	}
	return client
}

// resolveRegister maps a --register flag value to its descriptor.
func resolveRegister(cfg *cliConfig, key string) register.Register {
	switch key {
	case "", "active":
		return register.ActiveHuman
	case "withdrawn":
		return cfg.WithdrawnRegister()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown register %q (want active or withdrawn)\n", key)
		os.Exit(1)
		return register.Register{}
	}
}
