// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
)

// Store driver names accepted by USERPANEL_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	Store      string
}

// Load reads configuration from environment variables and returns a validated
// Config. Optional variables with defaults: USERPANEL_LISTEN_ADDR
// (127.0.0.1:8080), USERPANEL_DB_PATH (userpanel.db), USERPANEL_STORE
// (sqlite; "memory" selects the non-durable in-memory store).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("USERPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "userpanel.db"
	if v, ok := os.LookupEnv("USERPANEL_DB_PATH"); ok {
		dbPath = v
	}

	store := StoreSQLite
	if v, ok := os.LookupEnv("USERPANEL_STORE"); ok {
		store = v
	}
	if store != StoreSQLite && store != StoreMemory {
		return nil, fmt.Errorf("USERPANEL_STORE has invalid value %q: want %q or %q", store, StoreSQLite, StoreMemory)
	}

	return &Config{
		ListenAddr: listenAddr,
		DBPath:     dbPath,
		Store:      store,
	}, nil
}
