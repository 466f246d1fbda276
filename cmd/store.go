package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/database/sqlite"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// openStore connects to PostgreSQL when DATABASE_URL is set, otherwise
// falls back to the file-backed SQLite store.
func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.Database.URL != "" {
		fmt.Println("Using PostgreSQL backend")
		store, err := postgres.NewStore(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		return store, nil
	}

	fmt.Printf("Using SQLite backend (%s)\n", cfg.Database.SQLitePath)
	store, err := sqlite.Open(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	return store, nil
}

// loadRegistry fills an identity registry from the persisted identities.
// Entries whose embedding length does not match the configured dimension
// are skipped with a warning instead of aborting startup.
func loadRegistry(ctx context.Context, store database.IdentityStore, dim int) (*recognition.Registry, error) {
	registry := recognition.NewRegistry(dim)

	stored, err := store.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading identities: %w", err)
	}

	for _, s := range stored {
		id := recognition.Identity{
			UID:          s.UID,
			Name:         s.Name,
			Embedding:    s.Embedding,
			RegisteredAt: s.CreatedAt,
		}
		if err := registry.Add(id); err != nil {
			fmt.Printf("Warning: skipping identity %s: %v\n", s.UID, err)
		}
	}
	return registry, nil
}
