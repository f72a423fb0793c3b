// Package factory builds the concrete Store selected by configuration. It
// lives apart from package store so the backends can import the interface
// without pulling each other in.
package factory

import (
	"fmt"
	"log/slog"

	"outlay/internal/store"
	"outlay/internal/store/memory"
	"outlay/internal/store/sqlite"
	"outlay/internal/store/supabase"
)

// Config holds what each backend needs to come up. Only the fields for the
// selected type are read.
type Config struct {
	Type store.BackendType

	SupabaseURL string
	SupabaseKey string

	SQLiteDBPath string
}

// Factory builds Store instances from configuration.
type Factory struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(cfg Config) (store.Store, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case store.SupabaseBackend:
		s, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase store: %w", err)
		}
		f.logger.Info("Initialized supabase store", "url", cfg.SupabaseURL)
		return s, nil

	case store.SQLiteBackend:
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized sqlite store", "db_path", cfg.SQLiteDBPath)
		return s, nil

	case store.MemoryBackend:
		f.logger.Info("Initialized memory store")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
