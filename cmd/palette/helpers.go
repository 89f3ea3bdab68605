package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/palette/internal/config"
	"github.com/abelbrown/palette/internal/logging"
	"github.com/abelbrown/palette/internal/source"
	"github.com/abelbrown/palette/internal/store"
	"github.com/abelbrown/palette/internal/ui"
)

// loadConfig reads config and creates the data directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

// openStore opens the conversation database with the configured limit.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path, store.WithLimit(cfg.Conversations.Limit))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// openSyncedStore opens the store and imports the configured conversation
// file first, so commands see the same list the TUI shows.
func openSyncedStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if file := cfg.Conversations.File; file != "" {
		if _, err := importFile(ctx, st, file); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

// importFile copies conversations from the YAML file into the store.
func importFile(ctx context.Context, st *store.Store, path string) (int, error) {
	convs, err := source.NewFile(path).Conversations(ctx)
	if err != nil {
		return 0, err
	}
	n, err := st.ImportConversations(ctx, convs)
	if err != nil {
		return n, fmt.Errorf("import %s: %w", path, err)
	}
	if n > 0 {
		logging.Info("Imported conversations", "path", path, "new", n)
	}
	return n, nil
}

// watchConversations runs w until ctx ends. A watcher that fails is logged
// and reported to the TUI; it never stops the program.
func watchConversations(ctx context.Context, w *source.Watcher, send func(tea.Msg)) error {
	if err := w.Run(ctx); err != nil {
		logging.Error("Watcher stopped", "error", err)
		send(ui.WatchStopped{Err: err})
	}
	return nil
}
