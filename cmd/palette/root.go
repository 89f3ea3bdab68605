package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/palette/internal/config"
	"github.com/abelbrown/palette/internal/logging"
	"github.com/abelbrown/palette/internal/source"
	"github.com/abelbrown/palette/internal/store"
	"github.com/abelbrown/palette/internal/ui"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "palette",
	Short:        "Command palette over conversations and workspace actions",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `palette opens a searchable list of actions and recent conversations.
Press ctrl+k to search, enter to run the selected item.

Settings are read from ~/.palette/config.yaml and PALETTE_* variables.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Init(cfg.DataDir, cfg.Log.Level); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.Flags().String("cwd", "", "Workspace directory for the diff viewer")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cwd, _ := cmd.Flags().GetString("cwd"); cwd != "" {
		cfg.Workspace.Cwd = cwd
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Only one instance imports and watches the conversation file.
	lock := flock.New(filepath.Join(cfg.DataDir, "palette.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("cannot acquire lock: %w", err)
	}
	if locked {
		defer func() { _ = lock.Unlock() }()
	} else {
		logging.Warn("Another palette is running, file watching disabled", "lock", lock.Path())
	}

	file := cfg.Conversations.File
	if file != "" && locked {
		if _, err := importFile(ctx, st, file); err != nil {
			logging.Error("Initial import failed", "path", file, "error", err)
		}
	}

	app := ui.NewApp(appConfig(ctx, st))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	if file != "" && locked && cfg.UI.Watch {
		w := source.NewWatcher(file, cfg.UI.WatchInterval, func() {
			if _, err := importFile(gctx, st, file); err != nil {
				logging.Warn("Reimport failed", "path", file, "error", err)
				return
			}
			p.Send(ui.ConversationsChanged{})
		})
		g.Go(func() error { return watchConversations(gctx, w, p.Send) })
	}

	logging.Info("Palette started", "db", cfg.Database.Path, "file", file)
	if err := g.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// appConfig wires the TUI commands to the store.
func appConfig(ctx context.Context, st *store.Store) ui.AppConfig {
	return ui.AppConfig{
		LoadConversations: func() tea.Cmd {
			return func() tea.Msg {
				convs, err := st.Conversations(ctx)
				return ui.ConversationsLoaded{Conversations: convs, Err: err}
			}
		},
		CreateConversation: func(cwd string) tea.Cmd {
			return func() tea.Msg {
				c, err := st.CreateConversation(ctx, newSlug(cwd, time.Now()), cwd)
				if err == nil {
					logging.Info("Created conversation", "id", c.ID, "slug", c.Slug)
				}
				return ui.ConversationCreated{Conversation: c, Err: err}
			}
		},
		SelectConversation: func(id string) tea.Cmd {
			return func() tea.Msg {
				err := st.TouchConversation(ctx, id)
				return ui.ConversationSelected{ID: id, Err: err}
			}
		},
		OpenDiffViewer: func(cwd string) tea.Cmd {
			c := exec.Command("git", "-C", cwd, "diff")
			return tea.ExecProcess(c, func(err error) tea.Msg {
				return ui.DiffViewerClosed{Err: err}
			})
		},
		WorkspaceCwd: cfg.Workspace.Cwd,
		MaxVisible:   cfg.UI.MaxVisible,
	}
}

// newSlug names a fresh conversation after its directory and creation time.
func newSlug(cwd string, now time.Time) string {
	base := "conversation"
	if cwd != "" {
		if b := filepath.Base(cwd); b != "." && b != string(filepath.Separator) {
			base = b
		}
	}
	return base + "-" + now.Format("0102-1504")
}
