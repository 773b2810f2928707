// Package cli implements the biotree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/internal/config"
	"github.com/matzehuels/biotree/pkg/buildinfo"
	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/layout"
	"github.com/matzehuels/biotree/pkg/storage"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "biotree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// status receives spinner output; it is the writer passed to New.
	status io.Writer

	verbose    bool
	configPath string
	driver     string
	dataset    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Biotree edits phylogenetic trees with trait-acquisition branch points",
		Long: `Biotree lays out a taxonomy as a left-to-right tree diagram, marks the
lineages where traits were acquired, and keeps the edited diagram in a
snapshot store. Edit it from the terminal or serve it to a browser client.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, cmd)))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")
	flags.StringVar(&c.driver, "storage", "", "snapshot storage driver: file, memory, sqlite, postgres, redis, mongo, s3")
	flags.StringVar(&c.dataset, "dataset", "", "taxonomy dataset (.toml or .json) for the initial layout")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.photoCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.datasetCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies the global flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.driver != "" {
		driver, err := storage.ParseDriver(c.driver)
		if err != nil {
			return nil, err
		}
		cfg.Storage.Driver = driver
	}
	if c.dataset != "" {
		cfg.Dataset.Path = c.dataset
	}
	return cfg, nil
}

// loadDataset returns the configured dataset, or the bundled animal kingdom.
func loadDataset(cfg *config.Config) (taxonomy.Dataset, error) {
	if cfg.Dataset.Path == "" {
		return taxonomy.Animalia(), nil
	}
	return taxonomy.LoadFile(cfg.Dataset.Path)
}

// initialLayout builds the initial diagram from the configured dataset.
func initialLayout(cfg *config.Config) (flow.Snapshot, error) {
	d, err := loadDataset(cfg)
	if err != nil {
		return flow.Snapshot{}, err
	}
	return layout.Build(d, cfg.Layout.Options()), nil
}

// =============================================================================
// Editor Factory
// =============================================================================

// session is an editor bound to an open snapshot store.
type session struct {
	*editor.Controller
	cfg   *config.Config
	store storage.Store
}

// Close releases the snapshot store.
func (s *session) Close() error { return s.store.Close() }

// openSession opens the configured store and restores the editor from it.
// Edit-mode sessions switch modes after restoring; the mode itself is never
// persisted.
func (c *CLI) openSession(ctx context.Context, mode editor.Mode) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	initial, err := initialLayout(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	ctrl := editor.New(editor.Options{
		Store:   store,
		Initial: initial,
		Logger:  c.Logger,
	})
	ctrl.Load(ctx)

	if mode != editor.ModeView {
		if err := ctrl.SetMode(ctx, mode); err != nil {
			store.Close()
			return nil, err
		}
	}

	c.Logger.Debug("session opened", "driver", store.Driver(), "mode", mode)
	return &session{Controller: ctrl, cfg: cfg, store: store}, nil
}

// withSession runs fn against an editor session and closes it afterwards.
func (c *CLI) withSession(ctx context.Context, mode editor.Mode, fn func(*session) error) error {
	s, err := c.openSession(ctx, mode)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()
	return fn(s)
}

// notFound reports an unknown node id with the command's context.
func notFound(id string) error {
	return fmt.Errorf("no node with id %q", id)
}
