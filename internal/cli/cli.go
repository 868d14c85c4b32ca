// Package cli implements the minorminer command-line interface.
//
// This package provides commands for computing minor embeddings of source
// graphs into target graphs, rendering embeddings as pictures, serving the
// HTTP API, and managing the result cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - embed: Compute an embedding of a source graph into a target graph
//   - render: Draw an embedding over the target graph as SVG or PNG
//   - serve: Run the HTTP embedding service
//   - cache: Manage the embedding result cache
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aidanproy/minorminer/pkg/buildinfo"
	"github.com/aidanproy/minorminer/pkg/cache"
	"github.com/aidanproy/minorminer/pkg/embed"
)

// appName is the application name used for directories and display.
const appName = "minorminer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a timestamped stderr logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "minorminer embeds source graphs into hardware target graphs",
		Long:         `minorminer is a heuristic minor-embedding tool: it maps each vertex of a source graph onto a connected chain of target-graph vertices so that chains are disjoint and every source edge is carried by a target edge.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.embedCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// newRunner creates an embedding runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*embed.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return embed.NewRunner(store, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/minorminer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
