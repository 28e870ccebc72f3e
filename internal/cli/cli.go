package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/buildinfo"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/layered"
	"github.com/matzehuels/bpmnlayout/pkg/layered/graphviz"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/layout/bridge"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "bpmnlayout"

	algorithmLayered  = "layered"
	algorithmGraphviz = "graphviz"
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath and verbose are bound to persistent flags.
	configPath string
	verbose    bool
}

// New creates a CLI that logs to w at info level.
func New(w io.Writer) *CLI {
	return &CLI{Logger: newLogger(w, log.InfoLevel)}
}

// enableHooks routes layout, cache and HTTP events to the debug log.
func (c *CLI) enableHooks() {
	h := observability.NewLogHooks(c.Logger)
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bpmnlayout lays out BPMN process diagrams",
		Long:         `bpmnlayout computes positions, orthogonal routes, lane and pool sizes and label placement for BPMN diagrams given as JSON or YAML documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
				c.enableHooks()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging and per-pass timings")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.recommendCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner from cfg. A cache backend that cannot
// be opened is logged and replaced by the null cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, algorithm string, noCache bool) (*pipeline.Runner, error) {
	alg, err := newAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	store := newCache(ctx, cfg.Cache, noCache, c.Logger)
	r := pipeline.NewRunner(layout.New(alg, cfg.Layout), store, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), c.Logger)
	r.TTL = cfg.Cache.TTL.Std()
	return r, nil
}

func newAlgorithm(name string) (bridge.Algorithm, error) {
	switch name {
	case "", algorithmLayered:
		return layered.New(), nil
	case algorithmGraphviz:
		return graphviz.New(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown algorithm %q (want %s or %s)", name, algorithmLayered, algorithmGraphviz)
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool, logger *log.Logger) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	store, err := cache.Open(ctx, cfg)
	if err != nil {
		logger.Warn("cache disabled", "backend", cfg.Backend, "err", err)
		return cache.NewNullCache()
	}
	return store
}
