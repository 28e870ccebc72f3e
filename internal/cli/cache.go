package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout result cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached layout results",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				return clearCache(cmd.Context(), cfg.Cache)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where layout results are cached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(cfg.Cache))
				return nil
			},
		},
	)
	return cmd
}

// cacheLocation describes where cfg keeps results: a directory, a Redis
// URL or "none".
func cacheLocation(cfg config.CacheConfig) string {
	switch cfg.Backend {
	case config.CacheNone:
		return "none"
	case config.CacheRedis:
		return fmt.Sprintf("redis://%s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	return cfg.Dir
}

func clearCache(ctx context.Context, cfg config.CacheConfig) error {
	var (
		n   int
		err error
	)
	switch cfg.Backend {
	case config.CacheNone:
		printInfo("Cache is disabled")
		return nil
	case config.CacheRedis:
		var rc *cache.RedisCache
		if rc, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB}); err != nil {
			return err
		}
		defer rc.Close()
		n, err = rc.Clear(ctx, cfg.Prefix)
	default:
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(cfg.Dir); err != nil {
			return err
		}
		n, err = fc.Clear()
	}
	if err != nil {
		return err
	}

	if n == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Cleared %d cached layouts", n)
	printDetail("%s", cacheLocation(cfg))
	return nil
}
