package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/facepile/pkg/config"
	"github.com/matzehuels/facepile/pkg/observability"
	"github.com/matzehuels/facepile/pkg/pipeline"
	"github.com/matzehuels/facepile/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config    string // optional TOML file with [server] and [cache]
	addr      string // overrides server.addr
	rateLimit int    // overrides server.rate_limit
	noCache   bool   // forces cache.backend = "none"
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve group avatars over HTTP",
		Example: `  facepile serve --addr :8080
  facepile serve --config server.toml
  curl 'localhost:8080/v1/avatar.svg?c=Ann&c=Bo|https://example.com/bo.png'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, err := cfg.OpenCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			hooks := observability.NewLogHooks(logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			runner := pipeline.NewRunner(store, cfg.Keyer(), logger)
			runner.TTL = cfg.Cache.TTL

			logger.Info("starting server", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend, "rate_limit", cfg.Server.RateLimit)
			srv := server.New(runner, server.Config{
				Addr:      cfg.Server.Addr,
				RateLimit: cfg.Server.RateLimit,
				Logger:    logger,

				AllowPrivateImages: cfg.Server.AllowPrivateImages,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().IntVar(&opts.rateLimit, "rate-limit", 0, "requests per minute per IP, negative disables (default 120)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// load reads the config file, if any, and applies flag overrides.
func (o *serveOpts) load() (*config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return nil, err
		}
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.rateLimit != 0 {
		cfg.Server.RateLimit = o.rateLimit
	}
	if o.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, cfg.Validate()
}
