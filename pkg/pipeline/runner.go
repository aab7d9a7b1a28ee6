package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/httputil"
	"github.com/matzehuels/facepile/pkg/observability"
	"github.com/matzehuels/facepile/pkg/render/sink"
)

// Renderer produces one output format for a composite.
type Renderer func(c *avatar.Composite, opts Options) ([]byte, error)

// Runner executes the pipeline with caching. It holds no per-run state and
// may be shared between goroutines.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	TTL       time.Duration
	Renderers map[string]Renderer
	Fetcher   *httputil.Fetcher
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		TTL:       cache.DefaultTTL,
		Renderers: DefaultRenderers(),
		Fetcher:   httputil.NewFetcher(httputil.WithCache(c, cache.DefaultTTL), httputil.WithLogger(logger)),
	}
}

// DefaultRenderers returns the built-in renderer for every format.
func DefaultRenderers() map[string]Renderer {
	return map[string]Renderer{
		FormatSVG: func(c *avatar.Composite, o Options) ([]byte, error) {
			return sink.RenderSVG(c, o.svgOptions()...), nil
		},
		FormatJSON: func(c *avatar.Composite, _ Options) ([]byte, error) {
			return sink.RenderJSON(c)
		},
		FormatPNG: func(c *avatar.Composite, o Options) ([]byte, error) {
			return sink.RenderPNG(c, sink.WithScale(o.Scale), sink.WithPNGSVGOptions(o.svgOptions()...))
		},
		FormatPDF: func(c *avatar.Composite, o Options) ([]byte, error) {
			return sink.RenderPDF(c, sink.WithPDFSVGOptions(o.svgOptions()...))
		},
	}
}

func (o Options) svgOptions() []sink.SVGOption {
	opts := []sink.SVGOption{sink.WithWash(!o.NoWash)}
	if o.Title != "" {
		opts = append(opts, sink.WithTitle(o.Title))
	}
	if o.FontFamily != "" {
		opts = append(opts, sink.WithFontFamily(o.FontFamily))
	}
	return opts
}

// Execute composes the avatar and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte, len(opts.Formats))}
	result.Stats.Collaborators = len(opts.Collaborators)

	if opts.Inline {
		shown := avatar.Truncate(opts.Collaborators)
		for i, collab := range shown {
			if err := collab.Validate(); err != nil {
				return nil, fmt.Errorf("compose: %w", errors.Wrap(errors.GetCode(err), err, "collaborator %d", i))
			}
		}
		opts.Collaborators = r.Fetcher.Inline(ctx, shown)
	}

	composeStart := time.Now()
	c, err := r.Compose(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Composite = c
	result.Stats.ComposeTime = time.Since(composeStart)
	result.Stats.Cells = len(c.Cells)

	hash, err := Hash(c)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	result.Hash = hash

	renderStart := time.Now()
	if err := r.render(ctx, c, hash, opts, result); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered avatar",
		"size", opts.Size,
		"cells", result.Stats.Cells,
		"formats", opts.Formats,
		"cached", len(result.CacheInfo.Hits),
		"duration", result.Stats.ComposeTime+result.Stats.RenderTime)

	return result, nil
}

// Compose runs the compose stage only. opts must already be validated.
func (r *Runner) Compose(ctx context.Context, opts Options) (*avatar.Composite, error) {
	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, opts.Size.String(), len(opts.Collaborators))
	start := time.Now()

	c, err := avatar.Compose(opts.Collaborators, opts.Size)

	cells := 0
	if c != nil {
		cells = len(c.Cells)
	}
	hooks.OnComposeComplete(ctx, opts.Size.String(), cells, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if len(opts.Collaborators) > avatar.MaxTiles && opts.Logger != nil {
		opts.Logger.Debug("truncated collaborators", "given", len(opts.Collaborators), "shown", avatar.MaxTiles)
	}
	return c, nil
}

// Hash returns the content hash of a composite.
func Hash(c *avatar.Composite) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

func (r *Runner) render(ctx context.Context, c *avatar.Composite, hash string, opts Options, result *Result) (err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, hit, err := r.renderFormat(gctx, c, hash, format, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			mu.Lock()
			defer mu.Unlock()
			result.Artifacts[format] = data
			if hit {
				result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
			} else {
				result.CacheInfo.Misses = append(result.CacheInfo.Misses, format)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) renderFormat(ctx context.Context, c *avatar.Composite, hash, format string, opts Options) ([]byte, bool, error) {
	hooks := observability.Cache()
	key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "err", err)
		} else if hit {
			hooks.OnCacheHit(ctx, format)
			return data, true, nil
		}
	}
	hooks.OnCacheMiss(ctx, format)

	render, ok := r.Renderers[format]
	if !ok {
		return nil, false, fmt.Errorf("no renderer registered")
	}
	data, err := render(c, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		opts.Logger.Warn("cache write failed", "format", format, "err", err)
	} else {
		hooks.OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}
