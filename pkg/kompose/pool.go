package kompose

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lissto-dev/composer/pkg/cache"
	"github.com/lissto-dev/composer/pkg/logging"
)

// Pool bounds how many conversions run at once and caches successful results by the
// SHA-256 of the compose text. It is itself a Converter.
type Pool struct {
	converter Converter
	sem       *semaphore.Weighted
	workers   int64
	timeout   time.Duration
	cache     cache.Cache
	ttl       time.Duration
}

// PoolConfig configures a Pool. A zero Timeout leaves deadlines to the caller and a nil
// Cache disables caching.
type PoolConfig struct {
	Workers  int64
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
}

func NewPool(converter Converter, cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pool{
		converter: converter,
		sem:       semaphore.NewWeighted(cfg.Workers),
		workers:   cfg.Workers,
		timeout:   cfg.Timeout,
		cache:     cfg.Cache,
		ttl:       cfg.CacheTTL,
	}
}

func (p *Pool) Name() string {
	return p.converter.Name()
}

// Convert waits for a free worker, or returns ctx's error in the Result if ctx ends first
func (p *Pool) Convert(ctx context.Context, composeYAML string) Result {
	key := cache.ConversionKey(p.converter.Name(), composeYAML)
	if cached, ok := p.lookup(ctx, key); ok {
		return cached
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Result{Error: err.Error(), Err: err}
	}
	defer p.sem.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result := p.converter.Convert(ctx, composeYAML)
	logging.LogConversion(p.converter.Name(), result.Documents, time.Since(start), result.Err)

	if result.Err == nil {
		p.store(ctx, key, result)
	}
	return result
}

// ConvertAll converts every document with at most Workers running at once.
// Results are in input order.
func (p *Pool) ConvertAll(ctx context.Context, documents []string) []Result {
	results := make([]Result, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(p.workers))
	for i, doc := range documents {
		g.Go(func() error {
			results[i] = p.Convert(gctx, doc)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pool) lookup(ctx context.Context, key string) (Result, bool) {
	if p.cache == nil {
		return Result{}, false
	}
	var cached cache.ConversionResult
	if err := p.cache.Get(ctx, key, &cached); err != nil {
		return Result{}, false
	}
	logging.L().Debug("conversion cache hit", zap.String("key", key))
	return Result{Manifest: cached.Manifest, Error: cached.Error, Documents: cached.Documents}, true
}

func (p *Pool) store(ctx context.Context, key string, result Result) {
	if p.cache == nil {
		return
	}
	entry := cache.ConversionResult{
		Backend:   p.converter.Name(),
		Manifest:  result.Manifest,
		Error:     result.Error,
		Documents: result.Documents,
	}
	if err := p.cache.Set(ctx, key, entry, p.ttl); err != nil {
		logging.L().Warn("failed to cache conversion", zap.String("key", key), zap.Error(err))
	}
}
