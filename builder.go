package hashtree

import (
	"context"
	"log/slog"
	"time"

	"github.com/gordian-engine/hashtree/htdigest"
	"github.com/gordian-engine/hashtree/htdigest/htsha256"
	"github.com/gordian-engine/hashtree/internal/htrace"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the item count below which
// a [Builder] hashes leaves on the calling goroutine,
// when [BuilderConfig.ParallelThreshold] is zero.
const DefaultParallelThreshold = 4096

// BuilderConfig is the configuration passed to [NewBuilder].
type BuilderConfig struct {
	// Hasher used for leaves and nodes.
	// Defaults to SHA-256 when nil.
	Hasher htdigest.Hasher

	// LeafWorkers is the maximum number of goroutines
	// hashing leaves at once.
	// Values of 0 or 1 hash every leaf on the calling goroutine.
	LeafWorkers int

	// ParallelThreshold is the minimum item count
	// before leaf hashing is spread across LeafWorkers.
	// Zero means DefaultParallelThreshold.
	ParallelThreshold int

	// Optional tracer provider;
	// the otel no-op provider is used when nil.
	TracerProvider htrace.TracerProvider
}

// Builder constructs trees with a fixed hasher,
// optionally hashing leaves in parallel.
//
// Only leaf hashing is parallelized.
// Layers are always combined in index order on the calling goroutine,
// so a Builder produces exactly the same tree as [NewWithHasher].
//
// A Builder holds no per-build state and may be used concurrently.
type Builder struct {
	log *slog.Logger

	tracer htrace.Tracer

	h htdigest.Hasher

	workers   int
	threshold int
}

// NewBuilder returns a new Builder.
// The log argument must not be nil.
func NewBuilder(log *slog.Logger, cfg BuilderConfig) *Builder {
	if log == nil {
		panic("BUG: nil logger passed to NewBuilder")
	}

	h := cfg.Hasher
	if h == nil {
		h = htsha256.Hasher{}
	}
	// Fail at construction rather than at first build.
	_ = hasherSize(h)

	threshold := cfg.ParallelThreshold
	if threshold <= 0 {
		threshold = DefaultParallelThreshold
	}

	return &Builder{
		log: log,

		tracer: htrace.NewTracer(cfg.TracerProvider),

		h: h,

		workers:   max(cfg.LeafWorkers, 1),
		threshold: threshold,
	}
}

// Build returns the tree for items.
//
// The context is only used as the parent of the build span;
// building is not cancellable and always runs to completion.
func (b *Builder) Build(ctx context.Context, items [][]byte) *Tree {
	start := time.Now()

	workers := 1
	if b.workers > 1 && len(items) >= b.threshold {
		workers = b.workers
	}

	_, span := b.tracer.Start(
		ctx,
		"hashtree.Build",
		htrace.WithAttributes(
			htrace.LeafCountAttr(len(items)),
			htrace.LeafWorkersAttr(workers),
		),
	)
	defer span.End()

	t := newEmptyTree(len(items), b.h.Size())
	if len(items) == 0 {
		b.log.Debug("Built empty tree")
		return t
	}

	span.AddEvent("hash leaves")
	if workers > 1 {
		b.hashLeavesParallel(items, t.layers[0], workers)
	} else {
		for i, item := range items {
			writeLeaf(b.h, item, t.layers[0][i])
		}
	}

	span.AddEvent("combine layers")
	t.complete(b.h)

	span.SetAttributes(htrace.HeightAttr(t.Height()))
	if span.IsRecording() {
		span.SetAttributes(htrace.HexAttr("hashtree.root", t.layers[len(t.layers)-1][0]))
	}

	b.log.Debug(
		"Built tree",
		"leaves", len(items),
		"height", t.Height(),
		"workers", workers,
		"mutated", t.mutated,
		"elapsed", time.Since(start),
	)

	return t
}

// hashLeavesParallel hashes items into leaves using contiguous chunks,
// one goroutine per chunk, at most workers at a time.
// Every goroutine writes only to its own range of leaves.
func (b *Builder) hashLeavesParallel(items, leaves [][]byte, workers int) {
	// A few chunks per worker smooths out uneven item sizes.
	nChunks := workers * 4
	chunkSize := (len(items) + nChunks - 1) / nChunks

	var g errgroup.Group
	g.SetLimit(workers)

	for start := 0; start < len(items); start += chunkSize {
		end := min(start+chunkSize, len(items))
		g.Go(func() error {
			for i := start; i < end; i++ {
				writeLeaf(b.h, items[i], leaves[i])
			}
			return nil
		})
	}

	// Leaf hashing has no error path; a misbehaving hasher panics.
	_ = g.Wait()
}
