package matrix

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/routeweaver/routeweaver/internal/directions"
)

const (
	// DefaultWindowSize bounds the number of simultaneously in-flight leg
	// fetches.
	DefaultWindowSize = 10

	// DefaultWindowPause separates the completion of one full window from
	// the dispatch of the next, bounding peak request rate upstream.
	DefaultWindowPause = 100 * time.Millisecond
)

// LegFetcher fetches one measured leg. Satisfied by *directions.Gateway.
type LegFetcher interface {
	FetchLeg(ctx context.Context, req directions.LegRequest) (*directions.Leg, error)
	Name() string
}

// LegCache is an optional read-through cache consulted before the gateway.
// Implementations must be safe for concurrent use.
type LegCache interface {
	Get(ctx context.Context, profile directions.Profile, from, to directions.Coordinate) (*directions.Leg, bool)
	Put(ctx context.Context, profile directions.Profile, from, to directions.Coordinate, leg *directions.Leg)
}

// BuilderConfig holds configuration for the Builder.
type BuilderConfig struct {
	// Gateway fetches individual legs (required).
	Gateway LegFetcher

	// Cache is an optional per-leg result cache.
	Cache LegCache

	// Logger for builder operations.
	Logger zerolog.Logger

	// WindowSize is the in-flight bound (optional, default 10).
	WindowSize int

	// WindowPause is the delay between windows (optional, default 100ms).
	WindowPause time.Duration

	// Options are forwarded with every leg request.
	Options directions.LegOptions
}

// Builder issues the N² pairwise leg fetches for a location set and merges
// the results into a TravelMatrix. Diagonal cells are zero-cost and never
// touch the network. A leg that fails even after the gateway's retries is
// absorbed as a sentinel cell; a single leg never aborts the build.
type Builder struct {
	gateway     LegFetcher
	cache       LegCache
	logger      zerolog.Logger
	windowSize  int
	windowPause time.Duration
	options     directions.LegOptions
}

// NewBuilder creates a Builder from the given configuration.
func NewBuilder(cfg BuilderConfig) *Builder {
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	// Zero means default; a negative pause disables pacing (tests).
	windowPause := cfg.WindowPause
	if windowPause == 0 {
		windowPause = DefaultWindowPause
	} else if windowPause < 0 {
		windowPause = 0
	}

	return &Builder{
		gateway:     cfg.Gateway,
		cache:       cfg.Cache,
		logger:      cfg.Logger,
		windowSize:  windowSize,
		windowPause: windowPause,
		options:     cfg.Options,
	}
}

// Build constructs the full N×N travel matrix for the given locations under
// one profile. It returns an error only when ctx is cancelled; every other
// failure degrades to sentinel cells.
func (b *Builder) Build(ctx context.Context, locations []directions.Coordinate, profile directions.Profile) (*TravelMatrix, error) {
	n := len(locations)
	m := newTravelMatrix(n)

	// Scratch geometry table: concurrent tasks write disjoint cells, so no
	// lock is needed during the fetch phase.
	geometries := make([][]string, n)
	for i := range geometries {
		geometries[i] = make([]string, n)
	}

	edges := make([]Edge, 0, n*n-n)
	for from := 0; from < n; from++ {
		for to := 0; to < n; to++ {
			if from == to {
				continue
			}
			edges = append(edges, Edge{From: from, To: to})
		}
	}

	start := time.Now()
	b.logger.Info().
		Int("locations", n).
		Int("legs", len(edges)).
		Int("window_size", b.windowSize).
		Str("profile", string(profile)).
		Msg("building travel matrix")

	for offset := 0; offset < len(edges); offset += b.windowSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := offset + b.windowSize
		if end > len(edges) {
			end = len(edges)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, edge := range edges[offset:end] {
			g.Go(func() error {
				b.resolveEdge(gctx, m, geometries, locations, profile, edge)
				return nil
			})
		}
		// Workers absorb their own failures; Wait only joins the window.
		_ = g.Wait()

		if end < len(edges) && b.windowPause > 0 {
			if err := sleepCtx(ctx, b.windowPause); err != nil {
				return nil, err
			}
		}
	}

	for from := range geometries {
		for to, geometry := range geometries[from] {
			if geometry != "" {
				m.geometries[Edge{From: from, To: to}] = geometry
			}
		}
	}

	b.logger.Info().
		Int("locations", n).
		Int("edge_geometries", len(m.geometries)).
		Dur("duration", time.Since(start)).
		Msg("travel matrix complete")

	return m, nil
}

// resolveEdge fills exactly one off-diagonal cell pair (duration, distance,
// optional geometry), substituting sentinels on any terminal failure.
func (b *Builder) resolveEdge(ctx context.Context, m *TravelMatrix, geometries [][]string, locations []directions.Coordinate, profile directions.Profile, edge Edge) {
	from := locations[edge.From]
	to := locations[edge.To]

	if b.cache != nil {
		if leg, ok := b.cache.Get(ctx, profile, from, to); ok {
			b.fillCell(m, geometries, edge, leg)
			return
		}
	}

	leg, err := b.gateway.FetchLeg(ctx, directions.LegRequest{
		From:    from,
		To:      to,
		Profile: profile,
		Options: b.options,
	})
	if err != nil {
		b.logger.Warn().
			Err(err).
			Int("from", edge.From).
			Int("to", edge.To).
			Msg("leg unresolved, using sentinel")
		m.Durations[edge.From][edge.To] = SentinelDuration
		m.Distances[edge.From][edge.To] = SentinelDistance
		return
	}

	if b.cache != nil {
		b.cache.Put(ctx, profile, from, to, leg)
	}

	b.fillCell(m, geometries, edge, leg)
}

func (b *Builder) fillCell(m *TravelMatrix, geometries [][]string, edge Edge, leg *directions.Leg) {
	if leg.NoRoute {
		m.Durations[edge.From][edge.To] = SentinelDuration
		m.Distances[edge.From][edge.To] = SentinelDistance
		return
	}

	m.Durations[edge.From][edge.To] = normalizeDuration(leg.DurationSeconds)
	m.Distances[edge.From][edge.To] = normalizeDistance(leg.DistanceMeters)
	geometries[edge.From][edge.To] = leg.Geometry
}

// normalizeDuration rounds to whole seconds; non-finite values become the
// sentinel before rounding.
func normalizeDuration(seconds float64) int64 {
	if !isFinite(seconds) {
		return SentinelDuration
	}
	return int64(math.Round(seconds))
}

// normalizeDistance converts meters to the solver's scaled distance unit;
// non-finite values become the sentinel before rounding.
func normalizeDistance(meters float64) int64 {
	if !isFinite(meters) {
		return SentinelDistance
	}
	return int64(math.Round(meters * DistanceScale))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
