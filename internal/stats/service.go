// Package stats assembles the dashboard numbers for the admin home page.
// The nine storefront statistics endpoints are fetched together, cached in
// Redis and deduplicated so a burst of dashboard loads costs one upstream
// round trip.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

const cacheKey = "stats:dashboard"

// Dashboard aggregates every number the admin home page shows. Field names
// mirror the storefront payloads so the SPA needs no translation layer.
type Dashboard struct {
	Earnings            float64                    `json:"earnings"`
	TotalUsers          int                        `json:"total_user"`
	TotalOrders         int                        `json:"total_commande"`
	AverageSpending     float64                    `json:"average_spending"`
	TotalProductsSold   int                        `json:"total_product_sold"`
	TotalCategories     int                        `json:"total_categories"`
	TotalProductStock   int                        `json:"total_product_stock"`
	AverageProductCost  float64                    `json:"average_product_cost"`
	ProductsPerCategory []storefront.CategoryCount `json:"products_per_category"`
	RefreshedAt         time.Time                  `json:"refreshed_at"`
}

// Service builds and caches the dashboard.
type Service struct {
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
	clock  func() time.Time
}

// NewService constructs a Service. A nil cache disables caching, every
// call then hits the storefront directly.
func NewService(cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns the cached dashboard when fresh, otherwise builds it
// through the given session's client. Concurrent builds collapse into one.
func (s *Service) Dashboard(ctx context.Context, client *storefront.Client) (*Dashboard, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	result, err, _ := s.group.Do(cacheKey, func() (any, error) {
		return s.Refresh(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Dashboard), nil
}

// Refresh fetches all statistics and stores the result in the cache. The
// warmup job calls this directly with the service-account client.
func (s *Service) Refresh(ctx context.Context, client *storefront.Client) (*Dashboard, error) {
	dash := &Dashboard{RefreshedAt: s.clock()}

	// The derived context is canceled once Wait returns; only the fetches
	// may use it, the cache write below needs the caller's context.
	g, fetchCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { dash.Earnings, err = client.Earnings(fetchCtx); return })
	g.Go(func() (err error) { dash.TotalUsers, err = client.TotalUsers(fetchCtx); return })
	g.Go(func() (err error) { dash.TotalOrders, err = client.TotalOrders(fetchCtx); return })
	g.Go(func() (err error) { dash.AverageSpending, err = client.AverageSpending(fetchCtx); return })
	g.Go(func() (err error) { dash.TotalProductsSold, err = client.TotalProductsSold(fetchCtx); return })
	g.Go(func() (err error) { dash.TotalCategories, err = client.TotalCategories(fetchCtx); return })
	g.Go(func() (err error) { dash.TotalProductStock, err = client.TotalProductStock(fetchCtx); return })
	g.Go(func() (err error) { dash.AverageProductCost, err = client.AverageProductCost(fetchCtx); return })
	g.Go(func() (err error) { dash.ProductsPerCategory, err = client.ProductsPerCategory(fetchCtx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, dash)
	return dash, nil
}

func (s *Service) fromCache(ctx context.Context) *Dashboard {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("stats cache read", slog.Any("error", err))
		}
		return nil
	}
	var dash Dashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return nil
	}
	return &dash
}

func (s *Service) toCache(ctx context.Context, dash *Dashboard) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(dash)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("stats cache write", slog.Any("error", err))
	}
}
