package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/autoyard/autoyard-backend/pkg/logger"
	"github.com/autoyard/autoyard-backend/pkg/metrics"
	"github.com/autoyard/autoyard-backend/pkg/redis"
)

const (
	ViewSavedCars      = "saved_cars"
	ViewAdminInventory = "admin_inventory"
)

// Store is the subset of the redis client the view cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
	ViewKey(view string, generation int64, scope string) string
	GenerationKey(view string) string
}

// Views stores JSON snapshots of read models in redis. A scope is a slice of a
// view (one user's saved cars). Both the view and each scope carry a generation
// counter; bumping one orphans the snapshots under it and lets TTLs reclaim them.
// A compute that started before a bump writes to an orphaned key.
//
// Redis failures never fail a read: they are logged and the value is recomputed.
type Views struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
}

func NewViews(store Store, logg *logger.Logger, m *metrics.CacheMetrics) *Views {
	return &Views{store: store, logg: logg, metrics: m}
}

// Load returns the cached snapshot for view/scope, or computes and stores it.
// A nil *Views always computes.
func Load[T any](ctx context.Context, v *Views, view, scope string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if v == nil || v.store == nil {
		return compute(ctx)
	}

	key, genErr := v.key(ctx, view, scope)
	if genErr == nil {
		raw, err := v.store.Get(ctx, key)
		switch {
		case err == nil:
			var cached T
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				v.metrics.IncLookup(view, "hit")
				return cached, nil
			}
			v.warn(ctx, view, "cache.view.decode_failed", nil)
		case redis.IsMiss(err):
			v.metrics.IncLookup(view, "miss")
		default:
			v.metrics.IncLookup(view, "error")
			v.warn(ctx, view, "cache.view.read_failed", err)
		}
	} else {
		v.metrics.IncLookup(view, "error")
		v.warn(ctx, view, "cache.view.generation_failed", genErr)
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	if genErr != nil {
		return value, nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		v.warn(ctx, view, "cache.view.encode_failed", err)
		return value, nil
	}
	if err := v.store.Set(ctx, key, string(payload), ttl); err != nil {
		v.warn(ctx, view, "cache.view.write_failed", err)
	}
	return value, nil
}

// InvalidateScope bumps the scope generation so the next read of that scope
// misses, then drops the superseded snapshot.
func (v *Views) InvalidateScope(ctx context.Context, view, scope string) {
	if v == nil || v.store == nil {
		return
	}
	stale, keyErr := v.key(ctx, view, scope)
	if _, err := v.store.Incr(ctx, v.scopeGenerationKey(view, scope)); err != nil {
		v.warn(ctx, view, "cache.view.invalidate_failed", err)
		return
	}
	if keyErr != nil {
		return
	}
	if err := v.store.Del(ctx, stale); err != nil {
		v.warn(ctx, view, "cache.view.invalidate_failed", err)
	}
}

// InvalidateView bumps the generation so every scope of the view misses.
func (v *Views) InvalidateView(ctx context.Context, view string) {
	if v == nil || v.store == nil {
		return
	}
	if _, err := v.store.Incr(ctx, v.store.GenerationKey(view)); err != nil {
		v.warn(ctx, view, "cache.view.invalidate_failed", err)
	}
}

func (v *Views) key(ctx context.Context, view, scope string) (string, error) {
	generation, err := v.generation(ctx, v.store.GenerationKey(view))
	if err != nil {
		return "", err
	}
	scopeGeneration, err := v.generation(ctx, v.scopeGenerationKey(view, scope))
	if err != nil {
		return "", err
	}
	return v.store.ViewKey(view, generation, scope+":"+strconv.FormatInt(scopeGeneration, 10)), nil
}

func (v *Views) scopeGenerationKey(view, scope string) string {
	return v.store.GenerationKey(view + ":" + scope)
}

func (v *Views) generation(ctx context.Context, key string) (int64, error) {
	raw, err := v.store.Get(ctx, key)
	if err != nil {
		if redis.IsMiss(err) {
			return 0, nil
		}
		return 0, err
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("view generation is not an integer")
	}
	return generation, nil
}

func (v *Views) warn(ctx context.Context, view, msg string, err error) {
	if v.logg == nil {
		return
	}
	fields := map[string]any{"view": view}
	if err != nil {
		fields["error"] = err.Error()
	}
	v.logg.Warn(v.logg.WithFields(ctx, fields), msg)
}
