// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package resolver merges three tiers of service configuration — hardcoded
// defaults, the global ("*") section, and the entity-specific section — into
// a single flat mapping, caching one resolved result per entity.
//
// Resolution priority: defaults < global (*) < entity-specific.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/cardinalhq/serviceconfig/configstore"
)

// Resolver resolves and caches the configuration of one service. A Resolver
// owns its cache exclusively and is not safe for concurrent use; give each
// worker its own instance or guard calls with a mutex.
type Resolver struct {
	store       configstore.Store
	serviceName string
	defaults    configstore.Settings
	cache       map[string]configstore.Settings
}

// New creates a Resolver for serviceName backed by store. defaults holds the
// hardcoded fallback settings and may be nil; it is copied, so later mutation
// by the caller does not affect resolution.
func New(store configstore.Store, serviceName string, defaults configstore.Settings) *Resolver {
	return &Resolver{
		store:       store,
		serviceName: serviceName,
		defaults:    defaults.Clone(),
		cache:       make(map[string]configstore.Settings),
	}
}

// GetConfig returns the resolved configuration for entityID, fetching and
// merging on first use and serving from cache afterwards. An empty entityID
// resolves defaults plus the global tier only; whether the backing store
// accepts an id-less fetch is the store's contract (the database store does
// not). Fetch errors propagate unchanged and never populate the cache.
func (r *Resolver) GetConfig(ctx context.Context, entityID string) (configstore.Settings, error) {
	if entityID == configstore.GlobalKey {
		return nil, fmt.Errorf("%w: %q is reserved for the global tier", configstore.ErrInvalidEntityID, entityID)
	}

	if cached, ok := r.cache[entityID]; ok {
		slog.Debug("Using cached config", "service", r.serviceName, "entity", entityID)
		recordCacheHit(ctx, r.serviceName)
		return cached.Clone(), nil
	}

	raw, err := r.store.FetchRawConfig(ctx, entityID)
	recordStoreFetch(ctx, r.serviceName)
	if err != nil {
		return nil, err
	}

	// A service with no section at all is not an error: every tier is
	// optional and resolution degrades to the defaults.
	section := raw[r.serviceName]
	resolved := r.resolve(section, entityID)
	slog.Info("Loaded config", "service", r.serviceName, "entity", entityID, "settings", len(resolved))

	r.cache[entityID] = resolved
	return resolved.Clone(), nil
}

// resolve performs the three-tier shallow merge. Later tiers overwrite
// earlier ones key by key; nested values are replaced wholesale.
func (r *Resolver) resolve(section configstore.ServiceSection, entityID string) configstore.Settings {
	resolved := r.defaults.Clone()
	maps.Copy(resolved, section[configstore.GlobalKey])
	if entityID != "" {
		maps.Copy(resolved, section[entityID])
	}
	return resolved
}

// InvalidateEntity drops the cached configuration for one entity. Dropping
// an entity that was never cached is a no-op.
func (r *Resolver) InvalidateEntity(entityID string) {
	if _, ok := r.cache[entityID]; ok {
		delete(r.cache, entityID)
		slog.Info("Invalidated config cache", "service", r.serviceName, "entity", entityID)
	}
}

// InvalidateAll drops every cached configuration for this resolver.
func (r *Resolver) InvalidateAll() {
	clear(r.cache)
	slog.Info("Invalidated all config caches", "service", r.serviceName)
}

// ReloadConfig forces a fresh fetch and merge for entityID, replacing its
// cache entry. Other entities' cached configurations are untouched.
func (r *Resolver) ReloadConfig(ctx context.Context, entityID string) (configstore.Settings, error) {
	r.InvalidateEntity(entityID)
	return r.GetConfig(ctx, entityID)
}
