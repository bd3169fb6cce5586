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

package resolver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("github.com/cardinalhq/serviceconfig/resolver")

	storeFetchCounter metric.Int64Counter
	cacheHitCounter   metric.Int64Counter
)

func init() {
	c, err := meter.Int64Counter(
		"serviceconfig.store.fetches",
		metric.WithDescription("Number of raw config fetches issued to the config store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create store.fetches counter: %w", err))
	}
	storeFetchCounter = c

	c, err = meter.Int64Counter(
		"serviceconfig.cache.hits",
		metric.WithDescription("Number of config resolutions served from the in-memory cache"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create cache.hits counter: %w", err))
	}
	cacheHitCounter = c
}

func recordStoreFetch(ctx context.Context, service string) {
	storeFetchCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("service", service)))
}

func recordCacheHit(ctx context.Context, service string) {
	cacheHitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("service", service)))
}
