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

package configdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jellydator/ttlcache/v3"
)

// Store provides all functions to execute config db queries. It keeps a
// short-lived cache of entity-to-project lookups; config rows themselves are
// always read fresh so that resolver reloads see current data.
type Store struct {
	*Queries
	connPool           *pgxpool.Pool
	entityProjectCache *ttlcache.Cache[string, uuid.UUID]
}

// NewStore creates a new Store on top of a connection pool.
func NewStore(connPool *pgxpool.Pool) *Store {
	s := &Store{
		Queries:  New(connPool),
		connPool: connPool,
		entityProjectCache: ttlcache.New(
			ttlcache.WithTTL[string, uuid.UUID](5 * time.Minute),
		),
	}
	go s.entityProjectCache.Start()
	return s
}

// Close releases the cache goroutine and the connection pool.
func (s *Store) Close() {
	s.entityProjectCache.Stop()
	if s.connPool != nil {
		s.connPool.Close()
	}
}

// GetEntityProject resolves an entity id to its owning project, serving
// repeat lookups from the cache. Failed lookups are not cached: an entity
// created moments later should resolve on the next call.
func (s *Store) GetEntityProject(ctx context.Context, entityID string) (uuid.UUID, error) {
	if item := s.entityProjectCache.Get(entityID); item != nil {
		return item.Value(), nil
	}

	projectID, err := s.GetEntityProjectUncached(ctx, entityID)
	if err != nil {
		return uuid.UUID{}, err
	}
	s.entityProjectCache.Set(entityID, projectID, ttlcache.DefaultTTL)
	return projectID, nil
}
