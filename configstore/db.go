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

package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardinalhq/serviceconfig/configdb"
)

type databaseStore struct {
	cdb ConfigDBFetcher
}

var _ Store = (*databaseStore)(nil)

// ConfigDBFetcher is the minimal configdb surface the database store needs.
type ConfigDBFetcher interface {
	GetEntityProject(ctx context.Context, entityID string) (uuid.UUID, error)
	GetProjectServiceConfigs(ctx context.Context, projectID uuid.UUID) ([]configdb.ProjectServiceConfigRow, error)
}

// NewDatabaseStore returns a Store backed by the config database. The
// database store always requires an entity id: the entity row is how the
// owning project is found.
func NewDatabaseStore(cdb ConfigDBFetcher) Store {
	return &databaseStore{
		cdb: cdb,
	}
}

// Close releases the underlying configdb resources when the fetcher holds
// any. Callers that obtained a Store via SetupStore should Close it when
// done; the file store has nothing to release, so Store itself carries no
// Close contract.
func (s *databaseStore) Close() {
	if closer, ok := s.cdb.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (s *databaseStore) FetchRawConfig(ctx context.Context, entityID string) (RawConfig, error) {
	if entityID == "" {
		return nil, fmt.Errorf("%w: database store requires an entity id", ErrInvalidEntityID)
	}
	if entityID == GlobalKey {
		return nil, fmt.Errorf("%w: %q is reserved for the global tier", ErrInvalidEntityID, entityID)
	}

	projectID, err := s.cdb.GetEntityProject(ctx, entityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, entityID)
		}
		return nil, fmt.Errorf("failed to resolve project for entity %q: %w", entityID, err)
	}

	rows, err := s.cdb.GetProjectServiceConfigs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service configs for project %s: %w", projectID, err)
	}

	raw := RawConfig{}
	for _, row := range rows {
		var section ServiceSection
		if err := json.Unmarshal(row.Config, &section); err != nil {
			return nil, fmt.Errorf("malformed config for service %q in project %s: %w", row.ServiceName, projectID, err)
		}
		raw[row.ServiceName] = section
	}
	return raw, nil
}
