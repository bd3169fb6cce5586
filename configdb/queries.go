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

// Package configdb is the query layer over the service-configuration
// database: entity-to-project resolution and per-project service config
// sections.
package configdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx connection behavior the queries need; both
// *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries executes individual statements against the config database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// ProjectServiceConfigRow is one service's entity-keyed config section,
// stored as JSONB.
type ProjectServiceConfigRow struct {
	ServiceName string
	Config      []byte
}

const getEntityProject = `
SELECT project_id FROM entities WHERE id = $1
`

// GetEntityProjectUncached resolves an entity id to its owning project.
// Returns pgx.ErrNoRows when the entity is unknown.
func (q *Queries) GetEntityProjectUncached(ctx context.Context, entityID string) (uuid.UUID, error) {
	var projectID uuid.UUID
	err := q.db.QueryRow(ctx, getEntityProject, entityID).Scan(&projectID)
	return projectID, err
}

const getProjectServiceConfigs = `
SELECT service_name, config
FROM project_service_configs
WHERE project_id = $1
ORDER BY service_name
`

// GetProjectServiceConfigs returns every service's config section for a
// project. A project with no rows yields an empty slice, not an error.
func (q *Queries) GetProjectServiceConfigs(ctx context.Context, projectID uuid.UUID) ([]ProjectServiceConfigRow, error) {
	rows, err := q.db.Query(ctx, getProjectServiceConfigs, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProjectServiceConfigRow
	for rows.Next() {
		var row ProjectServiceConfigRow
		if err := rows.Scan(&row.ServiceName, &row.Config); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

const upsertEntity = `
INSERT INTO entities (id, project_id)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET project_id = EXCLUDED.project_id
`

// UpsertEntity registers an entity as belonging to a project.
func (q *Queries) UpsertEntity(ctx context.Context, entityID string, projectID uuid.UUID) error {
	_, err := q.db.Exec(ctx, upsertEntity, entityID, projectID)
	return err
}

// UpsertProjectServiceConfigParams are the arguments for
// UpsertProjectServiceConfig.
type UpsertProjectServiceConfigParams struct {
	ProjectID   uuid.UUID
	ServiceName string
	Config      []byte
}

const upsertProjectServiceConfig = `
INSERT INTO project_service_configs (project_id, service_name, config)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, service_name) DO UPDATE SET config = EXCLUDED.config
`

// UpsertProjectServiceConfig writes one service's config section for a
// project, replacing any existing section.
func (q *Queries) UpsertProjectServiceConfig(ctx context.Context, arg UpsertProjectServiceConfigParams) error {
	_, err := q.db.Exec(ctx, upsertProjectServiceConfig, arg.ProjectID, arg.ServiceName, arg.Config)
	return err
}

const deleteProjectServiceConfig = `
DELETE FROM project_service_configs
WHERE project_id = $1 AND service_name = $2
`

// DeleteProjectServiceConfig removes one service's config section.
func (q *Queries) DeleteProjectServiceConfig(ctx context.Context, projectID uuid.UUID, serviceName string) error {
	_, err := q.db.Exec(ctx, deleteProjectServiceConfig, projectID, serviceName)
	return err
}
