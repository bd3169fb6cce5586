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

// Package configstore defines the raw service-configuration data model and
// the Store interface that supplies it, with file- and database-backed
// implementations.
package configstore

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"os"

	"github.com/cardinalhq/serviceconfig/configdb"
	"github.com/cardinalhq/serviceconfig/internal/dbopen"
)

// GlobalKey is the reserved key within a service section whose settings
// apply to every entity. Entity ids must never equal this value.
const GlobalKey = "*"

// Settings is a flat mapping of setting name to value. Nested values are
// opaque: merging replaces them wholesale, it never recurses into them.
type Settings map[string]any

// Clone returns a shallow copy of s. A nil receiver yields an empty,
// non-nil Settings.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	maps.Copy(out, s)
	return out
}

// ServiceSection maps an entity id (or GlobalKey) to that entity's settings
// for a single service.
type ServiceSection map[string]Settings

// RawConfig is the full nested configuration mapping for a project:
// service name to entity-keyed section. It is read-only once fetched.
type RawConfig map[string]ServiceSection

var (
	// ErrNotFound indicates the entity id (or its owning project) does not
	// resolve to any known configuration source.
	ErrNotFound = errors.New("configstore: entity not found")

	// ErrInvalidEntityID indicates the caller passed an entity id the store
	// cannot accept, such as an empty id where one is required or the
	// reserved global key.
	ErrInvalidEntityID = errors.New("configstore: invalid entity id")
)

// Store supplies the raw nested configuration mapping for the project that
// owns an entity.
type Store interface {
	// FetchRawConfig resolves entityID to its owning project and returns
	// that project's full service-configuration mapping. A project with no
	// configuration yields an empty (non-nil) RawConfig. Returns ErrNotFound
	// when the entity does not resolve, and ErrInvalidEntityID when the
	// backend requires an entity id and none (or the reserved global key)
	// was given.
	FetchRawConfig(ctx context.Context, entityID string) (RawConfig, error)
}

// SetupStore selects a config store backend from the environment: the
// database store when CONFIGDB_* is configured, otherwise the file store
// from SERVICE_CONFIG_FILE.
func SetupStore(ctx context.Context) (Store, error) {
	cdb, err := configdb.ConfigDBStore(ctx)
	if err == nil {
		slog.Info("Using database config store")
		return NewDatabaseStore(cdb), nil
	}
	if !errors.Is(err, dbopen.ErrDatabaseNotConfigured) {
		return nil, err
	}

	slog.Info("Database config store not configured, falling back to file store", "error", err)

	path := os.Getenv("SERVICE_CONFIG_FILE")
	if path == "" {
		path = "/app/config/service_configs.yaml"
	}
	slog.Info("Using file config store", "path", path)
	return NewFileStore(path)
}
