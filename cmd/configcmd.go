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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/serviceconfig/configdb"
	"github.com/cardinalhq/serviceconfig/configstore"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Author service configurations in the config database",
	}
	configCmd.PersistentFlags().String("project", "", "project id (UUID)")
	_ = configCmd.MarkPersistentFlagRequired("project")

	setCmd := &cobra.Command{
		Use:   "set <service> <section-file>",
		Short: "Write a service's entity-keyed config section from a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			projectID, err := projectFlag(c)
			if err != nil {
				return err
			}
			return runConfigSet(c.Context(), projectID, args[0], args[1])
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <service>",
		Short: "Print a service's entity-keyed config section as stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			projectID, err := projectFlag(c)
			if err != nil {
				return err
			}
			return runConfigGet(c.Context(), projectID, args[0], os.Stdout)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <service>",
		Short: "Delete a service's config section",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			projectID, err := projectFlag(c)
			if err != nil {
				return err
			}
			return withConfigDB(c.Context(), func(ctx context.Context, store *configdb.Store) error {
				return store.DeleteProjectServiceConfig(ctx, projectID, args[0])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every service's config section for a project",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			projectID, err := projectFlag(c)
			if err != nil {
				return err
			}
			return runConfigList(c.Context(), projectID)
		},
	}

	addEntityCmd := &cobra.Command{
		Use:   "add-entity <entity-id>",
		Short: "Register an entity as belonging to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			projectID, err := projectFlag(c)
			if err != nil {
				return err
			}
			entityID := args[0]
			if entityID == "" || entityID == configstore.GlobalKey {
				return fmt.Errorf("entity id %q is not allowed: ids must be non-empty and must not equal the reserved global key", entityID)
			}
			return withConfigDB(c.Context(), func(ctx context.Context, store *configdb.Store) error {
				return store.UpsertEntity(ctx, entityID, projectID)
			})
		},
	}

	configCmd.AddCommand(getCmd, setCmd, deleteCmd, listCmd, addEntityCmd)
	rootCmd.AddCommand(configCmd)
}

func projectFlag(c *cobra.Command) (uuid.UUID, error) {
	raw, _ := c.Flags().GetString("project")
	projectID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid project id %q: %w", raw, err)
	}
	return projectID, nil
}

func withConfigDB(ctx context.Context, fn func(context.Context, *configdb.Store) error) error {
	store, err := configdb.ConfigDBStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open config database: %w", err)
	}
	defer store.Close()
	return fn(ctx, store)
}

func runConfigSet(ctx context.Context, projectID uuid.UUID, serviceName, sectionFile string) error {
	contents, err := os.ReadFile(sectionFile)
	if err != nil {
		return fmt.Errorf("failed to read section file %s: %w", sectionFile, err)
	}

	var section configstore.ServiceSection
	if err := yaml.Unmarshal(contents, &section); err != nil {
		return fmt.Errorf("failed to unmarshal section file %s: %w", sectionFile, err)
	}
	for key := range section {
		if key == "" {
			return fmt.Errorf("section file %s contains an empty entity key", sectionFile)
		}
	}

	// Stored as JSONB; the global "*" key is a legal section key here.
	encoded, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to encode section: %w", err)
	}

	return withConfigDB(ctx, func(ctx context.Context, store *configdb.Store) error {
		return store.UpsertProjectServiceConfig(ctx, configdb.UpsertProjectServiceConfigParams{
			ProjectID:   projectID,
			ServiceName: serviceName,
			Config:      encoded,
		})
	})
}

func runConfigGet(ctx context.Context, projectID uuid.UUID, serviceName string, w io.Writer) error {
	return withConfigDB(ctx, func(ctx context.Context, store *configdb.Store) error {
		rows, err := store.GetProjectServiceConfigs(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to list service configs: %w", err)
		}
		row, ok := findServiceConfig(rows, serviceName)
		if !ok {
			return fmt.Errorf("no config section for service %q in project %s", serviceName, projectID)
		}
		fmt.Fprintln(w, string(row.Config))
		return nil
	})
}

// findServiceConfig picks serviceName's row out of a project's config rows.
func findServiceConfig(rows []configdb.ProjectServiceConfigRow, serviceName string) (configdb.ProjectServiceConfigRow, bool) {
	for _, row := range rows {
		if row.ServiceName == serviceName {
			return row, true
		}
	}
	return configdb.ProjectServiceConfigRow{}, false
}

func runConfigList(ctx context.Context, projectID uuid.UUID) error {
	return withConfigDB(ctx, func(ctx context.Context, store *configdb.Store) error {
		rows, err := store.GetProjectServiceConfigs(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to list service configs: %w", err)
		}
		for _, row := range rows {
			fmt.Printf("%s\t%s\n", row.ServiceName, row.Config)
		}
		return nil
	})
}
