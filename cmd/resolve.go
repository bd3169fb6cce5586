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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/serviceconfig/config"
	"github.com/cardinalhq/serviceconfig/configstore"
	"github.com/cardinalhq/serviceconfig/resolver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "resolve [entity-id]",
		Short: "Resolve the merged configuration for an entity",
		Long: `Fetch the raw configuration from the config store and merge the defaults,
global ("*"), and entity-specific tiers. With no entity id, only the defaults
and global tiers apply (the backing store must support id-less fetches).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			service, _ := c.Flags().GetString("service")
			output, _ := c.Flags().GetString("output")

			entityID := ""
			if len(args) == 1 {
				entityID = args[0]
			}

			ctx, doneFx, err := setupTelemetry("serviceconfig")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			return runResolve(ctx, service, entityID, output, false, os.Stdout)
		},
	}
	cmd.Flags().String("service", "", "service name to resolve (defaults to the configured service)")
	cmd.Flags().String("output", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(cmd)
}

// runResolve resolves entityID's merged configuration and writes it to w.
// With fresh set, any cached entry for the entity is discarded first and the
// store is fetched again.
func runResolve(ctx context.Context, service, entityID, output string, fresh bool, w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if service == "" {
		service = cfg.Service
	}
	if service == "" {
		return fmt.Errorf("no service name given: use --service or set service in the configuration")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := store.(interface{ Close() }); ok {
		defer closer.Close()
	}

	res := resolver.New(store, service, cfg.Defaults)
	var resolved configstore.Settings
	if fresh {
		resolved, err = res.ReloadConfig(ctx, entityID)
	} else {
		resolved, err = res.GetConfig(ctx, entityID)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve config for service %q: %w", service, err)
	}

	return printSettings(w, resolved, output)
}

// openStore pins the file backend when one is configured explicitly, and
// otherwise falls back to environment-driven selection.
func openStore(ctx context.Context, cfg *config.Config) (configstore.Store, error) {
	if cfg.Store.File != "" {
		return configstore.NewFileStore(cfg.Store.File)
	}
	return configstore.SetupStore(ctx)
}

func printSettings(w io.Writer, settings configstore.Settings, output string) error {
	switch output {
	case "json":
		out, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprintln(w, string(out))
	case "yaml":
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		fmt.Fprint(w, string(out))
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	return nil
}
