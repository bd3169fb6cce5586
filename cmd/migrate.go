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
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/serviceconfig/configdb"
	configdbmigrations "github.com/cardinalhq/serviceconfig/configdb/migrations"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply config database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, doneFx, err := setupTelemetry("serviceconfig")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			pool, err := configdb.ConnectForMigrations(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect to config database: %w", err)
			}
			defer pool.Close()

			if err := configdbmigrations.RunMigrationsUp(ctx, pool); err != nil {
				return err
			}
			slog.Info("Config database migrations applied")
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
