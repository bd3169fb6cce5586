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
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reload <entity-id>",
		Short: "Discard an entity's cached configuration and resolve it fresh",
		Long: `Drop any cached configuration for the entity, fetch the raw configuration
from the config store again, and print the newly merged result. Other
entities' cached configurations are untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			service, _ := c.Flags().GetString("service")
			output, _ := c.Flags().GetString("output")

			ctx, doneFx, err := setupTelemetry("serviceconfig")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			return runResolve(ctx, service, args[0], output, true, os.Stdout)
		},
	}
	cmd.Flags().String("service", "", "service name to resolve (defaults to the configured service)")
	cmd.Flags().String("output", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(cmd)
}
