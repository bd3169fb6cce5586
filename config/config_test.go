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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Service)
	assert.Empty(t, cfg.Store.File)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVICECONFIG_SERVICE", "webm-converter")
	t.Setenv("SERVICECONFIG_STORE_FILE", "/etc/serviceconfig/configs.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "webm-converter", cfg.Service)
	assert.Equal(t, "/etc/serviceconfig/configs.yaml", cfg.Store.File)
}
