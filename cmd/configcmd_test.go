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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardinalhq/serviceconfig/configdb"
)

func TestFindServiceConfig(t *testing.T) {
	rows := []configdb.ProjectServiceConfigRow{
		{ServiceName: "video-thumbnail", Config: []byte(`{"ds1": {"width": 320}}`)},
		{ServiceName: "webm-converter", Config: []byte(`{"*": {"quality": 10}}`)},
	}

	t.Run("present", func(t *testing.T) {
		row, ok := findServiceConfig(rows, "webm-converter")
		assert.True(t, ok)
		assert.Equal(t, []byte(`{"*": {"quality": 10}}`), row.Config)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := findServiceConfig(rows, "image-classifier")
		assert.False(t, ok)
	})
}
