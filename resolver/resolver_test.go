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

package resolver

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/serviceconfig/configstore"
)

// mockStore is a test mock for configstore.Store.
type mockStore struct {
	raw        configstore.RawConfig
	err        error
	fetchCount atomic.Int32
}

func (m *mockStore) FetchRawConfig(ctx context.Context, entityID string) (configstore.RawConfig, error) {
	m.fetchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.raw, nil
}

func webmSection() configstore.RawConfig {
	return configstore.RawConfig{
		"webm-converter": {
			configstore.GlobalKey: {"quality": 10, "format": "mp4"},
			"ds1":                 {"quality": 20},
		},
	}
}

func TestResolver_TierPrecedence(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", configstore.Settings{"quality": 5})

	t.Run("no entity resolves defaults plus global", func(t *testing.T) {
		got, err := res.GetConfig(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 10, "format": "mp4"}, got)
	})

	t.Run("entity-specific tier wins", func(t *testing.T) {
		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, got)
	})

	t.Run("entity without overrides gets global tier", func(t *testing.T) {
		got, err := res.GetConfig(ctx, "ds2")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 10, "format": "mp4"}, got)
	})
}

func TestResolver_DefaultsPassThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("absent service section returns defaults unchanged", func(t *testing.T) {
		mock := &mockStore{raw: configstore.RawConfig{
			"some-other-service": {
				configstore.GlobalKey: {"quality": 99},
			},
		}}
		defaults := configstore.Settings{"quality": 5, "format": "webm"}
		res := New(mock, "webm-converter", defaults)

		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Equal(t, defaults, got)
	})

	t.Run("nil defaults resolve to empty settings", func(t *testing.T) {
		mock := &mockStore{raw: configstore.RawConfig{}}
		res := New(mock, "webm-converter", nil)

		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})
}

func TestResolver_EntityOnlySetting(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: configstore.RawConfig{
		"webm-converter": {
			"ds1": {"bitrate": 4000},
		},
	}}
	res := New(mock, "webm-converter", nil)

	got, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"bitrate": 4000}, got)
}

func TestResolver_CachingBehavior(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", configstore.Settings{"quality": 5})

	t.Run("first call fetches from store", func(t *testing.T) {
		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, got)
		assert.Equal(t, int32(1), mock.fetchCount.Load())
	})

	t.Run("second call uses cache", func(t *testing.T) {
		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, got)
		// Should NOT have incremented - served from cache
		assert.Equal(t, int32(1), mock.fetchCount.Load())
	})

	t.Run("cached value ignores store changes", func(t *testing.T) {
		mock.raw = configstore.RawConfig{
			"webm-converter": {
				"ds1": {"quality": 99},
			},
		}
		got, err := res.GetConfig(ctx, "ds1")
		require.NoError(t, err)
		assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, got)
		assert.Equal(t, int32(1), mock.fetchCount.Load())
	})
}

func TestResolver_InvalidateEntity(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", nil)

	_, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	require.Equal(t, int32(1), mock.fetchCount.Load())

	res.InvalidateEntity("ds1")

	_, err = res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), mock.fetchCount.Load())

	// Invalidating an entity that was never cached is a no-op.
	res.InvalidateEntity("never-seen")
}

func TestResolver_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", nil)

	_, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	_, err = res.GetConfig(ctx, "ds2")
	require.NoError(t, err)
	require.Equal(t, int32(2), mock.fetchCount.Load())

	res.InvalidateAll()

	_, err = res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	_, err = res.GetConfig(ctx, "ds2")
	require.NoError(t, err)
	assert.Equal(t, int32(4), mock.fetchCount.Load())
}

func TestResolver_ReloadConfig(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", configstore.Settings{"quality": 5})

	_, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	_, err = res.GetConfig(ctx, "ds2")
	require.NoError(t, err)
	require.Equal(t, int32(2), mock.fetchCount.Load())

	// The store's data changes out from under the cache.
	mock.raw = configstore.RawConfig{
		"webm-converter": {
			configstore.GlobalKey: {"quality": 11, "format": "mp4"},
			"ds1":                 {"quality": 30},
		},
	}

	got, err := res.ReloadConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"quality": 30, "format": "mp4"}, got)
	assert.Equal(t, int32(3), mock.fetchCount.Load())

	// ds2's cache entry is untouched by ds1's reload.
	got, err = res.GetConfig(ctx, "ds2")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"quality": 10, "format": "mp4"}, got)
	assert.Equal(t, int32(3), mock.fetchCount.Load())
}

func TestResolver_GlobalKeyRejected(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", nil)

	_, err := res.GetConfig(ctx, configstore.GlobalKey)
	assert.ErrorIs(t, err, configstore.ErrInvalidEntityID)
	assert.Equal(t, int32(0), mock.fetchCount.Load())
}

func TestResolver_FetchErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{err: configstore.ErrNotFound}
	res := New(mock, "webm-converter", configstore.Settings{"quality": 5})

	_, err := res.GetConfig(ctx, "ds1")
	assert.ErrorIs(t, err, configstore.ErrNotFound)
	assert.Equal(t, int32(1), mock.fetchCount.Load())

	// The failure is not cached: the next call fetches again and succeeds.
	mock.err = nil
	mock.raw = webmSection()

	got, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, got)
	assert.Equal(t, int32(2), mock.fetchCount.Load())
}

func TestResolver_ResultIsolation(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: webmSection()}
	res := New(mock, "webm-converter", nil)

	first, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	first["quality"] = 0
	first["injected"] = true

	second, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"quality": 20, "format": "mp4"}, second)
}

func TestResolver_DefaultsCopiedAtConstruction(t *testing.T) {
	ctx := context.Background()
	mock := &mockStore{raw: configstore.RawConfig{}}

	defaults := configstore.Settings{"quality": 5}
	res := New(mock, "webm-converter", defaults)
	defaults["quality"] = 42

	got, err := res.GetConfig(ctx, "ds1")
	require.NoError(t, err)
	assert.Equal(t, configstore.Settings{"quality": 5}, got)
}
