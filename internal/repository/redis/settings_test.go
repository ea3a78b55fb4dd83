package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*SettingsStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSettingsStore(client), mr
}

func TestSettingsStore_GetSet(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("unset key returns empty string", func(t *testing.T) {
		val, err := store.Get(ctx, "active", "channel-1")
		require.NoError(t, err)
		assert.Empty(t, val)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "active", "true", "channel-1"))

		val, err := store.Get(ctx, "active", "channel-1")
		require.NoError(t, err)
		assert.Equal(t, "true", val)
	})

	t.Run("settings are scoped per channel", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "active", "true", "channel-1"))

		val, err := store.Get(ctx, "active", "channel-2")
		require.NoError(t, err)
		assert.Empty(t, val)
	})

	t.Run("overwrite replaces the value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "active", "true", "channel-1"))
		require.NoError(t, store.Set(ctx, "active", "false", "channel-1"))

		val, err := store.Get(ctx, "active", "channel-1")
		require.NoError(t, err)
		assert.Equal(t, "false", val)
	})
}

func TestSettingsStore_ShopkeyBindings(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store has no bindings", func(t *testing.T) {
		store, _ := setupTestStore(t)
		bindings, err := store.ShopkeyBindings(ctx)
		require.NoError(t, err)
		assert.Empty(t, bindings)
	})

	t.Run("binding with channel id round trips", func(t *testing.T) {
		store, _ := setupTestStore(t)
		channelID := "channel-1"
		require.NoError(t, store.BindShopkey(ctx, "BBBB", &channelID))

		bindings, err := store.ShopkeyBindings(ctx)
		require.NoError(t, err)
		require.Len(t, bindings, 1)
		assert.Equal(t, "BBBB", bindings[0].Shopkey)
		require.NotNil(t, bindings[0].ChannelID)
		assert.Equal(t, "channel-1", *bindings[0].ChannelID)
	})

	t.Run("binding without channel id maps to ambient channel", func(t *testing.T) {
		store, _ := setupTestStore(t)
		require.NoError(t, store.BindShopkey(ctx, "AAAA", nil))

		bindings, err := store.ShopkeyBindings(ctx)
		require.NoError(t, err)
		require.Len(t, bindings, 1)
		assert.Nil(t, bindings[0].ChannelID)
	})

	t.Run("bindings come back sorted by shopkey", func(t *testing.T) {
		store, _ := setupTestStore(t)
		channelID := "channel-1"
		require.NoError(t, store.BindShopkey(ctx, "CCCC", &channelID))
		require.NoError(t, store.BindShopkey(ctx, "AAAA", nil))
		require.NoError(t, store.BindShopkey(ctx, "BBBB", &channelID))

		bindings, err := store.ShopkeyBindings(ctx)
		require.NoError(t, err)
		require.Len(t, bindings, 3)
		assert.Equal(t, "AAAA", bindings[0].Shopkey)
		assert.Equal(t, "BBBB", bindings[1].Shopkey)
		assert.Equal(t, "CCCC", bindings[2].Shopkey)
	})

	t.Run("rebinding a shopkey replaces its channel", func(t *testing.T) {
		store, _ := setupTestStore(t)
		channelID := "channel-1"
		require.NoError(t, store.BindShopkey(ctx, "AAAA", &channelID))
		require.NoError(t, store.BindShopkey(ctx, "AAAA", nil))

		bindings, err := store.ShopkeyBindings(ctx)
		require.NoError(t, err)
		require.Len(t, bindings, 1)
		assert.Nil(t, bindings[0].ChannelID)
	})
}
