package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/searchfeed/internal/domain"
)

// Key layout: per-channel settings live in one hash each, shopkey bindings in
// a single hash mapping shopkey to channel ID (empty value = ambient channel).
const (
	settingsKeyPrefix  = "searchfeed:settings:"
	shopkeyBindingsKey = "searchfeed:shopkeys"
)

// SettingsStore implements repository.SettingsStore on Redis hashes.
type SettingsStore struct {
	client *redis.Client
}

// NewSettingsStore creates a Redis-backed settings store.
func NewSettingsStore(client *redis.Client) *SettingsStore {
	return &SettingsStore{client: client}
}

func settingsKey(channelID string) string {
	return settingsKeyPrefix + channelID
}

// Get returns the value for key scoped to the given channel, or an empty
// string if the key is unset.
func (s *SettingsStore) Get(ctx context.Context, key, channelID string) (string, error) {
	val, err := s.client.HGet(ctx, settingsKey(channelID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value for key scoped to the given channel.
func (s *SettingsStore) Set(ctx context.Context, key, value, channelID string) error {
	if err := s.client.HSet(ctx, settingsKey(channelID), key, value).Err(); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// ShopkeyBindings returns all configured shopkey to channel bindings, sorted
// by shopkey for a stable scan order.
func (s *SettingsStore) ShopkeyBindings(ctx context.Context) ([]domain.ShopkeyBinding, error) {
	raw, err := s.client.HGetAll(ctx, shopkeyBindingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load shopkey bindings: %w", err)
	}

	bindings := make([]domain.ShopkeyBinding, 0, len(raw))
	for shopkey, channelID := range raw {
		b := domain.ShopkeyBinding{Shopkey: shopkey}
		if channelID != "" {
			id := channelID
			b.ChannelID = &id
		}
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Shopkey < bindings[j].Shopkey
	})

	return bindings, nil
}

// BindShopkey maps a shopkey to a channel. A nil channelID binds the shopkey
// to the ambient channel.
func (s *SettingsStore) BindShopkey(ctx context.Context, shopkey string, channelID *string) error {
	val := ""
	if channelID != nil {
		val = *channelID
	}
	if err := s.client.HSet(ctx, shopkeyBindingsKey, shopkey, val).Err(); err != nil {
		return fmt.Errorf("bind shopkey: %w", err)
	}
	return nil
}
