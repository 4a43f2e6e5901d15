package identity

import (
	"Fideliza-Backend/entities"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// cachedIdentityRepository is a read-through cache over the exact-match
// lookups. Identity data is read-mostly, so a short TTL is enough; name
// lookups are fuzzy and always go to the database.
type cachedIdentityRepository struct {
	IdentityRepository

	client *redis.Client
	ttl    time.Duration
}

func NewCachedIdentityRepository(inner IdentityRepository, client *redis.Client, ttl time.Duration) IdentityRepository {
	return &cachedIdentityRepository{
		IdentityRepository: inner,
		client:             client,
		ttl:                ttl,
	}
}

func (c *cachedIdentityRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return cachedLookup(ctx, c, fmt.Sprintf("identity:user:email:%s", email), func() (*entities.User, error) {
		return c.IdentityRepository.GetUserByEmail(ctx, email)
	})
}

func (c *cachedIdentityRepository) GetUserByPhone(ctx context.Context, phone string) (*entities.User, error) {
	return cachedLookup(ctx, c, fmt.Sprintf("identity:user:phone:%s", phone), func() (*entities.User, error) {
		return c.IdentityRepository.GetUserByPhone(ctx, phone)
	})
}

func (c *cachedIdentityRepository) GetStoreByNumber(ctx context.Context, number string) (*entities.Store, error) {
	return cachedLookup(ctx, c, fmt.Sprintf("identity:store:number:%s", number), func() (*entities.Store, error) {
		return c.IdentityRepository.GetStoreByNumber(ctx, number)
	})
}

func cachedLookup[T any](ctx context.Context, c *cachedIdentityRepository, key string, load func() (*T, error)) (*T, error) {
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	value, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(value); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warnf("identity cache: failed to set %s: %v", key, err)
		}
	}
	return value, nil
}
