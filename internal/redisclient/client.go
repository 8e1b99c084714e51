package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// productCacheTTL bounds staleness of catalog reads served from cache.
// Writes invalidate eagerly; the TTL is the backstop.
const productCacheTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheProduct stores a product under its id
func (c *Client) CacheProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, productCacheTTL).Err()
}

// GetCachedProduct retrieves a cached product. A cache miss returns
// (nil, nil); callers fall back to the store.
func (c *Client) GetCachedProduct(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// InvalidateProduct drops a product from the cache after a catalog write
func (c *Client) InvalidateProduct(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// CacheProductList stores the full catalog listing
func (c *Client) CacheProductList(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "products:all", data, productCacheTTL).Err()
}

// GetCachedProductList retrieves the cached catalog listing, nil on miss
func (c *Client) GetCachedProductList(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, "products:all").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// InvalidateProductList drops the catalog listing cache
func (c *Client) InvalidateProductList(ctx context.Context) error {
	return c.rdb.Del(ctx, "products:all").Err()
}

// MarkWebhookSeen records a gateway payment id with a TTL. Returns false
// when the id was already present, letting the webhook handler short-cut
// retried deliveries before touching the store.
func (c *Client) MarkWebhookSeen(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("webhook:%s", paymentID), "1", ttl).Result()
}

// ClearWebhookSeen drops the marker so a failed confirmation can be retried.
func (c *Client) ClearWebhookSeen(ctx context.Context, paymentID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("webhook:%s", paymentID)).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
