// Package cache holds the short-lived quote cache. Only the quote path reads
// it; the transaction build path always works from fresh venue state.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/venue"
)

const recentQuotesKey = "quotes:recent"
const recentQuotesMax = 50

// QuoteCache caches exact-amount quote lookups. A nil *QuoteCache is a no-op,
// so callers never branch on whether redis is configured.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewQuoteCache(addr string, ttl time.Duration, log *logrus.Logger) (*QuoteCache, error) {
	if addr == "" {
		return nil, nil
	}
	if log == nil {
		log = logrus.New()
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &QuoteCache{client: client, ttl: ttl, log: log}, nil
}

// Keys are exact on venue, mint pair, and raw amount. Amounts never reuse a
// neighboring entry: constant-product output is not linear in the input.
func quoteKey(v venue.Venue, intent venue.SwapIntent) string {
	return fmt.Sprintf("quote:%s:%s:%s:%d", v, intent.InputMint, intent.OutputMint, intent.Amount)
}

func (c *QuoteCache) Get(ctx context.Context, v venue.Venue, intent venue.SwapIntent) (*venue.Quote, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, quoteKey(v, intent)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("quote cache read failed")
		}
		return nil, false
	}
	var q venue.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		c.log.WithError(err).Warn("quote cache entry undecodable, dropping")
		c.client.Del(ctx, quoteKey(v, intent))
		return nil, false
	}
	return &q, true
}

func (c *QuoteCache) Put(ctx context.Context, intent venue.SwapIntent, q *venue.Quote) {
	if c == nil || q == nil {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, quoteKey(q.Venue, intent), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("quote cache write failed")
	}
}

// AddRecent pushes a served quote onto the bounded recent list for the
// diagnostics endpoint.
func (c *QuoteCache) AddRecent(ctx context.Context, q *venue.Quote) {
	if c == nil || q == nil {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, recentQuotesKey, raw)
	pipe.LTrim(ctx, recentQuotesKey, 0, recentQuotesMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.WithError(err).Warn("recent quotes update failed")
	}
}

func (c *QuoteCache) Recent(ctx context.Context, limit int) ([]venue.Quote, error) {
	if c == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentQuotesMax {
		limit = recentQuotesMax
	}
	raws, err := c.client.LRange(ctx, recentQuotesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent quotes: %w", err)
	}
	quotes := make([]venue.Quote, 0, len(raws))
	for _, raw := range raws {
		var q venue.Quote
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *QuoteCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
