package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/pulsehub/pulsehub/internal/config"
)

const keyCheckoutUser = "checkout:init:user:%s"

// CheckoutLimiter throttles checkout-session creation per buyer.
// Every allowed request costs a gateway API call, so abuse here is
// both a cost and a fraud concern.
type CheckoutLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewCheckoutLimiter returns nil when no redis address is configured;
// callers treat a nil limiter as limiting disabled.
func NewCheckoutLimiter(cfg config.Config) *CheckoutLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" || cfg.CheckoutRateLimit.Rate <= 0 || cfg.CheckoutRateLimit.Burst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &CheckoutLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.CheckoutRateLimit.Rate,
		burst:  cfg.CheckoutRateLimit.Burst,
	}
}

// Allow reports whether the buyer may open another checkout session.
// Limiter backend errors fail open.
func (l *CheckoutLimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result, err := l.bucket.Allow(ctx, fmt.Sprintf(keyCheckoutUser, userID), l.rate, l.burst)
	if err != nil {
		return &Result{Allowed: true}, err
	}
	return result, nil
}
