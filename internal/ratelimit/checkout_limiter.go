package ratelimit

import (
	"context"
)

const (
	checkoutRate  = 0.5
	checkoutBurst = 5
)

// CheckoutLimiter throttles checkout initiation per visitor. Without redis
// configured the limiter disables itself and every request passes.
type CheckoutLimiter struct {
	bucket *TokenBucket
}

func NewCheckoutLimiter(bucket *TokenBucket) *CheckoutLimiter {
	return &CheckoutLimiter{bucket: bucket}
}

func (l *CheckoutLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *CheckoutLimiter) AllowVisitor(ctx context.Context, visitorID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, "ratelimit:checkout:"+visitorID, checkoutRate, checkoutBurst)
}
