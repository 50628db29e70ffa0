package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCorruptEntry marks a stored value that exists but cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	ProductKeyPrefix      = "product"
	CartKeyPrefix         = "cart"
	CheckoutFormKeyPrefix = "checkout_form"
)
