// Package cache stores fetched evidence bytes so repeated packet
// generations for the same claim do not hit object storage again.
package cache

import (
	"context"
	"time"
)

// Cache is a byte cache keyed by resolved resource URL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
