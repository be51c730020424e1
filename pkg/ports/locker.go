package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes Step and Undo on one session across replicas
// that share a SessionStore.
type DistributedLocker interface {
	// Lock blocks until key is acquired or ctx is done. The lock expires
	// after ttl if the holder disappears. The returned UnlockFunc must be
	// called by the holder.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
