package service

import (
	"context"
	"sync"
	"time"

	dErrors "party/pkg/domain-errors"
)

// numPartyShards bounds the in-memory lock table. Updates to the same party
// always hash to the same shard.
const numPartyShards = 64

// defaultPartyTxTimeout is the maximum duration for a party transaction.
const defaultPartyTxTimeout = 5 * time.Second

// shardedPartyTx serializes transactions per party key with sharded mutexes.
// Used with the in-memory store, where the store's own lock makes each call
// atomic and this lock makes read-check-write atomic per party.
type shardedPartyTx struct {
	shards  [numPartyShards]sync.Mutex
	timeout time.Duration
}

func newInMemoryStoreTx() *shardedPartyTx {
	return &shardedPartyTx{}
}

func (t *shardedPartyTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultPartyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

type txLockKey struct{}

// withLockKey scopes the in-memory transaction to one party.
func withLockKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txLockKey{}, key)
}

// selectShard picks a shard from the lock key in context, or shard 0.
func selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txLockKey{}).(string); ok && key != "" {
		return int(hashKey(key) % numPartyShards)
	}
	return 0
}

// hashKey is FNV-1a.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
