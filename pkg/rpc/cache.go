package rpc

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// cacheKey identifies one (account, token) pair. Addresses are copied
// into plain strings so they work as map keys without the caller having
// to worry about slice aliasing.
type cacheKey struct {
	Account string
	Token   string
}

func newCacheKey(account, token Address) cacheKey {
	return cacheKey{Account: string(account), Token: string(token)}
}

// cacheEntry pairs a key with its record for cbor (de)serialization,
// since cbor has no native way to marshal a Go map keyed by a struct.
type cacheEntry struct {
	Key    cacheKey
	Record BalanceRecord
}

// Cache holds the last-observed BalanceRecord per (account, token),
// per §4.6's closing paragraph: "the client caches the last-observed
// BalanceRecord for an account and refreshes before any proof-bearing
// operation to avoid building proofs against stale inputs." pkg/client
// is responsible for the refresh-before-proof discipline; this type is
// just the storage, safe for concurrent use by operations on different
// pairs.
//
// Grounded on the dlTable cache in pkg/elgamal/dlsearch.go (a
// mutex-guarded map, populated lazily, with the mutex taken on every
// access) for the concurrency shape, and on
// pkg/zk/elog/elog_test.go's direct cbor.Marshal/Unmarshal round-trip of
// a plain struct for how this repository's pack uses cbor.
type Cache struct {
	mu      sync.Mutex
	records map[cacheKey]*BalanceRecord
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[cacheKey]*BalanceRecord)}
}

// Get returns a copy of the cached record for (account, token), or
// (nil, false) if nothing has been observed yet.
func (c *Cache) Get(account, token Address) (*BalanceRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[newCacheKey(account, token)]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// Put installs record as the last-observed state for (account, token),
// overwriting whatever was cached before.
func (c *Cache) Put(account, token Address, record *BalanceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *record
	c.records[newCacheKey(account, token)] = &cp
}

// Invalidate drops the cached record for (account, token), forcing the
// next read to go to the RPC collaborator. pkg/client calls it after
// every submission, successful or not, since the submission may have
// changed on-chain state.
func (c *Cache) Invalidate(account, token Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, newCacheKey(account, token))
}

// Snapshot serializes the whole cache via cbor, for a host process to
// persist across restarts (e.g. to a local file) and later Restore.
func (c *Cache) Snapshot() ([]byte, error) {
	c.mu.Lock()
	flat := make([]cacheEntry, 0, len(c.records))
	for k, v := range c.records {
		flat = append(flat, cacheEntry{Key: k, Record: *v})
	}
	c.mu.Unlock()

	out, err := cbor.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("rpc: cache snapshot: %w", err)
	}
	return out, nil
}

// Restore replaces the cache's contents with a previously-Snapshot'd
// encoding.
func (c *Cache) Restore(data []byte) error {
	var flat []cacheEntry
	if err := cbor.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("rpc: cache restore: %w", err)
	}

	records := make(map[cacheKey]*BalanceRecord, len(flat))
	for _, e := range flat {
		rec := e.Record
		records[e.Key] = &rec
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	return nil
}
