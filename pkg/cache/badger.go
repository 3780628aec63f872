package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// badgerCache 本地持久化存储，CLI 默认驱动
type badgerCache struct {
	codec
	db *badger.DB
}

func newBadgerCache(cfg *Config) (Cache, error) {
	bc := cfg.Badger
	opts := badger.DefaultOptions(bc.Dir)
	if bc.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if err := os.MkdirAll(bc.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", ErrCacheConnection, err)
	}

	db, err := badger.Open(opts.WithSyncWrites(bc.SyncWrites).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", ErrCacheConnection, err)
	}
	return &badgerCache{codec: newCodec(cfg), db: db}, nil
}

func (b *badgerCache) Get(_ context.Context, key string, value any) error {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.key(key)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrCacheNotFound
	case err != nil:
		return opError(err)
	}
	return b.decode(data, value)
}

func (b *badgerCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := b.encode(value)
	if err != nil {
		return err
	}
	entry := badger.NewEntry([]byte(b.key(key)), data)
	if d := b.expiry(ttl); d > 0 {
		entry = entry.WithTTL(d)
	}
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(entry) }); err != nil {
		return opError(err)
	}
	return nil
}

func (b *badgerCache) Delete(_ context.Context, keys ...string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, k := range b.keys(keys) {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return opError(err)
	}
	return nil
}

func (b *badgerCache) Ping(context.Context) error {
	if b.db.IsClosed() {
		return fmt.Errorf("%w: badger is closed", ErrCacheConnection)
	}
	return nil
}

func (b *badgerCache) Close() error {
	if err := b.db.Close(); err != nil {
		return opError(err)
	}
	return nil
}
