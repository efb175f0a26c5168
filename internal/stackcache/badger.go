// AngelaMos | 2026
// badger.go

package stackcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

// BadgerStore is the embedded backend for single-node deployments.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a store at path. An empty path opens an in-memory store.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(_ context.Context, archetypeID string) (stack.Stack, error) {
	var s stack.Stack

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + archetypeID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound(archetypeID)
		}
		if err != nil {
			return fmt.Errorf("badger get: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if err != nil {
		return stack.Stack{}, err
	}
	return s, nil
}

func (b *BadgerStore) Put(_ context.Context, s stack.Stack) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode stack %s: %w", s.ArchetypeID, err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+s.ArchetypeID), data)
	})
}

func (b *BadgerStore) Delete(_ context.Context, archetypeID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keyPrefix + archetypeID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("badger delete: %w", err)
		}
		return nil
	})
}

func (b *BadgerStore) List(_ context.Context) ([]stack.Stack, error) {
	out := []stack.Stack{}

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var s stack.Stack
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BadgerStore) Ping(context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
