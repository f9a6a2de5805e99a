package tokenstore

import (
	"github.com/pkg/errors"
	"github.com/timshannon/badgerhold/v4"
)

// entry is the stored record type. Keyed by the storage key name.
type entry struct {
	Key   string `badgerhold:"key"`
	Value string
}

// BadgerStore is a Store backed by a local BadgerDB via badgerhold. This is
// the durable equivalent of the browser's per-origin key/value storage.
type BadgerStore struct {
	store *badgerhold.Store
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (creating if needed) the badger-backed store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // badger's internal logging is too chatty

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "[OpenBadger] badgerhold.Open")
	}
	return &BadgerStore{store: store}, nil
}

// Close closes the underlying database.
func (b *BadgerStore) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func (b *BadgerStore) Get(key string) (string, error) {
	var e entry
	if err := b.store.Get(key, &e); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "[BadgerStore.Get] store.Get")
	}
	return e.Value, nil
}

func (b *BadgerStore) Set(key, value string) error {
	if err := b.store.Upsert(key, &entry{Key: key, Value: value}); err != nil {
		return errors.Wrap(err, "[BadgerStore.Set] store.Upsert")
	}
	return nil
}

func (b *BadgerStore) Remove(key string) error {
	if err := b.store.Delete(key, &entry{}); err != nil && err != badgerhold.ErrNotFound {
		return errors.Wrap(err, "[BadgerStore.Remove] store.Delete")
	}
	return nil
}
