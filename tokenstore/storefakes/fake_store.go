package storefakes

import (
	"sync"

	"github.com/promehq/go-prome-client/tokenstore"
)

var _ tokenstore.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store for tests. SetErr/GetErr, when set, are
// returned from every write/read, simulating disabled or full storage.
type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex

	SetErr error
	GetErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (f *FakeStore) Get(key string) (string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.GetErr != nil {
		return "", f.GetErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", tokenstore.ErrNotFound
	}
	return v, nil
}

func (f *FakeStore) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.values[key] = value
	return nil
}

func (f *FakeStore) Remove(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.values, key)
	return nil
}

// Has reports whether key currently holds a value.
func (f *FakeStore) Has(key string) bool {
	f.lock.RLock()
	defer f.lock.RUnlock()
	_, ok := f.values[key]
	return ok
}

// Len returns the number of stored keys.
func (f *FakeStore) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return len(f.values)
}
