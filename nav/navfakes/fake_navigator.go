package navfakes

import (
	"sync"

	"github.com/promehq/go-prome-client/nav"
)

var _ nav.Navigator = (*FakeNavigator)(nil)

// FakeNavigator records every navigation request for assertions.
type FakeNavigator struct {
	routes []string
	lock   sync.Mutex
}

func NewFakeNavigator() *FakeNavigator {
	return &FakeNavigator{}
}

func (f *FakeNavigator) NavigateTo(route string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.routes = append(f.routes, route)
}

// Routes returns a copy of the recorded navigations in order.
func (f *FakeNavigator) Routes() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]string, len(f.routes))
	copy(out, f.routes)
	return out
}

// Last returns the most recent navigation, or "" when none happened.
func (f *FakeNavigator) Last() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.routes) == 0 {
		return ""
	}
	return f.routes[len(f.routes)-1]
}
