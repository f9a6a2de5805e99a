package session

import "context"

// Refinement is the awaitable handle returned by Login and
// RefreshSubscription. The subscription fetch it tracks never fails
// outward; on any error it resolves to the non-premium default. Callers
// that don't care simply drop the handle.
type Refinement struct {
	done chan struct{}
	sub  Subscription
}

func newRefinement() *Refinement {
	return &Refinement{done: make(chan struct{})}
}

func (r *Refinement) complete(sub Subscription) {
	r.sub = sub
	close(r.done)
}

// ResolvedRefinement returns a handle that has already resolved to sub.
// Meant for fakes standing in for the manager.
func ResolvedRefinement(sub Subscription) *Refinement {
	r := newRefinement()
	r.complete(sub)
	return r
}

// Done is closed once the subscription has resolved.
func (r *Refinement) Done() <-chan struct{} {
	return r.done
}

// Await blocks until the subscription resolves or ctx is done.
func (r *Refinement) Await(ctx context.Context) (Subscription, error) {
	select {
	case <-r.done:
		return r.sub, nil
	case <-ctx.Done():
		return Subscription{}, ctx.Err()
	}
}
