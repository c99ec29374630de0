// Package registry fans decoded events out to subscribed handlers with
// channel-scoped filtering and a wildcard scope that observes every channel.
package registry

import (
	"reflect"
	"sync"

	"github.com/d-buckner/humidi/sdk/contracts"
)

// entry pairs a handler with its identity key. Handlers keep their
// registration order; the key deduplicates repeated subscriptions of the
// same function.
type entry struct {
	key uintptr
	fn  contracts.Handler
}

// Registry is a two-level subscriber table: channel scope first, event type
// second. contracts.ChannelAll is the wildcard scope; an emission on a
// concrete channel reaches that channel's handlers and then the wildcard
// handlers, while a wildcard emission reaches only the wildcard handlers.
//
// The registry is safe for concurrent use. Emission snapshots the handler
// list before invoking, so handlers may subscribe and unsubscribe freely;
// such changes apply to later emissions only.
type Registry struct {
	mu       sync.RWMutex
	channels map[contracts.Channel]map[contracts.EventType][]entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		channels: make(map[contracts.Channel]map[contracts.EventType][]entry),
	}
}

// handlerKey derives the identity of a handler function from its code
// pointer. Distinct closures built from the same function literal share a
// code pointer and therefore count as the same handler.
func handlerKey(h contracts.Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

// On subscribes h to events of type typ on the given channel scope.
// Subscribing the same function twice for one (channel, type) pair is a
// no-op.
func (r *Registry) On(channel contracts.Channel, typ contracts.EventType, h contracts.Handler) {
	if h == nil {
		return
	}
	key := handlerKey(h)

	r.mu.Lock()
	defer r.mu.Unlock()

	byType, ok := r.channels[channel]
	if !ok {
		byType = make(map[contracts.EventType][]entry)
		r.channels[channel] = byType
	}
	for _, e := range byType[typ] {
		if e.key == key {
			return
		}
	}
	byType[typ] = append(byType[typ], entry{key: key, fn: h})
}

// Off removes h from the (channel, type) scope. Removing an absent handler
// is a no-op.
func (r *Registry) Off(channel contracts.Channel, typ contracts.EventType, h contracts.Handler) {
	if h == nil {
		return
	}
	key := handlerKey(h)

	r.mu.Lock()
	defer r.mu.Unlock()

	byType, ok := r.channels[channel]
	if !ok {
		return
	}
	handlers := byType[typ]
	for i, e := range handlers {
		if e.key == key {
			byType[typ] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(r.channels, channel)
	}
}

// DropChannel removes every subscription scoped to the given channel in one
// operation. Clearing a concrete channel never touches wildcard
// subscriptions; clearing contracts.ChannelAll drops only the wildcard set.
func (r *Registry) DropChannel(channel contracts.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, channel)
}

// Emit delivers ev to every handler subscribed for (channel, typ) and, for
// concrete channels, additionally to every wildcard handler for typ. A
// wildcard emission reaches only wildcard handlers, so no handler sees one
// emission twice through the same subscription.
func (r *Registry) Emit(channel contracts.Channel, typ contracts.EventType, ev contracts.Event) {
	r.mu.RLock()
	var targets []entry
	if byType, ok := r.channels[channel]; ok {
		targets = append(targets, byType[typ]...)
	}
	if channel != contracts.ChannelAll {
		if byType, ok := r.channels[contracts.ChannelAll]; ok {
			targets = append(targets, byType[typ]...)
		}
	}
	r.mu.RUnlock()

	for _, e := range targets {
		e.fn(ev)
	}
}

// Reset drops every subscription.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = make(map[contracts.Channel]map[contracts.EventType][]entry)
}
