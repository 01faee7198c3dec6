// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package watch delivers host network change notifications to subscribers.
package watch

import (
	"fmt"
	"sync"

	"github.com/siderolabs/gen/maps"
	"go.uber.org/zap"
)

// EventKind distinguishes the notification types.
type EventKind int

const (
	// AddressChanged fires when the set of addresses on any adapter changed.
	AddressChanged EventKind = iota
	// AvailabilityChanged fires when an adapter's operational status changed.
	AvailabilityChanged
)

// String implements the fmt.Stringer interface.
func (k EventKind) String() string {
	switch k {
	case AddressChanged:
		return "address-changed"
	case AvailabilityChanged:
		return "availability-changed"
	}

	return "unknown"
}

// Event is a single change notification.
type Event struct {
	Kind EventKind
}

// Notifier fans change events out to subscribers.
type Notifier struct {
	subscribers map[uint64]func(Event)
	logger      *zap.Logger
	nextID      uint64
	lock        sync.Mutex
}

// NewNotifier returns a new Notifier.
func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		subscribers: map[uint64]func(Event){},
		logger:      logger,
	}
}

// Subscription is the handle for one registered callback.
//
// The subscriber owns the handle and must call Cancel on teardown.
type Subscription struct {
	notifier *Notifier
	id       uint64
}

// Cancel deregisters the subscription's callback. Cancel is idempotent.
func (s *Subscription) Cancel() {
	s.notifier.lock.Lock()
	defer s.notifier.lock.Unlock()

	delete(s.notifier.subscribers, s.id)
}

// Subscribe registers a callback for change events and returns its handle.
//
// The callback runs on the dispatching goroutine and must hand off to its
// own context before doing slow work.
func (n *Notifier) Subscribe(fn func(Event)) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("fn must not be nil")
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	id := n.nextID
	n.nextID++

	n.subscribers[id] = fn

	return &Subscription{
		notifier: n,
		id:       id,
	}, nil
}

// Notify delivers the event to every currently registered subscriber.
func (n *Notifier) Notify(event Event) {
	n.lock.Lock()
	fns := maps.Values(n.subscribers)
	n.lock.Unlock()

	n.logger.Debug("notify subscribers", zap.Stringer("kind", event.Kind), zap.Int("subscribers", len(fns)))

	for _, fn := range fns {
		fn(event)
	}
}
