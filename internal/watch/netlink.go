// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/siderolabs/go-retry/retry"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

const (
	subscribeRetryTimeout  = time.Minute
	subscribeRetryInterval = time.Second
)

// NetlinkWatcher bridges kernel rtnetlink notifications into a Notifier.
//
// Address updates map to AddressChanged events, link updates to
// AvailabilityChanged events.
type NetlinkWatcher struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewNetlinkWatcher returns a new NetlinkWatcher feeding the given notifier.
func NewNetlinkWatcher(notifier *Notifier, logger *zap.Logger) (*NetlinkWatcher, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier must not be nil")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &NetlinkWatcher{
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Run subscribes to kernel address and link notifications and dispatches
// them until the context is canceled.
//
// A lost kernel subscription is re-established with constant backoff.
func (w *NetlinkWatcher) Run(ctx context.Context) error {
	for {
		var sub *subscription

		if err := retry.Constant(subscribeRetryTimeout, retry.WithUnits(subscribeRetryInterval)).RetryWithContext(ctx,
			func(context.Context) error {
				var err error

				if sub, err = w.subscribe(); err != nil {
					return retry.ExpectedError(err)
				}

				return nil
			}); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("failed to subscribe to kernel notifications: %w", err)
		}

		err := w.dispatch(ctx, sub)

		close(sub.done)

		if ctx.Err() != nil {
			return nil
		}

		w.logger.Warn("kernel subscription lost, re-establishing", zap.Error(err))
	}
}

type subscription struct {
	addrCh chan netlink.AddrUpdate
	linkCh chan netlink.LinkUpdate
	errCh  chan error
	done   chan struct{}
}

func (w *NetlinkWatcher) subscribe() (*subscription, error) {
	sub := &subscription{
		addrCh: make(chan netlink.AddrUpdate),
		linkCh: make(chan netlink.LinkUpdate),
		errCh:  make(chan error, 2),
		done:   make(chan struct{}),
	}

	errorCallback := func(err error) {
		select {
		case sub.errCh <- err:
		default:
		}
	}

	if err := netlink.AddrSubscribeWithOptions(sub.addrCh, sub.done, netlink.AddrSubscribeOptions{
		ErrorCallback: errorCallback,
	}); err != nil {
		close(sub.done)

		return nil, fmt.Errorf("failed to subscribe to address updates: %w", err)
	}

	if err := netlink.LinkSubscribeWithOptions(sub.linkCh, sub.done, netlink.LinkSubscribeOptions{
		ErrorCallback: errorCallback,
	}); err != nil {
		close(sub.done)

		return nil, fmt.Errorf("failed to subscribe to link updates: %w", err)
	}

	return sub, nil
}

func (w *NetlinkWatcher) dispatch(ctx context.Context, sub *subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.errCh:
			return fmt.Errorf("kernel notification error: %w", err)
		case update, ok := <-sub.addrCh:
			if !ok {
				return fmt.Errorf("address update channel closed")
			}

			w.logger.Debug("address update",
				zap.String("addr", update.LinkAddress.String()), zap.Int("link-index", update.LinkIndex), zap.Bool("new", update.NewAddr))

			w.notifier.Notify(Event{Kind: AddressChanged})
		case update, ok := <-sub.linkCh:
			if !ok {
				return fmt.Errorf("link update channel closed")
			}

			w.logger.Debug("link update",
				zap.String("link", update.Link.Attrs().Name), zap.String("oper-state", update.Link.Attrs().OperState.String()))

			w.notifier.Notify(Event{Kind: AvailabilityChanged})
		}
	}
}
