// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watch

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ipdock/ipdock/internal/catalog"
)

// Enumerator provides a fresh address snapshot for change detection.
type Enumerator interface {
	Refresh() ([]catalog.Record, error)
}

// Poller detects address changes by periodic re-enumeration, for hosts
// where the kernel subscription is unavailable.
type Poller struct {
	enumerator Enumerator
	notifier   *Notifier
	clock      clock.Clock
	logger     *zap.Logger
	last       []catalog.Record
	period     time.Duration
}

// NewPoller returns a new Poller.
func NewPoller(enumerator Enumerator, notifier *Notifier, period time.Duration, clck clock.Clock, logger *zap.Logger) (*Poller, error) {
	if enumerator == nil {
		return nil, fmt.Errorf("enumerator must not be nil")
	}

	if notifier == nil {
		return nil, fmt.Errorf("notifier must not be nil")
	}

	if period <= 0 {
		return nil, fmt.Errorf("period must be positive")
	}

	if clck == nil {
		clck = clock.New()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		enumerator: enumerator,
		notifier:   notifier,
		period:     period,
		clock:      clck,
		logger:     logger,
	}, nil
}

// Run runs the Poller. It blocks until the context is canceled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.Ticker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := p.check(); err != nil {
			p.logger.Error("failed to check for address changes", zap.Error(err))
		}
	}
}

func (p *Poller) check() error {
	p.logger.Debug("check for changed addresses")

	records, err := p.enumerator.Refresh()
	if err != nil {
		return fmt.Errorf("failed to refresh records: %w", err)
	}

	// enumeration order is unspecified, compare in display order
	catalog.SortRecords(records)

	if reflect.DeepEqual(records, p.last) {
		p.logger.Debug("addresses didn't change, skip notification")

		return nil
	}

	p.last = records

	p.logger.Info("detected address changes", zap.Int("records", len(records)))

	p.notifier.Notify(Event{Kind: AddressChanged})

	return nil
}
