// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ipdock/ipdock/internal/watch"
)

func TestNotifier(t *testing.T) {
	t.Parallel()

	notifier := watch.NewNotifier(zaptest.NewLogger(t))

	_, err := notifier.Subscribe(nil)
	assert.ErrorContains(t, err, "must not be nil")

	var first, second []watch.Event

	firstSub, err := notifier.Subscribe(func(event watch.Event) { first = append(first, event) })
	require.NoError(t, err)

	secondSub, err := notifier.Subscribe(func(event watch.Event) { second = append(second, event) })
	require.NoError(t, err)

	notifier.Notify(watch.Event{Kind: watch.AddressChanged})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, watch.AddressChanged, first[0].Kind)

	firstSub.Cancel()

	notifier.Notify(watch.Event{Kind: watch.AvailabilityChanged})

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	assert.Equal(t, watch.AvailabilityChanged, second[1].Kind)

	// Cancel is idempotent
	firstSub.Cancel()
	secondSub.Cancel()

	notifier.Notify(watch.Event{Kind: watch.AddressChanged})

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}
