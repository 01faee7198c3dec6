// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog_test

import (
	"fmt"
	"net"
	"net/netip"
	"testing"

	"github.com/siderolabs/gen/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ipdock/ipdock/internal/catalog"
)

type mockAdapterSource struct {
	adapters []catalog.Adapter
	err      error
}

func (m *mockAdapterSource) List() ([]catalog.Adapter, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.adapters, nil
}

func testAdapters() []catalog.Adapter {
	return []catalog.Adapter{
		{
			Name:        "lo",
			Description: "loopback",
			Type:        catalog.TypeLoopback,
			Status:      catalog.StatusUp,
			HasIPv4:     true,
			IPv4Index:   1,
			HasIPv6:     true,
			IPv6Index:   1,
			Addresses: []catalog.UnicastAddress{
				{Addr: netip.MustParseAddr("127.0.0.1"), PrefixLength: 8},
				{Addr: netip.MustParseAddr("::1"), PrefixLength: 128},
			},
		},
		{
			Name:         "eth0",
			Description:  "onboard ethernet",
			HardwareAddr: net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
			LinkSpeed:    1_000_000_000,
			Type:         catalog.TypeEthernet,
			Status:       catalog.StatusUp,
			HasIPv4:      true,
			IPv4Index:    2,
			HasIPv6:      true,
			IPv6Index:    2,
			Addresses: []catalog.UnicastAddress{
				{Addr: netip.MustParseAddr("192.168.2.42"), PrefixLength: 24},
				{Addr: netip.MustParseAddr("fe80::1"), PrefixLength: 64},
			},
		},
		{
			Name:      "wlan0",
			Type:      catalog.TypeWireless80211,
			Status:    catalog.StatusDown,
			HasIPv4:   true,
			IPv4Index: 3,
			Addresses: []catalog.UnicastAddress{
				{Addr: netip.MustParseAddr("10.0.0.7"), PrefixLength: 16},
				// IPv6 address on an adapter without IPv6 support
				{Addr: netip.MustParseAddr("fd00::7"), PrefixLength: 64},
			},
		},
		{
			Name:      "dummy0",
			Type:      catalog.TypeEthernet,
			Status:    catalog.StatusUnknown,
			HasIPv4:   true,
			IPv4Index: 4,
		},
	}
}

func addrStrings(records []catalog.Record) []string {
	return xslices.Map(records, func(r catalog.Record) string {
		return r.Addr.String()
	})
}

func TestCatalogCreate(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	_, err := catalog.NewCatalog(nil, logger)
	assert.ErrorContains(t, err, "must not be nil")

	cat, err := catalog.NewCatalog(&mockAdapterSource{}, logger)
	require.NoError(t, err)
	assert.NotNil(t, cat)
}

func TestEnumerateUnfiltered(t *testing.T) {
	t.Parallel()

	cat, err := catalog.NewCatalog(&mockAdapterSource{adapters: testAdapters()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	records, err := cat.Enumerate(catalog.Options{})
	require.NoError(t, err)

	// fd00::7 is dropped (no IPv6 support on wlan0), dummy0 contributes nothing
	assert.ElementsMatch(t, addrStrings(records),
		[]string{"127.0.0.1", "::1", "192.168.2.42", "fe80::1", "10.0.0.7"})

	for _, record := range records {
		switch record.Addr.String() {
		case "127.0.0.1", "::1":
			assert.Equal(t, 1, record.InterfaceIndex)
			assert.Equal(t, "lo", record.InterfaceName)
		case "192.168.2.42":
			assert.Equal(t, 2, record.InterfaceIndex)
			assert.Equal(t, "onboard ethernet", record.InterfaceDescription)
			assert.Equal(t, uint64(1_000_000_000), record.LinkSpeed)
			assert.Equal(t, net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}, record.HardwareAddr)
			assert.Equal(t, 24, record.PrefixLength)
		case "fe80::1":
			assert.Equal(t, 2, record.InterfaceIndex)
			assert.Equal(t, 64, record.PrefixLength)
		case "10.0.0.7":
			assert.Equal(t, 3, record.InterfaceIndex)
			assert.Equal(t, catalog.StatusDown, record.Status)
		}
	}
}

func TestEnumerateFilters(t *testing.T) {
	t.Parallel()

	cat, err := catalog.NewCatalog(&mockAdapterSource{adapters: testAdapters()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, test := range []struct {
		name     string
		opts     catalog.Options
		expected []string
	}{
		{
			name:     "no filters",
			expected: []string{"127.0.0.1", "::1", "192.168.2.42", "fe80::1", "10.0.0.7"},
		},
		{
			name:     "exclude loopback",
			opts:     catalog.Options{ExcludeLoopback: true},
			expected: []string{"192.168.2.42", "fe80::1", "10.0.0.7"},
		},
		{
			name:     "exclude IPv6",
			opts:     catalog.Options{ExcludeIPv6: true},
			expected: []string{"127.0.0.1", "192.168.2.42", "10.0.0.7"},
		},
		{
			name:     "only up",
			opts:     catalog.Options{OnlyUp: true},
			expected: []string{"127.0.0.1", "::1", "192.168.2.42", "fe80::1"},
		},
		{
			name:     "available IPv4",
			opts:     catalog.Options{ExcludeLoopback: true, ExcludeIPv6: true, OnlyUp: true},
			expected: []string{"192.168.2.42"},
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			records, err := cat.Enumerate(test.opts)
			require.NoError(t, err)

			assert.ElementsMatch(t, addrStrings(records), test.expected)
		})
	}
}

func TestEnumerateFilterProperties(t *testing.T) {
	t.Parallel()

	cat, err := catalog.NewCatalog(&mockAdapterSource{adapters: testAdapters()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	// every combination of the three independent filters
	for i := 0; i < 8; i++ {
		opts := catalog.Options{
			ExcludeLoopback: i&1 != 0,
			ExcludeIPv6:     i&2 != 0,
			OnlyUp:          i&4 != 0,
		}

		records, err := cat.Enumerate(opts)
		require.NoError(t, err)

		for _, record := range records {
			if opts.ExcludeLoopback {
				assert.NotEqual(t, catalog.TypeLoopback, record.InterfaceType, "opts: %+v", opts)
			}

			if opts.ExcludeIPv6 {
				assert.True(t, record.Addr.Is4() || record.Addr.Is4In6(), "opts: %+v", opts)
			}

			if opts.OnlyUp {
				assert.Equal(t, catalog.StatusUp, record.Status, "opts: %+v", opts)
			}
		}
	}
}

func TestEnumerateError(t *testing.T) {
	t.Parallel()

	cat, err := catalog.NewCatalog(&mockAdapterSource{err: fmt.Errorf("permission denied")}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = cat.Enumerate(catalog.Options{})
	assert.ErrorContains(t, err, "failed to list adapters")
	assert.ErrorContains(t, err, "permission denied")
}

func TestApply(t *testing.T) {
	t.Parallel()

	records := []catalog.Record{
		{InterfaceName: "lo", InterfaceType: catalog.TypeLoopback, Status: catalog.StatusUp, Addr: netip.MustParseAddr("127.0.0.1")},
		{InterfaceName: "eth0", InterfaceType: catalog.TypeEthernet, Status: catalog.StatusUp, Addr: netip.MustParseAddr("192.168.2.42")},
		{InterfaceName: "eth1", InterfaceType: catalog.TypeEthernet, Status: catalog.StatusDown, Addr: netip.MustParseAddr("10.0.0.7")},
	}

	filtered := catalog.Apply(records, catalog.Options{})
	assert.Len(t, filtered, 3)

	filtered = catalog.Apply(records, catalog.Options{ExcludeLoopback: true, OnlyUp: true})
	assert.ElementsMatch(t, addrStrings(filtered), []string{"192.168.2.42"})

	// the input is never modified
	assert.Len(t, records, 3)
	assert.Equal(t, "lo", records[0].InterfaceName)
}
