// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package catalog enumerates the unicast addresses bound to the host's
// network adapters.
package catalog

import (
	"fmt"
	"net"
	"net/netip"

	"go.uber.org/zap"
)

// UnicastAddress is one address bound to an adapter.
type UnicastAddress struct {
	Addr         netip.Addr
	PrefixLength int
}

// Adapter is the raw per-adapter state reported by an AdapterSource.
//
// IPv4Index and IPv6Index are the per-family interface indexes; they are
// only meaningful when the corresponding HasIPv4/HasIPv6 is true.
type Adapter struct {
	Name         string
	Description  string
	HardwareAddr net.HardwareAddr
	Addresses    []UnicastAddress
	LinkSpeed    uint64
	IPv4Index    int
	IPv6Index    int
	Type         InterfaceType
	Status       Status
	HasIPv4      bool
	HasIPv6      bool
}

// AdapterSource is an interface for listing the host's network adapters.
type AdapterSource interface {
	List() ([]Adapter, error)
}

// Catalog produces filtered address records from an AdapterSource.
type Catalog struct {
	source AdapterSource
	logger *zap.Logger
}

// NewCatalog returns a new Catalog.
func NewCatalog(source AdapterSource, logger *zap.Logger) (*Catalog, error) {
	if source == nil {
		return nil, fmt.Errorf("source must not be nil")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Catalog{
		source: source,
		logger: logger,
	}, nil
}

// Enumerate returns one record per (adapter, unicast address) pair reported
// by the source, with the requested filters applied.
//
// An address whose family the owning adapter does not support is dropped
// silently: it must never surface with a missing or wrong interface index.
// A failure to list adapters is returned as an error, never as an empty
// result.
func (c *Catalog) Enumerate(opts Options) ([]Record, error) {
	adapters, err := c.source.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list adapters: %w", err)
	}

	records := make([]Record, 0, len(adapters))

	for _, adapter := range adapters {
		for _, addr := range adapter.Addresses {
			index, ok := familyIndex(adapter, addr.Addr)
			if !ok {
				c.logger.Debug("drop address without a matching family index",
					zap.String("adapter", adapter.Name), zap.Stringer("addr", addr.Addr))

				continue
			}

			records = append(records, Record{
				InterfaceIndex:       index,
				InterfaceDescription: adapter.Description,
				InterfaceName:        adapter.Name,
				LinkSpeed:            adapter.LinkSpeed,
				InterfaceType:        adapter.Type,
				Addr:                 addr.Addr,
				HardwareAddr:         adapter.HardwareAddr,
				Status:               adapter.Status,
				PrefixLength:         addr.PrefixLength,
			})
		}
	}

	return Apply(records, opts), nil
}

// familyIndex resolves the interface index matching the address's own
// family.
func familyIndex(adapter Adapter, addr netip.Addr) (int, bool) {
	if addr.Is4() || addr.Is4In6() {
		return adapter.IPv4Index, adapter.HasIPv4
	}

	return adapter.IPv6Index, adapter.HasIPv6
}
