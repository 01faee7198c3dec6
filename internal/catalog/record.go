// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog

import (
	"net"
	"net/netip"
)

// InterfaceType classifies a network adapter.
type InterfaceType int

// Known adapter classes.
const (
	TypeUnknown InterfaceType = iota
	TypeEthernet
	TypeWireless80211
	TypeLoopback
	TypeTunnel
	TypeBridge
)

// String implements the fmt.Stringer interface.
func (t InterfaceType) String() string {
	switch t {
	case TypeEthernet:
		return "ethernet"
	case TypeWireless80211:
		return "wireless-802.11"
	case TypeLoopback:
		return "loopback"
	case TypeTunnel:
		return "tunnel"
	case TypeBridge:
		return "bridge"
	case TypeUnknown:
	}

	return "unknown"
}

// Status is the operational status of an adapter, after the RFC 2863
// operational states.
type Status int

// Known operational states.
const (
	StatusUnknown Status = iota
	StatusNotPresent
	StatusDown
	StatusLowerLayerDown
	StatusTesting
	StatusDormant
	StatusUp
)

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusNotPresent:
		return "not-present"
	case StatusDown:
		return "down"
	case StatusLowerLayerDown:
		return "lower-layer-down"
	case StatusTesting:
		return "testing"
	case StatusDormant:
		return "dormant"
	case StatusUp:
		return "up"
	case StatusUnknown:
	}

	return "unknown"
}

// Record describes one unicast address bound to one adapter at query time.
//
// Records are values built once per enumeration and never mutated afterwards.
type Record struct {
	InterfaceDescription string
	InterfaceName        string
	HardwareAddr         net.HardwareAddr
	Addr                 netip.Addr
	LinkSpeed            uint64
	InterfaceIndex       int
	PrefixLength         int
	InterfaceType        InterfaceType
	Status               Status
}
