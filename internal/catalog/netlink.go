// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

// NetlinkSource lists adapters from the kernel via rtnetlink.
type NetlinkSource struct {
	logger *zap.Logger
}

// NewNetlinkSource returns a new NetlinkSource.
func NewNetlinkSource(logger *zap.Logger) *NetlinkSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NetlinkSource{
		logger: logger,
	}
}

// List implements the AdapterSource interface.
func (s *NetlinkSource) List() ([]Adapter, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	adapters := make([]Adapter, 0, len(links))

	for _, link := range links {
		adapter, err := s.adapterFromLink(link)
		if err != nil {
			return nil, err
		}

		adapters = append(adapters, adapter)
	}

	return adapters, nil
}

func (s *NetlinkSource) adapterFromLink(link netlink.Link) (Adapter, error) {
	attrs := link.Attrs()

	adapter := Adapter{
		Name:         attrs.Name,
		Description:  description(link),
		HardwareAddr: attrs.HardwareAddr,
		LinkSpeed:    linkSpeed(attrs.Name),
		Type:         interfaceType(link),
		Status:       operStatus(attrs),
	}

	var errs error

	for _, family := range []struct {
		hasFamily *bool
		index     *int
		id        int
		name      string
	}{
		{&adapter.HasIPv4, &adapter.IPv4Index, netlink.FAMILY_V4, "IPv4"},
		{&adapter.HasIPv6, &adapter.IPv6Index, netlink.FAMILY_V6, "IPv6"},
	} {
		addrs, err := netlink.AddrList(link, family.id)
		if err != nil {
			// the family is treated as unsupported on this adapter, its
			// addresses (if any) never surface
			s.logger.Debug("failed to list addresses",
				zap.String("adapter", attrs.Name), zap.String("family", family.name), zap.Error(err))

			errs = multierror.Append(errs, fmt.Errorf("failed to list %s addresses on %q: %w", family.name, attrs.Name, err))

			continue
		}

		*family.hasFamily = true
		*family.index = attrs.Index

		for _, addr := range addrs {
			ip, ok := netip.AddrFromSlice(addr.IPNet.IP)
			if !ok {
				continue
			}

			ones, _ := addr.IPNet.Mask.Size()

			adapter.Addresses = append(adapter.Addresses, UnicastAddress{
				Addr:         ip.Unmap(),
				PrefixLength: ones,
			})
		}
	}

	if !adapter.HasIPv4 && !adapter.HasIPv6 {
		// neither family could be read, the adapter state is unknown
		return Adapter{}, fmt.Errorf("failed to read addresses of adapter %q: %w", attrs.Name, errs)
	}

	return adapter, nil
}

func description(link netlink.Link) string {
	attrs := link.Attrs()

	if attrs.Alias != "" {
		return attrs.Alias
	}

	return attrs.Name + " (" + link.Type() + ")"
}

// linkSpeed reads the adapter speed from sysfs and converts it to bits/s.
//
// sysfs reports Mbit/s and -1 when the driver does not know; both the
// unknown and the unreadable case yield zero.
func linkSpeed(name string) uint64 {
	raw, err := os.ReadFile(filepath.Join("/sys/class/net", name, "speed"))
	if err != nil {
		return 0
	}

	mbps, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || mbps <= 0 {
		return 0
	}

	return uint64(mbps) * 1_000_000
}

func interfaceType(link netlink.Link) InterfaceType {
	attrs := link.Attrs()

	if attrs.Flags&net.FlagLoopback != 0 || attrs.EncapType == "loopback" {
		return TypeLoopback
	}

	if isWireless(attrs.Name) {
		return TypeWireless80211
	}

	switch link.Type() {
	case "bridge":
		return TypeBridge
	case "tun", "tuntap", "ipip", "sit", "gre", "gretap", "ip6tnl", "ip6gre", "vti", "wireguard":
		return TypeTunnel
	case "device", "veth", "vlan", "macvlan", "macvtap", "bond", "dummy":
		return TypeEthernet
	}

	if attrs.EncapType == "ether" {
		return TypeEthernet
	}

	return TypeUnknown
}

func isWireless(name string) bool {
	_, err := os.Stat(filepath.Join("/sys/class/net", name, "wireless"))

	return err == nil
}

func operStatus(attrs *netlink.LinkAttrs) Status {
	switch attrs.OperState {
	case netlink.OperUp:
		return StatusUp
	case netlink.OperDown:
		return StatusDown
	case netlink.OperLowerLayerDown:
		return StatusLowerLayerDown
	case netlink.OperTesting:
		return StatusTesting
	case netlink.OperDormant:
		return StatusDormant
	case netlink.OperNotPresent:
		return StatusNotPresent
	case netlink.OperUnknown:
		// loopback and some virtual devices report IF_OPER_UNKNOWN while
		// carrying traffic, the admin flag disambiguates
		if attrs.Flags&net.FlagUp != 0 {
			return StatusUp
		}
	}

	return StatusUnknown
}
