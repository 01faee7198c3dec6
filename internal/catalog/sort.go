// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog

import (
	"slices"
)

// SortRecords sorts records in place into the display order: ascending
// byte-wise by address, IPv4 before IPv6, ties broken by interface index.
func SortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		if c := a.Addr.Compare(b.Addr); c != 0 {
			return c
		}

		return a.InterfaceIndex - b.InterfaceIndex
	})
}
