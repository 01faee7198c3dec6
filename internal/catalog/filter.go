// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog

import (
	"net/netip"
	"slices"

	"github.com/siderolabs/gen/xslices"
)

// Options are the independent record filters of Enumerate.
//
// The zero value applies no filtering.
type Options struct {
	ExcludeLoopback bool
	ExcludeIPv6     bool
	OnlyUp          bool
}

// Predicate reports whether a record survives one filter stage.
type Predicate func(Record) bool

// predicates returns the filter pipeline for the options.
//
// Each enabled option contributes one predicate; the stages are applied in
// sequence as pure removals, so they compose in any order.
func (o Options) predicates() []Predicate {
	var preds []Predicate

	if o.ExcludeLoopback {
		preds = append(preds, func(r Record) bool { return r.InterfaceType != TypeLoopback })
	}

	if o.ExcludeIPv6 {
		preds = append(preds, func(r Record) bool { return !isIPv6(r.Addr) })
	}

	if o.OnlyUp {
		preds = append(preds, func(r Record) bool { return r.Status == StatusUp })
	}

	return preds
}

// Apply returns the records surviving every filter stage of the options.
//
// The input slice is never modified.
func Apply(records []Record, opts Options) []Record {
	filtered := slices.Clone(records)

	for _, pred := range opts.predicates() {
		filtered = xslices.FilterInPlace(filtered, pred)
	}

	return filtered
}

func isIPv6(addr netip.Addr) bool {
	return addr.Is6() && !addr.Is4In6()
}
