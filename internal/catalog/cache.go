// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package catalog

import (
	"fmt"
	"slices"
	"sync"
)

// Cache holds a point-in-time snapshot of an enumeration so that repeated
// queries between change notifications do not hit the OS.
type Cache struct {
	supplier func() ([]Record, error)
	cached   []Record
	lock     sync.Mutex
	valid    bool
}

// NewCache returns a new Cache over the given supplier.
func NewCache(supplier func() ([]Record, error)) (*Cache, error) {
	if supplier == nil {
		return nil, fmt.Errorf("supplier must not be nil")
	}

	return &Cache{
		supplier: supplier,
	}, nil
}

// Get returns a copy of the cached snapshot, querying the supplier if no
// valid snapshot is held.
func (c *Cache) Get() ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.getNoLock()
}

// Refresh invalidates the snapshot and queries the supplier again.
func (c *Cache) Refresh() ([]Record, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.valid = false

	return c.getNoLock()
}

// Invalidate drops the snapshot without querying the supplier.
func (c *Cache) Invalidate() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.valid = false
}

func (c *Cache) getNoLock() ([]Record, error) {
	if c.valid {
		return slices.Clone(c.cached), nil
	}

	records, err := c.supplier()
	if err != nil {
		return nil, err
	}

	c.cached = records
	c.valid = true

	return slices.Clone(records), nil
}
