// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package version provides the version info of ipdock.
package version

var (
	// Name is the name of the program.
	Name = "ipdock"
	// Tag is the version tag, set at build time.
	Tag = "v0.1.0"
	// SHA is the commit SHA, set at build time.
	SHA = ""
)
