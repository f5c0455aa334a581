// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bao

var (
	version = "0.1.0" // manually set semantic version number
	commit  string    // automatically set git commit hash

	// Version exposes the combined semantic version and git commit
	// of the build.
	Version = func() string {
		if commit != "" {
			return version + "-" + commit
		}
		return version
	}()
)
