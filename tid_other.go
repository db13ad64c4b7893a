// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !linux && !windows

package renderthread

// currentThreadID returns 0 where no cheap thread id is available,
// which disables render-thread detection.
func currentThreadID() int64 {
	return 0
}
