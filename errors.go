// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import "errors"

// Errors returned by Thread and View operations.
var (
	// ErrInvalidRenderMode is returned by SetRenderMode for values other than
	// RenderWhenDirty and RenderContinuously.
	ErrInvalidRenderMode = errors.New("renderthread: invalid render mode")

	// ErrInvalidDimensions is returned when a negative width or height is passed.
	ErrInvalidDimensions = errors.New("renderthread: invalid dimensions")

	// ErrNilWork is returned when nil work is queued.
	ErrNilWork = errors.New("renderthread: nil work")

	// ErrNilRenderer is returned when a thread or view is built without a renderer.
	ErrNilRenderer = errors.New("renderthread: nil renderer")

	// ErrOnRenderThread is returned when a blocking control operation is
	// invoked from the render goroutine itself.
	ErrOnRenderThread = errors.New("renderthread: called from render thread")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("renderthread: thread already started")

	// ErrThreadExited is returned when Start or RequestRenderAndNotify is
	// called on a thread that has already been shut down.
	ErrThreadExited = errors.New("renderthread: thread exited")

	// ErrNoThread is returned by View operations when the view is detached.
	ErrNoThread = errors.New("renderthread: view has no render thread")

	// ErrViewClosed is returned by Attach after Close.
	ErrViewClosed = errors.New("renderthread: view closed")
)
