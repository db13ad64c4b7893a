// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import "time"

// DefaultResizeTimeout bounds how long Resize waits for the render goroutine
// to draw at the new size.
const DefaultResizeTimeout = 2 * time.Second

// ThreadOption configures a Thread (and the threads a View creates).
//
// Example:
//
//	th, err := renderthread.NewThread(r,
//	    renderthread.WithRenderMode(renderthread.RenderWhenDirty),
//	    renderthread.WithResizeTimeout(500*time.Millisecond),
//	)
type ThreadOption func(*threadOptions)

type threadOptions struct {
	mode          RenderMode
	resizeTimeout time.Duration
	name          string
	lockOSThread  bool
	registry      *Registry
}

func defaultThreadOptions() threadOptions {
	return threadOptions{
		mode:          RenderContinuously,
		resizeTimeout: DefaultResizeTimeout,
		lockOSThread:  true,
	}
}

// WithRenderMode sets the initial render mode. Invalid modes are ignored.
func WithRenderMode(m RenderMode) ThreadOption {
	return func(o *threadOptions) {
		if m.Valid() {
			o.mode = m
		}
	}
}

// WithResizeTimeout sets the bound on Resize's wait. Non-positive values
// make Resize return without waiting.
func WithResizeTimeout(d time.Duration) ThreadOption {
	return func(o *threadOptions) {
		o.resizeTimeout = d
	}
}

// WithName sets the thread name used in logs and the registry.
// The default is "RenderThread <id>".
func WithName(name string) ThreadOption {
	return func(o *threadOptions) {
		o.name = name
	}
}

// WithLockOSThread controls whether the render goroutine is wired to its own
// OS thread. It is on by default because GPU contexts are thread-affine, and
// it is what lets control calls detect that they run on the render thread.
func WithLockOSThread(lock bool) ThreadOption {
	return func(o *threadOptions) {
		o.lockOSThread = lock
	}
}

// WithRegistry records the thread in r instead of the default registry.
func WithRegistry(r *Registry) ThreadOption {
	return func(o *threadOptions) {
		if r != nil {
			o.registry = r
		}
	}
}
