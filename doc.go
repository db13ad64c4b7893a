// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderthread runs a dedicated render goroutine that owns a
// GPU-backed drawing surface and decides when frames are drawn.
//
// The host (typically the platform UI thread) never runs the render loop
// itself. It drives a [Thread] through a small blocking control surface:
//
//   - SurfaceCreated / SurfaceDestroyed hand the platform surface in and out
//   - Resize delivers the drawable size and waits (bounded) for a frame
//   - Pause / Resume block until the render goroutine acknowledges them
//   - RequestRender / RequestRenderAndNotify schedule frames in on-demand mode
//   - Queue runs arbitrary work on the render goroutine in FIFO order
//   - Shutdown stops the loop and waits for it to exit
//
// # Gating
//
// A frame is rendered only when all of these held under the monitor at the
// moment the loop stopped waiting: a surface is present, width and height are
// both positive, the loop is not paused, and either a render was requested or
// the mode is [RenderContinuously]. One queued event or one frame is handled
// per wake, and the predicate is re-evaluated in between.
//
// # Threads and views
//
// A [View] owns at most one running [Thread]. Detaching a view shuts its
// thread down; attaching it again starts a fresh thread that keeps the last
// render mode. Live and recently exited threads are tracked by a [Registry]
// for diagnostics.
//
// # Example
//
//	r := renderthread.RendererFuncs{
//	    Render: func(f renderthread.Frame) error {
//	        return draw(f.Width, f.Height)
//	    },
//	}
//	v, err := renderthread.NewView(r, renderthread.WithRenderMode(renderthread.RenderWhenDirty))
//	if err != nil {
//	    return err
//	}
//	defer v.Detach()
//
//	v.SurfaceCreated(renderthread.Surface{Native: win, Width: 800, Height: 600})
//	v.SurfaceChanged(800, 600)
//	v.RequestRender()
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to route lifecycle
// diagnostics and hook failures to a [log/slog] logger.
package renderthread
