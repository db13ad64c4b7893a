// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Surface is the host-owned handle to a platform drawing surface.
//
// The handle is valid from the SurfaceCreated call that delivers it until the
// matching SurfaceDestroyed. The render goroutine stops drawing as soon as the
// destroy event is dequeued.
type Surface struct {
	// Native is the opaque platform object (an ANativeWindow, a *glfw.Window,
	// a *wgpu.Surface...). It is passed through to Renderer.SurfaceReady untouched.
	Native gpucontext.Surface

	// Format is the preferred presentation format, or
	// gputypes.TextureFormatUndefined to let the renderer choose.
	Format gputypes.TextureFormat

	// Width and Height are the size reported by the platform when the surface
	// was created. They are informational: frames are gated on the size
	// delivered through Resize.
	Width, Height int
}

// Frame describes one frame the loop decided to render.
type Frame struct {
	// Index increases by one for every frame a thread renders, starting at 1.
	Index uint64

	// Width and Height are the loop's size reading when the frame was claimed.
	Width, Height int

	// Mode is the render mode in effect when the frame was claimed.
	Mode RenderMode
}

// Renderer receives the surface and frame callbacks of a render thread.
// All methods are invoked on the render goroutine, never concurrently.
//
// Errors and panics are logged and do not stop the loop. RenderFrame must
// not block indefinitely: Pause and Resume wait for it to return.
type Renderer interface {
	// SurfaceReady is called after a surface-created event is dequeued.
	// firstTime is true for the first surface ever delivered to the owning view.
	SurfaceReady(s Surface, width, height int, firstTime bool) error

	// SurfaceResized is called after a resize event is dequeued.
	SurfaceResized(width, height int) error

	// RenderFrame draws exactly one frame.
	RenderFrame(f Frame) error
}

// RendererFuncs adapts plain functions to Renderer. Nil fields are no-ops.
type RendererFuncs struct {
	Ready   func(s Surface, width, height int, firstTime bool) error
	Resized func(width, height int) error
	Render  func(f Frame) error
}

// SurfaceReady calls f.Ready if set.
func (f RendererFuncs) SurfaceReady(s Surface, width, height int, firstTime bool) error {
	if f.Ready == nil {
		return nil
	}
	return f.Ready(s, width, height, firstTime)
}

// SurfaceResized calls f.Resized if set.
func (f RendererFuncs) SurfaceResized(width, height int) error {
	if f.Resized == nil {
		return nil
	}
	return f.Resized(width, height)
}

// RenderFrame calls f.Render if set.
func (f RendererFuncs) RenderFrame(fr Frame) error {
	if f.Render == nil {
		return nil
	}
	return f.Render(fr)
}

var _ Renderer = RendererFuncs{}
