// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/gpucontext"
)

// View owns at most one running Thread and forwards platform surface
// callbacks to it. Detach shuts the thread down; a later Attach starts a
// fresh one that keeps the view's render mode and first-surface history.
//
// View implements gpucontext.WindowProvider so it can be handed to code that
// sizes its output from a window.
type View struct {
	renderer Renderer
	opts     threadOptions

	// lifecycle serializes Attach and Detach, so an old thread has exited
	// before its replacement starts. It is never taken while holding mu.
	lifecycle sync.Mutex

	mu          sync.Mutex
	thread      *Thread
	mode        RenderMode
	surfaceSeen bool
	width       int
	height      int
	scale       float64
	closed      bool
}

var _ gpucontext.WindowProvider = (*View)(nil)

// NewView creates a view and attaches its first render thread.
func NewView(r Renderer, opts ...ThreadOption) (*View, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	o := defaultThreadOptions()
	for _, opt := range opts {
		opt(&o)
	}
	v := &View{
		renderer: r,
		opts:     o,
		mode:     o.mode,
		scale:    1,
	}
	if err := v.Attach(); err != nil {
		return nil, err
	}
	return v, nil
}

// Attach starts a render thread if the view has none. If a Detach is in
// progress, Attach waits for the old thread to exit first.
//
// Attach returns ErrOnRenderThread when called from the view's own render
// thread.
func (v *View) Attach() error {
	if v.onRenderThread() {
		return ErrOnRenderThread
	}

	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.thread != nil {
		v.mu.Unlock()
		return nil
	}
	o := v.opts
	o.mode = v.mode
	seen := v.surfaceSeen
	v.mu.Unlock()

	t := newThread(v.renderer, o, seen)
	if err := t.Start(); err != nil {
		return fmt.Errorf("renderthread: attach: %w", err)
	}

	v.mu.Lock()
	v.thread = t
	v.mu.Unlock()

	Logger().Debug("view attached", slog.Uint64("thread", t.ID()))
	return nil
}

// Detach shuts down the current render thread and waits for it to exit.
// The thread stays attached until it has exited; calls forwarded to it in
// the meantime are dropped by the exiting thread.
//
// Detach returns ErrOnRenderThread, and leaves the thread attached, when
// called from the view's own render thread.
func (v *View) Detach() error {
	if v.onRenderThread() {
		return ErrOnRenderThread
	}

	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()

	t := v.Thread()
	if t == nil {
		return nil
	}
	if err := t.Shutdown(); err != nil {
		return err
	}

	v.mu.Lock()
	if v.thread == t {
		v.thread = nil
	}
	v.surfaceSeen = v.surfaceSeen || t.surfaceWasSeen()
	v.mu.Unlock()

	Logger().Debug("view detached", slog.Uint64("thread", t.ID()))
	return nil
}

// onRenderThread reports whether the caller runs on the attached thread's
// render goroutine. The render goroutine must never block on lifecycle.
func (v *View) onRenderThread() bool {
	t := v.Thread()
	return t != nil && t.onRenderThread()
}

// Close detaches the view for good. Like Detach, it must not be called from
// the render thread.
func (v *View) Close() error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return v.Detach()
}

// Thread returns the attached render thread, or nil.
func (v *View) Thread() *Thread {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.thread
}

// SurfaceCreated forwards a new platform surface to the render thread.
func (v *View) SurfaceCreated(s Surface) {
	t := v.Thread()
	if t == nil {
		Logger().Warn("surface created without render thread")
		return
	}
	t.SurfaceCreated(s)
}

// SurfaceDestroyed forwards surface loss to the render thread.
func (v *View) SurfaceDestroyed() {
	if t := v.Thread(); t != nil {
		t.SurfaceDestroyed()
	}
}

// SurfaceChanged records the new surface size and resizes the render thread.
func (v *View) SurfaceChanged(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	v.mu.Lock()
	v.width, v.height = width, height
	t := v.thread
	v.mu.Unlock()

	if t == nil {
		return ErrNoThread
	}
	return t.Resize(width, height)
}

// RedrawNeededAsync requests a frame and calls done after it is drawn. With
// no render thread done is called immediately so the platform is not left
// waiting.
func (v *View) RedrawNeededAsync(done func()) error {
	t := v.Thread()
	if t == nil {
		if done != nil {
			done()
		}
		return nil
	}
	err := t.RequestRenderAndNotify(done)
	if errors.Is(err, ErrThreadExited) && done != nil {
		done()
		return nil
	}
	return err
}

// Pause pauses the render thread.
func (v *View) Pause() error {
	t := v.Thread()
	if t == nil {
		return ErrNoThread
	}
	return t.Pause()
}

// Resume resumes the render thread.
func (v *View) Resume() error {
	t := v.Thread()
	if t == nil {
		return ErrNoThread
	}
	return t.Resume()
}

// Queue schedules work on the render thread. Without a thread the work is
// dropped with a warning.
func (v *View) Queue(work func()) error {
	if work == nil {
		return ErrNilWork
	}
	t := v.Thread()
	if t == nil {
		Logger().Warn("queued work dropped: view has no render thread")
		return nil
	}
	return t.Queue(work)
}

// SetRenderMode sets the render mode of the current and future threads.
func (v *View) SetRenderMode(m RenderMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRenderMode, int(m))
	}
	v.mu.Lock()
	v.mode = m
	t := v.thread
	v.mu.Unlock()

	if t != nil {
		return t.SetRenderMode(m)
	}
	return nil
}

// RenderMode returns the view's render mode.
func (v *View) RenderMode() RenderMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// RequestRender asks the render thread for one frame.
func (v *View) RequestRender() {
	if t := v.Thread(); t != nil {
		t.RequestRender()
	}
}

// Size implements gpucontext.WindowProvider. It returns the last size passed
// to SurfaceChanged in logical points, that is divided by ScaleFactor.
func (v *View) Size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int(math.Round(float64(v.width) / v.scale)),
		int(math.Round(float64(v.height) / v.scale))
}

// PixelSize returns the last size passed to SurfaceChanged, in pixels.
func (v *View) PixelSize() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// ScaleFactor returns the pixels-per-point ratio, 1 unless set.
func (v *View) ScaleFactor() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scale
}

// SetScaleFactor sets the value returned by ScaleFactor. Non-positive values
// are ignored.
func (v *View) SetScaleFactor(f float64) {
	if f <= 0 {
		return
	}
	v.mu.Lock()
	v.scale = f
	v.mu.Unlock()
}

// RequestRedraw implements gpucontext.WindowProvider.
func (v *View) RequestRedraw() { v.RequestRender() }

// BindEvents resizes the view on every resize reported by src.
func (v *View) BindEvents(src gpucontext.EventSource) {
	src.OnResize(func(width, height int) {
		if err := v.SurfaceChanged(width, height); err != nil {
			Logger().Debug("resize event not applied",
				slog.Int("width", width),
				slog.Int("height", height),
				slog.Any("error", err),
			)
		}
	})
}
