// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import (
	"fmt"
	"log/slog"
	"time"
)

// SurfaceCreated queues a surface-created event. The render thread starts
// gating frames on the surface once the event runs, and calls
// Renderer.SurfaceReady.
func (t *Thread) SurfaceCreated(s Surface) {
	t.enqueue(event{kind: eventSurfaceCreated, surface: s})
}

// SurfaceDestroyed queues a surface-destroyed event. No further frames are
// rendered until a new surface is created.
func (t *Thread) SurfaceDestroyed() {
	t.enqueue(event{kind: eventSurfaceDestroyed})
}

// Queue schedules work on the render thread. Work runs in FIFO order
// interleaved with surface events. Work queued after the thread exited is
// dropped.
func (t *Thread) Queue(work func()) error {
	if work == nil {
		return ErrNilWork
	}
	t.enqueue(event{kind: eventWork, work: work})
	return nil
}

func (t *Thread) enqueue(ev event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.exited || t.shouldExit {
		Logger().Debug("render thread event dropped",
			slog.Uint64("thread", t.id),
			slog.String("event", ev.kind.String()),
		)
		return
	}
	t.queue.push(ev)
	t.cond.Broadcast()
}

// Resize records a new surface size, requests a frame and queues a resize
// event. Called from another goroutine it then waits, bounded by the resize
// timeout, until a frame claimed after the call has completed, or until it
// becomes clear no frame is coming (paused, not drawable, exited).
//
// Called from the render thread it only records the size.
func (t *Thread) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.width, t.height = width, height
	t.requestRender = true
	t.renderComplete = false

	if t.onRenderThread() {
		t.cond.Broadcast()
		return nil
	}

	want := t.frameSeq + 1
	if !t.exited && !t.shouldExit {
		t.queue.push(event{kind: eventSurfaceResized, width: width, height: height})
	}
	t.cond.Broadcast()

	if !t.started || t.opts.resizeTimeout <= 0 {
		return nil
	}

	deadline := time.Now().Add(t.opts.resizeTimeout)
	for !t.exited && !t.paused && t.frameDone < want && (t.readyToRender() || t.rendering) {
		if !t.waitUntil(deadline) {
			Logger().Warn("resize wait timed out",
				slog.Uint64("thread", t.id),
				slog.Int("width", width),
				slog.Int("height", height),
				slog.Duration("timeout", t.opts.resizeTimeout),
			)
			break
		}
	}
	return nil
}

// SetRenderMode switches between on-demand and continuous rendering.
func (t *Thread) SetRenderMode(m RenderMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRenderMode, int(m))
	}
	t.mu.Lock()
	t.mode = m
	t.cond.Broadcast()
	t.mu.Unlock()
	return nil
}

// RenderMode returns the current render mode.
func (t *Thread) RenderMode() RenderMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// RequestRender asks for one frame. Requests made before the frame is
// claimed coalesce into that frame.
func (t *Thread) RequestRender() {
	t.mu.Lock()
	t.requestRender = true
	t.cond.Broadcast()
	t.mu.Unlock()
}

// RequestRenderAndNotify asks for one frame and runs done on the render
// thread after a frame claimed after this call has been rendered. Callbacks
// from successive calls run in call order. done may be nil.
func (t *Thread) RequestRenderAndNotify(done func()) error {
	if t.onRenderThread() {
		return ErrOnRenderThread
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.exited || t.shouldExit {
		return ErrThreadExited
	}
	t.requestRender = true
	t.renderComplete = false
	if done != nil {
		t.finish = append(t.finish, pendingFinish{after: t.frameSeq + 1, fn: done})
	}
	t.cond.Broadcast()
	return nil
}

// Pause stops frame production and returns once the render thread has
// acknowledged it. Queued events still run while paused.
func (t *Thread) Pause() error {
	if t.onRenderThread() {
		return ErrOnRenderThread
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.requestPaused = true
	t.cond.Broadcast()
	if !t.started {
		t.paused = true
		return nil
	}
	for !t.exited && !t.paused {
		t.cond.Wait()
	}
	return nil
}

// Resume restarts frame production. It returns once the render thread has
// left the paused state and, when a drawable surface is present, has
// rendered a frame claimed after this call. A concurrent Pause or Shutdown
// releases the wait.
func (t *Thread) Resume() error {
	if t.onRenderThread() {
		return ErrOnRenderThread
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.requestPaused = false
	t.requestRender = true
	t.renderComplete = false
	want := t.frameSeq + 1
	t.cond.Broadcast()
	if !t.started {
		t.paused = false
		return nil
	}
	for !t.exited && !t.requestPaused && (t.paused || (t.drawable() && t.frameDone < want)) {
		t.cond.Wait()
	}
	return nil
}

// Shutdown asks the render thread to exit and waits until it has. Pending
// events and finish callbacks are dropped without running. Shutdown is
// idempotent.
func (t *Thread) Shutdown() error {
	if t.onRenderThread() {
		return ErrOnRenderThread
	}

	t.mu.Lock()
	t.shouldExit = true
	t.cond.Broadcast()
	if !t.started {
		if !t.exited {
			t.queue.clear()
			t.finish = nil
			t.exitedAt = time.Now()
			t.exited = true
		}
		t.mu.Unlock()
		return nil
	}
	for !t.exited {
		t.cond.Wait()
	}
	t.mu.Unlock()

	<-t.done
	return nil
}

// Done is closed once the render goroutine has returned. It is never closed
// for a thread that was not started.
func (t *Thread) Done() <-chan struct{} { return t.done }

// ID returns the registry id of the thread.
func (t *Thread) ID() uint64 { return t.id }

// Name returns the thread name.
func (t *Thread) Name() string { return t.name }

// Status returns the lifecycle status.
func (t *Thread) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.exited:
		return StatusExited
	case t.shouldExit:
		return StatusExiting
	case t.started:
		return StatusRunning
	default:
		return StatusCreated
	}
}

// Size returns the last size recorded by Resize or a resize event.
func (t *Thread) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Paused reports whether the render thread has acknowledged a pause.
func (t *Thread) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// HasSurface reports whether the render thread holds a surface.
func (t *Thread) HasSurface() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasSurface
}

// Stats returns a snapshot of the frame statistics.
func (t *Thread) Stats() FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Info returns a registry snapshot of the thread.
func (t *Thread) Info() ThreadInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ThreadInfo{
		ID:        t.id,
		Name:      t.name,
		StartedAt: t.startedAt,
		ExitedAt:  t.exitedAt,
		Stats:     t.stats,
	}
}

func (t *Thread) surfaceWasSeen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.surfaceSeen
}
