// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Thread is a render goroutine together with the state it shares with the
// host. All shared fields are guarded by a single monitor (mu + cond); every
// transition is made and broadcast under it. Renderer hooks, queued work and
// finish callbacks always run with the monitor released.
//
// A Thread is started once and, after Shutdown, discarded. Use View to get
// re-attachable behavior.
type Thread struct {
	id       uint64
	name     string
	renderer Renderer
	opts     threadOptions
	registry *Registry

	// tid is the OS thread id of the locked render goroutine, 0 if unknown.
	tid atomic.Int64

	done chan struct{}

	mu   sync.Mutex
	cond *sync.Cond

	started    bool
	shouldExit bool
	exited     bool

	requestPaused bool
	paused        bool

	hasSurface        bool
	waitingForSurface bool
	surfaceSeen       bool

	width, height int
	mode          RenderMode
	requestRender bool

	// renderComplete is cleared by requests that expect a frame and set after
	// every frame. frameSeq and frameDone let waiters require a frame claimed
	// after their request rather than one already in flight.
	renderComplete bool
	rendering      bool
	frameSeq       uint64
	frameDone      uint64

	finish []pendingFinish
	queue  eventQueue
	stats  FrameStats

	startedAt time.Time
	exitedAt  time.Time
}

// pendingFinish is a RequestRenderAndNotify callback waiting for a frame
// with Index >= after.
type pendingFinish struct {
	after uint64
	fn    func()
}

// step is what the loop does after one wake.
type step struct {
	ev      event
	frame   Frame
	isFrame bool
}

// NewThread creates a render thread in the Created state. Call Start to run it.
func NewThread(r Renderer, opts ...ThreadOption) (*Thread, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	o := defaultThreadOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newThread(r, o, false), nil
}

func newThread(r Renderer, o threadOptions, surfaceSeen bool) *Thread {
	reg := o.registry
	if reg == nil {
		reg = defaultRegistry
	}
	id := reg.newID()
	name := o.name
	if name == "" {
		name = "RenderThread " + strconv.FormatUint(id, 10)
	}

	t := &Thread{
		id:            id,
		name:          name,
		renderer:      r,
		opts:          o,
		registry:      reg,
		done:          make(chan struct{}),
		mode:          o.mode,
		requestRender: true,
		surfaceSeen:   surfaceSeen,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Start launches the render goroutine and returns once it is running.
func (t *Thread) Start() error {
	t.mu.Lock()
	switch {
	case t.exited || t.shouldExit:
		t.mu.Unlock()
		return ErrThreadExited
	case t.started:
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.startedAt = time.Now()
	t.mu.Unlock()

	ready := make(chan struct{})
	go t.run(ready)
	<-ready
	return nil
}

func (t *Thread) run(ready chan<- struct{}) {
	defer close(t.done)

	if t.opts.lockOSThread {
		// GPU contexts are bound to an OS thread. The thread is never
		// unlocked, so it dies with the goroutine instead of being reused.
		runtime.LockOSThread()
		t.tid.Store(currentThreadID())
	}

	t.registry.threadStarting(t)
	close(ready)

	defer t.registry.threadExiting(t)
	defer t.exit()

	for {
		s, ok := t.next()
		if !ok {
			return
		}
		if s.isFrame {
			t.render(s.frame)
		} else {
			t.dispatch(s.ev)
		}
	}
}

// next blocks until the loop has something to do: one queued event or one
// frame. It returns false when the thread must exit.
func (t *Thread) next() (step, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		if t.shouldExit {
			return step{}, false
		}

		if ev, ok := t.queue.pop(); ok {
			return step{ev: ev}, true
		}

		if t.paused != t.requestPaused {
			t.paused = t.requestPaused
			t.cond.Broadcast()
			Logger().Debug("render thread pause acknowledged",
				slog.Uint64("thread", t.id),
				slog.Bool("paused", t.paused),
			)
		}

		if t.waitingForSurface == t.hasSurface {
			t.waitingForSurface = !t.hasSurface
			t.cond.Broadcast()
		}

		if t.readyToRender() {
			t.requestRender = false
			t.rendering = true
			t.frameSeq++
			f := Frame{
				Index:  t.frameSeq,
				Width:  t.width,
				Height: t.height,
				Mode:   t.mode,
			}
			t.cond.Broadcast()
			return step{frame: f, isFrame: true}, true
		}

		t.cond.Wait()
	}
}

// readyToRender is the gating predicate. Must be called with mu held.
func (t *Thread) readyToRender() bool {
	return t.drawable() && !t.paused &&
		(t.requestRender || t.mode == RenderContinuously)
}

// drawable reports whether a surface with a usable size is present.
// Must be called with mu held.
func (t *Thread) drawable() bool {
	return t.hasSurface && t.width > 0 && t.height > 0
}

func (t *Thread) dispatch(ev event) {
	switch ev.kind {
	case eventWork:
		_ = t.call("queued work", func() error {
			ev.work()
			return nil
		})

	case eventSurfaceCreated:
		t.mu.Lock()
		t.hasSurface = true
		t.requestRender = true
		first := !t.surfaceSeen
		t.surfaceSeen = true
		w, h := t.width, t.height
		t.cond.Broadcast()
		t.mu.Unlock()

		if ev.surface.Width > 0 && ev.surface.Height > 0 {
			w, h = ev.surface.Width, ev.surface.Height
		}
		Logger().Debug("surface created",
			slog.Uint64("thread", t.id),
			slog.Int("width", w),
			slog.Int("height", h),
			slog.Bool("first", first),
		)
		_ = t.call("surface ready", func() error {
			return t.renderer.SurfaceReady(ev.surface, w, h, first)
		})

	case eventSurfaceDestroyed:
		t.mu.Lock()
		t.hasSurface = false
		t.requestRender = false
		t.cond.Broadcast()
		t.mu.Unlock()

		Logger().Debug("surface destroyed", slog.Uint64("thread", t.id))

	case eventSurfaceResized:
		// Re-apply the size: a later Resize may have updated the fields
		// before this event ran, and its own event follows this one.
		t.mu.Lock()
		t.width, t.height = ev.width, ev.height
		t.cond.Broadcast()
		t.mu.Unlock()

		_ = t.call("surface resized", func() error {
			return t.renderer.SurfaceResized(ev.width, ev.height)
		})
	}
}

func (t *Thread) render(f Frame) {
	start := time.Now()
	err := t.call("render frame", func() error {
		return t.renderer.RenderFrame(f)
	})
	elapsed := time.Since(start)

	t.mu.Lock()
	t.stats.record(elapsed, err != nil)
	finish := t.takeFinish(f.Index)
	t.mu.Unlock()

	for _, fn := range finish {
		_ = t.call("finish drawing", func() error {
			fn()
			return nil
		})
	}

	t.mu.Lock()
	t.frameDone = f.Index
	t.rendering = false
	t.renderComplete = true
	t.cond.Broadcast()
	t.mu.Unlock()
}

// takeFinish removes the finish callbacks satisfied by frame index, oldest
// first. Callbacks are appended with non-decreasing thresholds, so they form
// a prefix. Must be called with mu held.
func (t *Thread) takeFinish(index uint64) []func() {
	n := 0
	for n < len(t.finish) && t.finish[n].after <= index {
		n++
	}
	if n == 0 {
		return nil
	}
	fns := make([]func(), n)
	for i := range n {
		fns[i] = t.finish[i].fn
	}
	rest := copy(t.finish, t.finish[n:])
	clear(t.finish[rest:])
	t.finish = t.finish[:rest]
	return fns
}

// exit drops pending work and marks the thread exited.
func (t *Thread) exit() {
	t.tid.Store(0)

	t.mu.Lock()
	dropped := t.queue.clear()
	dropped += len(t.finish)
	t.finish = nil
	t.rendering = false
	t.exitedAt = time.Now()
	t.exited = true
	t.cond.Broadcast()
	t.mu.Unlock()

	Logger().Debug("render thread cleanup completed",
		slog.Uint64("thread", t.id),
		slog.Int("dropped", dropped),
	)
}

// call runs a renderer hook or host-supplied work, converting a panic into an
// error. Failures are logged; the loop continues.
func (t *Thread) call(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			Logger().Error("render thread "+op+" failed",
				slog.Uint64("thread", t.id),
				slog.Any("error", err),
			)
		}
	}()
	return fn()
}

// onRenderThread reports whether the caller runs on the render goroutine.
// Detection needs WithLockOSThread (the default) and a platform thread id.
func (t *Thread) onRenderThread() bool {
	tid := t.tid.Load()
	return tid != 0 && tid == currentThreadID()
}

// waitUntil waits on the monitor until woken or until deadline passes.
// The timer is re-armed with the remaining time on every call. It returns
// false without waiting once the deadline has passed. Must be called with mu held.
func (t *Thread) waitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	timer := time.AfterFunc(remaining, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	t.cond.Wait()
	timer.Stop()
	return true
}
