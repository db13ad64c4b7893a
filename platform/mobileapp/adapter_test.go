// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mobileapp

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/gogpu/renderthread"
)

// fakeController records the calls made by the adapter.
type fakeController struct {
	calls    []string
	surfaces []renderthread.Surface
	mode     renderthread.RenderMode
	pauseErr error
}

func (c *fakeController) Attach() error { c.calls = append(c.calls, "attach"); return nil }
func (c *fakeController) Detach() error { c.calls = append(c.calls, "detach"); return nil }

func (c *fakeController) SurfaceCreated(s renderthread.Surface) {
	c.calls = append(c.calls, "created")
	c.surfaces = append(c.surfaces, s)
}

func (c *fakeController) SurfaceDestroyed() { c.calls = append(c.calls, "destroyed") }

func (c *fakeController) SurfaceChanged(width, height int) error {
	c.calls = append(c.calls, fmt.Sprintf("changed %dx%d", width, height))
	return nil
}

func (c *fakeController) Pause() error {
	c.calls = append(c.calls, "pause")
	return c.pauseErr
}

func (c *fakeController) Resume() error { c.calls = append(c.calls, "resume"); return nil }
func (c *fakeController) RequestRender() { c.calls = append(c.calls, "render") }
func (c *fakeController) RenderMode() renderthread.RenderMode { return c.mode }
func (c *fakeController) SetScaleFactor(f float64) { c.calls = append(c.calls, fmt.Sprintf("scale %g", f)) }

func TestAdapter_Lifecycle(t *testing.T) {
	ctrl := &fakeController{mode: renderthread.RenderWhenDirty}
	a := New(ctrl, gputypes.TextureFormatRGBA8Unorm)

	steps := []struct {
		event any
		want  []string
		dead  bool
	}{
		{
			event: lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused, DrawContext: "ctx"},
			want:  []string{"attach", "created", "resume"},
		},
		{
			event: size.Event{WidthPx: 800, HeightPx: 600, PixelsPerPt: 2},
			want:  []string{"scale 2", "changed 800x600"},
		},
		{
			event: paint.Event{External: true},
			want:  []string{"render"},
		},
		{
			event: "ignored",
		},
		{
			event: lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageAlive},
			want:  []string{"pause", "destroyed"},
		},
		{
			event: lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageVisible, DrawContext: "ctx2"},
			want:  []string{"created", "resume"},
		},
		{
			event: lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageDead},
			want:  []string{"pause", "destroyed", "detach"},
			dead:  true,
		},
	}

	for i, step := range steps {
		ctrl.calls = nil
		dead, err := a.Handle(step.event)
		if err != nil {
			t.Fatalf("step %d: Handle(%v) error = %v", i, step.event, err)
		}
		if dead != step.dead {
			t.Errorf("step %d: dead = %v, want %v", i, dead, step.dead)
		}
		if !slices.Equal(ctrl.calls, step.want) {
			t.Errorf("step %d: calls = %v, want %v", i, ctrl.calls, step.want)
		}
	}

	if len(ctrl.surfaces) != 2 {
		t.Fatalf("surfaces = %d, want 2", len(ctrl.surfaces))
	}
	first, second := ctrl.surfaces[0], ctrl.surfaces[1]
	if first.Native != "ctx" || first.Format != gputypes.TextureFormatRGBA8Unorm || first.Width != 0 {
		t.Errorf("first surface = %+v", first)
	}
	// The second surface carries the size seen before it.
	if second.Native != "ctx2" || second.Width != 800 || second.Height != 600 {
		t.Errorf("second surface = %+v", second)
	}
	if a.Visible() {
		t.Error("Visible() = true after the app died")
	}
}

func TestAdapter_ExternalPaintInContinuousMode(t *testing.T) {
	ctrl := &fakeController{mode: renderthread.RenderContinuously}
	a := New(ctrl, gputypes.TextureFormatUndefined)

	_, _ = a.Handle(paint.Event{External: true})
	_, _ = a.Handle(paint.Event{})
	if !slices.Equal(ctrl.calls, []string{"render"}) {
		t.Errorf("calls = %v, want only the internal paint to render", ctrl.calls)
	}
}

func TestAdapter_ErrorsAreReported(t *testing.T) {
	errPause := errors.New("pause failed")
	ctrl := &fakeController{pauseErr: errPause}
	a := New(ctrl, gputypes.TextureFormatUndefined)

	_, err := a.Handle(lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageAlive})
	if !errors.Is(err, errPause) {
		t.Errorf("Handle() error = %v, want pause error", err)
	}
	// Teardown continues past the failure.
	if !slices.Equal(ctrl.calls, []string{"pause", "destroyed"}) {
		t.Errorf("calls = %v", ctrl.calls)
	}

	ctrl.pauseErr = renderthread.ErrNoThread
	ctrl.calls = nil
	if _, err := a.Handle(lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageAlive}); err != nil {
		t.Errorf("Handle() with a detached view = %v, want nil", err)
	}
}

func TestRun_DrivesView(t *testing.T) {
	var frames atomic.Int64
	view, err := renderthread.NewView(renderthread.RendererFuncs{
		Render: func(renderthread.Frame) error {
			frames.Add(1)
			return nil
		},
	},
		renderthread.WithRenderMode(renderthread.RenderWhenDirty),
		renderthread.WithRegistry(renderthread.NewRegistry(1)),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = view.Close() })
	// Detach happens inside Run; Attach brings the thread back.
	if err := view.Detach(); err != nil {
		t.Fatal(err)
	}

	events := make(chan any, 8)
	events <- lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused}
	events <- size.Event{WidthPx: 320, HeightPx: 240, PixelsPerPt: 1.5}
	events <- paint.Event{}
	close(events)

	if err := Run(view, gputypes.TextureFormatBGRA8Unorm, events); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for frames.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no frame rendered")
		}
		time.Sleep(time.Millisecond)
	}
	if w, h := view.PixelSize(); w != 320 || h != 240 {
		t.Errorf("view PixelSize() = %dx%d, want 320x240", w, h)
	}
	if w, h := view.Size(); w != 213 || h != 160 {
		t.Errorf("view Size() = %dx%d, want 213x160 points", w, h)
	}
	if view.ScaleFactor() != 1.5 {
		t.Errorf("ScaleFactor() = %v, want 1.5", view.ScaleFactor())
	}

	dead := make(chan any, 1)
	dead <- lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageDead}
	close(dead)
	if err := Run(view, gputypes.TextureFormatBGRA8Unorm, dead); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if view.Thread() != nil {
		t.Error("view still has a thread after the app died")
	}
}
