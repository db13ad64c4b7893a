// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glfwapp hosts a renderthread.View in a desktop window created with
// GLFW. The window is created without a client API; the *glfw.Window is handed
// to the render thread as the native surface token.
//
// GLFW must be driven from the main OS thread. Lock it in main's init:
//
//	func init() { runtime.LockOSThread() }
//
//	func main() {
//	    w, err := glfwapp.Open(view, 800, 600, "demo", gputypes.TextureFormatBGRA8Unorm)
//	    ...
//	    defer w.Close()
//	    w.Run()
//	}
package glfwapp

import (
	"errors"
	"log/slog"

	"github.com/gogpu/renderthread"
)

// Controller is the part of *renderthread.View the window drives.
type Controller interface {
	Detach() error
	SurfaceCreated(s renderthread.Surface)
	SurfaceDestroyed()
	SurfaceChanged(width, height int) error
	Pause() error
	Resume() error
	RequestRender()
	SetScaleFactor(f float64)
}

var _ Controller = (*renderthread.View)(nil)

// handlers maps window callbacks onto a Controller.
type handlers struct {
	ctrl      Controller
	iconified bool
}

func (h *handlers) framebufferSize(width, height int) {
	if err := h.ctrl.SurfaceChanged(width, height); err != nil {
		logFailure("resize", err)
	}
}

// iconify pauses rendering while the window is minimized.
func (h *handlers) iconify(iconified bool) {
	if iconified == h.iconified {
		return
	}
	h.iconified = iconified

	var err error
	if iconified {
		err = h.ctrl.Pause()
	} else {
		err = h.ctrl.Resume()
	}
	if err != nil {
		logFailure("iconify", err)
	}
}

func (h *handlers) refresh() {
	h.ctrl.RequestRender()
}

func (h *handlers) contentScale(x, _ float32) {
	h.ctrl.SetScaleFactor(float64(x))
}

// close tears the render thread down before the window goes away.
func (h *handlers) close() error {
	h.ctrl.SurfaceDestroyed()
	return h.ctrl.Detach()
}

func logFailure(op string, err error) {
	if errors.Is(err, renderthread.ErrNoThread) {
		return
	}
	renderthread.Logger().Warn("glfwapp: "+op+" failed", slog.Any("error", err))
}
