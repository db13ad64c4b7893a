// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !js

package glfwapp

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderthread"
)

// Window is a GLFW window feeding surface events to a Controller.
type Window struct {
	win    *glfw.Window
	events handlers
	closed bool
}

// Open initializes GLFW, creates a window and announces its surface to ctrl.
// It must be called from the main OS thread.
func Open(ctrl Controller, width, height int, title string, format gputypes.TextureFormat) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{
		win:    win,
		events: handlers{ctrl: ctrl},
	}

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.framebufferSize(width, height)
	})
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		w.events.iconify(iconified)
	})
	win.SetRefreshCallback(func(_ *glfw.Window) {
		w.events.refresh()
	})
	win.SetContentScaleCallback(func(_ *glfw.Window, x, y float32) {
		w.events.contentScale(x, y)
	})

	x, y := win.GetContentScale()
	w.events.contentScale(x, y)

	fbWidth, fbHeight := win.GetFramebufferSize()
	ctrl.SurfaceCreated(renderthread.Surface{
		Native: win,
		Format: format,
		Width:  fbWidth,
		Height: fbHeight,
	})
	w.events.framebufferSize(fbWidth, fbHeight)

	return w, nil
}

// Run processes window events until the window is asked to close.
func (w *Window) Run() {
	for !w.win.ShouldClose() {
		glfw.WaitEvents()
	}
}

// Wake unblocks Run from another goroutine.
func (w *Window) Wake() {
	glfw.PostEmptyEvent()
}

// RequestClose makes Run return after the current event.
func (w *Window) RequestClose() {
	w.win.SetShouldClose(true)
	glfw.PostEmptyEvent()
}

// Native returns the underlying GLFW window.
func (w *Window) Native() *glfw.Window {
	return w.win
}

// Close stops the render thread, then destroys the window and terminates GLFW.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.events.close()
	w.win.Destroy()
	glfw.Terminate()
	return err
}
