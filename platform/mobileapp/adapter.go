// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mobileapp drives a renderthread.View from golang.org/x/mobile
// events.
//
// The adapter maps the app lifecycle onto the view:
//
//	lifecycle: alive on     -> Attach
//	lifecycle: visible on   -> SurfaceCreated, Resume
//	lifecycle: visible off  -> Pause, SurfaceDestroyed
//	lifecycle: alive off    -> Detach
//	size.Event              -> SetScaleFactor, SurfaceChanged
//	paint.Event             -> RequestRender
//
// Typical use inside app.Main:
//
//	app.Main(func(a app.App) {
//	    adapter := mobileapp.New(view)
//	    for e := range a.Events() {
//	        if dead, err := adapter.Handle(a.Filter(e)); dead || err != nil {
//	            ...
//	        }
//	    }
//	})
package mobileapp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/gogpu/renderthread"
)

// Controller is the part of *renderthread.View the adapter drives.
type Controller interface {
	Attach() error
	Detach() error
	SurfaceCreated(s renderthread.Surface)
	SurfaceDestroyed()
	SurfaceChanged(width, height int) error
	Pause() error
	Resume() error
	RequestRender()
	RenderMode() renderthread.RenderMode
	SetScaleFactor(f float64)
}

var _ Controller = (*renderthread.View)(nil)

// Adapter translates x/mobile events into Controller calls.
// It is meant to be used from the goroutine reading the app's event channel.
type Adapter struct {
	ctrl   Controller
	format gputypes.TextureFormat

	visible       bool
	width, height int
}

// New returns an adapter for ctrl. Surfaces it creates carry format.
func New(ctrl Controller, format gputypes.TextureFormat) *Adapter {
	return &Adapter{ctrl: ctrl, format: format}
}

// Visible reports whether the app window is currently visible.
func (a *Adapter) Visible() bool { return a.visible }

// Handle processes one event. dead is true once the app left StageAlive;
// the caller should stop reading events. Events of other types are ignored.
func (a *Adapter) Handle(e any) (dead bool, err error) {
	switch e := e.(type) {
	case lifecycle.Event:
		return a.lifecycle(e)

	case size.Event:
		if e.PixelsPerPt > 0 {
			a.ctrl.SetScaleFactor(float64(e.PixelsPerPt))
		}
		a.width, a.height = e.WidthPx, e.HeightPx
		if err := a.ctrl.SurfaceChanged(e.WidthPx, e.HeightPx); err != nil && !errors.Is(err, renderthread.ErrNoThread) {
			return false, fmt.Errorf("mobileapp: size %dx%d: %w", e.WidthPx, e.HeightPx, err)
		}

	case paint.Event:
		// The loop already draws every wake in continuous mode.
		if e.External && a.ctrl.RenderMode() == renderthread.RenderContinuously {
			return false, nil
		}
		a.ctrl.RequestRender()
	}
	return false, nil
}

// lifecycle applies stage crossings outermost first when coming up and
// innermost first when going down, so one event may span several stages.
func (a *Adapter) lifecycle(e lifecycle.Event) (bool, error) {
	renderthread.Logger().Debug("mobileapp: lifecycle",
		slog.String("from", e.From.String()),
		slog.String("to", e.To.String()),
	)

	var errs []error
	if e.Crosses(lifecycle.StageAlive) == lifecycle.CrossOn {
		if err := a.ctrl.Attach(); err != nil {
			errs = append(errs, err)
		}
	}

	switch e.Crosses(lifecycle.StageVisible) {
	case lifecycle.CrossOn:
		a.visible = true
		a.ctrl.SurfaceCreated(renderthread.Surface{
			Native: e.DrawContext,
			Format: a.format,
			Width:  a.width,
			Height: a.height,
		})
		if err := a.ctrl.Resume(); err != nil && !errors.Is(err, renderthread.ErrNoThread) {
			errs = append(errs, err)
		}
	case lifecycle.CrossOff:
		a.visible = false
		if err := a.ctrl.Pause(); err != nil && !errors.Is(err, renderthread.ErrNoThread) {
			errs = append(errs, err)
		}
		a.ctrl.SurfaceDestroyed()
	}

	dead := false
	if e.Crosses(lifecycle.StageAlive) == lifecycle.CrossOff {
		dead = true
		if err := a.ctrl.Detach(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return dead, fmt.Errorf("mobileapp: lifecycle %v: %w", e, err)
	}
	return dead, nil
}

// Run feeds events to a new adapter until the app dies or events is closed.
// Errors are logged and returned joined; they do not stop the loop.
func Run(ctrl Controller, format gputypes.TextureFormat, events <-chan any) error {
	a := New(ctrl, format)
	var errs []error
	for e := range events {
		dead, err := a.Handle(e)
		if err != nil {
			renderthread.Logger().Error("mobileapp: event failed", slog.Any("error", err))
			errs = append(errs, err)
		}
		if dead {
			break
		}
	}
	return errors.Join(errs...)
}
