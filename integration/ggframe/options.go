// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggframe

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Option configures a Renderer.
type Option func(*options)

type options struct {
	provider      gpucontext.DeviceProvider
	drawer        gpucontext.TextureDrawer
	presentMode   gputypes.PresentMode
	background    gg.RGBA
	hasBackground bool
}

func defaultOptions() options {
	return options{
		presentMode: gputypes.PresentModeFifo,
	}
}

// WithDeviceProvider supplies the GPU device. Its surface format is used when
// the surface does not carry one, and the device is shared with the gg
// accelerator.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithTextureDrawer presents every frame by uploading it as a texture.
func WithTextureDrawer(d gpucontext.TextureDrawer) Option {
	return func(o *options) {
		o.drawer = d
	}
}

// WithPresentMode sets the present mode of the derived surface configuration.
// The default is gputypes.PresentModeFifo.
func WithPresentMode(m gputypes.PresentMode) Option {
	return func(o *options) {
		o.presentMode = m
	}
}

// WithBackground clears every frame to c instead of transparent.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) {
		o.background = c
		o.hasBackground = true
	}
}
