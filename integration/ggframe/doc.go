// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggframe provides a renderthread.Renderer that draws every frame
// with gg 2D graphics.
//
// The render thread owns the surface; ggframe owns a gg.Context sized to the
// frame the loop hands it. The data flow per frame is:
//
//	renderthread loop -> DrawFunc(gg.Context) -> Pixmap (CPU) -> optional GPU texture
//
// # Usage
//
//	r, err := ggframe.New(func(dc *gg.Context, f renderthread.Frame) error {
//	    dc.SetRGB(1, 0, 0)
//	    dc.DrawCircle(float64(f.Width)/2, float64(f.Height)/2, 100)
//	    return dc.Fill()
//	})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	view, err := renderthread.NewView(r)
//
// # Surface configuration
//
// On SurfaceReady and SurfaceResized the renderer derives a
// gputypes.SurfaceConfiguration for the surface. The format comes from the
// surface itself, else from the DeviceProvider passed with WithDeviceProvider,
// else BGRA8Unorm.
//
// # Presenting
//
// With WithTextureDrawer the pixmap is uploaded after every frame through
// gpucontext.TextureCreator and gpucontext.TextureUpdater and drawn at (0, 0).
// Without it frames stay on the CPU and can be read with Snapshot or SavePNG.
//
// # Thread Safety
//
// Renderer methods are safe for concurrent use. The renderer hooks run on the
// render thread; Snapshot, SavePNG and Configuration may be called from any
// goroutine.
package ggframe
