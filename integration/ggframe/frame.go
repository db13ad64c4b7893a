// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggframe

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/renderthread"
)

// Common errors returned by Renderer operations.
var (
	// ErrNilDraw is returned by New when the draw function is nil.
	ErrNilDraw = errors.New("ggframe: nil draw function")

	// ErrClosed is returned when operations are attempted on a closed renderer.
	ErrClosed = errors.New("ggframe: renderer is closed")

	// ErrNoFrame is returned when a frame is read before one was rendered.
	ErrNoFrame = errors.New("ggframe: no frame rendered")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("ggframe: invalid dimensions")

	// ErrNoTextureCreator is returned when the texture drawer cannot create textures.
	ErrNoTextureCreator = errors.New("ggframe: texture drawer has no TextureCreator")
)

// DrawFunc draws one frame. The context is already sized to the frame and
// cleared.
type DrawFunc func(dc *gg.Context, f renderthread.Frame) error

// textureDestroyer matches gogpu.Texture.Destroy.
type textureDestroyer interface {
	Destroy()
}

// Renderer draws frames with gg. It implements renderthread.Renderer.
type Renderer struct {
	draw DrawFunc
	opts options

	mu         sync.Mutex
	dc         *gg.Context
	surface    renderthread.Surface
	config     gputypes.SurfaceConfiguration
	configured bool
	texture    gpucontext.Texture
	oldTexture gpucontext.Texture
	frames     uint64
	closed     bool
}

var _ renderthread.Renderer = (*Renderer)(nil)

// New creates a Renderer that calls draw for every frame.
func New(draw DrawFunc, opts ...Option) (*Renderer, error) {
	if draw == nil {
		return nil, ErrNilDraw
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.provider != nil {
		// Share the GPU device with the gg accelerator if one is registered.
		// Failure is non-fatal: gg keeps rendering on the CPU.
		if err := gg.SetAcceleratorDeviceProvider(o.provider); err != nil {
			renderthread.Logger().Debug("ggframe: accelerator device not shared", slog.Any("error", err))
		}
	}

	return &Renderer{draw: draw, opts: o}, nil
}

// SurfaceReady records the surface and derives its configuration.
func (r *Renderer) SurfaceReady(s renderthread.Surface, width, height int, firstTime bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.surface = s
	r.configure(width, height)

	renderthread.Logger().Debug("ggframe: surface ready",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Bool("first", firstTime),
		slog.String("format", r.config.Format.String()),
	)
	return nil
}

// SurfaceResized reconfigures the surface and resizes the drawing context.
func (r *Renderer) SurfaceResized(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		// Nothing is drawn at a zero size; keep the last configuration.
		return nil
	}
	r.configure(width, height)
	if r.dc != nil {
		if err := r.dc.Resize(width, height); err != nil {
			return fmt.Errorf("ggframe: context resize failed: %w", err)
		}
	}
	return nil
}

// RenderFrame draws f and, with a texture drawer, presents it.
func (r *Renderer) RenderFrame(f renderthread.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if err := r.ensureContext(f.Width, f.Height); err != nil {
		return err
	}

	if r.opts.hasBackground {
		r.dc.ClearWithColor(r.opts.background)
	} else {
		r.dc.Clear()
	}
	if err := r.draw(r.dc, f); err != nil {
		return fmt.Errorf("ggframe: draw frame %d: %w", f.Index, err)
	}
	r.frames++

	if r.opts.drawer != nil {
		return r.present()
	}
	return nil
}

// configure derives the surface configuration. Must be called with mu held.
func (r *Renderer) configure(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	format := r.surface.Format
	if format == gputypes.TextureFormatUndefined && r.opts.provider != nil {
		format = r.opts.provider.SurfaceFormat()
	}
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	r.config = gputypes.SurfaceConfiguration{
		Usage:       gputypes.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.opts.presentMode,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	}
	r.configured = true
}

// ensureContext creates or resizes the drawing context. Must be called with mu held.
func (r *Renderer) ensureContext(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if r.dc == nil {
		r.dc = gg.NewContext(width, height)
		return nil
	}
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("ggframe: context resize failed: %w", err)
	}
	return nil
}

// present uploads the pixmap and draws it. Must be called with mu held.
func (r *Renderer) present() error {
	// FlushGPU can fail if the accelerator has issues. The CPU-rendered
	// content is still in the pixmap.
	_ = r.dc.FlushGPU()

	data := r.dc.ResizeTarget().Data()
	width, height := r.dc.Width(), r.dc.Height()

	if r.texture != nil && (r.texture.Width() != width || r.texture.Height() != height) {
		// The old texture may still be referenced by in-flight command
		// buffers; destroy it after the next upload.
		destroyTexture(r.oldTexture)
		r.oldTexture = r.texture
		r.texture = nil
	}

	if r.texture == nil {
		creator := r.opts.drawer.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(width, height, data)
		if err != nil {
			return fmt.Errorf("ggframe: NewTextureFromRGBA failed: %w", err)
		}
		// gg pixmap data is premultiplied alpha.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		r.texture = tex
		destroyTexture(r.oldTexture)
		r.oldTexture = nil
	} else if updater, ok := r.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("ggframe: texture update failed: %w", err)
		}
	}

	return r.opts.drawer.DrawTexture(r.texture, 0, 0)
}

func destroyTexture(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// Snapshot returns a copy of the last rendered frame.
func (r *Renderer) Snapshot() (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.lastImage()
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// SnapshotScaled returns the last rendered frame scaled to width x height.
func (r *Renderer) SnapshotScaled(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.lastImage()
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// lastImage returns the pixmap as an image. Must be called with mu held.
func (r *Renderer) lastImage() (image.Image, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.dc == nil || r.frames == 0 {
		return nil, ErrNoFrame
	}
	_ = r.dc.FlushGPU()
	return r.dc.Image(), nil
}

// SavePNG writes the last rendered frame to path.
func (r *Renderer) SavePNG(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.dc == nil || r.frames == 0 {
		return ErrNoFrame
	}
	return r.dc.SavePNG(path)
}

// Configuration returns the surface configuration derived from the last
// SurfaceReady or SurfaceResized. ok is false until a surface with a
// non-zero size was seen.
func (r *Renderer) Configuration() (config gputypes.SurfaceConfiguration, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config, r.configured
}

// Surface returns the surface passed to the last SurfaceReady.
func (r *Renderer) Surface() renderthread.Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

// Frames returns the number of frames drawn successfully.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close releases the drawing context and any GPU textures.
// Close is idempotent.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	destroyTexture(r.oldTexture)
	destroyTexture(r.texture)
	r.oldTexture, r.texture = nil, nil

	if r.dc != nil {
		_ = r.dc.Close()
		r.dc = nil
	}
	return nil
}
