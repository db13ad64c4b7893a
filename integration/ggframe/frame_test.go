// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggframe

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/renderthread"
)

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return struct{}{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return struct{}{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return struct{}{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

// mockTexture implements the texture interfaces for testing.
type mockTexture struct {
	width     int
	height    int
	data      []byte
	destroyed bool
	updated   int
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }
func (m *mockTexture) Destroy()    { m.destroyed = true }

func (m *mockTexture) UpdateData(data []byte) error {
	m.data = append(m.data[:0], data...)
	m.updated++
	return nil
}

// mockDrawer implements gpucontext.TextureDrawer and TextureCreator.
type mockDrawer struct {
	created []*mockTexture
	drawn   []gpucontext.Texture
}

func (d *mockDrawer) TextureCreator() gpucontext.TextureCreator { return d }

func (d *mockDrawer) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	tex := &mockTexture{width: width, height: height, data: append([]byte(nil), data...)}
	d.created = append(d.created, tex)
	return tex, nil
}

func (d *mockDrawer) DrawTexture(tex gpucontext.Texture, _, _ float32) error {
	d.drawn = append(d.drawn, tex)
	return nil
}

func fillRed(dc *gg.Context, f renderthread.Frame) error {
	dc.SetRGB(1, 0, 0)
	dc.DrawRectangle(0, 0, float64(f.Width), float64(f.Height))
	return dc.Fill()
}

func newTestRenderer(t *testing.T, draw DrawFunc, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(draw, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNew_NilDraw(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDraw) {
		t.Errorf("New(nil) error = %v, want ErrNilDraw", err)
	}
}

func TestRenderer_RenderFrame(t *testing.T) {
	r := newTestRenderer(t, fillRed)

	if _, err := r.Snapshot(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Snapshot() before a frame = %v, want ErrNoFrame", err)
	}

	if err := r.RenderFrame(renderthread.Frame{Index: 1, Width: 20, Height: 10}); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("Snapshot() bounds = %v, want 20x10", b)
	}
	if got := img.RGBAAt(10, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (10,5) = %v, want opaque red", got)
	}

	// The next frame follows the loop's size reading.
	if err := r.RenderFrame(renderthread.Frame{Index: 2, Width: 8, Height: 4}); err != nil {
		t.Fatal(err)
	}
	img, _ = r.Snapshot()
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("Snapshot() bounds after resize = %v, want 8x4", b)
	}
	if r.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", r.Frames())
	}
}

func TestRenderer_Background(t *testing.T) {
	r := newTestRenderer(t, func(*gg.Context, renderthread.Frame) error { return nil },
		WithBackground(gg.RGB(0, 0, 1)))

	if err := r.RenderFrame(renderthread.Frame{Index: 1, Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel (1,1) = %v, want opaque blue", got)
	}
}

func TestRenderer_DrawError(t *testing.T) {
	errDraw := errors.New("draw failed")
	r := newTestRenderer(t, func(*gg.Context, renderthread.Frame) error { return errDraw })

	err := r.RenderFrame(renderthread.Frame{Index: 3, Width: 4, Height: 4})
	if !errors.Is(err, errDraw) {
		t.Errorf("RenderFrame() = %v, want wrapped draw error", err)
	}
	if r.Frames() != 0 {
		t.Errorf("Frames() = %d after failed draw, want 0", r.Frames())
	}

	if err := r.RenderFrame(renderthread.Frame{Index: 4}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("RenderFrame(0x0) = %v, want ErrInvalidDimensions", err)
	}
}

func TestRenderer_Configuration(t *testing.T) {
	tests := []struct {
		name     string
		surface  gputypes.TextureFormat
		provider gpucontext.DeviceProvider
		want     gputypes.TextureFormat
	}{
		{"surface format", gputypes.TextureFormatRGBA8Unorm, nil, gputypes.TextureFormatRGBA8Unorm},
		{"provider format", gputypes.TextureFormatUndefined, &mockProvider{format: gputypes.TextureFormatRGBA8Unorm}, gputypes.TextureFormatRGBA8Unorm},
		{"default format", gputypes.TextureFormatUndefined, nil, gputypes.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.provider != nil {
				opts = append(opts, WithDeviceProvider(tt.provider))
			}
			r := newTestRenderer(t, fillRed, opts...)

			if _, ok := r.Configuration(); ok {
				t.Error("Configuration() ok before a surface")
			}
			s := renderthread.Surface{Format: tt.surface}
			if err := r.SurfaceReady(s, 640, 480, true); err != nil {
				t.Fatal(err)
			}
			cfg, ok := r.Configuration()
			if !ok {
				t.Fatal("Configuration() not ok after SurfaceReady")
			}
			if cfg.Format != tt.want {
				t.Errorf("Format = %v, want %v", cfg.Format, tt.want)
			}
			if cfg.Width != 640 || cfg.Height != 480 {
				t.Errorf("size = %dx%d, want 640x480", cfg.Width, cfg.Height)
			}
			if cfg.Usage != gputypes.TextureUsageRenderAttachment ||
				cfg.PresentMode != gputypes.PresentModeFifo ||
				cfg.AlphaMode != gputypes.CompositeAlphaModeOpaque {
				t.Errorf("Configuration() = %+v", cfg)
			}
		})
	}
}

func TestRenderer_SurfaceResized(t *testing.T) {
	r := newTestRenderer(t, fillRed, WithPresentMode(gputypes.PresentModeMailbox))
	if err := r.SurfaceReady(renderthread.Surface{}, 100, 100, true); err != nil {
		t.Fatal(err)
	}
	if err := r.SurfaceResized(0, 0); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := r.Configuration(); cfg.Width != 100 {
		t.Errorf("zero resize changed width to %d", cfg.Width)
	}
	if err := r.SurfaceResized(800, 600); err != nil {
		t.Fatal(err)
	}
	cfg, _ := r.Configuration()
	if cfg.Width != 800 || cfg.Height != 600 || cfg.PresentMode != gputypes.PresentModeMailbox {
		t.Errorf("Configuration() = %+v", cfg)
	}
}

func TestRenderer_PresentsThroughTextureDrawer(t *testing.T) {
	drawer := &mockDrawer{}
	r := newTestRenderer(t, fillRed, WithTextureDrawer(drawer))

	for i, size := range [][2]int{{16, 16}, {16, 16}, {32, 8}} {
		f := renderthread.Frame{Index: uint64(i + 1), Width: size[0], Height: size[1]}
		if err := r.RenderFrame(f); err != nil {
			t.Fatalf("RenderFrame(%d) = %v", f.Index, err)
		}
	}

	if len(drawer.created) != 2 {
		t.Fatalf("textures created = %d, want 2", len(drawer.created))
	}
	first, second := drawer.created[0], drawer.created[1]
	if first.updated != 1 {
		t.Errorf("first texture updated %d times, want 1", first.updated)
	}
	if !first.destroyed {
		t.Error("texture of the old size was not destroyed")
	}
	if second.width != 32 || second.height != 8 || second.destroyed {
		t.Errorf("second texture = %dx%d destroyed=%v", second.width, second.height, second.destroyed)
	}
	if len(drawer.drawn) != 3 {
		t.Errorf("DrawTexture calls = %d, want 3", len(drawer.drawn))
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !second.destroyed {
		t.Error("Close did not destroy the current texture")
	}
}

func TestRenderer_SavePNG(t *testing.T) {
	r := newTestRenderer(t, fillRed)
	path := filepath.Join(t.TempDir(), "frame.png")

	if err := r.SavePNG(path); !errors.Is(err, ErrNoFrame) {
		t.Errorf("SavePNG() before a frame = %v, want ErrNoFrame", err)
	}
	if err := r.RenderFrame(renderthread.Frame{Index: 1, Width: 12, Height: 6}); err != nil {
		t.Fatal(err)
	}
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("png.DecodeConfig() = %v", err)
	}
	if cfg.Width != 12 || cfg.Height != 6 {
		t.Errorf("PNG size = %dx%d, want 12x6", cfg.Width, cfg.Height)
	}
}

func TestRenderer_SnapshotScaled(t *testing.T) {
	r := newTestRenderer(t, fillRed)
	if err := r.RenderFrame(renderthread.Frame{Index: 1, Width: 40, Height: 20}); err != nil {
		t.Fatal(err)
	}
	img, err := r.SnapshotScaled(10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("bounds = %v, want 10x5", b)
	}
	if got := img.RGBAAt(5, 2); got.R < 250 || got.A < 250 {
		t.Errorf("pixel (5,2) = %v, want red", got)
	}
	if _, err := r.SnapshotScaled(0, 5); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("SnapshotScaled(0, 5) = %v, want ErrInvalidDimensions", err)
	}
}

func TestRenderer_Closed(t *testing.T) {
	r := newTestRenderer(t, fillRed)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := r.RenderFrame(renderthread.Frame{Index: 1, Width: 4, Height: 4}); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderFrame() after Close = %v, want ErrClosed", err)
	}
	if err := r.SurfaceReady(renderthread.Surface{}, 4, 4, true); !errors.Is(err, ErrClosed) {
		t.Errorf("SurfaceReady() after Close = %v, want ErrClosed", err)
	}
	if _, err := r.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot() after Close = %v, want ErrClosed", err)
	}
}

func TestRenderer_OnRenderThread(t *testing.T) {
	r := newTestRenderer(t, fillRed)
	view, err := renderthread.NewView(r,
		renderthread.WithRenderMode(renderthread.RenderWhenDirty),
		renderthread.WithRegistry(renderthread.NewRegistry(1)),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = view.Close() })

	view.SurfaceCreated(renderthread.Surface{Width: 64, Height: 32})
	if err := view.SurfaceChanged(64, 32); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for r.Frames() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no frame rendered")
		}
		time.Sleep(time.Millisecond)
	}

	img, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("bounds = %v, want 64x32", b)
	}
	if cfg, ok := r.Configuration(); !ok || cfg.Width != 64 {
		t.Errorf("Configuration() = %+v, %v", cfg, ok)
	}
}
