package main

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/renderthread"
)

var background = gg.RGB(0.08, 0.1, 0.16)

// scene draws an orbit of circles that advances one step per frame, and a
// caption with the frame index and size.
type scene struct {
	source *text.FontSource
	face   text.Face
}

func newScene() (*scene, error) {
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &scene{source: source, face: source.Face(20)}, nil
}

func (s *scene) Close() error {
	return s.source.Close()
}

func (s *scene) draw(dc *gg.Context, f renderthread.Frame) error {
	w, h := float64(f.Width), float64(f.Height)
	cx, cy := w/2, h/2
	radius := math.Min(w, h) / 3

	const dots = 12
	phase := float64(f.Index) * math.Pi / 30
	for i := range dots {
		angle := phase + float64(i)*2*math.Pi/dots
		dc.SetColor(gg.HSL(float64(i)*360/dots, 0.7, 0.6))
		dc.DrawCircle(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), radius/8)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	dc.SetFont(s.face)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("frame %d  %dx%d  %s", f.Index, f.Width, f.Height, f.Mode), cx, h-24, 0.5, 0.5)
	return nil
}
