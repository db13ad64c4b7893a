// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import "time"

// statsWindow is the number of frames the rolling average spans.
const statsWindow = 64

// FrameStats summarizes the frames a thread has rendered.
type FrameStats struct {
	// Frames is the number of RenderFrame calls that returned.
	Frames uint64

	// Failures counts RenderFrame calls that returned an error or panicked.
	Failures uint64

	// LastDuration is the duration of the most recent frame.
	LastDuration time.Duration

	// AverageDuration is a rolling average over roughly the last 64 frames.
	AverageDuration time.Duration

	// MaxDuration is the slowest frame seen.
	MaxDuration time.Duration
}

// FPS returns the frame rate implied by AverageDuration.
func (s FrameStats) FPS() float64 {
	if s.AverageDuration <= 0 {
		return 0
	}
	return 1.0 / s.AverageDuration.Seconds()
}

func (s *FrameStats) record(d time.Duration, failed bool) {
	s.Frames++
	if failed {
		s.Failures++
	}
	s.LastDuration = d
	s.MaxDuration = max(s.MaxDuration, d)

	if s.Frames <= statsWindow/2 {
		s.AverageDuration = d
	} else {
		s.AverageDuration = ((statsWindow-1)*s.AverageDuration + d) / statsWindow
	}
}
