// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import "fmt"

// RenderMode controls how often the render loop draws.
type RenderMode int

const (
	// RenderWhenDirty renders only after RequestRender, a resize or a resume.
	RenderWhenDirty RenderMode = iota

	// RenderContinuously renders on every wake of the loop.
	RenderContinuously
)

// Valid reports whether m is one of the defined modes.
func (m RenderMode) Valid() bool {
	return m == RenderWhenDirty || m == RenderContinuously
}

// String returns the mode name.
func (m RenderMode) String() string {
	switch m {
	case RenderWhenDirty:
		return "WhenDirty"
	case RenderContinuously:
		return "Continuously"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// Status is the lifecycle stage of a Thread.
type Status int

const (
	// StatusCreated is a constructed thread that has not been started.
	StatusCreated Status = iota

	// StatusRunning is a started thread running its loop.
	StatusRunning

	// StatusExiting is a thread that was asked to exit but has not finished.
	StatusExiting

	// StatusExited is terminal.
	StatusExited
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusRunning:
		return "Running"
	case StatusExiting:
		return "Exiting"
	case StatusExited:
		return "Exited"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
