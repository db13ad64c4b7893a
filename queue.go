// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

// eventKind tags the commands carried by the event queue.
type eventKind uint8

const (
	eventWork eventKind = iota
	eventSurfaceCreated
	eventSurfaceDestroyed
	eventSurfaceResized
)

func (k eventKind) String() string {
	switch k {
	case eventWork:
		return "work"
	case eventSurfaceCreated:
		return "surface-created"
	case eventSurfaceDestroyed:
		return "surface-destroyed"
	case eventSurfaceResized:
		return "surface-resized"
	default:
		return "unknown"
	}
}

// event is one deferred command. Only the fields of its kind are set.
type event struct {
	kind    eventKind
	work    func()
	surface Surface
	width   int
	height  int
}

// eventQueue is a FIFO of events. It is not synchronized; the owning
// Thread guards it with its monitor.
type eventQueue struct {
	items []event
	head  int
}

func (q *eventQueue) push(e event) {
	q.items = append(q.items, e)
}

// pop removes the oldest event.
func (q *eventQueue) pop() (event, bool) {
	if q.head == len(q.items) {
		return event{}, false
	}
	e := q.items[q.head]
	q.items[q.head] = event{} // release captured closures
	q.head++

	// Compact once the consumed prefix dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 32 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return e, true
}

func (q *eventQueue) len() int {
	return len(q.items) - q.head
}

// clear drops all pending events without running them.
func (q *eventQueue) clear() int {
	n := q.len()
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return n
}
