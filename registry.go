// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderthread

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHistorySize is the number of exited threads the default registry remembers.
const DefaultHistorySize = 16

// ThreadInfo is a diagnostic snapshot of a render thread.
type ThreadInfo struct {
	// ID is unique per registry, starting at 1.
	ID uint64

	// Name is the thread name ("RenderThread <id>" unless WithName was used).
	Name string

	// StartedAt is when the loop began.
	StartedAt time.Time

	// ExitedAt is zero for live threads.
	ExitedAt time.Time

	// Stats is the frame statistics at snapshot time.
	Stats FrameStats
}

// Live reports whether the thread had not exited at snapshot time.
func (i ThreadInfo) Live() bool {
	return i.ExitedAt.IsZero()
}

// defaultRegistry is the process-wide registry used unless WithRegistry is given.
var defaultRegistry = NewRegistry(DefaultHistorySize)

// Registry keeps process-wide bookkeeping of render threads.
// It is not needed for correctness; it exists for diagnostics.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	nextID  uint64
	live    map[uint64]*Thread
	history *lru.Cache[uint64, ThreadInfo]
}

// NewRegistry creates a registry remembering up to historySize exited threads.
// historySize is clamped to at least 1.
func NewRegistry(historySize int) *Registry {
	history, err := lru.New[uint64, ThreadInfo](max(historySize, 1))
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Registry{
		live:    make(map[uint64]*Thread),
		history: history,
	}
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Live returns the live threads of the default registry ordered by ID.
func Live() []ThreadInfo {
	return defaultRegistry.Live()
}

// Recent returns recently exited threads of the default registry, oldest first.
func Recent() []ThreadInfo {
	return defaultRegistry.Recent()
}

// LiveCount returns the number of live threads in the default registry.
func LiveCount() int {
	return defaultRegistry.LiveCount()
}

// newID reserves the next thread ID.
func (r *Registry) newID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	return r.nextID
}

// threadStarting records t as live.
func (r *Registry) threadStarting(t *Thread) {
	r.mu.Lock()
	r.live[t.id] = t
	r.mu.Unlock()

	Logger().Debug("render thread starting",
		slog.Uint64("thread", t.id),
		slog.String("name", t.name),
	)
}

// threadExiting moves t from the live set to the exit history.
func (r *Registry) threadExiting(t *Thread) {
	info := t.Info()
	if info.ExitedAt.IsZero() {
		info.ExitedAt = time.Now()
	}

	r.mu.Lock()
	_, wasLive := r.live[t.id]
	delete(r.live, t.id)
	r.history.Add(t.id, info)
	r.mu.Unlock()

	Logger().Debug("render thread exiting",
		slog.Uint64("thread", t.id),
		slog.Uint64("frames", info.Stats.Frames),
		slog.Bool("registered", wasLive),
	)
}

// Live returns snapshots of the live threads ordered by ID.
func (r *Registry) Live() []ThreadInfo {
	r.mu.RLock()
	threads := make([]*Thread, 0, len(r.live))
	for _, t := range r.live {
		threads = append(threads, t)
	}
	r.mu.RUnlock()

	// Snapshots take each thread's monitor; do that outside the registry lock.
	infos := make([]ThreadInfo, len(threads))
	for i, t := range threads {
		infos[i] = t.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// LiveCount returns the number of live threads.
func (r *Registry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.live)
}

// Recent returns the remembered exited threads, least recently exited first.
func (r *Registry) Recent() []ThreadInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.history.Values()
}

// Lookup returns a snapshot of the thread with the given ID, live or remembered.
func (r *Registry) Lookup(id uint64) (ThreadInfo, bool) {
	r.mu.RLock()
	t, ok := r.live[id]
	if !ok {
		info, found := r.history.Peek(id)
		r.mu.RUnlock()
		return info, found
	}
	r.mu.RUnlock()

	return t.Info(), true
}
