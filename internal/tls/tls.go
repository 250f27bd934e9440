// Package tls supplies the thread-local-storage facility spec.md §4.9 lists
// as an external collaborator (C7-adjacent): arbitrary per-goroutine
// key→value storage, with cleanup run at explicit key deletion.
//
// Go has no public API for "this goroutine is exiting" the way a platform
// thread-local API does, so unlike the source specification's TLS facility
// this implementation cannot invoke a cleanup callback when a goroutine
// simply returns without calling Remove/Clear. What it does implement
// faithfully is key deletion: Delete walks every goroutine's registered
// value for that key under a single lock, collects them, then runs the
// key's cleanup callback for each collected value after the lock is
// released — matching the source's "cleanups run after the lock is
// released to avoid re-entrancy" requirement.
package tls

import (
	"runtime"
	"strconv"
	"sync"
)

// Key identifies a per-goroutine storage slot created by Table.Create.
type Key uint64

// Table is a goroutine-keyed key/value store with a recyclable key
// namespace, modeled on the teacher's goroutine-identity idiom
// (getGoroutineID/isLoopThread in loop.go) combined with the free-list
// bookkeeping style of the teacher's weak-pointer registry.
type Table struct {
	mu       sync.Mutex
	nextKey  Key
	freeKeys []Key
	cleanups map[Key]func(any)
	contexts map[int64]*goroutineValues
}

type goroutineValues struct {
	mu     sync.Mutex
	values map[Key]any
}

// New constructs an empty Table.
func New() *Table {
	return &Table{
		cleanups: make(map[Key]func(any)),
		contexts: make(map[int64]*goroutineValues),
	}
}

// Create allocates a new key, recycling a previously deleted one if
// available. cleanup, if non-nil, is invoked (outside any Table lock) with
// each goroutine's stored value when the key is later deleted.
func (t *Table) Create(cleanup func(any)) Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	var k Key
	if n := len(t.freeKeys); n > 0 {
		k = t.freeKeys[n-1]
		t.freeKeys = t.freeKeys[:n-1]
	} else {
		t.nextKey++
		k = t.nextKey
	}
	t.cleanups[k] = cleanup
	return k
}

// Delete removes key from every goroutine's storage and returns the key to
// the free list. Every value found for key is passed to the key's cleanup
// callback, run after the table lock is released.
func (t *Table) Delete(key Key) {
	t.mu.Lock()
	var collected []any
	for _, ctx := range t.contexts {
		ctx.mu.Lock()
		if v, ok := ctx.values[key]; ok {
			collected = append(collected, v)
			delete(ctx.values, key)
		}
		ctx.mu.Unlock()
	}
	cleanup := t.cleanups[key]
	delete(t.cleanups, key)
	t.freeKeys = append(t.freeKeys, key)
	t.mu.Unlock()

	if cleanup != nil {
		for _, v := range collected {
			cleanup(v)
		}
	}
}

// Get returns the calling goroutine's value for key, if any was Set.
func (t *Table) Get(key Key) (any, bool) {
	ctx := t.contextForRead()
	if ctx == nil {
		return nil, false
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	v, ok := ctx.values[key]
	return v, ok
}

// Set stores val under key for the calling goroutine.
func (t *Table) Set(key Key, val any) {
	ctx := t.contextForWrite()
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.values[key] = val
}

// Clear removes every key's value for the calling goroutine. Workers call
// this when their loop exits, standing in for the thread-exit cleanup hook
// the source TLS facility triggers automatically.
func (t *Table) Clear() {
	id := goroutineID()
	t.mu.Lock()
	delete(t.contexts, id)
	t.mu.Unlock()
}

func (t *Table) contextForRead() *goroutineValues {
	id := goroutineID()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contexts[id]
}

func (t *Table) contextForWrite() *goroutineValues {
	id := goroutineID()
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, ok := t.contexts[id]
	if !ok {
		ctx = &goroutineValues{values: make(map[Key]any)}
		t.contexts[id] = ctx
	}
	return ctx
}

// goroutineID extracts the current goroutine's runtime id by parsing the
// "goroutine N [...]" header of a single-frame stack trace. It is the
// closest Go equivalent to the OS-thread id the source TLS facility keys
// on, since goroutines migrate across OS threads and have no public
// identity API.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	b = b[len(prefix):]

	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
