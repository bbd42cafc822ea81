// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
)

// Options configures a Pool.
type Options struct {
	// BudgetBytes caps the memory held by all targets, free or checked out.
	// When an allocation would exceed it, free targets are destroyed least
	// recently released first. Zero means unlimited.
	BudgetBytes int64
}

// slot is one arena entry. A slot outlives its target so that handles to
// a destroyed target keep failing generation checks.
type slot struct {
	target     backend.Target
	key        Key
	gen        uint32
	checkedOut bool
	lru        *list.Element // position in Pool.lru while free
}

// Pool hands out render targets keyed by (width, height, format).
//
// Pool is safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	backend backend.Backend
	budget  int64
	used    int64

	slots  []*slot
	vacant []uint32         // slot ids without a target
	free   map[Key][]uint32 // per-key stacks, most recently released last
	lru    *list.List       // free slot ids, front = most recently released
	closed bool

	hits      uint64
	allocs    uint64
	evictions uint64
}

// New creates a pool allocating from b. b must be initialized.
func New(b backend.Backend, opts Options) *Pool {
	return &Pool{
		backend: b,
		budget:  opts.BudgetBytes,
		free:    make(map[Key][]uint32),
		lru:     list.New(),
	}
}

// Backend returns the backend the pool allocates from.
func (p *Pool) Backend() backend.Backend {
	return p.backend
}

// Acquire checks out a target. A free target with the same key is reused,
// the most recently released one first; otherwise a new one is allocated.
// Allocation failures and budget overruns wrap ggfx.ErrResourceExhausted.
func (p *Pool) Acquire(width, height int, format ggfx.Format) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Handle{}, fmt.Errorf("%w: pool is closed", ggfx.ErrInvalidState)
	}
	if width <= 0 || height <= 0 || !format.Valid() {
		return Handle{}, fmt.Errorf("%w: acquire %dx%d %s", ggfx.ErrInvalidState, width, height, format)
	}
	key := Key{Width: width, Height: height, Format: format}

	if stack := p.free[key]; len(stack) > 0 {
		id := stack[len(stack)-1]
		p.popFree(key, id)
		p.hits++
		return p.checkout(id), nil
	}

	size := backend.TargetBytes(width, height, format)
	if err := p.makeRoom(key, size); err != nil {
		return Handle{}, err
	}

	t, err := p.backend.NewTarget(width, height, format)
	if err != nil && errors.Is(err, ggfx.ErrResourceExhausted) && p.lru.Len() > 0 {
		// The device ran out before the budget did: drop the free set and retry once.
		ggfx.Logger().Warn("texture pool: device allocation failed, purging free targets",
			"key", key.String(), "free", p.lru.Len())
		p.purgeLocked()
		t, err = p.backend.NewTarget(width, height, format)
	}
	if err != nil {
		if !errors.Is(err, ggfx.ErrResourceExhausted) {
			err = fmt.Errorf("%w: %w", ggfx.ErrResourceExhausted, err)
		}
		return Handle{}, fmt.Errorf("texture pool: allocate %s: %w", key, err)
	}

	id := p.newSlot()
	s := p.slots[id-1]
	s.target = t
	s.key = key
	p.used += size
	p.allocs++
	ggfx.Logger().Debug("texture pool: allocated", "key", key.String(), "slot", id, "used", p.used)
	return p.checkout(id), nil
}

// Release returns h to the free set. Releasing a handle twice, or a handle
// from an earlier checkout of the same slot, fails with ggfx.ErrInvalidState.
func (p *Pool) Release(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(h)
	if err != nil {
		return err
	}
	s.checkedOut = false
	if p.closed {
		p.destroy(h.slot)
		return nil
	}
	p.free[s.key] = append(p.free[s.key], h.slot)
	s.lru = p.lru.PushFront(h.slot)
	return nil
}

// Purge destroys every free target and returns how many were destroyed.
// Checked-out targets are untouched.
func (p *Pool) Purge() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.purgeLocked()
}

// Target returns the backend target behind a checked-out handle.
func (p *Pool) Target(h Handle) (backend.Target, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.target, nil
}

// Key returns the size and format of a checked-out handle.
func (p *Pool) Key(h Handle) (Key, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(h)
	if err != nil {
		return Key{}, err
	}
	return s.key, nil
}

// CheckedOut returns the number of targets currently checked out.
func (p *Pool) CheckedOut() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checkedOutLocked()
}

// Close destroys every free target and refuses further acquisitions.
// Targets still checked out are destroyed when released; Close reports
// them with ggfx.ErrInvalidState.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.purgeLocked()
	if n := p.checkedOutLocked(); n > 0 {
		return fmt.Errorf("%w: %d targets still checked out", ggfx.ErrInvalidState, n)
	}
	return nil
}

func (p *Pool) lookup(h Handle) (*slot, error) {
	if !h.IsValid() || int(h.slot) > len(p.slots) {
		return nil, fmt.Errorf("%w: unknown handle %s", ggfx.ErrInvalidState, h)
	}
	s := p.slots[h.slot-1]
	if s.gen != h.gen || !s.checkedOut {
		return nil, fmt.Errorf("%w: stale handle %s", ggfx.ErrInvalidState, h)
	}
	return s, nil
}

func (p *Pool) checkout(id uint32) Handle {
	s := p.slots[id-1]
	s.gen++
	s.checkedOut = true
	return Handle{slot: id, gen: s.gen}
}

// newSlot returns the id of an empty slot, reusing vacated ones.
func (p *Pool) newSlot() uint32 {
	if n := len(p.vacant); n > 0 {
		id := p.vacant[n-1]
		p.vacant = p.vacant[:n-1]
		return id
	}
	p.slots = append(p.slots, &slot{})
	return uint32(len(p.slots))
}

// makeRoom evicts free targets until size more bytes fit in the budget.
func (p *Pool) makeRoom(key Key, size int64) error {
	if p.budget <= 0 {
		return nil
	}
	if size > p.budget {
		return fmt.Errorf("%w: %s needs %d bytes, budget is %d",
			ggfx.ErrResourceExhausted, key, size, p.budget)
	}
	for p.used+size > p.budget {
		back := p.lru.Back()
		if back == nil {
			return fmt.Errorf("%w: %s needs %d bytes, %d of %d checked out",
				ggfx.ErrResourceExhausted, key, size, p.used, p.budget)
		}
		id := back.Value.(uint32)
		ggfx.Logger().Warn("texture pool: evicting free target",
			"key", p.slots[id-1].key.String(), "used", p.used, "budget", p.budget)
		p.evictions++
		p.destroy(id)
	}
	return nil
}

func (p *Pool) purgeLocked() int {
	n := 0
	for e := p.lru.Back(); e != nil; e = p.lru.Back() {
		p.destroy(e.Value.(uint32))
		n++
	}
	return n
}

// destroy frees the target of slot id and vacates the slot.
func (p *Pool) destroy(id uint32) {
	s := p.slots[id-1]
	if s.lru != nil {
		p.popFree(s.key, id)
	}
	p.used -= s.target.SizeBytes()
	p.backend.DestroyTarget(s.target)
	s.target = nil
	p.vacant = append(p.vacant, id)
}

// popFree unlinks slot id from the free structures.
func (p *Pool) popFree(key Key, id uint32) {
	s := p.slots[id-1]
	if s.lru != nil {
		p.lru.Remove(s.lru)
		s.lru = nil
	}
	stack := p.free[key]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == id {
			stack = append(stack[:i], stack[i+1:]...)
			break
		}
	}
	if len(stack) == 0 {
		delete(p.free, key)
	} else {
		p.free[key] = stack
	}
}

func (p *Pool) checkedOutLocked() int {
	n := 0
	for _, s := range p.slots {
		if s.checkedOut {
			n++
		}
	}
	return n
}
