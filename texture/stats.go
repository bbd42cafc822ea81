// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats is a snapshot of pool usage.
type Stats struct {
	// Live is the number of targets held, free or checked out.
	Live int

	// CheckedOut is the number of targets currently in use.
	CheckedOut int

	// Free is the number of targets waiting for reuse.
	Free int

	// UsedBytes is the memory held by live targets.
	UsedBytes int64

	// BudgetBytes is the configured budget, zero when unlimited.
	BudgetBytes int64

	// Hits counts acquisitions served from the free set.
	Hits uint64

	// Allocations counts targets created on the backend.
	Allocations uint64

	// Evictions counts free targets destroyed to stay within budget.
	Evictions uint64
}

var statsPrinter = message.NewPrinter(language.English)

// String returns a human-readable summary with grouped digits.
func (s Stats) String() string {
	budget := "unlimited"
	if s.BudgetBytes > 0 {
		budget = statsPrinter.Sprintf("%d", s.BudgetBytes)
	}
	return statsPrinter.Sprintf("Pool[%d live, %d out, %d free, %d/%s bytes, %d hits, %d allocs, %d evictions]",
		s.Live, s.CheckedOut, s.Free, s.UsedBytes, budget, s.Hits, s.Allocations, s.Evictions)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := 0
	for _, s := range p.slots {
		if s.target != nil {
			live++
		}
	}
	return Stats{
		Live:        live,
		CheckedOut:  p.checkedOutLocked(),
		Free:        p.lru.Len(),
		UsedBytes:   p.used,
		BudgetBytes: p.budget,
		Hits:        p.hits,
		Allocations: p.allocs,
		Evictions:   p.evictions,
	}
}
