// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ipamcore

import (
	"slices"
)

// StatusAllocated is the status given to entries carved out of the recovered pool.
const StatusAllocated = "ALLOCATED"

// Entry is a range of the pool together with its allocation metadata.
type Entry struct {
	Range

	// Allocatee is the party holding the range: the recipient for reallocated
	// space, the returning party for recovered space.
	Allocatee string
	// RecordDate is the year and month of the record, formatted as YYYY-MM.
	RecordDate string
	Status     string
	// Preference is the recipient historically associated with the range, if any.
	Preference string
	// Source is the whois-equivalent source of the allocatee.
	Source string
	Notes  string
}

// Pool is an ordered collection of entries.
type Pool struct {
	entries []Entry
}

// NewPool returns a pool containing the given entries, in the given order.
func NewPool(entries ...Entry) *Pool {
	return &Pool{entries: slices.Clone(entries)}
}

// Append adds an entry at the end of the pool.
func (p *Pool) Append(entry Entry) {
	p.entries = append(p.entries, entry)
}

// Len returns the number of entries of the pool.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the entries of the pool, in their current order.
func (p *Pool) Entries() []Entry {
	return slices.Clone(p.entries)
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return NewPool(p.entries...)
}

// TotalLength returns the number of addresses covered by the pool.
func (p *Pool) TotalLength() uint64 {
	var total uint64
	for i := range p.entries {
		total += p.entries[i].Len()
	}
	return total
}

// Remove removes exactly the addresses [start, end] from the pool. The range must coincide with
// an entry, or share its first or last address with it; any other shape is a ConsistencyError
// and leaves the pool untouched.
func (p *Pool) Remove(start, end Address) error {
	target, err := NewRange(start, end)
	if err != nil {
		return &ConsistencyError{Range: Range{Start: start, End: end}, Reason: "start address is greater than end address"}
	}

	for i := range p.entries {
		entry := &p.entries[i]
		if !entry.Contains(target) {
			continue
		}

		switch {
		case entry.Start == target.Start && entry.End == target.End:
			p.entries = slices.Delete(p.entries, i, i+1)
		case entry.Start == target.Start:
			entry.Start = target.End + 1
		case entry.End == target.End:
			entry.End = target.Start - 1
		default:
			return &ConsistencyError{Range: target, Reason: "range is strictly inside entry " + entry.Range.String()}
		}
		return nil
	}

	return &ConsistencyError{Range: target, Reason: "range is not contained in any entry"}
}

// Consolidate sorts the entries by start address and merges adjacent entries
// with the same allocatee and record date.
func (p *Pool) Consolidate() {
	p.Sort()

	merged := make([]Entry, 0, len(p.entries))
	for i := range p.entries {
		entry := p.entries[i]
		if n := len(merged); n > 0 && mergeable(&merged[n-1], &entry) {
			merged[n-1].End = entry.End
			continue
		}
		merged = append(merged, entry)
	}
	p.entries = merged
}

// Sort orders the entries by start address, preserving the relative order of equal starts.
func (p *Pool) Sort() {
	slices.SortStableFunc(p.entries, func(a, b Entry) int {
		return a.Compare(b.Range)
	})
}

// Overlapping returns the first pair of entries sharing at least one address, in start address order.
func (p *Pool) Overlapping() (first, second Entry, found bool) {
	sorted := p.Clone()
	sorted.Sort()
	for i := 1; i < len(sorted.entries); i++ {
		if sorted.entries[i].Start <= sorted.entries[i-1].End {
			return sorted.entries[i-1], sorted.entries[i], true
		}
	}
	return Entry{}, Entry{}, false
}

func mergeable(a, b *Entry) bool {
	return a.End != ^Address(0) && b.Start == a.End+1 &&
		a.Allocatee == b.Allocatee && a.RecordDate == b.RecordDate
}
