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

package allocator

import (
	"fmt"
	"math"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
)

const (
	// RecordDateLayout is the layout of the record dates stamped on new entries.
	RecordDateLayout = "2006-01"

	preferenceBonus = 0.8
	exactFitBonus   = 0.2
)

// Allocation is a CIDR block assigned to a recipient during a distribution round.
type Allocation struct {
	Recipient string
	Block     ipamcore.Range
	Round     int
}

// Options contains the options to configure the allocation engine.
type Options struct {
	// Sources maps each recipient to the source stamped on its new entries.
	Sources map[string]string
	// Clock provides the record date of new entries. Defaults to the real clock.
	Clock clock.PassiveClock
}

// Engine moves address space from the recovered pool to the reallocated one.
type Engine struct {
	recovered   *ipamcore.Pool
	reallocated *ipamcore.Pool

	sources map[string]string
	clock   clock.PassiveClock
}

// New returns an engine operating on the given pools.
func New(recovered, reallocated *ipamcore.Pool, opts Options) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Engine{
		recovered:   recovered,
		reallocated: reallocated,
		sources:     opts.Sources,
		clock:       clk,
	}
}

// score rates how well an entry suits a request: larger blocks first, then
// blocks historically associated with the allocatee, then exact fits.
func score(entry *ipamcore.Entry, amount uint64, allocatee string) float64 {
	s := math.Log2(float64(entry.Len())) / 32
	if entry.Preference != "" && entry.Preference == allocatee {
		s += preferenceBonus
	}
	if entry.Len() == amount {
		s += exactFitBonus
	}
	return s
}

// FindBestMatch returns the sub-range of the recovered pool that best fits a request of amount
// addresses for the given allocatee. Among entries with the same score the one with the lowest
// start address wins. The returned range is the first amount addresses of the chosen entry, or
// the whole entry if it is not larger than that.
func (e *Engine) FindBestMatch(amount uint64, allocatee string) (ipamcore.Range, bool) {
	if amount == 0 {
		return ipamcore.Range{}, false
	}

	var (
		best      *ipamcore.Entry
		bestScore float64
	)
	entries := e.recovered.Entries()
	for i := range entries {
		candidate := &entries[i]
		s := score(candidate, amount, allocatee)
		if best == nil || s > bestScore || (s == bestScore && candidate.Start < best.Start) {
			best, bestScore = candidate, s
		}
	}
	if best == nil {
		return ipamcore.Range{}, false
	}

	match := best.Range
	if best.Len() > amount {
		match.End = best.Start + ipamcore.Address(amount-1)
	}
	klog.V(4).Infof("Best match for %d addresses to %q: %s (entry %s, score %.4f)", amount, allocatee, match, best.Range, bestScore)
	return match, true
}

// Reallocate moves [start, end] from the recovered pool to the reallocated pool, assigning it to allocatee.
func (e *Engine) Reallocate(start, end ipamcore.Address, allocatee string) error {
	if err := e.recovered.Remove(start, end); err != nil {
		return fmt.Errorf("failed to reallocate %s-%s to %q: %w", start, end, allocatee, err)
	}

	e.reallocated.Append(ipamcore.Entry{
		Range:      ipamcore.Range{Start: start, End: end},
		Allocatee:  allocatee,
		RecordDate: e.clock.Now().Format(RecordDateLayout),
		Status:     ipamcore.StatusAllocated,
		Source:     e.sources[allocatee],
	})
	return nil
}

// Distribute assigns the recovered pool to the recipients, in rounds following the given order,
// until every need is satisfied or a round makes no progress. The allocations performed are
// always returned; an AllocationExhaustedError is returned as well if some need is left unmet.
func (e *Engine) Distribute(recipients []string, need map[string]uint64) ([]Allocation, error) {
	remaining := make(map[string]uint64, len(need))
	for recipient, amount := range need {
		remaining[recipient] = amount
	}

	var allocations []Allocation
	for round := 1; ; round++ {
		progress := false

		for _, recipient := range recipients {
			if remaining[recipient] == 0 {
				continue
			}

			match, found := e.FindBestMatch(remaining[recipient], recipient)
			if !found {
				continue
			}

			for _, block := range match.Decompose() {
				allocations = append(allocations, Allocation{Recipient: recipient, Block: block, Round: round})
				klog.V(4).Infof("Round %d: allocated %s to %q", round, block, recipient)
			}
			if err := e.Reallocate(match.Start, match.End, recipient); err != nil {
				return allocations, err
			}

			remaining[recipient] -= match.Len()
			progress = true
		}

		if !progress {
			break
		}
	}

	var unmet []ipamcore.UnmetNeed
	for _, recipient := range recipients {
		if remaining[recipient] > 0 {
			unmet = append(unmet, ipamcore.UnmetNeed{Recipient: recipient, Addresses: remaining[recipient]})
		}
	}
	if len(unmet) > 0 {
		return allocations, &ipamcore.AllocationExhaustedError{Unmet: unmet}
	}
	return allocations, nil
}
