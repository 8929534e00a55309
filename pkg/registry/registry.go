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

package registry

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/ipv4pool/recovery/pkg/ipam/allocator"
	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
)

const (
	// DefaultMinimumPrefixLength is the longest prefix a recipient share may have.
	DefaultMinimumPrefixLength = 24
	// UpdatedLayout is the layout of the date of a run.
	UpdatedLayout = "2006-01-02"
)

const addressBits = 32

// Config contains the parameters of a registry.
type Config struct {
	// Recipients is the ordered list of recipients. The order drives the distribution rounds.
	Recipients []string
	// Sources maps each recipient to the source stamped on its new reallocated entries.
	Sources map[string]string
	// MinimumPrefixLength is the longest acceptable share prefix (i.e., the smallest share).
	// Zero selects DefaultMinimumPrefixLength.
	MinimumPrefixLength int
	// Clock provides the record date of new entries. Defaults to the real clock.
	Clock clock.PassiveClock
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Recipients) == 0 {
		errs = append(errs, &ipamcore.ValidationError{Field: "recipients", Reason: "at least one recipient is required"})
	}

	seen := sets.New[string]()
	for _, recipient := range c.Recipients {
		switch {
		case recipient == "":
			errs = append(errs, &ipamcore.ValidationError{Field: "recipients", Reason: "empty recipient name"})
		case seen.Has(recipient):
			errs = append(errs, &ipamcore.ValidationError{Field: "recipients", Value: recipient, Reason: "duplicated recipient"})
		case c.Sources[recipient] == "":
			errs = append(errs, &ipamcore.ValidationError{Field: "sources", Value: recipient, Reason: "no source configured for recipient"})
		}
		seen.Insert(recipient)
	}

	if c.MinimumPrefixLength < 0 || c.MinimumPrefixLength > addressBits {
		errs = append(errs, &ipamcore.ValidationError{Field: "minimum prefix length", Value: fmt.Sprint(c.MinimumPrefixLength),
			Reason: "must be between 0 and 32"})
	}

	return errors.Join(errs...)
}

// Parameters are the values driving a distribution.
type Parameters struct {
	AvailablePoolSize uint64 `json:"availablePoolSize"`
	Recipients        int    `json:"recipients"`
	// PrefixLength is the prefix length of each recipient share. It is 33 when the
	// pool holds fewer addresses than recipients.
	PrefixLength int `json:"prefixLength"`
	// Share is the number of addresses each recipient is entitled to.
	Share uint64 `json:"share"`
}

// Registry owns the recovered and reallocated pools and drives their redistribution.
type Registry struct {
	cfg Config

	preferred   []preferredBlock
	recovered   *ipamcore.Pool
	reallocated *ipamcore.Pool
}

// New returns an empty registry with the given configuration.
func New(cfg Config) (*Registry, error) {
	if cfg.MinimumPrefixLength == 0 {
		cfg.MinimumPrefixLength = DefaultMinimumPrefixLength
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry configuration: %w", err)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	return &Registry{
		cfg:         cfg,
		recovered:   ipamcore.NewPool(),
		reallocated: ipamcore.NewPool(),
	}, nil
}

// Load replaces the content of the registry with the given records. Every recovered entry is
// tagged with the recipient of the first preferred block containing it. All the problems found
// are reported together, and the registry is left untouched in that case.
func (r *Registry) Load(preferred []PreferredBlockRecord, recovered []RecoveredRecord, reallocated []ReallocatedRecord) error {
	var errs []error

	blocks := make([]preferredBlock, 0, len(preferred))
	for i := range preferred {
		block, err := preferred[i].toBlock(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		blocks = append(blocks, block)
	}

	recoveredPool := ipamcore.NewPool()
	for i := range recovered {
		entry, err := recovered[i].toEntry(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entry.Preference = preferenceOf(blocks, entry.Range)
		recoveredPool.Append(entry)
	}

	reallocatedPool := ipamcore.NewPool()
	for i := range reallocated {
		entry, err := reallocated[i].toEntry(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reallocatedPool.Append(entry)
	}

	// An address can be either recovered or reallocated, never both.
	combined := recoveredPool.Clone()
	for _, entry := range reallocatedPool.Entries() {
		combined.Append(entry)
	}
	if first, second, found := combined.Overlapping(); found {
		errs = append(errs, &ipamcore.ValidationError{Field: "address space records", Value: first.Range.String(),
			Reason: fmt.Sprintf("overlaps with %s", second.Range)})
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to load registry records: %w", err)
	}

	r.preferred, r.recovered, r.reallocated = blocks, recoveredPool, reallocatedPool
	klog.Infof("Loaded %d preferred blocks, %d recovered blocks (%d addresses) and %d reallocated blocks",
		len(blocks), recoveredPool.Len(), recoveredPool.TotalLength(), reallocatedPool.Len())
	return nil
}

func preferenceOf(blocks []preferredBlock, rng ipamcore.Range) string {
	for i := range blocks {
		if blocks[i].Contains(rng) {
			return blocks[i].recipient
		}
	}
	return ""
}

// Parameters computes the distribution parameters for the current recovered pool: each recipient
// is entitled to the largest power-of-two share fitting an equal split of the pool.
func (r *Registry) Parameters() Parameters {
	params := Parameters{
		AvailablePoolSize: r.recovered.TotalLength(),
		Recipients:        len(r.cfg.Recipients),
	}

	quotient := params.AvailablePoolSize / uint64(params.Recipients)
	if quotient == 0 {
		params.PrefixLength = addressBits + 1
		return params
	}

	hostBits := bits.Len64(quotient) - 1
	params.PrefixLength = addressBits - hostBits
	params.Share = 1 << hostBits
	return params
}

// CheckPolicy returns a PolicyError if the share described by the parameters is smaller than the configured minimum.
func (r *Registry) CheckPolicy(params Parameters) error {
	if params.Share == 0 || params.PrefixLength > r.cfg.MinimumPrefixLength {
		return &ipamcore.PolicyError{
			AvailablePoolSize:   params.AvailablePoolSize,
			Recipients:          params.Recipients,
			PrefixLength:        params.PrefixLength,
			MinimumPrefixLength: r.cfg.MinimumPrefixLength,
		}
	}
	return nil
}

// Run distributes the recovered pool among the recipients and returns the consolidated registry.
// On failure no result is produced and the registry keeps its previous content.
func (r *Registry) Run() (*Result, error) {
	params := r.Parameters()
	if err := r.CheckPolicy(params); err != nil {
		return nil, err
	}

	recovered, reallocated := r.recovered.Clone(), r.reallocated.Clone()
	engine := allocator.New(recovered, reallocated, allocator.Options{
		Sources: r.cfg.Sources,
		Clock:   r.cfg.Clock,
	})

	need := make(map[string]uint64, len(r.cfg.Recipients))
	for _, recipient := range r.cfg.Recipients {
		need[recipient] = params.Share
	}

	klog.Infof("Distributing %d addresses among %d recipients (/%d each)", params.AvailablePoolSize, params.Recipients, params.PrefixLength)
	allocations, err := engine.Distribute(r.cfg.Recipients, need)
	if err != nil {
		return nil, err
	}

	recovered.Consolidate()
	reallocated.Consolidate()
	r.recovered, r.reallocated = recovered, reallocated

	result := &Result{
		RunID:       uuid.NewString(),
		Updated:     r.cfg.Clock.Now().Format(UpdatedLayout),
		Parameters:  params,
		Allocations: make([]AllocationRecord, len(allocations)),
		Recovered:   r.RecoveredRecords(),
		Reallocated: r.ReallocatedRecords(),
	}
	for i := range allocations {
		result.Allocations[i] = allocationRecord(&allocations[i])
	}

	klog.Infof("Run %s completed: %d blocks allocated, %d addresses left in the recovered pool",
		result.RunID, len(allocations), recovered.TotalLength())
	return result, nil
}

// RecoveredRecords exports the recovered pool, sorted by start address.
func (r *Registry) RecoveredRecords() []RecoveredRecord {
	entries := r.sortedEntries(r.recovered)
	records := make([]RecoveredRecord, len(entries))
	for i := range entries {
		records[i] = recoveredRecord(&entries[i])
	}
	return records
}

// ReallocatedRecords exports the reallocated pool, sorted by start address.
func (r *Registry) ReallocatedRecords() []ReallocatedRecord {
	entries := r.sortedEntries(r.reallocated)
	records := make([]ReallocatedRecord, len(entries))
	for i := range entries {
		records[i] = reallocatedRecord(&entries[i])
	}
	return records
}

func (r *Registry) sortedEntries(pool *ipamcore.Pool) []ipamcore.Entry {
	sorted := pool.Clone()
	sorted.Sort()
	return sorted.Entries()
}
