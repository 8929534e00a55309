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
	"errors"
	"fmt"
	"strings"
)

// ErrNotAligned is returned when a range cannot be expressed as a single CIDR block.
var ErrNotAligned = errors.New("range is not CIDR-aligned")

// ValidationError reports malformed input detected while loading records.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConsistencyError reports a pool operation that would leave the pool in an inconsistent state.
type ConsistencyError struct {
	Range  Range
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent removal of %s-%s: %s", e.Range.Start, e.Range.End, e.Reason)
}

// PolicyError reports that the per-recipient share is smaller than the minimum block size.
type PolicyError struct {
	AvailablePoolSize   uint64
	Recipients          int
	PrefixLength        int
	MinimumPrefixLength int
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("recipient allocations too small: %d addresses among %d recipients yields /%d shares, smaller than the minimum /%d",
		e.AvailablePoolSize, e.Recipients, e.PrefixLength, e.MinimumPrefixLength)
}

// UnmetNeed is the number of addresses a recipient still lacks at the end of a distribution.
type UnmetNeed struct {
	Recipient string
	Addresses uint64
}

// AllocationExhaustedError reports that the distribution stopped before satisfying every recipient.
type AllocationExhaustedError struct {
	Unmet []UnmetNeed
}

func (e *AllocationExhaustedError) Error() string {
	details := make([]string, len(e.Unmet))
	for i := range e.Unmet {
		details[i] = fmt.Sprintf("%s (%d addresses)", e.Unmet[i].Recipient, e.Unmet[i].Addresses)
	}
	return fmt.Sprintf("recovered pool exhausted with unmet need: %s", strings.Join(details, ", "))
}
