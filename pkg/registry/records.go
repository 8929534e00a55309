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
	"time"

	"github.com/ipv4pool/recovery/pkg/ipam/allocator"
	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
)

// PreferredBlockRecord is a historical allocation, used to tag recovered space with the recipient most associated with it.
type PreferredBlockRecord struct {
	CIDR      string `json:"cidr"`
	Recipient string `json:"recipient"`
}

// RecoveredRecord is a block of the recovered pool.
type RecoveredRecord struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	ReturnedBy string `json:"returnedBy,omitempty"`
	Date       string `json:"date"`
	Status     string `json:"status,omitempty"`
}

// ReallocatedRecord is a block already assigned to a recipient.
type ReallocatedRecord struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Recipient string `json:"recipient"`
	Source    string `json:"source,omitempty"`
	Date      string `json:"date"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// AllocationRecord is a CIDR block assigned to a recipient during a run.
type AllocationRecord struct {
	Recipient string `json:"recipient"`
	CIDR      string `json:"cidr"`
	Addresses uint64 `json:"addresses"`
	Round     int    `json:"round"`
}

// Result is the outcome of a successful run.
type Result struct {
	// RunID identifies the run in reports and metrics. It is not part of the exported records.
	RunID string `json:"-"`
	// Updated is the date of the run.
	Updated     string              `json:"updated"`
	Parameters  Parameters          `json:"parameters"`
	Allocations []AllocationRecord  `json:"allocations"`
	Recovered   []RecoveredRecord   `json:"recovered"`
	Reallocated []ReallocatedRecord `json:"reallocated"`
}

type preferredBlock struct {
	ipamcore.Range
	recipient string
}

func required(kind string, index int, field, value string) error {
	if value == "" {
		return &ipamcore.ValidationError{Field: fmt.Sprintf("%s record #%d", kind, index), Reason: fmt.Sprintf("missing %s", field)}
	}
	return nil
}

func recordRange(kind string, index int, start, end string) (ipamcore.Range, error) {
	if err := errors.Join(required(kind, index, "start", start), required(kind, index, "end", end)); err != nil {
		return ipamcore.Range{}, err
	}
	return ipamcore.ParseRange(start, end)
}

func recordDate(kind string, index int, date string) error {
	if err := required(kind, index, "date", date); err != nil {
		return err
	}
	if _, err := time.Parse(allocator.RecordDateLayout, date); err != nil {
		return &ipamcore.ValidationError{Field: fmt.Sprintf("%s record #%d date", kind, index), Value: date, Reason: "expected YYYY-MM"}
	}
	return nil
}

func (p *PreferredBlockRecord) toBlock(index int) (preferredBlock, error) {
	if err := errors.Join(required("preferred", index, "cidr", p.CIDR), required("preferred", index, "recipient", p.Recipient)); err != nil {
		return preferredBlock{}, err
	}
	r, err := ipamcore.ParseCIDR(p.CIDR)
	if err != nil {
		return preferredBlock{}, err
	}
	return preferredBlock{Range: r, recipient: p.Recipient}, nil
}

func (rr *RecoveredRecord) toEntry(index int) (ipamcore.Entry, error) {
	r, err := recordRange("recovered", index, rr.Start, rr.End)
	if err = errors.Join(err, recordDate("recovered", index, rr.Date)); err != nil {
		return ipamcore.Entry{}, err
	}
	return ipamcore.Entry{
		Range:      r,
		Allocatee:  rr.ReturnedBy,
		RecordDate: rr.Date,
		Status:     rr.Status,
	}, nil
}

func (rr *ReallocatedRecord) toEntry(index int) (ipamcore.Entry, error) {
	r, err := recordRange("reallocated", index, rr.Start, rr.End)
	err = errors.Join(err, required("reallocated", index, "recipient", rr.Recipient), recordDate("reallocated", index, rr.Date))
	if err != nil {
		return ipamcore.Entry{}, err
	}
	return ipamcore.Entry{
		Range:      r,
		Allocatee:  rr.Recipient,
		RecordDate: rr.Date,
		Status:     rr.Status,
		Source:     rr.Source,
		Notes:      rr.Notes,
	}, nil
}

func recoveredRecord(e *ipamcore.Entry) RecoveredRecord {
	return RecoveredRecord{
		Start:      e.Start.String(),
		End:        e.End.String(),
		ReturnedBy: e.Allocatee,
		Date:       e.RecordDate,
		Status:     e.Status,
	}
}

func reallocatedRecord(e *ipamcore.Entry) ReallocatedRecord {
	return ReallocatedRecord{
		Start:     e.Start.String(),
		End:       e.End.String(),
		Recipient: e.Allocatee,
		Source:    e.Source,
		Date:      e.RecordDate,
		Status:    e.Status,
		Notes:     e.Notes,
	}
}

func allocationRecord(a *allocator.Allocation) AllocationRecord {
	return AllocationRecord{Recipient: a.Recipient, CIDR: a.Block.String(), Addresses: a.Block.Len(), Round: a.Round}
}
