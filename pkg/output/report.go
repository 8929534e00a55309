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

package output

import (
	"fmt"
	"strconv"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
	"github.com/ipv4pool/recovery/pkg/registry"
)

// ParametersSection describes the distribution parameters. The policy error, if any, marks the share as insufficient.
func ParametersSection(root Section, params registry.Parameters, policyErr error) Section {
	var s Section
	if policyErr != nil {
		s = root.AddSectionFailure("Distribution parameters")
	} else {
		s = root.AddSectionSuccess("Distribution parameters")
	}

	s.AddEntry("Available addresses", strconv.FormatUint(params.AvailablePoolSize, 10))
	s.AddEntry("Recipients", strconv.Itoa(params.Recipients))
	if params.Share == 0 {
		s.AddEntryWarning("Share", "none (fewer addresses than recipients)")
	} else {
		s.AddEntry("Share", fmt.Sprintf("/%d (%d addresses)", params.PrefixLength, params.Share))
	}
	if policyErr != nil {
		s.AddEntryWarning("Policy", policyErr.Error())
	}
	return s
}

// ResultSection describes the blocks allocated to each recipient, in order of first allocation.
func ResultSection(root Section, result *registry.Result) Section {
	s := root.AddSectionWithDetail("Allocations", fmt.Sprintf("%d blocks", len(result.Allocations)))

	var order []string
	blocks := map[string][]string{}
	totals := map[string]uint64{}
	for i := range result.Allocations {
		allocation := &result.Allocations[i]
		if _, found := blocks[allocation.Recipient]; !found {
			order = append(order, allocation.Recipient)
		}
		blocks[allocation.Recipient] = append(blocks[allocation.Recipient], allocation.CIDR)
		totals[allocation.Recipient] += allocation.Addresses
	}

	for _, recipient := range order {
		s.AddSectionWithDetail(recipient, fmt.Sprintf("%d addresses", totals[recipient])).
			AddEntry("Blocks", blocks[recipient]...)
	}
	return s
}

// AllocationRows returns the allocations as table rows, header included.
func AllocationRows(allocations []registry.AllocationRecord) [][]string {
	rows := [][]string{{"Round", "Recipient", "Block", "Addresses"}}
	for i := range allocations {
		rows = append(rows, []string{
			strconv.Itoa(allocations[i].Round),
			allocations[i].Recipient,
			allocations[i].CIDR,
			strconv.FormatUint(allocations[i].Addresses, 10),
		})
	}
	return rows
}

// BlockRows returns the CIDR blocks as table rows, header included.
func BlockRows(blocks []ipamcore.Range) [][]string {
	rows := [][]string{{"Block", "First", "Last", "Addresses"}}
	for i := range blocks {
		rows = append(rows, []string{
			blocks[i].String(),
			blocks[i].Start.String(),
			blocks[i].End.String(),
			strconv.FormatUint(blocks[i].Len(), 10),
		})
	}
	return rows
}

// PrintResult prints the summary of a run, followed by the table of the allocations.
func (p *Printer) PrintResult(result *registry.Result) {
	root := NewRootSection()
	ParametersSection(root, result.Parameters, nil)
	ResultSection(root, result)

	p.BoxSetTitle(fmt.Sprintf("Run %s", result.RunID))
	p.BoxPrintln(root.SprintForBox(p))
	if len(result.Allocations) > 0 {
		p.PrintTable(AllocationRows(result.Allocations))
	}
}

// PrintParameters prints the distribution parameters.
func (p *Printer) PrintParameters(params registry.Parameters, policyErr error) {
	root := NewRootSection()
	ParametersSection(root, params, policyErr)

	p.BoxSetTitle("Recovered pool")
	p.BoxPrintln(root.SprintForBox(p))
}
