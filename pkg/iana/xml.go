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

package iana

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"k8s.io/klog/v2"

	"github.com/ipv4pool/recovery/pkg/registry"
)

const (
	assignmentsNamespace = "http://www.iana.org/assignments"

	// RecoveredSpaceID is the identifier of the recovered address space registry.
	RecoveredSpaceID = "ipv4-recovered-address-space"
	returnedSuffix   = "-1"
	reallocSuffix    = "-2"

	administeredByPrefix = "Administered by "
)

// document is the layout shared by the IANA registries. Registries nest, and records
// carry the union of the fields used by the IPv4 address space documents.
type document struct {
	XMLName    xml.Name   `xml:"registry"`
	Namespace  string     `xml:"xmlns,attr,omitempty"`
	ID         string     `xml:"id,attr,omitempty"`
	Title      string     `xml:"title,omitempty"`
	Updated    string     `xml:"updated,omitempty"`
	Records    []record   `xml:"record"`
	Registries []document `xml:"registry"`
}

type record struct {
	Prefix      string `xml:"prefix,omitempty"`
	Designation string `xml:"designation,omitempty"`
	Start       string `xml:"start,omitempty"`
	End         string `xml:"end,omitempty"`
	Returned    string `xml:"returned,omitempty"`
	RIR         string `xml:"rir,omitempty"`
	Date        string `xml:"date,omitempty"`
	Whois       string `xml:"whois,omitempty"`
	Status      string `xml:"status,omitempty"`
	Notes       string `xml:"notes,omitempty"`
}

func decode(r io.Reader) (*document, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry document: %w", err)
	}
	return &doc, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DecodeAddressSpace reads the IPv4 address space registry, returning one preferred block per
// designated prefix. The recipient of each block is its designation, without the
// "Administered by" qualifier.
func DecodeAddressSpace(r io.Reader) ([]registry.PreferredBlockRecord, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}

	records := make([]registry.PreferredBlockRecord, 0, len(doc.Records))
	for i := range doc.Records {
		rec := &doc.Records[i]
		designation := strings.TrimPrefix(clean(rec.Designation), administeredByPrefix)
		if designation == "" {
			klog.Warningf("Skipping address space record %q with no designation", rec.Prefix)
			continue
		}
		records = append(records, registry.PreferredBlockRecord{CIDR: clean(rec.Prefix), Recipient: designation})
	}

	klog.V(4).Infof("Decoded %d preferred blocks from the address space registry", len(records))
	return records, nil
}

// DecodeRecoveredSpace reads the IPv4 recovered address space registry, returning the records of
// its returned space and reallocated space sub-registries.
func DecodeRecoveredSpace(r io.Reader) ([]registry.RecoveredRecord, []registry.ReallocatedRecord, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, nil, err
	}

	returned, reallocated, err := subRegistries(doc)
	if err != nil {
		return nil, nil, err
	}

	recovered := make([]registry.RecoveredRecord, len(returned.Records))
	for i := range returned.Records {
		rec := &returned.Records[i]
		recovered[i] = registry.RecoveredRecord{
			Start:      clean(rec.Start),
			End:        clean(rec.End),
			ReturnedBy: clean(rec.Returned),
			Date:       clean(rec.Date),
			Status:     clean(rec.Status),
		}
	}

	var assigned []registry.ReallocatedRecord
	if reallocated != nil {
		assigned = make([]registry.ReallocatedRecord, len(reallocated.Records))
		for i := range reallocated.Records {
			rec := &reallocated.Records[i]
			assigned[i] = registry.ReallocatedRecord{
				Start:     clean(rec.Start),
				End:       clean(rec.End),
				Recipient: clean(rec.RIR),
				Source:    clean(rec.Whois),
				Date:      clean(rec.Date),
				Status:    clean(rec.Status),
				Notes:     clean(rec.Notes),
			}
		}
	}

	klog.V(4).Infof("Decoded %d recovered and %d reallocated blocks from the recovered space registry", len(recovered), len(assigned))
	return recovered, assigned, nil
}

// subRegistries identifies the returned and reallocated sub-registries, by identifier
// or, when identifiers are missing, by position.
func subRegistries(doc *document) (returned, reallocated *document, err error) {
	for i := range doc.Registries {
		sub := &doc.Registries[i]
		switch {
		case strings.HasSuffix(sub.ID, returnedSuffix):
			returned = sub
		case strings.HasSuffix(sub.ID, reallocSuffix):
			reallocated = sub
		}
	}

	if returned == nil && reallocated == nil && len(doc.Registries) > 0 {
		returned = &doc.Registries[0]
		if len(doc.Registries) > 1 {
			reallocated = &doc.Registries[1]
		}
	}
	if returned == nil {
		return nil, nil, fmt.Errorf("registry %q has no returned address space sub-registry", doc.ID)
	}
	return returned, reallocated, nil
}

// EncodeRecoveredSpace renders the records in the layout of the IPv4 recovered address space registry.
func EncodeRecoveredSpace(w io.Writer, updated string, recovered []registry.RecoveredRecord, reallocated []registry.ReallocatedRecord) error {
	returned := document{
		ID:      RecoveredSpaceID + returnedSuffix,
		Title:   "IPv4 Recovered Address Space",
		Records: make([]record, len(recovered)),
	}
	for i := range recovered {
		returned.Records[i] = record{
			Start:    recovered[i].Start,
			End:      recovered[i].End,
			Returned: recovered[i].ReturnedBy,
			Date:     recovered[i].Date,
			Status:   recovered[i].Status,
		}
	}

	assigned := document{
		ID:      RecoveredSpaceID + reallocSuffix,
		Title:   "IPv4 Address Space Allocated from the Recovered Pool",
		Records: make([]record, len(reallocated)),
	}
	for i := range reallocated {
		assigned.Records[i] = record{
			Start:  reallocated[i].Start,
			End:    reallocated[i].End,
			RIR:    reallocated[i].Recipient,
			Date:   reallocated[i].Date,
			Whois:  reallocated[i].Source,
			Status: reallocated[i].Status,
			Notes:  reallocated[i].Notes,
		}
	}

	doc := document{
		Namespace:  assignmentsNamespace,
		ID:         RecoveredSpaceID,
		Title:      "IPv4 Recovered Address Space Registry",
		Updated:    updated,
		Registries: []document{returned, assigned},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode recovered space registry: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
