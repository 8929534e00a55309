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

package recordio

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ipv4pool/recovery/pkg/iana"
	"github.com/ipv4pool/recovery/pkg/registry"
)

const yamlSnapshot = `
preferred:
- cidr: 010/8
  recipient: ARIN
recovered:
- start: 10.0.0.0
  end: 10.0.3.255
  returnedBy: ARIN
  date: 2011-03
reallocated:
- start: 41.0.0.0
  end: 41.0.0.255
  recipient: AFRINIC
  source: whois.afrinic.net
  date: 2014-05
  status: ALLOCATED
`

var _ = Describe("Record files", func() {
	var result *registry.Result

	BeforeEach(func() {
		result = &registry.Result{
			RunID:   "3f2a6a8e-7d4c-4f6e-9a55-1b0c2d3e4f50",
			Updated: "2024-03-01",
			Parameters: registry.Parameters{
				AvailablePoolSize: 1024, Recipients: 1, PrefixLength: 22, Share: 1024,
			},
			Allocations: []registry.AllocationRecord{
				{Recipient: "ARIN", CIDR: "10.0.0.0/22", Addresses: 1024, Round: 1},
			},
			Recovered: []registry.RecoveredRecord{},
			Reallocated: []registry.ReallocatedRecord{
				{Start: "10.0.0.0", End: "10.0.3.255", Recipient: "ARIN", Source: "whois.arin.net",
					Date: "2024-03", Status: "ALLOCATED"},
			},
		}
	})

	Context("snapshots", func() {
		expected := &Snapshot{
			Preferred: []registry.PreferredBlockRecord{{CIDR: "010/8", Recipient: "ARIN"}},
			Recovered: []registry.RecoveredRecord{
				{Start: "10.0.0.0", End: "10.0.3.255", ReturnedBy: "ARIN", Date: "2011-03"},
			},
			Reallocated: []registry.ReallocatedRecord{
				{Start: "41.0.0.0", End: "41.0.0.255", Recipient: "AFRINIC", Source: "whois.afrinic.net",
					Date: "2014-05", Status: "ALLOCATED"},
			},
		}

		It("should decode YAML snapshots", func() {
			snapshot, err := ReadSnapshot(strings.NewReader(yamlSnapshot))
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot).To(Equal(expected))
		})

		It("should decode JSON snapshots", func() {
			raw, err := json.Marshal(expected)
			Expect(err).NotTo(HaveOccurred())

			snapshot, err := ReadSnapshot(bytes.NewReader(raw))
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot).To(Equal(expected))
		})

		It("should reject unknown fields", func() {
			_, err := ReadSnapshot(strings.NewReader(yamlSnapshot + "returned: []\n"))
			Expect(err).To(HaveOccurred())
		})

		It("should write snapshots that read back the same", func() {
			path := filepath.Join(GinkgoT().TempDir(), "snapshot.yaml")
			var buffer bytes.Buffer
			Expect(WriteSnapshot(&buffer, expected, YAML)).To(Succeed())
			Expect(os.WriteFile(path, buffer.Bytes(), 0o600)).To(Succeed())

			snapshot, err := ReadSnapshotFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot).To(Equal(expected))
		})

		It("should not write XML snapshots", func() {
			Expect(WriteSnapshot(&bytes.Buffer{}, expected, XML)).NotTo(Succeed())
		})

		It("should fail on missing files", func() {
			_, err := ReadSnapshotFile(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Context("results", func() {
		It("should write JSON results without the run identifier", func() {
			var buffer bytes.Buffer
			Expect(WriteResult(&buffer, result, JSON)).To(Succeed())
			Expect(buffer.String()).NotTo(ContainSubstring(result.RunID))

			var decoded registry.Result
			Expect(json.Unmarshal(buffer.Bytes(), &decoded)).To(Succeed())
			result.RunID = ""
			Expect(&decoded).To(Equal(result))
		})

		It("should write YAML results", func() {
			var buffer bytes.Buffer
			Expect(WriteResult(&buffer, result, YAML)).To(Succeed())
			Expect(buffer.String()).To(ContainSubstring("cidr: 10.0.0.0/22"))
			Expect(buffer.String()).To(ContainSubstring("2024-03-01"))
			Expect(buffer.String()).NotTo(ContainSubstring(result.RunID))
		})

		It("should write XML results in the registry layout", func() {
			var buffer bytes.Buffer
			Expect(WriteResult(&buffer, result, XML)).To(Succeed())

			recovered, reallocated, err := iana.DecodeRecoveredSpace(&buffer)
			Expect(err).NotTo(HaveOccurred())
			Expect(recovered).To(BeEmpty())
			Expect(reallocated).To(Equal(result.Reallocated))
		})

		It("should produce identical output for identical results", func() {
			var first, second bytes.Buffer
			Expect(WriteResult(&first, result, YAML)).To(Succeed())
			result.RunID = "another-run"
			Expect(WriteResult(&second, result, YAML)).To(Succeed())
			Expect(first.String()).To(Equal(second.String()))
		})

		It("should reject unknown formats", func() {
			Expect(WriteResult(&bytes.Buffer{}, result, OutputFormat("toml"))).NotTo(Succeed())
		})

		It("should write result files", func() {
			path := filepath.Join(GinkgoT().TempDir(), "result.xml")
			Expect(WriteResultFile(path, result, XML)).To(Succeed())

			content, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("<start>10.0.0.0</start>"))
		})
	})
})
