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
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	testingclock "k8s.io/utils/clock/testing"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
)

func cidrEntry(cidr, preference string) ipamcore.Entry {
	return ipamcore.Entry{
		Range:      ipamcore.MustParseCIDR(cidr),
		RecordDate: "2014-05",
		Preference: preference,
	}
}

func blocksOf(allocations []Allocation) []string {
	out := make([]string, len(allocations))
	for i := range allocations {
		out[i] = allocations[i].Recipient + " " + allocations[i].Block.String()
	}
	return out
}

var _ = Describe("Engine", func() {
	var (
		recovered   *ipamcore.Pool
		reallocated *ipamcore.Pool
		engine      *Engine
		now         = time.Date(2024, time.March, 17, 10, 0, 0, 0, time.UTC)
	)

	newEngine := func(entries ...ipamcore.Entry) {
		recovered = ipamcore.NewPool(entries...)
		reallocated = ipamcore.NewPool()
		engine = New(recovered, reallocated, Options{
			Sources: map[string]string{"ARIN": "whois.arin.net", "APNIC": "whois.apnic.net"},
			Clock:   testingclock.NewFakePassiveClock(now),
		})
	}

	Context("Scoring", func() {
		It("should favor larger blocks, then preference, then exact fits", func() {
			small := cidrEntry("10.0.0.0/24", "")
			large := cidrEntry("10.1.0.0/22", "")
			preferred := cidrEntry("10.2.0.0/24", "ARIN")

			Expect(score(&large, 256, "ARIN")).To(BeNumerically(">", score(&small, 1024, "ARIN")))
			Expect(score(&preferred, 512, "ARIN")).To(BeNumerically("~", 8.0/32+0.8))
			Expect(score(&small, 256, "ARIN")).To(BeNumerically("~", 8.0/32+0.2))
			Expect(score(&preferred, 256, "APNIC")).To(BeNumerically("~", 8.0/32+0.2))
		})
	})

	Context("Finding the best match", func() {
		It("should carve the head of a larger preferred entry", func() {
			newEngine(cidrEntry("10.0.0.0/22", "ARIN"))
			match, found := engine.FindBestMatch(256, "ARIN")
			Expect(found).To(BeTrue())
			Expect(match.Start.String()).To(Equal("10.0.0.0"))
			Expect(match.End.String()).To(Equal("10.0.0.255"))
		})

		It("should return the whole entry when it is smaller than the request", func() {
			newEngine(cidrEntry("10.0.0.0/25", ""))
			match, found := engine.FindBestMatch(256, "ARIN")
			Expect(found).To(BeTrue())
			Expect(match).To(Equal(ipamcore.MustParseCIDR("10.0.0.0/25")))
		})

		It("should prefer the block associated with the allocatee", func() {
			newEngine(cidrEntry("10.0.0.0/20", "APNIC"), cidrEntry("10.1.0.0/24", "ARIN"))
			match, _ := engine.FindBestMatch(256, "ARIN")
			Expect(match.String()).To(Equal("10.1.0.0/24"))
		})

		It("should prefer an exact fit to a slightly larger block", func() {
			newEngine(cidrEntry("10.0.0.0/23", ""), cidrEntry("10.1.0.0/24", ""))
			match, _ := engine.FindBestMatch(256, "ARIN")
			Expect(match.String()).To(Equal("10.1.0.0/24"))
		})

		It("should break ties by lowest start address, regardless of the pool order", func() {
			newEngine(cidrEntry("10.9.0.0/24", ""), cidrEntry("10.1.0.0/24", ""), cidrEntry("10.5.0.0/24", ""))
			match, _ := engine.FindBestMatch(128, "ARIN")
			Expect(match.String()).To(Equal("10.1.0.0/25"))
		})

		It("should not match on an empty pool or an empty request", func() {
			newEngine()
			_, found := engine.FindBestMatch(256, "ARIN")
			Expect(found).To(BeFalse())

			newEngine(cidrEntry("10.0.0.0/24", ""))
			_, found = engine.FindBestMatch(0, "ARIN")
			Expect(found).To(BeFalse())
		})
	})

	Context("Reallocating", func() {
		It("should move the range to the reallocated pool", func() {
			newEngine(cidrEntry("10.0.0.0/22", "ARIN"))
			match, _ := engine.FindBestMatch(256, "ARIN")
			Expect(engine.Reallocate(match.Start, match.End, "ARIN")).To(Succeed())

			remaining := recovered.Entries()
			Expect(remaining).To(HaveLen(1))
			Expect(remaining[0].Start.String()).To(Equal("10.0.1.0"))
			Expect(remaining[0].End.String()).To(Equal("10.0.3.255"))
			Expect(remaining[0].Len()).To(BeEquivalentTo(768))

			assigned := reallocated.Entries()
			Expect(assigned).To(HaveLen(1))
			Expect(assigned[0].Range.String()).To(Equal("10.0.0.0/24"))
			Expect(assigned[0].Allocatee).To(Equal("ARIN"))
			Expect(assigned[0].Status).To(Equal(ipamcore.StatusAllocated))
			Expect(assigned[0].RecordDate).To(Equal("2024-03"))
			Expect(assigned[0].Source).To(Equal("whois.arin.net"))
		})

		It("should conserve the number of addresses", func() {
			newEngine(cidrEntry("10.0.0.0/22", ""), cidrEntry("10.8.0.0/23", ""), cidrEntry("10.9.0.0/27", ""))
			total := recovered.TotalLength()
			for _, amount := range []uint64{256, 100, 32, 1, 700, 3} {
				match, found := engine.FindBestMatch(amount, "APNIC")
				Expect(found).To(BeTrue())
				Expect(engine.Reallocate(match.Start, match.End, "APNIC")).To(Succeed())
				Expect(recovered.TotalLength() + reallocated.TotalLength()).To(Equal(total))
			}
		})

		It("should fail without touching the pools on an unaligned removal", func() {
			newEngine(cidrEntry("10.0.0.0/22", ""))
			inner := ipamcore.MustParseCIDR("10.0.1.0/24")
			err := engine.Reallocate(inner.Start, inner.End, "ARIN")
			var cerr *ipamcore.ConsistencyError
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(recovered.TotalLength()).To(BeEquivalentTo(1024))
			Expect(reallocated.Len()).To(BeZero())
		})
	})

	Context("Distributing", func() {
		It("should satisfy every recipient when the pool is large enough", func() {
			newEngine(cidrEntry("10.0.0.0/23", ""))
			allocations, err := engine.Distribute([]string{"ARIN", "APNIC"}, map[string]uint64{"ARIN": 256, "APNIC": 256})
			Expect(err).NotTo(HaveOccurred())
			Expect(blocksOf(allocations)).To(Equal([]string{"ARIN 10.0.0.0/24", "APNIC 10.0.1.0/24"}))
			Expect(recovered.Len()).To(BeZero())
			Expect(reallocated.TotalLength()).To(BeEquivalentTo(512))
		})

		It("should decompose unaligned matches into CIDR blocks", func() {
			r, err := ipamcore.ParseRange("10.0.0.4", "10.0.0.11")
			Expect(err).NotTo(HaveOccurred())
			newEngine(ipamcore.Entry{Range: r, RecordDate: "2014-05"})

			allocations, err := engine.Distribute([]string{"ARIN"}, map[string]uint64{"ARIN": 8})
			Expect(err).NotTo(HaveOccurred())
			Expect(blocksOf(allocations)).To(Equal([]string{"ARIN 10.0.0.4/30", "ARIN 10.0.0.8/30"}))
			Expect(allocations[0].Round).To(Equal(1))
			Expect(allocations[1].Round).To(Equal(1))
		})

		It("should continue over several rounds", func() {
			newEngine(cidrEntry("10.0.1.0/25", ""), cidrEntry("10.0.0.0/25", ""))
			allocations, err := engine.Distribute([]string{"ARIN"}, map[string]uint64{"ARIN": 256})
			Expect(err).NotTo(HaveOccurred())
			Expect(blocksOf(allocations)).To(Equal([]string{"ARIN 10.0.0.0/25", "ARIN 10.0.1.0/25"}))
			Expect(allocations[0].Round).To(Equal(1))
			Expect(allocations[1].Round).To(Equal(2))
		})

		It("should report the unmet need when the pool is exhausted", func() {
			newEngine(cidrEntry("10.0.0.0/24", ""))
			allocations, err := engine.Distribute([]string{"ARIN", "APNIC"}, map[string]uint64{"ARIN": 256, "APNIC": 256})

			var exhausted *ipamcore.AllocationExhaustedError
			Expect(errors.As(err, &exhausted)).To(BeTrue())
			Expect(exhausted.Unmet).To(Equal([]ipamcore.UnmetNeed{{Recipient: "APNIC", Addresses: 256}}))
			Expect(blocksOf(allocations)).To(Equal([]string{"ARIN 10.0.0.0/24"}))
		})

		It("should be deterministic", func() {
			entries := []ipamcore.Entry{
				cidrEntry("10.4.0.0/24", "APNIC"), cidrEntry("10.0.0.0/23", ""),
				cidrEntry("10.2.0.0/23", "ARIN"), cidrEntry("10.6.0.0/24", ""),
			}
			newEngine(entries...)
			first, err := engine.Distribute([]string{"ARIN", "APNIC"}, map[string]uint64{"ARIN": 768, "APNIC": 768})
			Expect(err).NotTo(HaveOccurred())

			newEngine(entries...)
			second, err := engine.Distribute([]string{"ARIN", "APNIC"}, map[string]uint64{"ARIN": 768, "APNIC": 768})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})
})
