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

package config

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/ipv4pool/recovery/pkg/registry"
)

var _ = Describe("Options", func() {
	var (
		options *Options
		flagset *pflag.FlagSet
		dir     string
	)

	writeFile := func(content string) string {
		path := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		options = NewOptions()
		flagset = pflag.NewFlagSet("test", pflag.ContinueOnError)
		InitFlags(flagset, options)
		dir = GinkgoT().TempDir()
	})

	It("should carry the defaults", func() {
		Expect(options.Recipients.StringList).To(Equal(DefaultRecipients()))
		Expect(options.Sources.StringMap).To(Equal(DefaultSources()))
		Expect(options.MinimumPrefixLength.Val).To(Equal(registry.DefaultMinimumPrefixLength))
		Expect(options.Validate()).To(Succeed())

		_, err := registry.New(options.RegistryConfig(nil))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should parse the flags", func() {
		Expect(flagset.Parse([]string{
			"--recipients=ARIN,APNIC", "--sources=ARIN=whois.arin.net,APNIC=whois.apnic.net",
			"--minimum-prefix-length=/22", "--fetch-timeout=5s",
		})).To(Succeed())
		Expect(options.Recipients.StringList).To(Equal([]string{"ARIN", "APNIC"}))
		Expect(options.Sources.StringMap).To(HaveLen(2))
		Expect(options.MinimumPrefixLength.Val).To(Equal(22))
		Expect(options.FetchTimeout).To(Equal(5 * time.Second))
	})

	It("should load the configuration file, with flags taking precedence", func() {
		path := writeFile(`
recipients: [LACNIC, "RIPE NCC"]
sources:
  LACNIC: whois.lacnic.net
  RIPE NCC: whois.ripe.net
minimumPrefixLength: 20
snapshot: records.yaml
fetchTimeout: 1m
fetchRetries: 2
`)
		Expect(flagset.Parse([]string{"--fetch-retries=7"})).To(Succeed())
		Expect(options.LoadFile(path, flagset)).To(Succeed())

		Expect(options.Recipients.StringList).To(Equal([]string{"LACNIC", "RIPE NCC"}))
		Expect(options.Sources.StringMap).To(Equal(map[string]string{"LACNIC": "whois.lacnic.net", "RIPE NCC": "whois.ripe.net"}))
		Expect(options.MinimumPrefixLength.Val).To(Equal(20))
		Expect(options.Snapshot).To(Equal("records.yaml"))
		Expect(options.FetchTimeout).To(Equal(time.Minute))
		Expect(options.FetchRetries).To(Equal(7))
		Expect(options.AddressSpace).To(Equal(DefaultAddressSpaceURL))
	})

	It("should accept an empty configuration file", func() {
		Expect(options.LoadFile(writeFile(""), flagset)).To(Succeed())
		Expect(options.Recipients.StringList).To(Equal(DefaultRecipients()))
	})

	It("should reject unknown keys", func() {
		Expect(options.LoadFile(writeFile("recipent: [ARIN]\n"), flagset)).NotTo(Succeed())
	})

	It("should reject a missing file", func() {
		Expect(options.LoadFile(filepath.Join(dir, "missing.yaml"), flagset)).NotTo(Succeed())
	})

	It("should reject invalid options", func() {
		options.AddressSpace = ""
		options.FetchRetries = 0
		Expect(options.Validate()).NotTo(Succeed())

		options.Snapshot = "records.yaml"
		options.FetchRetries = 1
		Expect(options.Validate()).To(Succeed())
	})
})
