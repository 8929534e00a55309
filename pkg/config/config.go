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

// Package config contains the options of a reallocation run, their defaults,
// and the logic to read them from a configuration file and command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/ipv4pool/recovery/pkg/registry"
	"github.com/ipv4pool/recovery/pkg/utils/args"
)

const (
	// DefaultAddressSpaceURL is the location of the IANA IPv4 address space registry.
	DefaultAddressSpaceURL = "https://www.iana.org/assignments/ipv4-address-space/ipv4-address-space.xml"
	// DefaultRecoveredSpaceURL is the location of the IANA IPv4 recovered address space registry.
	DefaultRecoveredSpaceURL = "https://www.iana.org/assignments/ipv4-recovered-address-space/ipv4-recovered-address-space.xml"

	// DefaultFetchTimeout is the default timeout of each document retrieval attempt.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultFetchRetries is the default number of retrieval attempts of each document.
	DefaultFetchRetries = 5
)

// DefaultRecipients returns the regional internet registries, in distribution order.
func DefaultRecipients() []string {
	return []string{"AFRINIC", "APNIC", "ARIN", "LACNIC", "RIPE NCC"}
}

// DefaultSources returns the whois servers of the regional internet registries.
func DefaultSources() map[string]string {
	return map[string]string{
		"AFRINIC":  "whois.afrinic.net",
		"APNIC":    "whois.apnic.net",
		"ARIN":     "whois.arin.net",
		"LACNIC":   "whois.lacnic.net",
		"RIPE NCC": "whois.ripe.net",
	}
}

// Options contains the options of a reallocation run.
type Options struct {
	Recipients          args.StringList
	Sources             args.StringMap
	MinimumPrefixLength args.PrefixLength

	AddressSpace   string
	RecoveredSpace string
	Snapshot       string

	FetchTimeout time.Duration
	FetchRetries int
}

// NewOptions returns the options initialized with the default values.
func NewOptions() *Options {
	return &Options{
		Recipients:          args.NewStringList(DefaultRecipients()...),
		Sources:             args.NewStringMap(DefaultSources()),
		MinimumPrefixLength: args.PrefixLength{Val: registry.DefaultMinimumPrefixLength},
		AddressSpace:        DefaultAddressSpaceURL,
		RecoveredSpace:      DefaultRecoveredSpaceURL,
		FetchTimeout:        DefaultFetchTimeout,
		FetchRetries:        DefaultFetchRetries,
	}
}

// fileOptions is the layout of the configuration file.
type fileOptions struct {
	Recipients          []string          `yaml:"recipients"`
	Sources             map[string]string `yaml:"sources"`
	MinimumPrefixLength *int              `yaml:"minimumPrefixLength"`
	AddressSpace        string            `yaml:"addressSpace"`
	RecoveredSpace      string            `yaml:"recoveredSpace"`
	Snapshot            string            `yaml:"snapshot"`
	FetchTimeout        time.Duration     `yaml:"fetchTimeout"`
	FetchRetries        *int              `yaml:"fetchRetries"`
}

// LoadFile reads the YAML configuration file at path. Values explicitly set through
// the given flags take precedence over the ones in the file. Unknown keys are rejected.
func (o *Options) LoadFile(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var file fileOptions
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	fromFile := func(name FlagName) bool {
		return flags == nil || !flags.Changed(name.String())
	}

	if file.Recipients != nil && fromFile(FlagNameRecipients) {
		o.Recipients = args.NewStringList(file.Recipients...)
	}
	if file.Sources != nil && fromFile(FlagNameSources) {
		o.Sources = args.NewStringMap(file.Sources)
	}
	if file.MinimumPrefixLength != nil && fromFile(FlagNameMinimumPrefixLength) {
		o.MinimumPrefixLength.Val = *file.MinimumPrefixLength
	}
	if file.AddressSpace != "" && fromFile(FlagNameAddressSpace) {
		o.AddressSpace = file.AddressSpace
	}
	if file.RecoveredSpace != "" && fromFile(FlagNameRecoveredSpace) {
		o.RecoveredSpace = file.RecoveredSpace
	}
	if file.Snapshot != "" && fromFile(FlagNameSnapshot) {
		o.Snapshot = file.Snapshot
	}
	if file.FetchTimeout != 0 && fromFile(FlagNameFetchTimeout) {
		o.FetchTimeout = file.FetchTimeout
	}
	if file.FetchRetries != nil && fromFile(FlagNameFetchRetries) {
		o.FetchRetries = *file.FetchRetries
	}

	klog.V(4).Infof("Loaded configuration file %q", path)
	return nil
}

// Validate checks the options not covered by the registry configuration.
func (o *Options) Validate() error {
	var errs []error
	if o.Snapshot == "" && (o.AddressSpace == "" || o.RecoveredSpace == "") {
		errs = append(errs, fmt.Errorf("both the address space and the recovered space locations are required, unless a snapshot is given"))
	}
	if o.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("the fetch timeout must be positive"))
	}
	if o.FetchRetries < 1 {
		errs = append(errs, fmt.Errorf("at least one fetch attempt is required"))
	}
	if o.MinimumPrefixLength.Val < 0 || o.MinimumPrefixLength.Val > 32 {
		errs = append(errs, fmt.Errorf("invalid minimum prefix length %d", o.MinimumPrefixLength.Val))
	}
	return errors.Join(errs...)
}

// RegistryConfig returns the registry configuration corresponding to the options.
func (o *Options) RegistryConfig(clk clock.PassiveClock) registry.Config {
	return registry.Config{
		Recipients:          o.Recipients.StringList,
		Sources:             o.Sources.StringMap,
		MinimumPrefixLength: o.MinimumPrefixLength.Val,
		Clock:               clk,
	}
}
