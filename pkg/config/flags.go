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
	"github.com/spf13/pflag"
)

// FlagName is the type for the name of the flags.
type FlagName string

func (fn FlagName) String() string {
	return string(fn)
}

const (
	// FlagNameRecipients is the ordered list of recipients.
	FlagNameRecipients FlagName = "recipients"
	// FlagNameSources maps each recipient to the source stamped on its new blocks.
	FlagNameSources FlagName = "sources"
	// FlagNameMinimumPrefixLength is the longest prefix a recipient share may have.
	FlagNameMinimumPrefixLength FlagName = "minimum-prefix-length"

	// FlagNameAddressSpace is the location of the IPv4 address space registry.
	FlagNameAddressSpace FlagName = "address-space"
	// FlagNameRecoveredSpace is the location of the IPv4 recovered address space registry.
	FlagNameRecoveredSpace FlagName = "recovered-space"
	// FlagNameSnapshot is the location of a record snapshot, used in place of the registries.
	FlagNameSnapshot FlagName = "snapshot"

	// FlagNameFetchTimeout is the timeout of each retrieval attempt.
	FlagNameFetchTimeout FlagName = "fetch-timeout"
	// FlagNameFetchRetries is the number of retrieval attempts.
	FlagNameFetchRetries FlagName = "fetch-retries"
)

// InitFlags initializes the flags for the Options struct.
func InitFlags(flagset *pflag.FlagSet, o *Options) {
	flagset.Var(&o.Recipients, FlagNameRecipients.String(),
		"The recipients of the recovered address space, in distribution order")
	flagset.Var(&o.Sources, FlagNameSources.String(),
		"The source (e.g., the whois server) of each recipient, in the form recipient=source")
	flagset.Var(&o.MinimumPrefixLength, FlagNameMinimumPrefixLength.String(),
		"The longest prefix a recipient share may have: smaller shares abort the run")

	InitSourceFlags(flagset, o)
}

// InitSourceFlags initializes the flags concerning the retrieval of the records.
func InitSourceFlags(flagset *pflag.FlagSet, o *Options) {
	flagset.StringVar(&o.AddressSpace, FlagNameAddressSpace.String(), o.AddressSpace,
		"The URL or path of the IPv4 address space registry, providing the preferred blocks")
	flagset.StringVar(&o.RecoveredSpace, FlagNameRecoveredSpace.String(), o.RecoveredSpace,
		"The URL or path of the IPv4 recovered address space registry")
	flagset.StringVar(&o.Snapshot, FlagNameSnapshot.String(), o.Snapshot,
		"The path of a YAML or JSON record snapshot, used in place of the registries")
	flagset.DurationVar(&o.FetchTimeout, FlagNameFetchTimeout.String(), o.FetchTimeout,
		"The timeout of each registry retrieval attempt")
	flagset.IntVar(&o.FetchRetries, FlagNameFetchRetries.String(), o.FetchRetries,
		"The number of registry retrieval attempts")
}
