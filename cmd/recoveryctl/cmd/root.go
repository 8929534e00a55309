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

// Package cmd contains the commands of recoveryctl.
package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/ipv4pool/recovery/pkg/config"
	"github.com/ipv4pool/recovery/pkg/output"
)

const recoveryctlLongHelp = `recoveryctl redistributes the recovered IPv4 address space.

The addresses returned by the previous holders are split among the recipients
(by default, the five regional internet registries) in equal power-of-two shares.
Each share is carved from the recovered pool preferring large blocks, blocks
historically associated with the recipient, and exact fits. The consolidated
registry can be exported in the layout of the IANA registry, as YAML or as JSON.

The records are retrieved from the IANA registries, unless a snapshot is given.
`

// options are the options shared by the commands.
type options struct {
	*config.Options

	configPath string
	verbose    bool

	printer *output.Printer
}

// NewRootCommand initializes the tree of commands.
func NewRootCommand(ctx context.Context, printer *output.Printer) *cobra.Command {
	o := &options{Options: config.NewOptions(), printer: printer}

	var rootCmd = &cobra.Command{
		Use:          "recoveryctl",
		Short:        "Redistribute the recovered IPv4 address space",
		Long:         strings.TrimSpace(recoveryctlLongHelp),
		SilenceUsage: true,
		// Errors are printed by the caller, through the printer.
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			o.printer.SetVerbose(o.verbose)
			if o.configPath != "" {
				if err := o.LoadFile(o.configPath, cmd.Flags()); err != nil {
					return err
				}
			}
			return o.Validate()
		},
	}

	flagset := flag.NewFlagSet("klog", flag.PanicOnError)
	klog.InitFlags(flagset)
	rootCmd.PersistentFlags().AddGoFlagSet(flagset)

	rootCmd.PersistentFlags().StringVar(&o.configPath, "config", "", "The path of a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&o.verbose, "verbose", false, "Enable verbose output")
	config.InitFlags(rootCmd.PersistentFlags(), o.Options)

	rootCmd.AddCommand(newAllocateCommand(ctx, o))
	rootCmd.AddCommand(newParamsCommand(ctx, o))
	rootCmd.AddCommand(newSnapshotCommand(ctx, o))
	rootCmd.AddCommand(newDecomposeCommand(o))
	rootCmd.AddCommand(newDocsCommand())
	return rootCmd
}
