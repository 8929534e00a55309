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

package cmd

import (
	"github.com/spf13/cobra"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
	"github.com/ipv4pool/recovery/pkg/output"
)

func newDecomposeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decompose START END",
		Short: "Show the CIDR blocks exactly covering an address range",
		Args:  cobra.ExactArgs(2),

		RunE: func(_ *cobra.Command, args []string) error {
			rng, err := ipamcore.ParseRange(args[0], args[1])
			if err != nil {
				return err
			}

			o.printer.PrintTable(output.BlockRows(rng.Decompose()))
			return nil
		},
	}
}
