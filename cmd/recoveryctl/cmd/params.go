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
	"context"

	"github.com/spf13/cobra"
)

func newParamsCommand(ctx context.Context, o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the distribution parameters of the recovered pool, without allocating",
		Args:  cobra.NoArgs,

		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := o.loadRegistry(ctx)
			if err != nil {
				return err
			}

			params := reg.Parameters()
			o.printer.PrintParameters(params, reg.CheckPolicy(params))
			return nil
		},
	}
}
