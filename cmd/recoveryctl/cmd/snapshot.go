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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ipv4pool/recovery/pkg/recordio"
	"github.com/ipv4pool/recovery/pkg/utils/args"
)

func newSnapshotCommand(ctx context.Context, o *options) *cobra.Command {
	var outputPath string
	outputFormat := args.NewEnum([]string{string(recordio.YAML), string(recordio.JSON)}, string(recordio.YAML))

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the records of the IANA registries, to be later used through --snapshot",
		Args:  cobra.NoArgs,

		RunE: func(_ *cobra.Command, _ []string) error {
			snapshot, err := o.loadRecords(ctx)
			if err != nil {
				return err
			}

			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create %q: %w", outputPath, err)
			}
			if err := recordio.WriteSnapshot(f, snapshot, recordio.OutputFormat(outputFormat.Value)); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write %q: %w", outputPath, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			o.printer.Success.Printfln("Snapshot written to %q", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "The path the snapshot is written to")
	cmd.Flags().Var(outputFormat, "output-format", "The format of the snapshot. Supported formats: "+
		strings.Join(outputFormat.Allowed, ", "))
	cobra.CheckErr(cmd.MarkFlagRequired("output"))

	return cmd
}
