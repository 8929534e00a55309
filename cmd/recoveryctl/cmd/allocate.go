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
	"errors"
	"strings"

	"github.com/spf13/cobra"

	ipamcore "github.com/ipv4pool/recovery/pkg/ipam/core"
	"github.com/ipv4pool/recovery/pkg/ipam/metrics"
	"github.com/ipv4pool/recovery/pkg/recordio"
	"github.com/ipv4pool/recovery/pkg/utils/args"
)

const allocateLongHelp = `Distribute the recovered pool among the recipients.

Each recipient receives a share of the recovered pool, whose size is the largest
power of two fitting an equal split. The run is aborted, and nothing is written,
if the share is smaller than the minimum prefix length allows, or if the pool
cannot satisfy every recipient.

Examples:
  $ recoveryctl allocate --output recovered.xml
  $ recoveryctl allocate --snapshot records.yaml --output result.yaml --output-format yaml
  $ recoveryctl allocate --recipients ARIN,APNIC --sources ARIN=whois.arin.net,APNIC=whois.apnic.net
`

type allocateOptions struct {
	*options

	outputPath   string
	outputFormat *args.Enum
	metricsPath  string
}

func newAllocateCommand(ctx context.Context, o *options) *cobra.Command {
	opts := &allocateOptions{
		options:      o,
		outputFormat: args.NewEnum(recordio.OutputFormats(), string(recordio.XML)),
	}

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Distribute the recovered pool among the recipients",
		Long:  strings.TrimSpace(allocateLongHelp),
		Args:  cobra.NoArgs,

		RunE: func(_ *cobra.Command, _ []string) error {
			return opts.run(ctx)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "",
		"The path the consolidated registry is written to. Nothing is written if empty")
	cmd.Flags().Var(opts.outputFormat, "output-format",
		"The format of the consolidated registry. Supported formats: "+strings.Join(recordio.OutputFormats(), ", "))
	cmd.Flags().StringVar(&opts.metricsPath, "metrics-file", "",
		"The path the metrics of the run are written to, in the node exporter textfile format")

	return cmd
}

func (o *allocateOptions) run(ctx context.Context) error {
	reg, err := o.loadRegistry(ctx)
	if err != nil {
		return err
	}

	result, err := reg.Run()
	var policyErr *ipamcore.PolicyError
	if errors.As(err, &policyErr) {
		o.printer.PrintParameters(reg.Parameters(), policyErr)
	}
	if err != nil {
		return err
	}

	o.printer.PrintResult(result)

	if o.outputPath != "" {
		if err := recordio.WriteResultFile(o.outputPath, result, recordio.OutputFormat(o.outputFormat.Value)); err != nil {
			return err
		}
		o.printer.Success.Printfln("Consolidated registry written to %q", o.outputPath)
	}

	if o.metricsPath != "" {
		recorder := metrics.NewRecorder()
		if err := recorder.Observe(result); err != nil {
			return err
		}
		if err := recorder.WriteTextfile(o.metricsPath); err != nil {
			return err
		}
	}
	return nil
}
