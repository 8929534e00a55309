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

// Package main is the entrypoint of recoveryctl, the tool redistributing the recovered IPv4 address space.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ipv4pool/recovery/cmd/recoveryctl/cmd"
	"github.com/ipv4pool/recovery/pkg/output"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	printer := output.NewPrinter(false)
	printer.CheckErr(cmd.NewRootCommand(ctx, printer).Execute())
}
