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
	"bytes"
	"context"
	"fmt"

	"k8s.io/utils/clock"

	"github.com/ipv4pool/recovery/pkg/iana"
	"github.com/ipv4pool/recovery/pkg/recordio"
	"github.com/ipv4pool/recovery/pkg/registry"
)

// loadRecords reads the snapshot, if configured, or retrieves the IANA registries.
func (o *options) loadRecords(ctx context.Context) (*recordio.Snapshot, error) {
	if o.Snapshot != "" {
		o.printer.Verbosef("Reading snapshot %q", o.Snapshot)
		return recordio.ReadSnapshotFile(o.Snapshot)
	}

	spinner := o.printer.StartSpinner("Retrieving the IANA registries")
	bodies, err := iana.NewFetcher(o.FetchTimeout, o.FetchRetries).FetchAll(ctx, o.AddressSpace, o.RecoveredSpace)
	if err != nil {
		spinner.Fail(fmt.Sprintf("Failed to retrieve the IANA registries: %v", err))
		return nil, err
	}

	var snapshot recordio.Snapshot
	if snapshot.Preferred, err = iana.DecodeAddressSpace(bytes.NewReader(bodies[0])); err != nil {
		spinner.Fail(fmt.Sprintf("Failed to decode %q: %v", o.AddressSpace, err))
		return nil, err
	}
	if snapshot.Recovered, snapshot.Reallocated, err = iana.DecodeRecoveredSpace(bytes.NewReader(bodies[1])); err != nil {
		spinner.Fail(fmt.Sprintf("Failed to decode %q: %v", o.RecoveredSpace, err))
		return nil, err
	}

	spinner.Success(fmt.Sprintf("Retrieved %d preferred, %d recovered and %d reallocated records",
		len(snapshot.Preferred), len(snapshot.Recovered), len(snapshot.Reallocated)))
	return &snapshot, nil
}

// loadRegistry returns a registry loaded with the configured records.
func (o *options) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	snapshot, err := o.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(o.RegistryConfig(clock.RealClock{}))
	if err != nil {
		return nil, err
	}
	if err := reg.Load(snapshot.Preferred, snapshot.Recovered, snapshot.Reallocated); err != nil {
		return nil, err
	}
	return reg, nil
}
