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

// Package recordio reads and writes the registry records as files.
package recordio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/ipv4pool/recovery/pkg/iana"
	"github.com/ipv4pool/recovery/pkg/registry"
)

// OutputFormat is the format of a written file.
type OutputFormat string

const (
	// XML renders the records in the layout of the IANA recovered address space registry.
	XML OutputFormat = "xml"
	// YAML renders the records as YAML.
	YAML OutputFormat = "yaml"
	// JSON renders the records as JSON.
	JSON OutputFormat = "json"
)

// OutputFormats returns the supported output formats.
func OutputFormats() []string {
	return []string{string(XML), string(YAML), string(JSON)}
}

// Snapshot contains the records a registry is loaded from.
type Snapshot struct {
	Preferred   []registry.PreferredBlockRecord `json:"preferred,omitempty"`
	Recovered   []registry.RecoveredRecord      `json:"recovered"`
	Reallocated []registry.ReallocatedRecord    `json:"reallocated,omitempty"`
}

// ReadSnapshot decodes a YAML or JSON snapshot. Unknown fields are rejected.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var snapshot Snapshot
	if err := yaml.UnmarshalStrict(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// ReadSnapshotFile decodes the YAML or JSON snapshot at path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %q: %w", path, err)
	}
	defer f.Close()

	snapshot, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return snapshot, nil
}

// WriteSnapshot encodes the snapshot in the given format, which must be either YAML or JSON.
func WriteSnapshot(w io.Writer, snapshot *Snapshot, format OutputFormat) error {
	if format == XML {
		return fmt.Errorf("snapshots cannot be written as %s", format)
	}
	return write(w, snapshot, format)
}

// WriteResult encodes the outcome of a run in the given format.
func WriteResult(w io.Writer, result *registry.Result, format OutputFormat) error {
	if format == XML {
		return iana.EncodeRecoveredSpace(w, result.Updated, result.Recovered, result.Reallocated)
	}
	return write(w, result, format)
}

func write(w io.Writer, data interface{}, format OutputFormat) error {
	var (
		raw []byte
		err error
	)

	switch format {
	case JSON:
		if raw, err = json.MarshalIndent(data, "", "  "); err == nil {
			raw = append(raw, '\n')
		}
	case YAML:
		raw, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(raw)
	return err
}

// WriteResultFile writes the outcome of a run to path, replacing its content.
func WriteResultFile(path string, result *registry.Result, format OutputFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}

	if err := WriteResult(f, result, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return f.Close()
}
