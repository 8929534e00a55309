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

package args

import (
	"fmt"
	"strconv"
	"strings"
)

// PrefixLength implements the flag.Value interface and allows to parse IPv4 prefix lengths,
// either as a plain number or with a leading slash (e.g. "/24").
type PrefixLength struct {
	Val int
}

// String returns the stringified prefix length.
func (p PrefixLength) String() string {
	return strconv.Itoa(p.Val)
}

// Set parses the provided string into the prefix length.
func (p *PrefixLength) Set(str string) error {
	val, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(str), "/"))
	if err != nil {
		return fmt.Errorf("invalid prefix length %q: %w", str, err)
	}
	if val < 0 || val > 32 {
		return fmt.Errorf("invalid prefix length %q: it has to be in range [0 - 32]", str)
	}
	p.Val = val
	return nil
}

// Type returns the prefixLength type.
func (p PrefixLength) Type() string {
	return "prefixLength"
}
