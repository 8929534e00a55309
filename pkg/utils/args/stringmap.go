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
	"maps"
	"slices"
	"strings"
)

// StringMap implements the flag.Value interface and allows to parse stringified maps
// in the form: "key1=val1,key2=val2". As for StringList, the first call to Set replaces
// the initial content.
type StringMap struct {
	StringMap map[string]string

	changed bool
}

// NewStringMap returns a StringMap holding a copy of the given defaults.
func NewStringMap(defaults map[string]string) StringMap {
	return StringMap{StringMap: maps.Clone(defaults)}
}

// String returns the stringified map, with keys in lexicographic order.
func (sm StringMap) String() string {
	keys := slices.Sorted(maps.Keys(sm.StringMap))
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = fmt.Sprintf("%s=%s", k, sm.StringMap[k])
	}
	return strings.Join(strs, ",")
}

// Set parses the provided string into the map[string]string map.
func (sm *StringMap) Set(str string) error {
	if !sm.changed || sm.StringMap == nil {
		sm.StringMap = map[string]string{}
		sm.changed = true
	}
	if str == "" {
		return nil
	}
	for _, chunk := range strings.Split(str, ",") {
		key, value, found := strings.Cut(chunk, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !found || key == "" {
			return fmt.Errorf("invalid value %q: expected key=value", chunk)
		}
		sm.StringMap[key] = value
	}
	return nil
}

// Type returns the stringMap type.
func (sm StringMap) Type() string {
	return "stringMap"
}
