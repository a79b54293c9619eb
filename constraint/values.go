// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package constraint

// MaxStrategies bounds the number of strategies one registry can hold.
const MaxStrategies = 16

// Values holds the constraint values derived for one request, indexed by
// strategy ID. The zero Values derives nothing.
type Values struct {
	set  uint32
	vals [MaxStrategies]string
}

// Set records the value derived for strategy id.
func (v *Values) Set(id int, s string) {
	v.set |= 1 << uint(id)
	v.vals[id] = s
}

// Get returns the value derived for strategy id.
func (v *Values) Get(id int) (string, bool) {
	if v == nil || v.set&(1<<uint(id)) == 0 {
		return "", false
	}
	return v.vals[id], true
}

// Has reports whether strategy id derived a value.
func (v *Values) Has(id int) bool {
	return v != nil && v.set&(1<<uint(id)) != 0
}

// Empty reports whether no strategy derived a value.
func (v *Values) Empty() bool {
	return v == nil || v.set == 0
}

// Reset clears all derived values.
func (v *Values) Reset() {
	*v = Values{}
}
